// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/pkg/middleware"
)

// NewRouter wires the full HTTP surface. Business-scoped groups run
// behind RequireSession and RequireBusiness.
func NewRouter(auth *AuthHandler, contacts *ContactHandler, sales *SalesHandler, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", auth.Register)
			authGroup.POST("/login", auth.Login)
			authGroup.POST("/logout", auth.RequireSession(), auth.Logout)
			authGroup.GET("/me", auth.RequireSession(), auth.Me)
		}

		businesses := v1.Group("/businesses", auth.RequireSession())
		{
			businesses.GET("", auth.ListBusinesses)
			businesses.POST("", auth.CreateBusiness)
			businesses.PUT("/:id/select", auth.SelectBusiness)
		}

		scoped := v1.Group("", auth.RequireSession(), auth.RequireBusiness())
		{
			scoped.GET("/contacts", contacts.List)
			scoped.POST("/contacts", contacts.Create)
			scoped.GET("/contacts/summary", contacts.Summary)
			scoped.PUT("/contacts/:id", contacts.Update)
			scoped.DELETE("/contacts/:id", contacts.Delete)
			scoped.GET("/contacts/:id/transactions", contacts.ListTransactions)
			scoped.POST("/contacts/:id/transactions", contacts.CreateTransaction)

			scoped.GET("/sales", sales.List)
			scoped.POST("/sales", sales.Create)
			scoped.GET("/sales/summary", sales.Summary)
			scoped.DELETE("/sales/:id", sales.Delete)
		}
	}

	return router
}
