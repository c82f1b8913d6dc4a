// internal/handler/sales_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/service"
)

type SalesHandler struct {
	sales  *service.SalesService
	logger *zap.Logger
}

func NewSalesHandler(sales *service.SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		sales:  sales,
		logger: logger,
	}
}

func (h *SalesHandler) List(c *gin.Context) {
	period := c.DefaultQuery("period", models.PeriodMonth)
	search := c.Query("search")

	sales, err := h.sales.ListSales(c.Request.Context(), businessFrom(c), period, search)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req models.SaleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.sales.CreateSale(c.Request.Context(), businessFrom(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sales.DeleteSale(c.Request.Context(), id, businessFrom(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *SalesHandler) Summary(c *gin.Context) {
	period := c.DefaultQuery("period", models.PeriodMonth)

	summary, err := h.sales.Summary(c.Request.Context(), businessFrom(c), period)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
