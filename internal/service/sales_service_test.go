// internal/service/sales_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
	"github.com/sanbara234/fiadoapp/pkg/database"
)

func newSalesFixture(t *testing.T) (*SalesService, int64) {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)

	store := repository.NewSQLiteStore(db)
	ctx := context.Background()
	require.NoError(t, store.InitSchema(ctx))
	t.Cleanup(func() { store.Close() })

	user, err := store.CreateUser(ctx, "owner@example.com", "hash", "Owner")
	require.NoError(t, err)
	business, err := store.CreateBusiness(ctx, user.ID, "Shop")
	require.NoError(t, err)

	return NewSalesService(store, zap.NewNop()), business.ID
}

func TestCreateSaleValidation(t *testing.T) {
	svc, businessID := newSalesFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, businessID, &models.SaleCreateRequest{
		Description: "bread",
		Amount:      decimal.Zero,
	})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.CreateSale(ctx, businessID, &models.SaleCreateRequest{
		Description: "bread",
		Amount:      d("-1"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestSalesSummaryUnknownPeriodMeansNoFilter(t *testing.T) {
	svc, businessID := newSalesFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, businessID, &models.SaleCreateRequest{
		Description: "bread",
		Amount:      d("15"),
	})
	require.NoError(t, err)
	_, err = svc.CreateSale(ctx, businessID, &models.SaleCreateRequest{
		Description: "soda",
		Amount:      d("5"),
	})
	require.NoError(t, err)

	for _, period := range []string{"all", "", "bogus"} {
		summary, err := svc.Summary(ctx, businessID, period)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Count, "period %q", period)
		assert.True(t, summary.Total.Equal(d("20")), "period %q: got %s", period, summary.Total)
	}

	sales, err := svc.ListSales(ctx, businessID, "today", "")
	require.NoError(t, err)
	assert.Len(t, sales, 2) // both created just now
}
