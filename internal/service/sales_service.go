// internal/service/sales_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
)

// SalesService owns the cash-sale log, which is independent of the
// contact ledger.
type SalesService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewSalesService(store repository.Store, logger *zap.Logger) *SalesService {
	return &SalesService{
		store:  store,
		logger: logger,
	}
}

// ListSales returns the business's sales within the period window, most
// recent first, optionally filtered by a description substring.
func (s *SalesService) ListSales(ctx context.Context, businessID int64, period, search string) ([]models.Sale, error) {
	since := models.PeriodStart(period, time.Now())
	return s.store.ListSales(ctx, businessID, since, search)
}

func (s *SalesService) CreateSale(ctx context.Context, businessID int64, req *models.SaleCreateRequest) (*models.Sale, error) {
	if !req.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	sale, err := s.store.CreateSale(ctx, businessID, req.Description, req.Amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("business_id", businessID),
		zap.String("amount", req.Amount.String()))
	return sale, nil
}

func (s *SalesService) DeleteSale(ctx context.Context, id, businessID int64) error {
	return s.store.DeleteSale(ctx, id, businessID)
}

// Summary reports the sum and count of sales within the period window.
func (s *SalesService) Summary(ctx context.Context, businessID int64, period string) (*models.SalesSummary, error) {
	since := models.PeriodStart(period, time.Now())
	return s.store.SalesSummary(ctx, businessID, since)
}
