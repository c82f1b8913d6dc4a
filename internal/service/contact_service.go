// internal/service/contact_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
)

// ContactService owns the contact ledger: contacts, their transaction
// logs and the per-kind summary.
type ContactService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewContactService(store repository.Store, logger *zap.Logger) *ContactService {
	return &ContactService{
		store:  store,
		logger: logger,
	}
}

// ListContacts returns the business's contacts of one kind, optionally
// filtered by a substring over name or phone. Ordering is highest balance
// first, name ascending on ties.
func (s *ContactService) ListContacts(ctx context.Context, businessID int64, kind models.ContactKind, search string) ([]models.Contact, error) {
	return s.store.ListContacts(ctx, businessID, kind, search)
}

// CreateContact creates a contact, atomically seeding the transaction log
// when an initial debt is given.
func (s *ContactService) CreateContact(ctx context.Context, businessID int64, req *models.ContactCreateRequest) (*models.Contact, error) {
	if !req.Kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if req.InitialDebt.IsNegative() {
		return nil, models.ErrInvalidAmount
	}

	contact, err := s.store.CreateContact(ctx, businessID, req.Kind, req.Name, req.Phone, req.InitialDebt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact created",
		zap.Int64("contact_id", contact.ID),
		zap.Int64("business_id", businessID),
		zap.String("kind", string(req.Kind)))
	return contact, nil
}

// UpdateContact applies a partial update. A direct balance edit is a
// manual correction that resets the fold's starting point; it does not
// touch the transaction log.
func (s *ContactService) UpdateContact(ctx context.Context, id, businessID int64, req *models.ContactUpdateRequest) (*models.Contact, error) {
	if req.Balance != nil && req.Balance.IsNegative() {
		return nil, models.ErrInvalidAmount
	}
	return s.store.UpdateContact(ctx, id, businessID, *req)
}

// DeleteContact removes the contact and, via cascade, its transactions.
func (s *ContactService) DeleteContact(ctx context.Context, id, businessID int64) error {
	if err := s.store.DeleteContact(ctx, id, businessID); err != nil {
		return err
	}
	s.logger.Info("contact deleted",
		zap.Int64("contact_id", id),
		zap.Int64("business_id", businessID))
	return nil
}

// ListTransactions returns a contact's transactions, most recent first.
// The contact lookup doubles as the tenant check.
func (s *ContactService) ListTransactions(ctx context.Context, contactID, businessID int64) ([]models.Transaction, error) {
	if _, err := s.store.GetContact(ctx, contactID, businessID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, contactID)
}

// CreateTransaction appends a debt or payment to the contact's log and
// applies the balance fold step in the same store transaction. It returns
// the recorded transaction and the new balance.
func (s *ContactService) CreateTransaction(ctx context.Context, contactID, businessID int64, req *models.TransactionCreateRequest) (*models.TransactionCreateResponse, error) {
	if !req.Kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if !req.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	txn, newBalance, err := s.store.CreateTransaction(ctx, contactID, businessID, req.Kind, req.Amount, req.Note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		zap.Int64("contact_id", contactID),
		zap.String("kind", string(req.Kind)),
		zap.String("amount", req.Amount.String()),
		zap.String("new_balance", newBalance.String()))

	return &models.TransactionCreateResponse{
		Transaction: *txn,
		NewBalance:  newBalance,
	}, nil
}

// Summary aggregates one business+kind slice: contact count, outstanding
// balances and lifetime paid total.
func (s *ContactService) Summary(ctx context.Context, businessID int64, kind models.ContactKind) (*models.ContactSummary, error) {
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	return s.store.ContactSummary(ctx, businessID, kind)
}
