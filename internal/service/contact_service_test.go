// internal/service/contact_service_test.go
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

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newContactFixture(t *testing.T) (*ContactService, int64) {
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

	return NewContactService(store, zap.NewNop()), business.ID
}

func TestCreateContactValidation(t *testing.T) {
	svc, businessID := newContactFixture(t)
	ctx := context.Background()

	_, err := svc.CreateContact(ctx, businessID, &models.ContactCreateRequest{
		Name: "Rosa",
		Kind: "customer", // not a known kind
	})
	assert.ErrorIs(t, err, models.ErrInvalidKind)

	_, err = svc.CreateContact(ctx, businessID, &models.ContactCreateRequest{
		Name:        "Rosa",
		Kind:        models.ContactKindClient,
		InitialDebt: d("-5"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, businessID := newContactFixture(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, businessID, &models.ContactCreateRequest{
		Name: "Rosa",
		Kind: models.ContactKindClient,
	})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, contact.ID, businessID, &models.TransactionCreateRequest{
		Kind:   "refund",
		Amount: d("10"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidKind)

	_, err = svc.CreateTransaction(ctx, contact.ID, businessID, &models.TransactionCreateRequest{
		Kind:   models.TxnKindDebt,
		Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.CreateTransaction(ctx, contact.ID, businessID, &models.TransactionCreateRequest{
		Kind:   models.TxnKindPayment,
		Amount: d("-3"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestCreateTransactionReturnsNewBalance(t *testing.T) {
	svc, businessID := newContactFixture(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, businessID, &models.ContactCreateRequest{
		Name:        "Rosa",
		Kind:        models.ContactKindClient,
		InitialDebt: d("50"),
	})
	require.NoError(t, err)

	resp, err := svc.CreateTransaction(ctx, contact.ID, businessID, &models.TransactionCreateRequest{
		Kind:   models.TxnKindPayment,
		Amount: d("20"),
		Note:   "partial",
	})
	require.NoError(t, err)
	assert.True(t, resp.NewBalance.Equal(d("30")))
	assert.Equal(t, models.TxnKindPayment, resp.Transaction.Kind)
	assert.Equal(t, "partial", resp.Transaction.Note)

	transactions, err := svc.ListTransactions(ctx, contact.ID, businessID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	// most recent first
	assert.Equal(t, models.TxnKindPayment, transactions[0].Kind)
	assert.Equal(t, repository.SeedDebtNote, transactions[1].Note)
}

func TestSummaryRejectsUnknownKind(t *testing.T) {
	svc, businessID := newContactFixture(t)

	_, err := svc.Summary(context.Background(), businessID, "vendors")
	assert.ErrorIs(t, err, models.ErrInvalidKind)
}
