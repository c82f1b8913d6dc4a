// internal/repository/store.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanbara234/fiadoapp/internal/models"
)

// Store exposes business-level ledger operations. Two implementations
// exist, one per SQL dialect; placeholder syntax, id retrieval and row
// locking stay inside the adapter. Tenant scoping is part of the
// contract: lookups carry the caller's business id and report foreign
// rows as models.ErrNotFound, never as a distinct "forbidden".
type Store interface {
	InitSchema(ctx context.Context) error
	Close() error

	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateBusiness(ctx context.Context, userID int64, name string) (*models.Business, error)
	ListBusinesses(ctx context.Context, userID int64) ([]models.Business, error)
	GetBusiness(ctx context.Context, id, userID int64) (*models.Business, error)

	CreateSession(ctx context.Context, token string, userID int64, businessID *int64) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteUserSessions(ctx context.Context, userID int64) error
	SetSessionBusiness(ctx context.Context, token string, businessID int64) error

	ListContacts(ctx context.Context, businessID int64, kind models.ContactKind, search string) ([]models.Contact, error)
	GetContact(ctx context.Context, id, businessID int64) (*models.Contact, error)
	CreateContact(ctx context.Context, businessID int64, kind models.ContactKind, name, phone string, initialDebt decimal.Decimal) (*models.Contact, error)
	UpdateContact(ctx context.Context, id, businessID int64, upd models.ContactUpdateRequest) (*models.Contact, error)
	DeleteContact(ctx context.Context, id, businessID int64) error

	ListTransactions(ctx context.Context, contactID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, contactID, businessID int64, kind models.TransactionKind, amount decimal.Decimal, note string) (*models.Transaction, decimal.Decimal, error)
	ContactSummary(ctx context.Context, businessID int64, kind models.ContactKind) (*models.ContactSummary, error)

	CreateSale(ctx context.Context, businessID int64, description string, amount decimal.Decimal) (*models.Sale, error)
	ListSales(ctx context.Context, businessID int64, since time.Time, search string) ([]models.Sale, error)
	DeleteSale(ctx context.Context, id, businessID int64) error
	SalesSummary(ctx context.Context, businessID int64, since time.Time) (*models.SalesSummary, error)
}

// SeedDebtNote is written on the transaction created alongside a contact
// with a non-zero initial debt.
const SeedDebtNote = "initial debt"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanBusiness(row rowScanner) (*models.Business, error) {
	business := &models.Business{}
	err := row.Scan(
		&business.ID,
		&business.UserID,
		&business.Name,
		&business.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return business, nil
}

func scanContact(row rowScanner) (*models.Contact, error) {
	contact := &models.Contact{}
	var lastMovement sql.NullTime
	err := row.Scan(
		&contact.ID,
		&contact.BusinessID,
		&contact.Kind,
		&contact.Name,
		&contact.Phone,
		&contact.Balance,
		&lastMovement,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastMovement.Valid {
		t := lastMovement.Time
		contact.LastMovement = &t
	}
	return contact, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := row.Scan(
		&txn.ID,
		&txn.ContactID,
		&txn.Kind,
		&txn.Amount,
		&txn.Note,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func scanSale(row rowScanner) (*models.Sale, error) {
	sale := &models.Sale{}
	err := row.Scan(
		&sale.ID,
		&sale.BusinessID,
		&sale.Description,
		&sale.Amount,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sale, nil
}
