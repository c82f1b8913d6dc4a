// internal/models/models.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContactKind string
type TransactionKind string

const (
	ContactKindClient   ContactKind = "client"
	ContactKindSupplier ContactKind = "supplier"

	TxnKindDebt    TransactionKind = "debt"
	TxnKindPayment TransactionKind = "payment"
)

// Valid reports whether the kind is one of the known contact kinds.
func (k ContactKind) Valid() bool {
	return k == ContactKindClient || k == ContactKindSupplier
}

// Valid reports whether the kind is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	return k == TxnKindDebt || k == TxnKindPayment
}

// User is an account owner. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Business is a tenant. Every ledger row belongs to exactly one business.
type Business struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session maps an opaque token to a user and their active business.
// BusinessID is nil until a business is selected.
type Session struct {
	Token      string `json:"token"`
	UserID     int64  `json:"user_id"`
	BusinessID *int64 `json:"business_id"`
	UserName   string `json:"user_name"`
}

// Contact is a client or supplier with a cached running balance.
// Balance is derived state: it must equal the fold of the contact's
// transactions through NextBalance, in creation order.
type Contact struct {
	ID           int64           `json:"id" db:"id"`
	BusinessID   int64           `json:"business_id" db:"business_id"`
	Kind         ContactKind     `json:"kind" db:"kind"`
	Name         string          `json:"name" db:"name"`
	Phone        string          `json:"phone" db:"phone"`
	Balance      decimal.Decimal `json:"balance" db:"balance"`
	LastMovement *time.Time      `json:"last_movement,omitempty" db:"last_movement"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Transaction is one debt or payment event against a contact. Rows are
// append-only; they are only removed when the owning contact is deleted.
type Transaction struct {
	ID        int64           `json:"id" db:"id"`
	ContactID int64           `json:"contact_id" db:"contact_id"`
	Kind      TransactionKind `json:"kind" db:"kind"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Note      string          `json:"note" db:"note"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Sale is a plain cash-sale record, independent of the contact ledger.
type Sale struct {
	ID          int64           `json:"id" db:"id"`
	BusinessID  int64           `json:"business_id" db:"business_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// RegisterRequest creates a user together with their first business.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login. The token is also set
// as a session cookie.
type AuthResponse struct {
	Token        string `json:"token"`
	BusinessID   *int64 `json:"business_id"`
	BusinessName string `json:"business_name"`
	UserName     string `json:"user_name"`
}

// MeResponse describes the current identity.
type MeResponse struct {
	UserName   string     `json:"user_name"`
	BusinessID *int64     `json:"business_id"`
	Businesses []Business `json:"businesses"`
}

type BusinessCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type ContactCreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Phone       string          `json:"phone"`
	Kind        ContactKind     `json:"kind" binding:"required"`
	InitialDebt decimal.Decimal `json:"initial_debt"`
}

// ContactUpdateRequest is a partial update; nil fields keep their prior
// value. Balance is an escape hatch for manual corrections and bypasses
// the transaction log.
type ContactUpdateRequest struct {
	Name    *string          `json:"name"`
	Phone   *string          `json:"phone"`
	Balance *decimal.Decimal `json:"balance"`
}

type TransactionCreateRequest struct {
	Kind   TransactionKind `json:"kind" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// TransactionCreateResponse reports the contact's balance after the fold
// step was applied.
type TransactionCreateResponse struct {
	Transaction Transaction     `json:"transaction"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

type SaleCreateRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// ContactSummary aggregates one business+kind slice of the ledger.
// TotalPaid is the lifetime sum of payment transactions, not bounded by
// any period.
type ContactSummary struct {
	Kind         ContactKind     `json:"kind"`
	Count        int             `json:"count"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

type SalesSummary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
