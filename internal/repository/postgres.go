// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanbara234/fiadoapp/internal/models"
)

const uniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS businesses (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    business_id INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contacts (
    id SERIAL PRIMARY KEY,
    business_id INTEGER NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('client', 'supplier')),
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    balance NUMERIC(14, 2) NOT NULL DEFAULT 0,
    last_movement TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
    id SERIAL PRIMARY KEY,
    contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('debt', 'payment')),
    amount NUMERIC(14, 2) NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sales (
    id SERIAL PRIMARY KEY,
    business_id INTEGER NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
    description TEXT NOT NULL,
    amount NUMERIC(14, 2) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore implements Store against PostgreSQL ($n placeholders,
// RETURNING for generated ids, row locks via SELECT ... FOR UPDATE).
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, email, passwordHash, name, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = $1
	`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) CreateBusiness(ctx context.Context, userID int64, name string) (*models.Business, error) {
	business := &models.Business{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO businesses (user_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, name, business.CreatedAt).Scan(&business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	return business, nil
}

func (s *PostgresStore) ListBusinesses(ctx context.Context, userID int64) ([]models.Business, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM businesses
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	businesses := []models.Business{}
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *business)
	}
	return businesses, rows.Err()
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id, userID int64) (*models.Business, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM businesses
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	business, err := scanBusiness(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return business, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, token string, userID int64, businessID *int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, business_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, token, userID, businessID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	session := &models.Session{Token: token}
	var businessID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT s.user_id, s.business_id, u.name
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(&session.UserID, &businessID, &session.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if businessID.Valid {
		session.BusinessID = &businessID.Int64
	}
	return session, nil
}

func (s *PostgresStore) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetSessionBusiness(ctx context.Context, token string, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET business_id = $1 WHERE token = $2
	`, businessID, token)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, businessID int64, kind models.ContactKind, search string) ([]models.Contact, error) {
	query := `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE business_id = $1 AND kind = $2
	`
	args := []interface{}{businessID, kind}
	if search != "" {
		query += ` AND (name ILIKE $3 OR phone ILIKE $3)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY balance DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

func (s *PostgresStore) GetContact(ctx context.Context, id, businessID int64) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE id = $1 AND business_id = $2
	`, id, businessID)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, businessID int64, kind models.ContactKind, name, phone string, initialDebt decimal.Decimal) (*models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	contact := &models.Contact{
		BusinessID: businessID,
		Kind:       kind,
		Name:       name,
		Phone:      phone,
		Balance:    initialDebt,
		CreatedAt:  now,
	}

	var lastMovement sql.NullTime
	if initialDebt.IsPositive() {
		lastMovement = sql.NullTime{Time: now, Valid: true}
		contact.LastMovement = &now
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO contacts (business_id, kind, name, phone, balance, last_movement, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, businessID, kind, name, phone, initialDebt, lastMovement, now).Scan(&contact.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	// A non-zero seed debt is recorded in the transaction log so the
	// balance stays reconcilable from day one.
	if initialDebt.IsPositive() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (contact_id, kind, amount, note, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, contact.ID, models.TxnKindDebt, initialDebt, SeedDebtNote, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create seed transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, id, businessID int64, upd models.ContactUpdateRequest) (*models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, id, businessID)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if upd.Name != nil {
		contact.Name = *upd.Name
	}
	if upd.Phone != nil {
		contact.Phone = *upd.Phone
	}
	if upd.Balance != nil {
		contact.Balance = *upd.Balance
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE contacts SET name = $1, phone = $2, balance = $3 WHERE id = $4
	`, contact.Name, contact.Phone, contact.Balance, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, id, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM contacts WHERE id = $1 AND business_id = $2
	`, id, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, contactID int64) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contact_id, kind, amount, note, created_at
		FROM transactions
		WHERE contact_id = $1
		ORDER BY created_at DESC, id DESC
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, contactID, businessID int64, kind models.TransactionKind, amount decimal.Decimal, note string) (*models.Transaction, decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	// Lock the contact row so concurrent writes fold in a consistent
	// order instead of both reading the same stale balance.
	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM contacts
		WHERE id = $1 AND business_id = $2
		FOR UPDATE
	`, contactID, businessID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, decimal.Zero, models.ErrNotFound
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to lock contact: %w", err)
	}

	now := time.Now()
	txn := &models.Transaction{
		ContactID: contactID,
		Kind:      kind,
		Amount:    amount,
		Note:      note,
		CreatedAt: now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (contact_id, kind, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, contactID, kind, amount, note, now).Scan(&txn.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to create transaction: %w", err)
	}

	newBalance := models.NextBalance(balance, kind, amount)
	_, err = tx.ExecContext(ctx, `
		UPDATE contacts SET balance = $1, last_movement = $2 WHERE id = $3
	`, newBalance, now, contactID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}
	return txn, newBalance, nil
}

func (s *PostgresStore) ContactSummary(ctx context.Context, businessID int64, kind models.ContactKind) (*models.ContactSummary, error) {
	summary := &models.ContactSummary{Kind: kind}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(balance), 0)
		FROM contacts
		WHERE business_id = $1 AND kind = $2
	`, businessID, kind).Scan(&summary.Count, &summary.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize contacts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN contacts c ON c.id = t.contact_id
		WHERE c.business_id = $1 AND c.kind = $2 AND t.kind = $3
	`, businessID, kind, models.TxnKindPayment).Scan(&summary.TotalPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}

	return summary, nil
}

func (s *PostgresStore) CreateSale(ctx context.Context, businessID int64, description string, amount decimal.Decimal) (*models.Sale, error) {
	sale := &models.Sale{
		BusinessID:  businessID,
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sales (business_id, description, amount, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, businessID, description, amount, sale.CreatedAt).Scan(&sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return sale, nil
}

func (s *PostgresStore) ListSales(ctx context.Context, businessID int64, since time.Time, search string) ([]models.Sale, error) {
	query := `
		SELECT id, business_id, description, amount, created_at
		FROM sales
		WHERE business_id = $1
	`
	args := []interface{}{businessID}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND description ILIKE $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (s *PostgresStore) DeleteSale(ctx context.Context, id, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sales WHERE id = $1 AND business_id = $2
	`, id, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SalesSummary(ctx context.Context, businessID int64, since time.Time) (*models.SalesSummary, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM sales
		WHERE business_id = $1
	`
	args := []interface{}{businessID}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}

	summary := &models.SalesSummary{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&summary.Total, &summary.Count); err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return summary, nil
}
