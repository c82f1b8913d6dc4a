// internal/repository/sqlite.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/sanbara234/fiadoapp/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS businesses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    business_id INTEGER,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    business_id INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('client', 'supplier')),
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    balance NUMERIC NOT NULL DEFAULT 0,
    last_movement DATETIME,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    contact_id INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('debt', 'payment')),
    amount NUMERIC NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sales (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    business_id INTEGER NOT NULL,
    description TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    created_at DATETIME NOT NULL,
    FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE
);
`

// SQLiteStore implements Store against a local SQLite file. SQLite has a
// single writer, so write transactions already serialize; beyond that the
// adapter differs from PostgresStore only in placeholders, id retrieval
// and LIKE semantics (SQLite LIKE is case-insensitive by default).
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?)
	`, email, passwordHash, name, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = ?
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

func (s *SQLiteStore) CreateBusiness(ctx context.Context, userID int64, name string) (*models.Business, error) {
	business := &models.Business{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (user_id, name, created_at)
		VALUES (?, ?, ?)
	`, userID, name, business.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	business.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context, userID int64) ([]models.Business, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM businesses
		WHERE user_id = ?
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

func (s *SQLiteStore) GetBusiness(ctx context.Context, id, userID int64) (*models.Business, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM businesses
		WHERE id = ? AND user_id = ?
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

func (s *SQLiteStore) CreateSession(ctx context.Context, token string, userID int64, businessID *int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, business_id, created_at)
		VALUES (?, ?, ?, ?)
	`, token, userID, businessID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	session := &models.Session{Token: token}
	var businessID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT s.user_id, s.business_id, u.name
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
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

func (s *SQLiteStore) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetSessionBusiness(ctx context.Context, token string, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET business_id = ? WHERE token = ?
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

func (s *SQLiteStore) ListContacts(ctx context.Context, businessID int64, kind models.ContactKind, search string) ([]models.Contact, error) {
	query := `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE business_id = ? AND kind = ?
	`
	args := []interface{}{businessID, kind}
	if search != "" {
		query += ` AND (name LIKE ? OR phone LIKE ?)`
		like := "%" + search + "%"
		args = append(args, like, like)
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

func (s *SQLiteStore) GetContact(ctx context.Context, id, businessID int64) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE id = ? AND business_id = ?
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

func (s *SQLiteStore) CreateContact(ctx context.Context, businessID int64, kind models.ContactKind, name, phone string, initialDebt decimal.Decimal) (*models.Contact, error) {
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

	res, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (business_id, kind, name, phone, balance, last_movement, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, businessID, kind, name, phone, initialDebt, lastMovement, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	contact.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// A non-zero seed debt is recorded in the transaction log so the
	// balance stays reconcilable from day one.
	if initialDebt.IsPositive() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (contact_id, kind, amount, note, created_at)
			VALUES (?, ?, ?, ?, ?)
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

func (s *SQLiteStore) UpdateContact(ctx context.Context, id, businessID int64, upd models.ContactUpdateRequest) (*models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, business_id, kind, name, phone, balance, last_movement, created_at
		FROM contacts
		WHERE id = ? AND business_id = ?
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
		UPDATE contacts SET name = ?, phone = ?, balance = ? WHERE id = ?
	`, contact.Name, contact.Phone, contact.Balance, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *SQLiteStore) DeleteContact(ctx context.Context, id, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM contacts WHERE id = ? AND business_id = ?
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

func (s *SQLiteStore) ListTransactions(ctx context.Context, contactID int64) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contact_id, kind, amount, note, created_at
		FROM transactions
		WHERE contact_id = ?
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

func (s *SQLiteStore) CreateTransaction(ctx context.Context, contactID, businessID int64, kind models.TransactionKind, amount decimal.Decimal, note string) (*models.Transaction, decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM contacts
		WHERE id = ? AND business_id = ?
	`, contactID, businessID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, decimal.Zero, models.ErrNotFound
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	now := time.Now()
	txn := &models.Transaction{
		ContactID: contactID,
		Kind:      kind,
		Amount:    amount,
		Note:      note,
		CreatedAt: now,
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (contact_id, kind, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, contactID, kind, amount, note, now)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to create transaction: %w", err)
	}
	txn.ID, err = res.LastInsertId()
	if err != nil {
		return nil, decimal.Zero, err
	}

	newBalance := models.NextBalance(balance, kind, amount)
	_, err = tx.ExecContext(ctx, `
		UPDATE contacts SET balance = ?, last_movement = ? WHERE id = ?
	`, newBalance, now, contactID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}
	return txn, newBalance, nil
}

func (s *SQLiteStore) ContactSummary(ctx context.Context, businessID int64, kind models.ContactKind) (*models.ContactSummary, error) {
	summary := &models.ContactSummary{Kind: kind}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(balance), 0)
		FROM contacts
		WHERE business_id = ? AND kind = ?
	`, businessID, kind).Scan(&summary.Count, &summary.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize contacts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN contacts c ON c.id = t.contact_id
		WHERE c.business_id = ? AND c.kind = ? AND t.kind = ?
	`, businessID, kind, models.TxnKindPayment).Scan(&summary.TotalPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}

	return summary, nil
}

func (s *SQLiteStore) CreateSale(ctx context.Context, businessID int64, description string, amount decimal.Decimal) (*models.Sale, error) {
	sale := &models.Sale{
		BusinessID:  businessID,
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (business_id, description, amount, created_at)
		VALUES (?, ?, ?, ?)
	`, businessID, description, amount, sale.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	sale.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SQLiteStore) ListSales(ctx context.Context, businessID int64, since time.Time, search string) ([]models.Sale, error) {
	query := `
		SELECT id, business_id, description, amount, created_at
		FROM sales
		WHERE business_id = ?
	`
	args := []interface{}{businessID}
	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since)
	}
	if search != "" {
		query += ` AND description LIKE ?`
		args = append(args, "%"+search+"%")
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

func (s *SQLiteStore) DeleteSale(ctx context.Context, id, businessID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sales WHERE id = ? AND business_id = ?
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

func (s *SQLiteStore) SalesSummary(ctx context.Context, businessID int64, since time.Time) (*models.SalesSummary, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM sales
		WHERE business_id = ?
	`
	args := []interface{}{businessID}
	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since)
	}

	summary := &models.SalesSummary{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&summary.Total, &summary.Count); err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return summary, nil
}
