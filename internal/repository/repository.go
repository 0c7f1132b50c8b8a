package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO finance.users (username, email, name, password_hash, secret_key_hash, currency_pref, monthly_salary_cents, other_income_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Name, user.PasswordHash, user.SecretKeyHash,
		user.CurrencyPref, user.MonthlySalary, user.OtherIncome).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByUsername retrieves a user by username
func (r *Repository) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.userBy(ctx, "username", username)
}

// UserByEmail retrieves a user by email
func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, "email", email)
}

func (r *Repository) userBy(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	query := fmt.Sprintf(`
		SELECT id, username, email, name, password_hash, secret_key_hash, currency_pref, monthly_salary_cents, other_income_cents, created_at, updated_at
		FROM finance.users
		WHERE %s = $1`, column)
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.PasswordHash, &user.SecretKeyHash,
			&user.CurrencyPref, &user.MonthlySalary, &user.OtherIncome, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UserByID retrieves a user by id
func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, name, password_hash, secret_key_hash, currency_pref, monthly_salary_cents, other_income_cents, created_at, updated_at
		FROM finance.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.PasswordHash, &user.SecretKeyHash,
			&user.CurrencyPref, &user.MonthlySalary, &user.OtherIncome, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfile stores the editable profile fields
func (r *Repository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE finance.users
		SET name = $1, currency_pref = $2, monthly_salary_cents = $3, other_income_cents = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.CurrencyPref, user.MonthlySalary, user.OtherIncome, user.ID).
		Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password and secret key hashes
func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash, secretKeyHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE finance.users
		SET password_hash = $1, secret_key_hash = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`, passwordHash, secretKeyHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user: %w", ledger.ErrNotFound)
	}
	return nil
}
