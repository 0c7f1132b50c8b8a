package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
)

const liabilityColumns = `id, user_id, liability_type, description, total_cents, installment_cents, currency,
	installments_total, installments_paid, frequency, due_date, next_due_date,
	priority_score, interest_rate, remaining_cents, is_completed, created_at, updated_at`

func scanLiability(row interface{ Scan(...any) error }) (*ledger.Liability, error) {
	l := &ledger.Liability{}
	var totalCents, installmentCents, remainingCents int64
	var currency string
	err := row.Scan(&l.ID, &l.UserID, &l.Type, &l.Description, &totalCents, &installmentCents, &currency,
		&l.InstallmentsTotal, &l.InstallmentsPaid, &l.Frequency, &l.DueDate, &l.NextDueDate,
		&l.PriorityScore, &l.InterestRate, &remainingCents, &l.IsCompleted, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.TotalAmount = money.New(totalCents, currency)
	l.InstallmentAmount = money.New(installmentCents, currency)
	l.RemainingAmount = money.New(remainingCents, currency)
	return l, nil
}

// CreateLiability creates a new liability in the database
func (r *Repository) CreateLiability(ctx context.Context, l *ledger.Liability) error {
	query := `
		INSERT INTO finance.liabilities (user_id, liability_type, description, total_cents, installment_cents, currency,
			installments_total, installments_paid, frequency, due_date, next_due_date,
			priority_score, interest_rate, remaining_cents, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		l.UserID, l.Type, l.Description, l.TotalAmount.Cents, l.InstallmentAmount.Cents, l.TotalAmount.Currency,
		l.InstallmentsTotal, l.InstallmentsPaid, l.Frequency, l.DueDate, l.NextDueDate,
		l.PriorityScore, l.InterestRate, l.RemainingAmount.Cents, l.IsCompleted).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create liability: %w", err)
	}
	return nil
}

// UpdateLiability stores the current liability state
func (r *Repository) UpdateLiability(ctx context.Context, l *ledger.Liability) error {
	query := `
		UPDATE finance.liabilities
		SET liability_type = $1, description = $2, total_cents = $3, installment_cents = $4, currency = $5,
			installments_total = $6, installments_paid = $7, frequency = $8, due_date = $9, next_due_date = $10,
			priority_score = $11, interest_rate = $12, remaining_cents = $13, is_completed = $14, updated_at = CURRENT_TIMESTAMP
		WHERE id = $15 AND user_id = $16
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		l.Type, l.Description, l.TotalAmount.Cents, l.InstallmentAmount.Cents, l.TotalAmount.Currency,
		l.InstallmentsTotal, l.InstallmentsPaid, l.Frequency, l.DueDate, l.NextDueDate,
		l.PriorityScore, l.InterestRate, l.RemainingAmount.Cents, l.IsCompleted, l.ID, l.UserID).
		Scan(&l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("liability %d: %w", l.ID, ledger.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}
	return nil
}

// LiabilityByID retrieves one liability owned by the user
func (r *Repository) LiabilityByID(ctx context.Context, userID, id int64) (*ledger.Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM finance.liabilities WHERE id = $1 AND user_id = $2`
	l, err := scanLiability(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("liability %d: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find liability: %w", err)
	}
	return l, nil
}

// ListLiabilities returns every liability owned by the user
func (r *Repository) ListLiabilities(ctx context.Context, userID int64) ([]ledger.Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM finance.liabilities WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	var out []ledger.Liability
	for rows.Next() {
		l, err := scanLiability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// LiabilityTypes returns the distinct liability type labels the user has recorded
func (r *Repository) LiabilityTypes(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT liability_type FROM finance.liabilities WHERE user_id = $1 ORDER BY liability_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liability types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan liability type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SavePayment commits one payment transaction: the liability and the funding
// asset are written in a single database transaction, so either both
// snapshots persist or neither does.
func (r *Repository) SavePayment(ctx context.Context, l *ledger.Liability, a *ledger.Asset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE finance.liabilities
		SET installments_paid = $1, next_due_date = $2, remaining_cents = $3, is_completed = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND user_id = $6`,
		l.InstallmentsPaid, l.NextDueDate, l.RemainingAmount.Cents, l.IsCompleted, l.ID, l.UserID)
	if err != nil {
		return fmt.Errorf("failed to save liability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("liability %d: %w", l.ID, ledger.ErrNotFound)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE finance.assets
		SET value_cents = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND user_id = $3`,
		a.Value.Cents, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %d: %w", a.ID, ledger.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// ReminderItem is one upcoming or overdue installment with its owner's
// contact details, for the reminder job.
type ReminderItem struct {
	Email         string
	Name          string
	LiabilityType string
	NextDueDate   time.Time
	Amount        money.Money
	Overdue       bool
}

// ListDueWithin returns active liabilities due within the given number of
// days, including overdue ones.
func (r *Repository) ListDueWithin(ctx context.Context, days int) ([]ReminderItem, error) {
	query := `
		SELECT u.email, u.name, l.liability_type, l.next_due_date, l.installment_cents, l.remaining_cents, l.currency
		FROM finance.liabilities l
		JOIN finance.users u ON u.id = l.user_id
		WHERE l.is_completed = FALSE
		  AND l.next_due_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY l.next_due_date`
	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list due liabilities: %w", err)
	}
	defer rows.Close()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var out []ReminderItem
	for rows.Next() {
		var it ReminderItem
		var installmentCents, remainingCents int64
		var currency string
		if err := rows.Scan(&it.Email, &it.Name, &it.LiabilityType, &it.NextDueDate, &installmentCents, &remainingCents, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan due liability: %w", err)
		}
		if remainingCents < installmentCents {
			installmentCents = remainingCents
		}
		it.Amount = money.New(installmentCents, currency)
		it.Overdue = it.NextDueDate.Before(today)
		out = append(out, it)
	}
	return out, rows.Err()
}
