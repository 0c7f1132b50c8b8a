package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
)

// CreateAsset creates a new asset in the database
func (r *Repository) CreateAsset(ctx context.Context, a *ledger.Asset) error {
	query := `
		INSERT INTO finance.assets (user_id, asset_type, description, value_cents, currency, is_liquid, date_received, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.UserID, a.Type, a.Description, a.Value.Cents, a.Value.Currency, a.IsLiquid, a.DateReceived).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// UpdateAsset stores the current asset state
func (r *Repository) UpdateAsset(ctx context.Context, a *ledger.Asset) error {
	query := `
		UPDATE finance.assets
		SET asset_type = $1, description = $2, value_cents = $3, currency = $4, is_liquid = $5, date_received = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.Type, a.Description, a.Value.Cents, a.Value.Currency, a.IsLiquid, a.DateReceived, a.ID, a.UserID).
		Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("asset %d: %w", a.ID, ledger.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return nil
}

const assetColumns = `id, user_id, asset_type, description, value_cents, currency, is_liquid, date_received, created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }) (*ledger.Asset, error) {
	a := &ledger.Asset{}
	var cents int64
	var currency string
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Description, &cents, &currency,
		&a.IsLiquid, &a.DateReceived, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Value = money.New(cents, currency)
	return a, nil
}

// AssetByID retrieves one asset owned by the user
func (r *Repository) AssetByID(ctx context.Context, userID, id int64) (*ledger.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM finance.assets WHERE id = $1 AND user_id = $2`
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %d: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}
	return a, nil
}

// AssetByType retrieves the user's asset with the given type label. Payment
// requests select their funding account this way.
func (r *Repository) AssetByType(ctx context.Context, userID int64, assetType string) (*ledger.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM finance.assets WHERE user_id = $1 AND asset_type = $2 ORDER BY id LIMIT 1`
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, userID, assetType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %q: %w", assetType, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}
	return a, nil
}

// ListAssets returns every asset owned by the user
func (r *Repository) ListAssets(ctx context.Context, userID int64) ([]ledger.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM finance.assets WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var out []ledger.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// AssetTypes returns the distinct asset type labels the user has recorded
func (r *Repository) AssetTypes(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT asset_type FROM finance.assets WHERE user_id = $1 ORDER BY asset_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan asset type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTentativeAsset creates a forecast entry
func (r *Repository) CreateTentativeAsset(ctx context.Context, t *ledger.TentativeAsset) error {
	query := `
		INSERT INTO finance.tentative_assets (user_id, asset_type, description, amount_cents, currency, expected_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Type, t.Description, t.Amount.Cents, t.Amount.Currency, t.ExpectedDate).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tentative asset: %w", err)
	}
	return nil
}

// ListTentativeAssets returns the user's forecast entries
func (r *Repository) ListTentativeAssets(ctx context.Context, userID int64) ([]ledger.TentativeAsset, error) {
	query := `
		SELECT id, user_id, asset_type, description, amount_cents, currency, expected_date, created_at
		FROM finance.tentative_assets WHERE user_id = $1 ORDER BY expected_date`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tentative assets: %w", err)
	}
	defer rows.Close()

	var out []ledger.TentativeAsset
	for rows.Next() {
		var t ledger.TentativeAsset
		var cents int64
		var currency string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Description, &cents, &currency, &t.ExpectedDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tentative asset: %w", err)
		}
		t.Amount = money.New(cents, currency)
		out = append(out, t)
	}
	return out, rows.Err()
}
