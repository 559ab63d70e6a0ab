// Package repo contains all database access logic for the Staybook BFF.
// No business logic lives here — only SQL and type mapping. The cart table
// is the server-side stand-in for the browser's per-listing storage: one
// JSONB record per (visitor, house) scope, rewritten wholesale on every
// mutating cart operation.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"staybook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CartRepo persists cart records. The cart store depends on this through
// its own Persister interface; persistence failures are the store's problem
// to swallow, so methods here report errors honestly.
type CartRepo interface {
	// Load reads the stored activity list for one scope.
	// Returns domain.ErrNotFound when no record exists.
	Load(ctx context.Context, visitor uuid.UUID, houseID int64) ([]domain.Activity, error)

	// Save upserts the full activity list for one scope.
	Save(ctx context.Context, visitor uuid.UUID, houseID int64, activities []domain.Activity) error

	// PruneStale deletes records untouched since the cutoff and returns the
	// number removed.
	PruneStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// pgCartRepo is the Postgres implementation of CartRepo.
type pgCartRepo struct {
	db db
}

// NewCartRepo constructs a CartRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCartRepo(db db) CartRepo {
	return &pgCartRepo{db: db}
}

// Load reads one cart record. A record whose JSON does not decode is treated
// as corrupt and reported as an error; callers fall back to an empty cart.
func (r *pgCartRepo) Load(ctx context.Context, visitor uuid.UUID, houseID int64) ([]domain.Activity, error) {
	const q = `
		SELECT activities
		FROM carts
		WHERE visitor_id = @visitor_id AND house_id = @house_id`

	var raw []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"visitor_id": visitor,
		"house_id":   houseID,
	}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.CartRepo.Load: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.CartRepo.Load: %w", err)
	}

	var activities []domain.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, fmt.Errorf("repo.CartRepo.Load: decode: %w", err)
	}
	return activities, nil
}

// Save upserts the full serialized collection for one scope.
func (r *pgCartRepo) Save(ctx context.Context, visitor uuid.UUID, houseID int64, activities []domain.Activity) error {
	if activities == nil {
		activities = []domain.Activity{}
	}
	raw, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("repo.CartRepo.Save: encode: %w", err)
	}

	const q = `
		INSERT INTO carts (visitor_id, house_id, activities)
		VALUES (@visitor_id, @house_id, @activities)
		ON CONFLICT (visitor_id, house_id)
		DO UPDATE SET activities = EXCLUDED.activities, updated_at = now()`

	_, err = r.db.Exec(ctx, q, pgx.NamedArgs{
		"visitor_id": visitor,
		"house_id":   houseID,
		"activities": raw,
	})
	if err != nil {
		return fmt.Errorf("repo.CartRepo.Save: %w", err)
	}
	return nil
}

// PruneStale removes cart records last written before the cutoff.
func (r *pgCartRepo) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM carts WHERE updated_at < @cutoff`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.CartRepo.PruneStale: %w", err)
	}
	return tag.RowsAffected(), nil
}
