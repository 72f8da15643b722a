package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/waitlist/backend/internal/model"
)

// WaitlistRepository defines the persistence interface for waitlist signups.
type WaitlistRepository interface {
	// Create inserts entry and fills ID and CreatedAt. A unique violation
	// comes back as *ConflictError.
	Create(ctx context.Context, entry *model.WaitlistEntry) error
	// Each streams every entry ordered by id. Returning an error from fn stops iteration.
	Each(ctx context.Context, fn func(*model.WaitlistEntry) error) error
	Count(ctx context.Context) (int, error)
}

// PgWaitlistRepository is the PostgreSQL implementation of WaitlistRepository.
type PgWaitlistRepository struct {
	pool *pgxpool.Pool
}

// NewPgWaitlistRepository creates a PgWaitlistRepository backed by the given pool.
func NewPgWaitlistRepository(pool *pgxpool.Pool) *PgWaitlistRepository {
	return &PgWaitlistRepository{pool: pool}
}

var _ WaitlistRepository = (*PgWaitlistRepository)(nil)

// Create runs the insert in its own transaction so a failed write leaves nothing behind.
func (r *PgWaitlistRepository) Create(ctx context.Context, entry *model.WaitlistEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO waitlist (first_name, last_name, email, phone, source)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		entry.FirstName, entry.LastName, entry.Email, entry.Phone, entry.Source,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return waitlistConflict(err)
	}

	return waitlistConflict(tx.Commit(ctx))
}

// Each streams rows in id order without buffering the whole table.
func (r *PgWaitlistRepository) Each(ctx context.Context, fn func(*model.WaitlistEntry) error) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, email, phone, source, created_at
		 FROM waitlist ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e model.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Source, &e.CreatedAt); err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of waitlist rows.
func (r *PgWaitlistRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM waitlist`).Scan(&n)
	return n, err
}
