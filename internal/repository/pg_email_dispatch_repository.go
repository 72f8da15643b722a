package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/waitlist/backend/internal/model"
)

// EmailDispatchRepository records outbound email attempts. The sent rows
// back the daily email quota, so the ceiling holds across processes.
type EmailDispatchRepository interface {
	Record(ctx context.Context, d *model.EmailDispatch) error
	CountSentSince(ctx context.Context, since time.Time) (int, error)
	// DeleteBefore removes rows created before cutoff and returns how many went.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PgEmailDispatchRepository is the PostgreSQL implementation of EmailDispatchRepository.
type PgEmailDispatchRepository struct {
	pool *pgxpool.Pool
}

// NewPgEmailDispatchRepository creates a PgEmailDispatchRepository backed by the given pool.
func NewPgEmailDispatchRepository(pool *pgxpool.Pool) *PgEmailDispatchRepository {
	return &PgEmailDispatchRepository{pool: pool}
}

var _ EmailDispatchRepository = (*PgEmailDispatchRepository)(nil)

func (r *PgEmailDispatchRepository) Record(ctx context.Context, d *model.EmailDispatch) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO email_dispatches (kind, recipient, status, provider_id, error)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		d.Kind, d.Recipient, d.Status, d.ProviderID, d.Error,
	).Scan(&d.ID, &d.CreatedAt)
}

func (r *PgEmailDispatchRepository) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM email_dispatches WHERE status = $1 AND created_at >= $2`,
		model.DispatchSent, since).Scan(&n)
	return n, err
}

func (r *PgEmailDispatchRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_dispatches WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
