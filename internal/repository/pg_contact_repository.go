package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/waitlist/backend/internal/model"
)

// WindowCounter counts contact messages created at or after since.
type WindowCounter interface {
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error)
}

// Guard runs inside the insert transaction before the row is written.
// Returning an error aborts the insert and is passed through unchanged.
type Guard func(ctx context.Context, counter WindowCounter) error

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	WindowCounter

	// Save inserts msg and populates ID and CreatedAt.
	Save(ctx context.Context, msg *model.ContactMessage) error
	// SaveGuarded serializes submissions for the same email and IP with
	// transaction-scoped advisory locks, runs guard, then inserts.
	SaveGuarded(ctx context.Context, msg *model.ContactMessage, guard Guard) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	UpdateFlags(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error)
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

const contactSelectCols = `id, name, email, subject, message, ip_address, user_agent, is_spam, is_read, created_at`

func scanContact(scan func(...any) error) (*model.ContactMessage, error) {
	var m model.ContactMessage
	if err := scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IPAddress, &m.UserAgent, &m.IsSpam, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save inserts a new contact_messages row. Flags always start false.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.SaveGuarded(ctx, msg, nil)
}

// SaveGuarded inserts msg inside one transaction. When guard is non-nil the
// transaction first takes advisory locks on the lower-cased email and the
// IP, so concurrent submissions from the same sender queue up behind each
// other and guard sees every committed row.
func (r *PgContactRepository) SaveGuarded(ctx context.Context, msg *model.ContactMessage, guard Guard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if guard != nil {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext('contact:email:' || lower($1)))`, msg.Email); err != nil {
			return err
		}
		if msg.IPAddress != nil {
			if _, err := tx.Exec(ctx,
				`SELECT pg_advisory_xact_lock(hashtext('contact:ip:' || $1))`, *msg.IPAddress); err != nil {
				return err
			}
		}
		if err := guard(ctx, windowCounter{q: tx}); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, subject, message, ip_address, user_agent, is_spam, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE)
		 RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Message, msg.IPAddress, msg.UserAgent,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}
	msg.IsSpam, msg.IsRead = false, false

	return tx.Commit(ctx)
}

// CountByIPSince counts messages from ip created at or after since.
func (r *PgContactRepository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	return windowCounter{q: r.pool}.CountByIPSince(ctx, ip, since)
}

// CountByEmailSince counts messages from email (case-insensitive) created at or after since.
func (r *PgContactRepository) CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error) {
	return windowCounter{q: r.pool}.CountByEmailSince(ctx, email, since)
}

// List returns contact messages filtered by status and paginated by limit/offset.
// Status "" or "all" returns all messages.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	var conditions []string
	switch strings.TrimSpace(opts.Status) {
	case "unread":
		conditions = append(conditions, "is_read = FALSE", "is_spam = FALSE")
	case "read":
		conditions = append(conditions, "is_read = TRUE")
	case "spam":
		conditions = append(conditions, "is_spam = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + contactSelectCols + `
	          FROM contact_messages ` + where + `
	          ORDER BY created_at DESC, id DESC
	          LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateFlags sets is_read and/or is_spam and returns the updated row.
func (r *PgContactRepository) UpdateFlags(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contact_messages
		 SET is_read = COALESCE($2, is_read),
		     is_spam = COALESCE($3, is_spam)
		 WHERE id = $1
		 RETURNING `+contactSelectCols,
		id, upd.IsRead, upd.IsSpam)
	m, err := scanContact(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// windowCounter runs the rate-limit counts on a pool or a transaction.
type windowCounter struct {
	q querier
}

func (c windowCounter) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	err := c.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE ip_address = $1 AND created_at >= $2`,
		ip, since).Scan(&n)
	return n, err
}

func (c windowCounter) CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := c.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE lower(email) = lower($1) AND created_at >= $2`,
		email, since).Scan(&n)
	return n, err
}

// ParseContactID parses a path id. Ids are positive integers.
func ParseContactID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var _ querier = (pgx.Tx)(nil)
