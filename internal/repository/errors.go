package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Unique constraint names on the waitlist table. See migrations/.
const (
	ConstraintWaitlistEmail = "uq_waitlist_email_lower"
	ConstraintWaitlistPhone = "uq_waitlist_phone"
)

// ConflictError reports which unique fields an insert collided on.
type ConflictError struct {
	Fields     []string
	Constraint string
}

func (e *ConflictError) Error() string {
	return "duplicate " + strings.Join(e.Fields, " and ")
}

// waitlistConflict maps a unique violation on the waitlist table to a
// ConflictError naming the colliding field. An unrecognized constraint
// names both fields. Any other error is returned unchanged.
func waitlistConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case ConstraintWaitlistEmail:
		return &ConflictError{Fields: []string{"email"}, Constraint: pgErr.ConstraintName}
	case ConstraintWaitlistPhone:
		return &ConflictError{Fields: []string{"phone"}, Constraint: pgErr.ConstraintName}
	default:
		return &ConflictError{Fields: []string{"email", "phone"}, Constraint: pgErr.ConstraintName}
	}
}

// notFound converts pgx.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
