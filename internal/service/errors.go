package service

import (
	"errors"
	"fmt"
)

// ErrStorage wraps persistence failures that are not a known conflict.
// Handlers map it to a generic 500; the cause is only logged.
var ErrStorage = errors.New("storage failure")

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

var errNoStorage = errors.New("no snapshot storage configured")
