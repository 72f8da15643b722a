package storage

import (
	"context"
	"io"
)

// Storage persists generated files such as waitlist export snapshots.
type Storage interface {
	// Save writes data under key and returns where it ended up.
	Save(ctx context.Context, key string, data io.Reader) (location string, err error)
}
