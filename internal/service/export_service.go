package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/storage"
)

// ExportService renders the waitlist as CSV.
type ExportService interface {
	// WriteWaitlistCSV streams a header row plus one row per entry in id
	// order and returns the number of data rows written.
	WriteWaitlistCSV(ctx context.Context, w io.Writer) (int, error)

	// Snapshot saves the CSV to storage and returns its location.
	Snapshot(ctx context.Context) (string, error)
}

type exportServiceImpl struct {
	repo  repository.WaitlistRepository
	store storage.Storage
	now   func() time.Time
}

// NewExportService creates an ExportService. store may be nil when
// snapshots are not used.
func NewExportService(repo repository.WaitlistRepository, store storage.Storage) ExportService {
	return &exportServiceImpl{repo: repo, store: store, now: time.Now}
}

func (s *exportServiceImpl) WriteWaitlistCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.WaitlistCSVHeader); err != nil {
		return 0, err
	}

	rows := 0
	err := s.repo.Each(ctx, func(e *model.WaitlistEntry) error {
		source := ""
		if e.Source != nil {
			source = *e.Source
		}
		rows++
		return cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.FirstName,
			e.LastName,
			e.Email,
			e.Phone,
			source,
			e.CreatedAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return rows, storageError("export waitlist", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, storageError("export waitlist", err)
	}
	return rows, nil
}

func (s *exportServiceImpl) Snapshot(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", storageError("snapshot waitlist", errNoStorage)
	}
	var buf bytes.Buffer
	if _, err := s.WriteWaitlistCSV(ctx, &buf); err != nil {
		return "", err
	}
	key := "waitlist-" + s.now().Format("20060102-150405") + ".csv"
	loc, err := s.store.Save(ctx, key, &buf)
	if err != nil {
		return "", storageError("snapshot waitlist", err)
	}
	return loc, nil
}
