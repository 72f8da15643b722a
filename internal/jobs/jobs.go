package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/service"
)

// PruneDispatches deletes email dispatch rows older than Retention.
type PruneDispatches struct {
	Repo      repository.EmailDispatchRepository
	Retention time.Duration
	now       func() time.Time
}

func (j *PruneDispatches) Name() string { return "prune-dispatches" }

func (j *PruneDispatches) Run(ctx context.Context) error {
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	n, err := j.Repo.DeleteBefore(ctx, now().Add(-j.Retention))
	if err != nil {
		return err
	}
	slog.Info("pruned email dispatches", "deleted", n)
	return nil
}

// ExportSnapshot writes the waitlist CSV to storage.
type ExportSnapshot struct {
	Export service.ExportService
}

func (j *ExportSnapshot) Name() string { return "export-snapshot" }

func (j *ExportSnapshot) Run(ctx context.Context) error {
	loc, err := j.Export.Snapshot(ctx)
	if err != nil {
		return err
	}
	slog.Info("waitlist snapshot written", "location", loc)
	return nil
}
