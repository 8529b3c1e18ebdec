// Package purge hard-deletes archived meetings once they age past the
// retention window. Archiving is the user-facing delete; this runner is
// the eventual cleanup behind it.
package purge

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

const (
	// DefaultSchedule runs the sweep every night at 03:30.
	DefaultSchedule = "30 3 * * *"
	// DefaultRetention keeps archived meetings for 30 days before the
	// hard delete.
	DefaultRetention = 30 * 24 * time.Hour
)

// Store is the subset of store operations the runner needs.
type Store interface {
	ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.Meeting, error)
	DeleteMeeting(ctx context.Context, delete *store.DeleteMeeting) error
}

type Runner struct {
	store     Store
	cron      *cron.Cron
	schedule  string
	retention time.Duration

	// now is swapped in tests for deterministic cutoffs.
	now func() time.Time
}

// NewRunner creates a purge runner with the default schedule and retention.
func NewRunner(st Store) *Runner {
	return &Runner{
		store:     st,
		cron:      cron.New(),
		schedule:  DefaultSchedule,
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// Start registers the cron entry and runs one sweep immediately so a
// long-stopped instance catches up on startup.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.RunOnce(ctx)
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.RunOnce(ctx)
	return nil
}

// Stop halts the cron scheduler and waits for a running sweep to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	slog.Info("purge runner stopped")
}

// RunOnce performs a single purge sweep.
func (r *Runner) RunOnce(ctx context.Context) {
	archived := store.Archived
	meetings, err := r.store.ListMeetings(ctx, &store.FindMeeting{RowStatus: &archived})
	if err != nil {
		slog.Error("failed to list archived meetings", "error", err)
		return
	}

	cutoff := r.now().Add(-r.retention).Unix()
	purged := 0
	for _, m := range meetings {
		if m.UpdatedTs >= cutoff {
			continue
		}
		if err := r.store.DeleteMeeting(ctx, &store.DeleteMeeting{ID: m.ID}); err != nil {
			slog.Error("failed to purge meeting", "meeting_id", m.ID, "error", err)
			continue
		}
		purged++
	}

	if purged > 0 {
		slog.Info("purged archived meetings", "count", purged)
	}
}
