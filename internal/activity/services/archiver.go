package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"go-campwatch/internal/activity/models"
)

// Archiver periodically recomputes probability/classification for every
// live session, expires idle ones, and hands camp-family expirations to the
// Repository. It is driven by robfig/cron with seconds
// precision, the same pattern internal/scheduler uses for sub-minute task
// schedules.
type Archiver struct {
	store       *Store
	probability *ProbabilityEngine
	repo        *Repository
	campTimeout time.Duration
	roamTimeout time.Duration
	cron        *cron.Cron
	onSnapshot  func()
}

// NewArchiver builds an archiver. onSnapshot is invoked whenever the scan
// finds at least one changed or expired session (emits a snapshot to
// subscribers only when ... changed").
func NewArchiver(store *Store, probability *ProbabilityEngine, repo *Repository, campTimeout, roamTimeout time.Duration, onSnapshot func()) *Archiver {
	return &Archiver{
		store:       store,
		probability: probability,
		repo:        repo,
		campTimeout: campTimeout,
		roamTimeout: roamTimeout,
		cron:        cron.New(cron.WithSeconds()),
		onSnapshot:  onSnapshot,
	}
}

// Start schedules the scan at the given cadence (nominal 30s) and begins
// running it.
func (a *Archiver) Start(ctx context.Context, interval time.Duration) error {
	spec := cronSpecForInterval(interval)
	_, err := a.cron.AddFunc(spec, func() { a.scan(ctx) })
	if err != nil {
		return err
	}
	a.cron.Start()
	return nil
}

// Stop halts the cron scheduler and waits for an in-flight scan to finish.
func (a *Archiver) Stop() {
	stopCtx := a.cron.Stop()
	<-stopCtx.Done()
}

// cronSpecForInterval renders a seconds-precision cron expression for
// sub-minute intervals; for 30s (the nominal default) this is "*/30 * * * * *".
func cronSpecForInterval(interval time.Duration) string {
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 30
	}
	if seconds >= 60 {
		minutes := seconds / 60
		return "0 */" + itoa(minutes) + " * * * *"
	}
	return "*/" + itoa(seconds) + " * * * * *"
}

func itoa(n int) string {
	if n <= 0 {
		return "1"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// scan runs one Expiry/Archiver tick: recompute, then expire, then archive.
func (a *Archiver) scan(ctx context.Context) {
	now := time.Now()

	changed := a.store.Tick(a.probability, now)

	expired := a.store.PeekExpired(func(s *models.Session) bool {
		idle := now.Sub(s.LastEventTime)
		timeout := a.roamTimeout
		if s.Classification.IsCampFamily() {
			timeout = a.campTimeout
		}
		return idle > timeout
	})

	removable := make([]string, 0, len(expired))
	for _, s := range expired {
		needsArchive := s.SeedKind == models.SeedKindCamp && s.Classification.IsCampFamily()
		if !needsArchive {
			removable = append(removable, s.ID)
			continue
		}
		rec := ToArchivedSession(s, a.campTimeout)
		if err := a.repo.ArchiveSession(ctx, rec); err != nil {
			slog.Error("failed to archive expired session, will retry next scan", "session_id", s.ID, "error", err)
			continue
		}
		slog.Info("archived expired session", "session_id", s.ID, "classification", s.Classification)
		removable = append(removable, s.ID)
	}
	a.store.Remove(removable)

	if (changed > 0 || len(removable) > 0) && a.onSnapshot != nil {
		a.onSnapshot()
	}
}
