package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"habitwatch/internal/modules/stats/domain"
	"habitwatch/internal/modules/stats/dto"
	statsout "habitwatch/internal/modules/stats/port/out"
	"habitwatch/internal/platform/clock"
)

// Service owns the tracker and keeps session persistence out of the
// domain. The history store is best-effort: failures are logged and
// monitoring continues.
type Service struct {
	clock   clock.Clock
	tracker *domain.Tracker
	store   statsout.HistoryStore
	log     *log.Logger
	runID   string
	grace   time.Duration
}

func New(clk clock.Clock, store statsout.HistoryStore, logger *log.Logger, runID string, grace time.Duration) *Service {
	return &Service{
		clock:   clk,
		tracker: domain.NewTracker(clk.Now()),
		store:   store,
		log:     logger,
		runID:   runID,
		grace:   grace,
	}
}

// Record feeds one classified frame into the tracker and reports whether
// it opened a new habit session.
func (s *Service) Record(ctx context.Context, class string, confidence float64, qualified bool) bool {
	opened, closed, didClose := s.tracker.Observe(domain.Observation{
		Class:      class,
		Confidence: confidence,
		Qualified:  qualified,
		At:         s.clock.Now(),
	})
	if didClose {
		s.persistSession(ctx, closed)
	}
	return opened
}

// Tick closes the open session when the habit has not been seen within
// the grace window.
func (s *Service) Tick(ctx context.Context) {
	if closed, ok := s.tracker.CloseIdle(s.clock.Now(), s.grace); ok {
		s.log.Info("habit session ended", "class", closed.Class, "duration", closed.Duration())
		s.persistSession(ctx, closed)
	}
}

// Snapshot returns current totals for the dashboard.
func (s *Service) Snapshot() dto.Snapshot {
	return s.tracker.Snapshot(s.clock.Now())
}

// Finish closes any open session, persists the run summary and returns
// the final snapshot.
func (s *Service) Finish(ctx context.Context, startedAt time.Time) dto.Snapshot {
	now := s.clock.Now()
	if closed, ok := s.tracker.CloseOpen(now); ok {
		s.log.Info("habit session ended", "class", closed.Class, "duration", closed.Duration())
		s.persistSession(ctx, closed)
	}
	snap := s.tracker.Snapshot(now)
	if s.store != nil {
		if err := s.store.SaveRunSummary(ctx, s.runID, snap, startedAt, now); err != nil {
			s.log.Warn("persist run summary", "err", err)
		}
	}
	return snap
}

func (s *Service) persistSession(ctx context.Context, session domain.Session) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSession(ctx, s.runID, session); err != nil {
		s.log.Warn("persist habit session", "err", err)
	}
}
