package domain

import (
	"sync"
	"time"

	"habitwatch/internal/modules/stats/dto"
)

// Observation is one classified frame as seen by the tracker. Qualified
// means the class is a tracked habit above the confidence threshold.
type Observation struct {
	Class      string
	Confidence float64
	Qualified  bool
	At         time.Time
}

// Session is one contiguous interval during which a habit stayed detected.
type Session struct {
	Class string
	Start time.Time
	End   time.Time
}

func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Tracker accumulates habit sessions and totals for one run. It is written
// by the pipeline consumer and read by the dashboard tick, so every method
// takes the lock.
//
// Invariant: total habit time == sum of closed session durations + elapsed
// time of the open session, for every interleaving of Observe, CloseIdle
// and Snapshot.
type Tracker struct {
	mu sync.Mutex

	startedAt time.Time

	open            bool
	openClass       string
	openStart       time.Time
	lastQualifiedAt time.Time

	sessionCount    int
	totalDetections int
	totalClosed     time.Duration

	lastClass      string
	lastConfidence float64
}

func NewTracker(startedAt time.Time) *Tracker {
	return &Tracker{startedAt: startedAt}
}

// Observe feeds one observation into the tracker. A qualified observation
// opens a session (counting one detection) or extends the open one; a
// non-qualified observation closes any open session. The closed session,
// if any, is returned for persistence.
func (t *Tracker) Observe(o Observation) (opened bool, closed Session, didClose bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastClass = o.Class
	t.lastConfidence = o.Confidence

	switch {
	case o.Qualified && !t.open:
		t.open = true
		t.openClass = o.Class
		t.openStart = o.At
		t.lastQualifiedAt = o.At
		t.totalDetections++
		t.sessionCount++
		return true, Session{}, false
	case o.Qualified:
		t.lastQualifiedAt = o.At
		return false, Session{}, false
	case t.open:
		return false, t.closeLocked(o.At), true
	default:
		return false, Session{}, false
	}
}

// CloseIdle closes the open session when no qualifying observation arrived
// within the grace window. The orchestrator calls this on its cadence so a
// stalled pipeline cannot leave a session open forever.
func (t *Tracker) CloseIdle(now time.Time, grace time.Duration) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open || now.Sub(t.lastQualifiedAt) < grace {
		return Session{}, false
	}
	// The session ended when the habit was last seen, not when we noticed.
	return t.closeLocked(t.lastQualifiedAt.Add(grace)), true
}

// CloseOpen force-closes the open session at shutdown.
func (t *Tracker) CloseOpen(now time.Time) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return Session{}, false
	}
	return t.closeLocked(now), true
}

func (t *Tracker) closeLocked(end time.Time) Session {
	s := Session{Class: t.openClass, Start: t.openStart, End: end}
	t.totalClosed += s.Duration()
	t.open = false
	t.openClass = ""
	return s
}

// Snapshot returns the current totals, including the elapsed time of any
// open session.
func (t *Tracker) Snapshot(now time.Time) dto.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := dto.Snapshot{
		RunDuration:     now.Sub(t.startedAt),
		TotalDetections: t.totalDetections,
		TotalHabitTime:  t.totalClosed,
		SessionCount:    t.sessionCount,
		Active:          t.open,
		LastClass:       t.lastClass,
		LastConfidence:  t.lastConfidence,
	}
	if t.open {
		snap.CurrentClass = t.openClass
		snap.CurrentElapsed = now.Sub(t.openStart)
		snap.TotalHabitTime += snap.CurrentElapsed
	}
	if closedCount := t.closedCountLocked(); closedCount > 0 {
		snap.AverageSession = t.totalClosed / time.Duration(closedCount)
	}
	if snap.RunDuration > 0 {
		snap.HabitPercent = 100 * float64(snap.TotalHabitTime) / float64(snap.RunDuration)
		snap.PerMinute = float64(snap.TotalDetections) / snap.RunDuration.Minutes()
	}
	return snap
}

func (t *Tracker) closedCountLocked() int {
	if t.open {
		return t.sessionCount - 1
	}
	return t.sessionCount
}
