package domain_test

import (
	"testing"
	"time"

	"habitwatch/internal/modules/stats/domain"
)

var t0 = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func qualified(sec int) domain.Observation {
	return domain.Observation{Class: "chomping", Confidence: 0.9, Qualified: true, At: at(time.Duration(sec) * time.Second)}
}

func clear(sec int) domain.Observation {
	return domain.Observation{Class: "none", Confidence: 0.2, At: at(time.Duration(sec) * time.Second)}
}

func TestObserveOpensAndClosesSessions(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)

	opened, _, didClose := tr.Observe(qualified(1))
	if !opened || didClose {
		t.Fatalf("first qualified observation must open: opened=%v closed=%v", opened, didClose)
	}

	opened, _, didClose = tr.Observe(qualified(3))
	if opened || didClose {
		t.Fatalf("continuation must not open or close: opened=%v closed=%v", opened, didClose)
	}

	opened, closed, didClose := tr.Observe(clear(5))
	if opened || !didClose {
		t.Fatalf("clear frame must close: opened=%v closed=%v", opened, didClose)
	}
	if closed.Class != "chomping" || closed.Duration() != 4*time.Second {
		t.Errorf("closed session = %+v (duration %v)", closed, closed.Duration())
	}

	snap := tr.Snapshot(at(10 * time.Second))
	if snap.TotalDetections != 1 {
		t.Errorf("total detections = %d, want 1", snap.TotalDetections)
	}
	if snap.SessionCount != 1 {
		t.Errorf("session count = %d, want 1", snap.SessionCount)
	}
	if snap.TotalHabitTime != 4*time.Second {
		t.Errorf("total habit time = %v, want 4s", snap.TotalHabitTime)
	}
	if snap.Active {
		t.Error("no session must be open")
	}
}

func TestLowConfidenceNeverOpens(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)

	// Threshold filtering happens upstream; an unqualified observation
	// must leave the tracker untouched regardless of class.
	opened, _, didClose := tr.Observe(domain.Observation{Class: "chomping", Confidence: 0.4, At: at(time.Second)})
	if opened || didClose {
		t.Fatal("unqualified observation must not open a session")
	}
	snap := tr.Snapshot(at(2 * time.Second))
	if snap.TotalDetections != 0 || snap.Active {
		t.Errorf("snapshot = %+v, want empty", snap)
	}
	if snap.LastConfidence != 0.4 {
		t.Errorf("last confidence = %v, want 0.4", snap.LastConfidence)
	}
}

func TestTotalHabitTimeIncludesOpenSession(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)

	tr.Observe(qualified(1))
	tr.Observe(clear(4)) // closed: 3s
	tr.Observe(qualified(10))

	snap := tr.Snapshot(at(12 * time.Second))
	if !snap.Active {
		t.Fatal("second session must be open")
	}
	if snap.CurrentElapsed != 2*time.Second {
		t.Errorf("current elapsed = %v, want 2s", snap.CurrentElapsed)
	}
	// Invariant: closed durations plus open elapsed.
	if snap.TotalHabitTime != 5*time.Second {
		t.Errorf("total habit time = %v, want 5s", snap.TotalHabitTime)
	}
	if snap.SessionCount != 2 || snap.TotalDetections != 2 {
		t.Errorf("counts = %d sessions, %d detections", snap.SessionCount, snap.TotalDetections)
	}
	// Average covers closed sessions only while one is open.
	if snap.AverageSession != 3*time.Second {
		t.Errorf("average session = %v, want 3s", snap.AverageSession)
	}
}

func TestInvariantAcrossSequences(t *testing.T) {
	t.Parallel()
	sequences := [][]domain.Observation{
		{qualified(1), qualified(2), clear(3), qualified(5), clear(9)},
		{clear(1), clear(2)},
		{qualified(1), clear(2), qualified(3), clear(4), qualified(5), clear(6)},
		{qualified(1)},
		{qualified(1), qualified(2), qualified(3)},
	}
	for i, seq := range sequences {
		tr := domain.NewTracker(t0)
		var closedTotal time.Duration
		for _, o := range seq {
			_, closed, didClose := tr.Observe(o)
			if didClose {
				closedTotal += closed.Duration()
			}
		}
		now := at(20 * time.Second)
		snap := tr.Snapshot(now)
		want := closedTotal + snap.CurrentElapsed
		if snap.TotalHabitTime != want {
			t.Errorf("sequence %d: total habit time = %v, want %v", i, snap.TotalHabitTime, want)
		}
	}
}

func TestCloseIdle(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)
	grace := 2 * time.Second

	tr.Observe(qualified(1))

	if _, ok := tr.CloseIdle(at(2*time.Second), grace); ok {
		t.Fatal("must not close inside the grace window")
	}

	closed, ok := tr.CloseIdle(at(4*time.Second), grace)
	if !ok {
		t.Fatal("must close once the grace window has passed")
	}
	// Session ends at last sighting plus grace, not at detection time.
	if closed.End != at(3*time.Second) {
		t.Errorf("end = %v, want %v", closed.End, at(3*time.Second))
	}

	if _, ok := tr.CloseIdle(at(10*time.Second), grace); ok {
		t.Fatal("closing twice must be a no-op")
	}
}

func TestCloseOpenAtShutdown(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)

	if _, ok := tr.CloseOpen(at(time.Second)); ok {
		t.Fatal("nothing to close on a fresh tracker")
	}

	tr.Observe(qualified(1))
	closed, ok := tr.CloseOpen(at(6 * time.Second))
	if !ok || closed.Duration() != 5*time.Second {
		t.Fatalf("close open = %+v ok=%v", closed, ok)
	}

	snap := tr.Snapshot(at(6 * time.Second))
	if snap.Active || snap.TotalHabitTime != 5*time.Second {
		t.Errorf("snapshot after shutdown close = %+v", snap)
	}
}

func TestSnapshotRates(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)
	tr.Observe(qualified(0))
	tr.Observe(clear(30))

	snap := tr.Snapshot(at(60 * time.Second))
	if snap.PerMinute != 1 {
		t.Errorf("per minute = %v, want 1", snap.PerMinute)
	}
	if snap.HabitPercent != 50 {
		t.Errorf("habit percent = %v, want 50", snap.HabitPercent)
	}
}

func TestAverageZeroWithoutSessions(t *testing.T) {
	t.Parallel()
	tr := domain.NewTracker(t0)
	snap := tr.Snapshot(at(5 * time.Second))
	if snap.AverageSession != 0 {
		t.Errorf("average = %v, want 0", snap.AverageSession)
	}
}
