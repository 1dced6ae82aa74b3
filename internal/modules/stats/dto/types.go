package dto

import "time"

// Snapshot is a read-only view of the tracker for the dashboard and the
// shutdown summary.
type Snapshot struct {
	RunDuration     time.Duration
	TotalDetections int
	TotalHabitTime  time.Duration
	SessionCount    int
	AverageSession  time.Duration
	HabitPercent    float64
	PerMinute       float64

	Active         bool
	CurrentClass   string
	CurrentElapsed time.Duration

	LastClass      string
	LastConfidence float64
}
