package statsout

import (
	"context"
	"time"

	"habitwatch/internal/modules/stats/domain"
	"habitwatch/internal/modules/stats/dto"
)

// HistoryStore persists habit sessions and run summaries across runs.
// Persistence failures are reported but never abort monitoring.
type HistoryStore interface {
	SaveSession(ctx context.Context, runID string, s domain.Session) error
	SaveRunSummary(ctx context.Context, runID string, snap dto.Snapshot, startedAt, endedAt time.Time) error
	SessionCount(ctx context.Context) (int, error)
	Close() error
}
