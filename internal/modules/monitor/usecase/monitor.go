package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	monitordto "habitwatch/internal/modules/monitor/dto"
	statsdto "habitwatch/internal/modules/stats/dto"
	statsservice "habitwatch/internal/modules/stats/service"
	workflowout "habitwatch/internal/modules/workflow/port/out"
	"habitwatch/internal/platform/clock"
	"habitwatch/internal/platform/config"
	apperrors "habitwatch/internal/platform/errors"
	"habitwatch/internal/platform/habits"
)

// State is the orchestrator lifecycle. Stopped is terminal.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Notifier is the slice of the alert service the orchestrator needs.
type Notifier interface {
	Warn(ctx context.Context, class string) bool
	SelfTest(ctx context.Context) error
}

// Interactor wires the pipeline events into the statistics tracker and
// the audio notifier, and owns the pipeline lifecycle.
type Interactor struct {
	settings config.Settings
	catalog  habits.Catalog
	pipeline workflowout.Pipeline
	stats    *statsservice.Service
	notifier Notifier
	clock    clock.Clock
	log      *log.Logger

	state atomic.Int32
}

func NewInteractor(
	settings config.Settings,
	catalog habits.Catalog,
	pipeline workflowout.Pipeline,
	stats *statsservice.Service,
	notifier Notifier,
	clk clock.Clock,
	logger *log.Logger,
) *Interactor {
	return &Interactor{
		settings: settings,
		catalog:  catalog,
		pipeline: pipeline,
		stats:    stats,
		notifier: notifier,
		clock:    clk,
		log:      logger,
	}
}

func (i *Interactor) State() State {
	return State(i.state.Load())
}

// Snapshot exposes current statistics for the dashboard.
func (i *Interactor) Snapshot() statsdto.Snapshot {
	return i.stats.Snapshot()
}

// Validate runs the setup checks. Settings and pipeline reachability are
// fatal; the audio check is informational because playback degrades to a
// terminal bell at runtime.
func (i *Interactor) Validate(ctx context.Context) []monitordto.Check {
	checks := make([]monitordto.Check, 0, 3)

	if err := i.settings.Validate(); err != nil {
		checks = append(checks, monitordto.Check{Name: "Settings", Fatal: true, Message: err.Error()})
	} else {
		checks = append(checks, monitordto.Check{Name: "Settings", OK: true, Message: "required settings present"})
	}

	if err := i.notifier.SelfTest(ctx); err != nil {
		checks = append(checks, monitordto.Check{Name: "Audio System", Message: err.Error()})
	} else {
		checks = append(checks, monitordto.Check{Name: "Audio System", OK: true, Message: "audio system working"})
	}

	if err := i.pipeline.Probe(ctx); err != nil {
		checks = append(checks, monitordto.Check{Name: "Camera & Workflow", Fatal: true, Message: err.Error()})
	} else {
		checks = append(checks, monitordto.Check{Name: "Camera & Workflow", OK: true, Message: "camera and workflow reachable"})
	}
	return checks
}

// Run drives the full lifecycle: Validating, Running, Stopped. It returns
// the final snapshot for the shutdown summary. Cancellation via ctx is a
// clean stop, not an error.
func (i *Interactor) Run(ctx context.Context, skipValidation bool) (statsdto.Snapshot, error) {
	startedAt := i.clock.Now()

	if skipValidation {
		i.log.Warn("setup validation skipped")
	} else {
		i.state.Store(int32(StateValidating))
		if err := i.runValidation(ctx); err != nil {
			i.state.Store(int32(StateStopped))
			return statsdto.Snapshot{}, err
		}
	}

	i.state.Store(int32(StateRunning))
	i.log.Info("monitoring started",
		"workspace", i.settings.WorkspaceName,
		"workflow", i.settings.WorkflowID,
		"threshold", i.settings.ConfidenceThreshold,
	)

	runErr := make(chan error, 1)
	go func() { runErr <- i.pipeline.Run(ctx) }()

	ticker := time.NewTicker(i.settings.FrameInterval())
	defer ticker.Stop()

	events := i.pipeline.Events()
	for events != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			i.handle(ctx, ev)
		case <-ticker.C:
			i.stats.Tick(ctx)
		}
	}

	pipelineErr := <-runErr
	i.state.Store(int32(StateStopped))
	if err := i.pipeline.Close(); err != nil {
		i.log.Warn("close pipeline", "err", err)
	}

	final := i.stats.Finish(context.WithoutCancel(ctx), startedAt)
	i.log.Info("monitoring stopped",
		"duration", final.RunDuration,
		"detections", final.TotalDetections,
		"habit_time", final.TotalHabitTime,
		"sessions", final.SessionCount,
	)

	if pipelineErr != nil && !errors.Is(pipelineErr, context.Canceled) {
		return final, pipelineErr
	}
	return final, nil
}

func (i *Interactor) runValidation(ctx context.Context) error {
	i.log.Info("running setup validation")
	fatal := false
	for _, check := range i.Validate(ctx) {
		if check.OK {
			i.log.Info("validation passed", "check", check.Name, "detail", check.Message)
			continue
		}
		if check.Fatal {
			fatal = true
			i.log.Error("validation failed", "check", check.Name, "detail", check.Message)
		} else {
			i.log.Warn("validation degraded", "check", check.Name, "detail", check.Message)
		}
	}
	if fatal {
		return fmt.Errorf("%w: see log for failing checks (--skip-validation bypasses, not recommended)",
			apperrors.ErrValidationFailed)
	}
	i.log.Info("all validations passed")
	return nil
}

func (i *Interactor) handle(ctx context.Context, ev workflowout.Event) {
	if ev.Err != nil {
		i.log.Warn("pipeline event error", "err", ev.Err)
		return
	}
	res := ev.Result
	qualified := res.Qualifies(i.settings.ConfidenceThreshold, i.catalog)
	opened := i.stats.Record(ctx, res.TopClass, res.Confidence, qualified)

	if !qualified {
		i.log.Debug("no habit", "class", res.TopClass, "confidence", res.Confidence)
		return
	}
	alerted := i.notifier.Warn(ctx, res.TopClass)
	if opened {
		i.log.Info("habit detected", "class", res.TopClass, "confidence", res.Confidence, "alerted", alerted)
	} else {
		i.log.Debug("habit continues", "class", res.TopClass, "confidence", res.Confidence)
	}
}
