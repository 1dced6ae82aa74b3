package out

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	workflowout "habitwatch/internal/modules/workflow/port/out"
	apperrors "habitwatch/internal/platform/errors"
)

const (
	eventBuffer = 16
	// Consecutive frame failures tolerated before the pipeline gives up.
	maxConsecutiveFailures = 5
)

// StreamPipeline paces the frame source at the camera frame rate, runs
// each frame through the inferencer, and pushes events into a bounded
// channel. When the consumer lags the frame is dropped rather than
// stalling the capture cadence.
type StreamPipeline struct {
	frames   workflowout.FrameSource
	infer    workflowout.Inferencer
	interval time.Duration
	events   chan workflowout.Event
	dropped  atomic.Int64
}

func NewStreamPipeline(frames workflowout.FrameSource, infer workflowout.Inferencer, interval time.Duration) *StreamPipeline {
	if interval <= 0 {
		interval = time.Second
	}
	return &StreamPipeline{
		frames:   frames,
		infer:    infer,
		interval: interval,
		events:   make(chan workflowout.Event, eventBuffer),
	}
}

func (p *StreamPipeline) Events() <-chan workflowout.Event {
	return p.events
}

// Dropped returns how many events were discarded because the consumer
// was behind.
func (p *StreamPipeline) Dropped() int64 {
	return p.dropped.Load()
}

// Probe grabs and classifies a single frame to confirm the camera and the
// hosted workflow are both reachable.
func (p *StreamPipeline) Probe(ctx context.Context) error {
	frame, err := p.frames.Grab(ctx)
	if err != nil {
		return fmt.Errorf("camera check: %w", err)
	}
	if _, err := p.infer.Infer(ctx, frame); err != nil {
		return fmt.Errorf("workflow check: %w", err)
	}
	return nil
}

// Run drives the grab/infer loop until the context is cancelled or too
// many consecutive frames fail. The events channel is closed on return.
func (p *StreamPipeline) Run(ctx context.Context) error {
	defer close(p.events)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		ev := p.next(ctx)
		if ev.Err != nil {
			if errors.Is(ev.Err, context.Canceled) || errors.Is(ev.Err, context.DeadlineExceeded) {
				return nil
			}
			failures++
			if failures >= maxConsecutiveFailures {
				return fmt.Errorf("%w: %d consecutive frame failures, last: %v",
					apperrors.ErrPipelineClosed, failures, ev.Err)
			}
		} else {
			failures = 0
		}

		select {
		case p.events <- ev:
		default:
			p.dropped.Add(1)
		}
	}
}

func (p *StreamPipeline) next(ctx context.Context) workflowout.Event {
	frame, err := p.frames.Grab(ctx)
	if err != nil {
		return workflowout.Event{Err: fmt.Errorf("grab frame: %w", err)}
	}
	result, err := p.infer.Infer(ctx, frame)
	if err != nil {
		return workflowout.Event{Err: fmt.Errorf("classify frame: %w", err)}
	}
	return workflowout.Event{Result: result}
}

func (p *StreamPipeline) Close() error {
	return p.frames.Close()
}
