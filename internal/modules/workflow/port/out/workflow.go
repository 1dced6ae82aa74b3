package workflowout

import (
	"context"

	"habitwatch/internal/modules/workflow/domain"
)

// Event is one pipeline emission: either a classified frame or a
// non-terminal error the consumer may log and skip.
type Event struct {
	Result domain.Result
	Err    error
}

// Pipeline is the external inference collaborator. Run produces one event
// per processed camera frame on the Events channel until the context is
// cancelled or the source fails unrecoverably, then closes the channel.
type Pipeline interface {
	Run(ctx context.Context) error
	Events() <-chan Event
	Probe(ctx context.Context) error
	Close() error
}

// FrameSource grabs encoded JPEG frames from the local camera.
type FrameSource interface {
	Grab(ctx context.Context) ([]byte, error)
	Close() error
}

// Inferencer classifies a single frame through the hosted workflow.
type Inferencer interface {
	Infer(ctx context.Context, frame []byte) (domain.Result, error)
}
