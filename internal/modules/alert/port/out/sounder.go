package alertout

import "context"

// Sounder plays a short warning sound. toneHz is a hint; backends without
// tone control pick their own sound. Implementations degrade to a terminal
// bell rather than staying silent.
type Sounder interface {
	Play(ctx context.Context, toneHz int) error
}
