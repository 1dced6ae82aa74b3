package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// UUID generates random v4 identifiers. Run ids and habit session ids
// share this generator so history rows correlate with log lines.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}
