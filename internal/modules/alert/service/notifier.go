package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"habitwatch/internal/modules/alert/domain"
	alertout "habitwatch/internal/modules/alert/port/out"
	"habitwatch/internal/platform/clock"
	"habitwatch/internal/platform/habits"
)

// Notifier plays a warning per detected habit, at most once per cooldown
// window. Playback failures degrade inside the sounder and are only
// logged here.
type Notifier struct {
	limiter *domain.Limiter
	sounder alertout.Sounder
	clock   clock.Clock
	catalog habits.Catalog
	log     *log.Logger
}

func NewNotifier(cooldown time.Duration, enabled bool, sounder alertout.Sounder, clk clock.Clock, catalog habits.Catalog, logger *log.Logger) *Notifier {
	return &Notifier{
		limiter: domain.NewLimiter(cooldown, enabled),
		sounder: sounder,
		clock:   clk,
		catalog: catalog,
		log:     logger,
	}
}

// Warn plays the warning for a habit class unless the cooldown is still
// running. Reports whether a sound was attempted.
func (n *Notifier) Warn(ctx context.Context, class string) bool {
	if !n.limiter.Allow(n.clock.Now()) {
		return false
	}
	habit := n.catalog.Lookup(class)
	if err := n.sounder.Play(ctx, habit.ToneHz); err != nil {
		n.log.Debug("audio warning degraded", "class", class, "err", err)
	} else {
		n.log.Info("audio warning played", "class", class)
	}
	return true
}

// SelfTest plays a test sound outside the cooldown discipline, for setup
// validation.
func (n *Notifier) SelfTest(ctx context.Context) error {
	return n.sounder.Play(ctx, n.catalog.Lookup("chomping").ToneHz)
}
