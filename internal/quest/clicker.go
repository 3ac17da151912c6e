package quest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hectorgimenez/questengine/internal/utils"
)

type ClickSequencer struct {
	logger     *slog.Logger
	supervisor *Supervisor
	plan       *ClickPlan
	clicker    Clicker
	window     Window
	delay      time.Duration
	next       phase
}

func (c *ClickSequencer) Run(ctx context.Context) error {
	if c.plan.Empty() {
		c.window.Minimize()
		return c.next.Run(ctx)
	}

	token := c.supervisor.RegisterWatcher(ctx, StageAutoClicking)

	for i, p := range c.plan.Points() {
		if i > 0 && !utils.Wait(token, c.delay) {
			break
		}
		if err := c.clicker.Click(token, p); err != nil {
			c.logger.Warn("Click failed", slog.Int("x", p.X), slog.Int("y", p.Y), slog.Any("error", err))
		}
	}

	c.window.Minimize()
	if token.Err() != nil {
		// Exit handling already ran
		return nil
	}

	// Natural end of the phase, not an anomaly
	c.supervisor.StopWatching()

	return c.next.Run(ctx)
}
