package quest

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/hectorgimenez/questengine/internal/popup"
	"github.com/hectorgimenez/questengine/internal/utils"
)

// phase is one step of a run. Run returns only fatal errors; cancellation is
// a normal way to stop.
type phase interface {
	Run(ctx context.Context) error
}

// ReadinessDetector polls the readiness region until the marker shows up,
// then hands the run to the next phase.
type ReadinessDetector struct {
	logger     *slog.Logger
	supervisor *Supervisor
	sensor     *sensor
	region     image.Rectangle
	marker     string
	interval   time.Duration
	next       phase
}

func (d *ReadinessDetector) Run(ctx context.Context) error {
	token := d.supervisor.RegisterWatcher(ctx, StageOpen)

	for {
		text, err := d.sensor.read(token, d.region)
		if token.Err() != nil {
			return nil
		}
		if err != nil {
			d.logger.Warn("Readiness read failed", slog.Any("error", err))
		}
		if strings.Contains(text, d.marker) {
			break
		}
		if !utils.Wait(token, d.interval) {
			return nil
		}
	}

	d.logger.Info("Host is ready")

	return d.next.Run(ctx)
}

// ManualReadiness waits for the user to confirm readiness with a key press
// instead of reading the screen.
type ManualReadiness struct {
	logger     *slog.Logger
	supervisor *Supervisor
	popups     popup.Provider
	message    string
	key        popup.Key
	next       phase
}

func (m *ManualReadiness) Run(ctx context.Context) error {
	token := m.supervisor.RegisterWatcher(ctx, StageOpen)

	confirmed := false
	err := m.popups.Show(token, popup.KeyGated(m.message, m.key, func() {
		confirmed = true
	}))
	if token.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("waiting for readiness confirmation: %w", err)
	}
	if !confirmed {
		return nil
	}

	m.logger.Info("Readiness confirmed by user")
	m.supervisor.StopWatching()

	return m.next.Run(ctx)
}
