package quest

import (
	"context"
	"image"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hectorgimenez/questengine/internal/utils"
)

const maxElapsedTimeReads = 20

var elapsedTimePattern = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)

type completer interface {
	Handle(ctx context.Context, result Result, elapsed string) error
}

// ResultMonitor watches the status region until the quest completes or fails,
// then persists the result and passes it to the completion handler.
type ResultMonitor struct {
	logger        *slog.Logger
	supervisor    *Supervisor
	run           *RunState
	sensor        *sensor
	store         Store
	completion    completer
	statusRegion  image.Rectangle
	timerRegion   image.Rectangle
	successMarker string
	failureMarker string
	interval      time.Duration
	retryInterval time.Duration
}

func (m *ResultMonitor) Run(ctx context.Context) error {
	token := m.supervisor.RegisterWatcher(ctx, StagePlayingQuest)

	for {
		text, err := m.sensor.read(token, m.statusRegion)
		if token.Err() != nil {
			return nil
		}
		if err != nil {
			m.logger.Warn("Quest status read failed", slog.Any("error", err))
		}

		if result := m.classify(text); result.Terminal() {
			return m.finish(ctx, token, result)
		}

		if !utils.Wait(token, m.interval) {
			return nil
		}
	}
}

func (m *ResultMonitor) classify(text string) Result {
	if strings.Contains(text, m.successMarker) {
		return ResultCompleted
	}
	if strings.Contains(text, m.failureMarker) {
		return ResultFailed
	}
	return ResultOngoing
}

func (m *ResultMonitor) finish(ctx, token context.Context, result Result) error {
	elapsed, ok := m.readElapsedTime(token)
	if !ok {
		return nil
	}

	if !m.run.End() {
		// Exit handling got there first
		return nil
	}
	m.supervisor.StopWatching()

	record := Record{
		RunID:       m.run.RunID(),
		Result:      result,
		ElapsedTime: elapsed,
		SavedAt:     time.Now(),
	}
	if err := m.store.Save(record); err != nil {
		m.logger.Error("Failed to persist quest result", slog.Any("error", err))
	}

	return m.completion.Handle(ctx, result, elapsed)
}

// readElapsedTime makes up to maxElapsedTimeReads reads of the timer region.
// An unreadable timer degrades to UnknownElapsedTime. It returns false only
// when the token is cancelled.
func (m *ResultMonitor) readElapsedTime(token context.Context) (string, bool) {
	for attempt := 1; attempt <= maxElapsedTimeReads; attempt++ {
		text, err := m.sensor.read(token, m.timerRegion)
		if token.Err() != nil {
			return "", false
		}
		if err != nil {
			m.logger.Warn("Elapsed time read failed", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		if elapsed := elapsedTimePattern.FindString(text); elapsed != "" {
			return elapsed, true
		}
		if attempt < maxElapsedTimeReads && !utils.Wait(token, m.retryInterval) {
			return "", false
		}
	}

	m.logger.Warn("Elapsed time could not be read", slog.Int("attempts", maxElapsedTimeReads))
	return UnknownElapsedTime, true
}

// PassiveMonitor keeps the host supervised during the quest without reading
// the screen. The run then ends only through host exit handling.
type PassiveMonitor struct {
	supervisor *Supervisor
}

func (p *PassiveMonitor) Run(ctx context.Context) error {
	p.supervisor.RegisterWatcher(ctx, StagePlayingQuest)
	return nil
}
