package quest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/popup"
)

const completionPopupDuration = 2 * time.Second

type CompletionHandler struct {
	logger *slog.Logger
	run    *RunState
	popups popup.Provider
	host   HostProcess
	store  Store
	exit   Exiter
	events EventSender
}

func NewCompletionHandler(logger *slog.Logger, run *RunState, popups popup.Provider, host HostProcess, store Store, exit Exiter, events EventSender) *CompletionHandler {
	if events == nil {
		events = noopEvents{}
	}
	return &CompletionHandler{
		logger: logger,
		run:    run,
		popups: popups,
		host:   host,
		store:  store,
		exit:   exit,
		events: events,
	}
}

// Handle reports a finished quest, kills the host, clears the pending record
// and exits the application. Only Completed and Failed are accepted.
func (c *CompletionHandler) Handle(ctx context.Context, result Result, elapsed string) error {
	var message string
	switch result {
	case ResultCompleted:
		message = "Quest completed in " + elapsed
	case ResultFailed:
		message = "Quest failed in " + elapsed
	default:
		return fmt.Errorf("%w: %s", ErrInvalidResult, result)
	}

	c.logger.Info("Quest finished", slog.String("result", result.String()), slog.String("elapsed", elapsed))
	c.events.Send(event.QuestFinished(event.Text(c.run.RunID(), message), result.String(), elapsed))

	if err := c.popups.Show(ctx, popup.Timed(message, completionPopupDuration)); err != nil {
		c.logger.Warn("Failed to show completion popup", slog.Any("error", err))
	}

	if err := c.host.Kill(); err != nil {
		c.logger.Error("Failed to kill host process", slog.String("process", c.host.Name()), slog.Any("error", err))
	}

	if err := c.store.ClearPending(); err != nil {
		c.logger.Error("Failed to clear pending quest result", slog.Any("error", err))
	}

	c.exit.Exit()

	return nil
}
