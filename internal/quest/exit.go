package quest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/popup"
)

const exitPopupDuration = 500 * time.Millisecond

// ExitHandler runs when the host disappears while a run is live. It ends the
// run, tells the user at which stage it happened, then either hands control to
// the failure override or terminates the application. It never touches the
// host process.
type ExitHandler struct {
	logger        *slog.Logger
	run           *RunState
	popups        popup.Provider
	exit          Exiter
	events        EventSender
	onQuestFailed func()
}

func NewExitHandler(logger *slog.Logger, run *RunState, popups popup.Provider, exit Exiter, events EventSender, onQuestFailed func()) *ExitHandler {
	if events == nil {
		events = noopEvents{}
	}
	return &ExitHandler{
		logger:        logger,
		run:           run,
		popups:        popups,
		exit:          exit,
		events:        events,
		onQuestFailed: onQuestFailed,
	}
}

func (h *ExitHandler) Handle(ctx context.Context, stage Stage) {
	if !h.run.End() {
		return
	}

	message := exitMessage(stage)
	h.logger.Warn("Quest interrupted by host exit", slog.String("stage", stage.String()), slog.String("message", message))
	h.events.Send(event.HostExited(event.Text(h.run.RunID(), message), stage.String()))

	if err := h.popups.Show(ctx, popup.Timed(message, exitPopupDuration)); err != nil {
		h.logger.Warn("Failed to show exit popup", slog.Any("error", err))
	}

	if h.onQuestFailed != nil {
		h.onQuestFailed()
		return
	}

	h.exit.Exit()
}
