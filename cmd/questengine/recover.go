package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hectorgimenez/questengine/internal/config"
	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/popup"
	"github.com/hectorgimenez/questengine/internal/quest"
	"github.com/hectorgimenez/questengine/internal/store"
	"github.com/spf13/cobra"
)

const recoveredPopupDuration = 2 * time.Second

func recoveredMessage(r *quest.Record) string {
	return fmt.Sprintf("The last quest finished but was never reported: %s in %s", r.Result, r.ElapsedTime)
}

// recoverPending reports a result that a previous process persisted but did
// not get to clear, then clears it. Nothing here is fatal.
func recoverPending(ctx context.Context, logger *slog.Logger, s quest.Store, popups popup.Provider, events quest.EventSender) {
	r, err := s.LoadPending()
	if err != nil {
		logger.Warn("Could not read the pending quest result", slog.Any("error", err))
		if errors.Is(err, store.ErrCorruptRecord) {
			if err = s.ClearPending(); err != nil {
				logger.Warn("Could not clear the corrupt pending result", slog.Any("error", err))
			}
		}
		return
	}
	if r == nil {
		return
	}

	message := recoveredMessage(r)
	logger.Info("Recovered pending quest result", slog.String("runId", r.RunID), slog.String("result", r.Result.String()), slog.String("elapsed", r.ElapsedTime))
	events.Send(event.PendingRecovered(event.Text(r.RunID, message), r.Result.String(), r.ElapsedTime))

	if err = popups.Show(ctx, popup.Timed(message, recoveredPopupDuration)); err != nil {
		logger.Warn("Failed to show recovered result popup", slog.Any("error", err))
	}

	if err = s.ClearPending(); err != nil {
		logger.Error("Failed to clear pending quest result", slog.Any("error", err))
	}
}

func recoverCmd(cmd *cobra.Command, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	s := store.NewFile(cfg.Store.Path)
	r, err := s.LoadPending()
	if err != nil {
		return err
	}
	if r == nil {
		cmd.Println("No pending quest result.")
		return nil
	}

	cmd.Println(recoveredMessage(r))
	return s.ClearPending()
}
