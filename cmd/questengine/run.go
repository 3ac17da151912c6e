package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	sloggger "github.com/hectorgimenez/questengine/cmd/questengine/log"
	"github.com/hectorgimenez/questengine/internal/config"
	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/host"
	"github.com/hectorgimenez/questengine/internal/input"
	"github.com/hectorgimenez/questengine/internal/ocr"
	"github.com/hectorgimenez/questengine/internal/popup"
	"github.com/hectorgimenez/questengine/internal/quest"
	"github.com/hectorgimenez/questengine/internal/remote/discord"
	"github.com/hectorgimenez/questengine/internal/remote/telegram"
	"github.com/hectorgimenez/questengine/internal/screen"
	"github.com/hectorgimenez/questengine/internal/server"
	"github.com/hectorgimenez/questengine/internal/store"
	"github.com/hectorgimenez/questengine/internal/window"
	"golang.org/x/sync/errgroup"
)

const hostStartTimeout = 2 * time.Minute

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, debug.Stack()))
				sloggger.FlushLog()
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return f()
	}
}

// app is what the remote bots and the status server can see and do.
type app struct {
	tracker *event.Tracker
	engine  *quest.Engine
}

func (a app) Status() event.Status {
	return a.tracker.Status()
}

func (a app) Stop() {
	a.engine.Stop()
}

func runQuest(parent context.Context, cfgPath string) (err error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		popup.Fatal("Error loading configuration", err.Error())
		return fmt.Errorf("error loading configuration: %w", err)
	}

	logger, err := sloggger.NewLogger(cfg.Debug.Log, cfg.LogSaveDirectory, "")
	if err != nil {
		return fmt.Errorf("error starting logger: %w", err)
	}
	defer sloggger.FlushAndClose()
	logger.Info("Starting questengine", slog.String("build", buildID), slog.String("buildTime", buildTime), slog.String("mode", cfg.Mode))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error detected, questengine will close with the following error: %v\n Stacktrace: %s", r, debug.Stack())
			logger.Error(err.Error())
			sloggger.FlushAndClose()
			popup.Fatal("questengine error", "questengine will close due to an unexpected error, please check the latest log file for more info!\n"+err.Error())
		}
	}()

	sigCtx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Cancelling ctx is how the application exits; the host is never touched
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	setDPIAware()

	eventListener := event.NewListener(logger)
	tracker := &event.Tracker{}
	eventListener.Register(tracker.Handle)

	hostProcess := host.New(logger, cfg.Host.ProcessName)
	pendingStore := store.NewFile(cfg.Store.Path)
	popups := popup.Native()

	// A record left by an earlier ocr run is still reported in manual mode
	recoverPending(gctx, logger, pendingStore, popups, eventListener)

	deps := quest.Deps{
		Logger:  logger,
		Host:    hostProcess,
		Store:   resultStore(cfg, pendingStore),
		Popups:  popups,
		Window:  window.NewConsole(),
		Clicker: input.NewMouse(),
		Exit:    quest.ExitFunc(cancel),
		Events:  eventListener,
	}
	if cfg.Mode == config.ModeOCR {
		deps.Capturer = screen.New(cfg.OCR.Threshold)
		deps.Recognizer = ocr.NewTesseract(cfg.OCR.Binary, cfg.OCR.Language)
	}

	engine, err := quest.NewEngine(cfg, deps)
	if err != nil {
		return err
	}
	controller := app{tracker: tracker, engine: engine}

	if cfg.Server.Enabled {
		srv := server.New(logger, controller)
		eventListener.Register(srv.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return srv.Listen(gctx, cfg.Server.Port)
		}))
	}

	// Discord Bot initialization
	if cfg.Discord.Enabled {
		discordBot, err := discord.NewBot(logger, discord.Options{
			Token:         cfg.Discord.Token,
			ChannelID:     cfg.Discord.ChannelID,
			BotAdmins:     cfg.Discord.BotAdmins,
			StageMessages: cfg.Discord.StageMessages,
			UseWebhook:    cfg.Discord.UseWebhook,
			WebhookURL:    cfg.Discord.WebhookURL,
		}, controller)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(discordBot.Handle)
			g.Go(wrapWithRecover(logger, func() error {
				return discordBot.Start(gctx)
			}))
		}
	}

	// Telegram Bot initialization
	if cfg.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(gctx, logger, cfg.Telegram.Token, cfg.Telegram.ChatID, controller)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
		} else {
			eventListener.Register(telegramBot.Handle)
			g.Go(wrapWithRecover(logger, func() error {
				defer telegramBot.Close()
				return telegramBot.Start(gctx)
			}))
		}
	}

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(gctx)
	}))

	g.Go(wrapWithRecover(logger, func() error {
		defer cancel()
		if err := prepareHost(gctx, logger, hostProcess, cfg); err != nil {
			return err
		}
		if err := engine.Start(gctx); err != nil {
			return err
		}
		return engine.Wait()
	}))

	g.Go(wrapWithRecover(logger, func() error {
		<-gctx.Done()
		logger.Info("questengine shutting down...")
		engine.Stop()
		return nil
	}))

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Error running questengine", slog.Any("error", err))
		sloggger.FlushLog()
		popup.Fatal("questengine error", err.Error())
		return err
	}

	return nil
}

// resultStore picks where the engine persists results. Manual mode never
// learns a result, so there is nothing to keep.
func resultStore(cfg config.Config, file *store.File) quest.Store {
	if cfg.Mode == config.ModeManual {
		return store.Noop{}
	}
	return file
}

// prepareHost makes sure the host is up before supervision starts, launching
// it when an executable is configured.
func prepareHost(ctx context.Context, logger *slog.Logger, h *host.Process, cfg config.Config) error {
	if h.IsRunning() {
		return nil
	}

	if cfg.Host.Executable != "" {
		return h.Launch(ctx, cfg.Host.Executable, cfg.Host.Args, hostStartTimeout)
	}

	logger.Info("Waiting for the host process to start", slog.String("process", h.Name()), slog.Duration("timeout", hostStartTimeout))
	return h.WaitRunning(ctx, hostStartTimeout)
}
