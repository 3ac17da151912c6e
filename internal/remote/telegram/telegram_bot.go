package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hectorgimenez/questengine/internal/event"
)

type Controller interface {
	Status() event.Status
	Stop()
}

type Bot struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	logger     *slog.Logger
	controller Controller
	stopOnce   sync.Once
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.stopReceiving()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.Chat != nil && update.Message.Chat.ID == b.chatID {
				b.reply(b.command(update.Message.Text))
			}
		}
	}
}

// stopReceiving is safe to call more than once, StopReceivingUpdates is not.
func (b *Bot) stopReceiving() {
	b.stopOnce.Do(b.bot.StopReceivingUpdates)
}

func (b *Bot) command(text string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/")) {
	case "status":
		return formatStatus(b.controller.Status())
	case "stop":
		if !b.controller.Status().Playing {
			return "No quest is running."
		}
		b.controller.Stop()
		return "Quest run stopped."
	default:
		return "Commands: status, stop"
	}
}

func (b *Bot) reply(text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		b.logger.Warn("Telegram reply failed", slog.Any("error", err))
	}
}

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	if _, ok := e.(event.StageChangedEvent); ok {
		return nil
	}

	_, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, fmt.Sprintf("[%s] %s", shortID(e.RunID()), e.Message())))
	return err
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}

func formatStatus(s event.Status) string {
	if s.RunID == "" {
		return "No run yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s", shortID(s.RunID))
	if s.Playing {
		sb.WriteString(" is running")
	} else {
		sb.WriteString(" is over")
	}
	if s.Stage != "" {
		fmt.Fprintf(&sb, ", stage %s", s.Stage)
	}
	if s.Result != "" {
		fmt.Fprintf(&sb, ", %s in %s", s.Result, s.ElapsedTime)
	}
	return sb.String()
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
