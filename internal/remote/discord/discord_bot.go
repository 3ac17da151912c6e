package discord

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/questengine/internal/event"
)

// Controller is the slice of the application the bot commands can reach.
type Controller interface {
	Status() event.Status
	Stop()
}

type Bot struct {
	logger         *slog.Logger
	discordSession *discordgo.Session
	channelID      string
	admins         []string
	stageMessages  bool
	controller     Controller
	useWebhook     bool
	webhookClient  *webhookClient
}

type Options struct {
	Token         string
	ChannelID     string
	BotAdmins     []string
	StageMessages bool
	UseWebhook    bool
	WebhookURL    string
}

func NewBot(logger *slog.Logger, opts Options, controller Controller) (*Bot, error) {
	botInstance := &Bot{
		logger:        logger,
		channelID:     opts.ChannelID,
		admins:        opts.BotAdmins,
		stageMessages: opts.StageMessages,
		controller:    controller,
		useWebhook:    opts.UseWebhook,
	}

	if opts.UseWebhook {
		if opts.WebhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(opts.WebhookURL)
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	botInstance.discordSession = dg
	if len(opts.BotAdmins) == 0 {
		logger.Warn("Discord botAdmins is empty, commands will be ignored")
	}

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	err := b.discordSession.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	if !b.authorized(m.Author.ID) {
		return
	}

	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	reply := b.command(strings.Fields(m.Content)[0])
	if reply.embed != nil {
		_, err := s.ChannelMessageSendEmbed(m.ChannelID, reply.embed)
		b.logSendError(err)
		return
	}
	_, err := s.ChannelMessageSend(m.ChannelID, reply.text)
	b.logSendError(err)
}

// authorized reports whether userID may run commands. Only listed admins can,
// so an empty list leaves the bot notification-only.
func (b *Bot) authorized(userID string) bool {
	return userID != "" && slices.Contains(b.admins, userID)
}

func (b *Bot) logSendError(err error) {
	if err != nil {
		b.logger.Warn("Discord reply failed", slog.Any("error", err))
	}
}
