package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/questengine/internal/event"
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	if !b.shouldPublish(e) {
		return nil
	}

	switch evt := e.(type) {
	case event.QuestFinishedEvent:
		return b.sendEmbed(ctx, &discordgo.MessageEmbed{
			Title:       "Quest " + evt.Result,
			Description: evt.Message(),
			Color:       resultColor(evt.Result),
			Footer:      &discordgo.MessageEmbedFooter{Text: shortID(evt.RunID())},
		})
	case event.PendingRecoveredEvent:
		message := fmt.Sprintf("**[%s]** Recovered unreported result: %s in %s", shortID(evt.RunID()), evt.Result, evt.ElapsedTime)
		return b.sendEventMessage(ctx, message)
	default:
		message := fmt.Sprintf("**[%s]** %s", shortID(e.RunID()), e.Message())
		return b.sendEventMessage(ctx, message)
	}
}

func (b *Bot) shouldPublish(e event.Event) bool {
	switch e.(type) {
	case event.StageChangedEvent:
		return b.stageMessages
	default:
		return true
	}
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message)
	}

	_, err := b.discordSession.ChannelMessageSend(b.channelID, message, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) sendEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if b.useWebhook {
		return b.webhookClient.SendEmbed(ctx, embed)
	}

	_, err := b.discordSession.ChannelMessageSendEmbed(b.channelID, embed, discordgo.WithContext(ctx))
	return err
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
