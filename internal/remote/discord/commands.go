package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hectorgimenez/questengine/internal/event"
)

const blurple = 0x5865F2

type reply struct {
	text  string
	embed *discordgo.MessageEmbed
}

func (b *Bot) command(prefix string) reply {
	switch prefix {
	case "!status":
		return reply{embed: statusEmbed(b.controller.Status())}
	case "!stop":
		if !b.controller.Status().Playing {
			return reply{text: "No quest is running."}
		}
		b.controller.Stop()
		return reply{text: "Quest run stopped."}
	case "!help":
		return reply{embed: helpEmbed()}
	default:
		return reply{text: fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", prefix)}
	}
}

func statusEmbed(s event.Status) *discordgo.MessageEmbed {
	if s.RunID == "" {
		return &discordgo.MessageEmbed{Title: "Quest status", Description: "No run yet.", Color: blurple}
	}

	state := "Idle"
	if s.Playing {
		state = "Running"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Run", Value: s.RunID, Inline: false},
		{Name: "State", Value: state, Inline: true},
	}
	if s.Stage != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Stage", Value: s.Stage, Inline: true})
	}
	if s.Result != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Result", Value: fmt.Sprintf("%s in %s", s.Result, s.ElapsedTime), Inline: true})
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Quest status",
		Description: s.Message,
		Fields:      fields,
		Color:       resultColor(s.Result),
	}
	if !s.UpdatedAt.IsZero() {
		embed.Timestamp = s.UpdatedAt.Format(time.RFC3339)
	}
	return embed
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "questengine commands",
		Description: "Monitor and control the quest run",
		Color:       blurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "!status", Value: "Show the current run, its stage and the last result", Inline: false},
			{Name: "!stop", Value: "Stop the current run without touching the host", Inline: false},
			{Name: "!help", Value: "Show this help message", Inline: false},
		},
	}
}

func resultColor(result string) int {
	switch result {
	case "Completed":
		return 0x00ff00
	case "Failed":
		return 0xff0000
	default:
		return blurple
	}
}
