package handlers

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/utils"
)

// HandleLookupCommand renders a subject's moderation history.
func HandleLookupCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer lookup response: %v", err)
		return
	}

	var query string
	var beforeDays int
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			query = opt.StringValue()
		case "before":
			beforeDays = int(opt.IntValue())
		}
	}

	result, err := b.Sentinel.History(context.Background(), query, beforeDays)
	if err != nil {
		reportError(s, i, b, err)
		return
	}

	embeds := []*discordgo.MessageEmbed{result.HistoryEmbed()}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	if err != nil {
		log.Printf("Failed to render lookup response: %v", err)
	}
}
