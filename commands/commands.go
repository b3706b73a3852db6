package commands

import (
	"github.com/bwmarrin/discordgo"

	"sentinel-bot/model"
)

// GenerateCommands builds the application command set registered on startup.
func GenerateCommands() []*discordgo.ApplicationCommand {
	reasonMaxLength := 100
	beforeMin := float64(1)

	actionChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(model.RecordActions))
	for _, action := range model.RecordActions {
		actionChoices = append(actionChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(action),
			Value: string(action),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "moderate",
			Description: "Stage a moderation action against a Roblox user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "user",
					Description:  "Roblox username or ID",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What to do",
					Required:    true,
					Choices:     actionChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why this action is taken",
					Required:    true,
					MaxLength:   reasonMaxLength,
				},
			},
		},
		{
			Name:        "lookup",
			Description: "Show a Roblox user's moderation history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "user",
					Description:  "Roblox username or ID",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "before",
					Description: "Only show records older than this many days",
					MinValue:    &beforeMin,
					MaxValue:    365,
				},
			},
		},
		{
			Name:        "status",
			Description: "Show the bot's runtime status",
		},
	}
}
