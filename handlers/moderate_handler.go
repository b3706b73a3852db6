package handlers

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/model"
	"sentinel-bot/sentinel"
	"sentinel-bot/utils"
)

// HandleModerateCommand resolves the subject, renders the confirmation
// prompt and stages the draft against the prompt message.
func HandleModerateCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer moderate response: %v", err)
		return
	}

	var query, reason string
	var action model.Action
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			query = opt.StringValue()
		case "action":
			action = model.Action(opt.StringValue())
		case "reason":
			reason = opt.StringValue()
		}
	}
	if !action.IsRecordAction() {
		utils.EditResponseError(s, i.Interaction, "Unknown record action.")
		return
	}

	ctx := context.Background()
	actor := actorFrom(i)
	result, err := b.Sentinel.Begin(ctx, query, reason, action, actor, isPrivileged(b, i))
	if err != nil {
		reportError(s, i, b, err)
		return
	}

	embeds, components := sentinel.ConfirmPrompt(result.Draft, result.History)
	prompt, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		log.Printf("Failed to render confirmation prompt: %v", err)
		return
	}

	// The draft is keyed by the prompt we just rendered, so the buttons on
	// that exact message are the only way to consume it.
	if err := b.Sentinel.StageDraft(ctx, actor, prompt.ID, result.Draft); err != nil {
		reportError(s, i, b, err)
	}
}
