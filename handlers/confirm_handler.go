package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/model"
	"sentinel-bot/sentinel"
	"sentinel-bot/utils"
)

func deferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// finishPrompt swaps the prompt's buttons for a single disabled marker.
func finishPrompt(s *discordgo.Session, i *discordgo.InteractionCreate, label string) {
	components := sentinel.TerminalPrompt(label)
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Components: &components,
	})
	if err != nil {
		log.Printf("Failed to finish prompt %s: %v", i.Message.ID, err)
	}
}

// HandleConfirmDraft finalizes the draft staged under the clicked prompt. A
// missing draft (expired, cancelled or already consumed) just closes the
// prompt.
func HandleConfirmDraft(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := deferUpdate(s, i); err != nil {
		log.Printf("Failed to acknowledge confirmation: %v", err)
		return
	}

	result, err := b.Sentinel.Confirm(context.Background(), actorFrom(i), i.Message.ID)
	if err != nil {
		reportError(s, i, b, err)
		return
	}
	if !result.Consumed {
		finishPrompt(s, i, "Expired")
		return
	}

	if result.Draft.Action == model.ActionBanRequest {
		finishPrompt(s, i, "Ban request submitted")
		utils.SendEphemeralFollowUp(s, i.Interaction,
			fmt.Sprintf("Ban request for ` %s ` submitted for review.", result.Draft.SubjectName))
		return
	}
	finishPrompt(s, i, "Record submitted")
	utils.SendEphemeralFollowUp(s, i.Interaction,
		fmt.Sprintf("%s recorded for ` %s `.", result.Draft.Action, result.Draft.SubjectName))
}

// HandleCancelDraft discards the staged draft and closes the prompt.
func HandleCancelDraft(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := deferUpdate(s, i); err != nil {
		log.Printf("Failed to acknowledge cancellation: %v", err)
		return
	}
	if err := b.Sentinel.Cancel(context.Background(), actorFrom(i), i.Message.ID); err != nil {
		reportError(s, i, b, err)
		return
	}
	finishPrompt(s, i, "Cancelled")
}
