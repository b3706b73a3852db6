package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// DeferResponse defers an interaction response, optionally making it
// ephemeral.
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		}
	}
	return s.InteractionRespond(i.Interaction, response)
}

// SendErrorResponse sends an immediate ephemeral error message.
func SendErrorResponse(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}

// EditResponse replaces the deferred response content.
func EditResponse(s *discordgo.Session, i *discordgo.Interaction, message string) {
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &message,
	})
	if err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

// EditResponseError edits the in-progress response to show a failure and
// clears any lingering interactive controls so the user cannot retry
// against stale state.
func EditResponseError(s *discordgo.Session, i *discordgo.Interaction, message string) {
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{}
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:    &message,
		Components: &components,
		Embeds:     &embeds,
	})
	if err != nil {
		log.Printf("Error editing interaction error response: %v", err)
	}
}

// SendEphemeralFollowUp sends an ephemeral follow-up message to an already
// acknowledged interaction.
func SendEphemeralFollowUp(s *discordgo.Session, i *discordgo.Interaction, message string) {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("Error sending follow-up message: %v", err)
	}
}
