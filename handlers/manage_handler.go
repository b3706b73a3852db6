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

// HandleManageSelect routes a pick from the manage menu on a record
// announcement. The selected mutation is staged against the picking user and
// its follow-up surface (modal, select or confirm button) is opened.
func HandleManageSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	option := sentinel.ManageOption(values[0])

	record, err := b.Sentinel.Manage(context.Background(), i.Message.ID, option, actorFrom(i), isPrivileged(b, i))
	if err != nil {
		utils.SendErrorResponse(s, i, utils.UserFacingMessage(err))
		return
	}

	switch option {
	case sentinel.ManageEditReason:
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: sentinel.EditReasonModal(record.Reason),
		})
	case sentinel.ManageEditAction:
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    "Pick the new action for this record.",
				Components: sentinel.EditActionPrompt(record.Action),
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
	case sentinel.ManageDelete:
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    "This permanently removes the record and its announcement.",
				Components: sentinel.DeletePrompt(),
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
	}
	if err != nil {
		log.Printf("Failed to open manage surface %s: %v", option, err)
	}
}

// HandleEditReasonModal applies the submitted reason to the staged record.
func HandleEditReasonModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer reason edit: %v", err)
		return
	}

	var reason string
	for _, row := range i.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == "reason" {
				reason = input.Value
			}
		}
	}
	if reason == "" {
		utils.EditResponseError(s, i.Interaction, "The reason cannot be empty.")
		return
	}

	result, err := b.Sentinel.EditReason(context.Background(), actorFrom(i), reason)
	if err != nil {
		reportError(s, i, b, err)
		return
	}
	if !result.Consumed {
		utils.EditResponse(s, i.Interaction, "This edit has expired. Pick it from the manage menu again.")
		return
	}
	utils.EditResponse(s, i.Interaction, "Reason updated.")
}

// HandleEditAction applies the picked action to the staged record.
func HandleEditAction(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := deferUpdate(s, i); err != nil {
		log.Printf("Failed to acknowledge action edit: %v", err)
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}

	result, err := b.Sentinel.EditAction(context.Background(), actorFrom(i), model.Action(values[0]))
	if err != nil {
		reportError(s, i, b, err)
		return
	}
	if !result.Consumed {
		utils.EditResponseError(s, i.Interaction, "This edit has expired. Pick it from the manage menu again.")
		return
	}
	finishPrompt(s, i, "Action updated")
}

// HandleConfirmDelete removes the staged record and its announcement.
func HandleConfirmDelete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := deferUpdate(s, i); err != nil {
		log.Printf("Failed to acknowledge deletion: %v", err)
		return
	}

	result, err := b.Sentinel.ConfirmDelete(context.Background(), actorFrom(i))
	if err != nil {
		reportError(s, i, b, err)
		return
	}
	if !result.Consumed {
		utils.EditResponseError(s, i.Interaction, "This deletion has expired. Pick it from the manage menu again.")
		return
	}
	finishPrompt(s, i, "Record deleted")
}
