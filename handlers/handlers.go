package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/sentinel"
	"sentinel-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"moderate": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModerateCommand(s, i, b)
		},
		"lookup": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleLookupCommand(s, i, b)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
		if b.GetConfig().LogChannelID != "" {
			err := utils.LogInfo(s, b.GetConfig().LogChannelID, "System", "Startup", "Bot has started successfully.")
			if err != nil {
				log.Printf("Failed to send startup log: %v", err)
			}
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			switch i.MessageComponentData().CustomID {
			case sentinel.CustomIDConfirmRecord, sentinel.CustomIDConfirmBanRequest:
				HandleConfirmDraft(s, i, b)
			case sentinel.CustomIDCancelDraft:
				HandleCancelDraft(s, i, b)
			case sentinel.CustomIDManageRecord:
				HandleManageSelect(s, i, b)
			case sentinel.CustomIDEditAction:
				HandleEditAction(s, i, b)
			case sentinel.CustomIDConfirmDelete:
				HandleConfirmDelete(s, i, b)
			}
		case discordgo.InteractionModalSubmit:
			if i.ModalSubmitData().CustomID == sentinel.CustomIDEditReasonModal {
				HandleEditReasonModal(s, i, b)
			}
		case discordgo.InteractionApplicationCommandAutocomplete:
			handleAutocomplete(s, i, b)
		}
	})
}

func actorFrom(i *discordgo.InteractionCreate) sentinel.Actor {
	return sentinel.Actor{
		ID:       i.Member.User.ID,
		Username: i.Member.User.Username,
	}
}

func isPrivileged(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	return utils.HasAnyRole(i.Member.Roles, b.GetConfig().SURoleIDs)
}

// reportError surfaces a workflow failure on the in-progress response and
// mirrors fatal errors to the log channel for operator follow-up.
func reportError(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, err error) {
	utils.EditResponseError(s, i.Interaction, utils.UserFacingMessage(err))
	if sysErr, ok := utils.AsSystemError(err); ok && sysErr.Level == utils.LevelFatal {
		utils.LogFatal(s, b.GetConfig().LogChannelID, "Sentinel", "Inconsistency", sysErr.Error())
	} else if err != nil {
		log.Printf("interaction %s failed: %v", i.ID, err)
	}
}
