package sentinel

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/model"
	"sentinel-bot/utils"
)

const (
	colorRecord     = 0xED4245 // Red
	colorBanRequest = 0xFEE75C // Yellow
	colorPrompt     = 0x5865F2 // Discord Blurple
	colorHistory    = 0x57F287 // Green
)

const historyPreviewLimit = 5

func actionLabel(action model.Action, warningCount int) string {
	if action == model.ActionWarning {
		return fmt.Sprintf("%s #%d", action, warningCount)
	}
	return string(action)
}

// recordEmbed renders the announcement embed for a persisted record. It is
// also used to re-render the announcement after an edit.
func recordEmbed(authorID, subjectName string, subjectID int64, avatarURL, reason string, action model.Action, warningCount int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: actionLabel(action, warningCount),
		Color: colorRecord,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("` %s ` (%d)", subjectName, subjectID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", authorID), Inline: true},
			{Name: "Reason", Value: reason},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}
	return embed
}

// recordAnnouncement builds the full announcement message for a confirmed
// record, with the manage menu attached for later edits.
func recordAnnouncement(actor Actor, draft model.Draft, warningCount int) *discordgo.MessageSend {
	embed := recordEmbed(actor.ID, draft.SubjectName, int64(draft.SubjectID),
		draft.SubjectAvatarURL, draft.Reason, draft.Action, warningCount)
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{manageMenu()},
	}
}

// banRequestAnnouncement builds the announcement for a pending ban request.
// Ban requests are resolved by privileged users, not edited, so no manage
// menu is attached.
func banRequestAnnouncement(actor Actor, draft model.Draft) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: "Ban Request",
		Color: colorBanRequest,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("` %s ` (%d)", draft.SubjectName, int64(draft.SubjectID)), Inline: true},
			{Name: "Requested by", Value: fmt.Sprintf("<@%s>", actor.ID), Inline: true},
			{Name: "Reason", Value: draft.Reason},
			{Name: "State", Value: string(model.BanRequestPending)},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if draft.SubjectAvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: draft.SubjectAvatarURL}
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}

func manageMenu() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    CustomIDManageRecord,
				Placeholder: "Manage this record",
				Options: []discordgo.SelectMenuOption{
					{Label: "Edit reason", Value: string(ManageEditReason), Emoji: &discordgo.ComponentEmoji{Name: "📝"}},
					{Label: "Edit action", Value: string(ManageEditAction), Emoji: &discordgo.ComponentEmoji{Name: "🔁"}},
					{Label: "Delete", Value: string(ManageDelete), Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}},
				},
			},
		},
	}
}

// ConfirmPrompt renders the draft confirmation: the staged action with the
// subject's identity and recent history, plus submit and cancel buttons. The
// submit button is chosen per action so a downgraded Ban is visibly a ban
// request before anything is committed.
func ConfirmPrompt(draft model.Draft, history []model.Record) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	var submit discordgo.Button
	switch draft.Action {
	case model.ActionBanRequest:
		submit = discordgo.Button{
			Label:    "Submit Ban Request",
			Style:    discordgo.DangerButton,
			CustomID: CustomIDConfirmBanRequest,
		}
	case model.ActionBan, model.ActionKick, model.ActionWarning:
		submit = discordgo.Button{
			Label:    "Submit Record",
			Style:    discordgo.PrimaryButton,
			CustomID: CustomIDConfirmRecord,
		}
	}

	warningCount := draft.WarningCount
	if draft.Action == model.ActionWarning {
		warningCount++
	}

	embed := &discordgo.MessageEmbed{
		Title: "Confirm " + actionLabel(draft.Action, warningCount),
		Color: colorPrompt,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("` %s ` (%d)", draft.SubjectName, int64(draft.SubjectID)), Inline: true},
			{Name: "Prior warnings", Value: fmt.Sprintf("%d", draft.WarningCount), Inline: true},
			{Name: "Reason", Value: draft.Reason},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "This draft expires after 15 minutes.",
		},
	}
	if draft.SubjectAvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: draft.SubjectAvatarURL}
	}
	if len(history) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent history",
			Value: historySummary(history),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				submit,
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: CustomIDCancelDraft,
				},
			},
		},
	}
	return []*discordgo.MessageEmbed{embed}, components
}

// TerminalPrompt replaces a prompt's buttons with a single disabled marker
// once the draft is consumed or discarded.
func TerminalPrompt(label string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    discordgo.SecondaryButton,
					CustomID: "sentinel_done",
					Disabled: true,
				},
			},
		},
	}
}

// EditReasonModal prefills the reason input with the record's current text.
func EditReasonModal(currentReason string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: CustomIDEditReasonModal,
		Title:    "Edit reason",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "reason",
						Label:       "Reason",
						Style:       discordgo.TextInputShort,
						Value:       currentReason,
						Required:    true,
						MaxLength:   100,
						Placeholder: "Why this action was taken",
					},
				},
			},
		},
	}
}

// EditActionPrompt renders the action select with the record's current
// action preselected.
func EditActionPrompt(current model.Action) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(model.RecordActions))
	for _, action := range model.RecordActions {
		options = append(options, discordgo.SelectMenuOption{
			Label:   string(action),
			Value:   string(action),
			Default: action == current,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID: CustomIDEditAction,
					Options:  options,
				},
			},
		},
	}
}

// DeletePrompt asks for explicit confirmation before a record is removed.
func DeletePrompt() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Delete record",
					Style:    discordgo.DangerButton,
					CustomID: CustomIDConfirmDelete,
				},
			},
		},
	}
}

// HistoryEmbed renders a subject's moderation history for /lookup.
func (r *HistoryResult) HistoryEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("` %s ` (%d)", r.Subject.Name, r.Subject.ID),
		Color: colorHistory,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Warnings (7d)", Value: fmt.Sprintf("%d", r.WarningsWeek), Inline: true},
			{Name: "Warnings (30d)", Value: fmt.Sprintf("%d", r.WarningsMonth), Inline: true},
			{Name: "Warnings (total)", Value: fmt.Sprintf("%d", r.WarningsTotal), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if r.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: r.AvatarURL}
	}
	if r.PendingBanRequest != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Ban request",
			Value: fmt.Sprintf("Pending since <t:%d:R>, requested by <@%s>", r.PendingBanRequest.CreatedAt, r.PendingBanRequest.AuthorID),
		})
	}
	if len(r.Records) == 0 {
		embed.Description = "No records."
		return embed
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Records (%d)", len(r.Records)),
		Value: historySummary(r.Records),
	})
	return embed
}

func historySummary(records []model.Record) string {
	var builder strings.Builder
	for i, record := range records {
		if i == historyPreviewLimit {
			fmt.Fprintf(&builder, "… and %d more", len(records)-historyPreviewLimit)
			break
		}
		fmt.Fprintf(&builder, "<t:%d:R> **%s** by <@%s>: %s\n",
			record.CreatedAt, record.Action, record.AuthorID,
			utils.LimitString(record.Reason, 60))
	}
	return builder.String()
}
