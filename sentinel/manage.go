package sentinel

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// Manage starts a mutation of an existing record. Only the record's author
// or a privileged actor may manage it. The selected mutation is staged as a
// short-lived draft consumed by its follow-up component (modal, select or
// confirm button); nothing is mutated here.
func (s *System) Manage(ctx context.Context, recordID string, option ManageOption, actor Actor, privileged bool) (*model.Record, error) {
	record, err := s.store.GetRecord(recordID)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if record == nil {
		return nil, &utils.SystemError{
			Code:    utils.CodeNotFound,
			Message: "This record no longer exists.",
			Level:   utils.LevelSystem,
			Cause:   fmt.Errorf("no record for message %s", recordID),
		}
	}
	if actor.ID != record.AuthorID && !privileged {
		return nil, utils.UserError(utils.CodeUnauthorized,
			"You do not own this record.\nYou cannot manage other people's records.")
	}

	switch option {
	case ManageEditReason:
		err = s.cache.Set(ctx, editReasonKey(actor.ID), model.EditDraft{
			RecordID:  record.ID,
			SubjectID: model.Int64(record.UserID),
		}, s.cfg.DraftTTL)
	case ManageEditAction:
		err = s.cache.Set(ctx, editActionKey(actor.ID), model.EditDraft{
			RecordID:  record.ID,
			SubjectID: model.Int64(record.UserID),
		}, s.cfg.DraftTTL)
	case ManageDelete:
		err = s.cache.Set(ctx, deleteKey(actor.ID), model.DeleteDraft{
			RecordID: record.ID,
		}, s.cfg.DraftTTL)
	default:
		return nil, utils.UserError(utils.CodeInvalid, "Unknown manage option.")
	}
	if err != nil {
		return nil, utils.SysError(utils.CodeCacheUnknown, err)
	}
	return record, nil
}

// EditResult reports a consumed edit draft and the record after mutation.
type EditResult struct {
	Consumed bool
	Record   *model.Record
}

// EditReason consumes the staged edit draft, rewrites the record's reason,
// appends the actor to its editors and re-renders the announcement.
func (s *System) EditReason(ctx context.Context, actor Actor, reason string) (*EditResult, error) {
	var draft model.EditDraft
	found, err := s.cache.Get(ctx, editReasonKey(actor.ID), &draft, true)
	if err != nil {
		return nil, utils.SysError(utils.CodeCacheInvalid, err)
	}
	if !found {
		return &EditResult{}, nil
	}

	reason = utils.EscapeBackticks(reason)
	if err := s.store.UpdateRecordReason(draft.RecordID, reason, actor.ID); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	return s.refreshAnnouncement(ctx, draft.RecordID)
}

// EditAction consumes the staged edit draft, reclassifies the record and
// re-renders the announcement with the recomputed warning count.
func (s *System) EditAction(ctx context.Context, actor Actor, action model.Action) (*EditResult, error) {
	if !action.IsRecordAction() {
		return nil, utils.UserError(utils.CodeInvalid, "Unknown record action.")
	}

	var draft model.EditDraft
	found, err := s.cache.Get(ctx, editActionKey(actor.ID), &draft, true)
	if err != nil {
		return nil, utils.SysError(utils.CodeCacheInvalid, err)
	}
	if !found {
		return &EditResult{}, nil
	}

	if err := s.store.UpdateRecordAction(draft.RecordID, action, actor.ID); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	return s.refreshAnnouncement(ctx, draft.RecordID)
}

// refreshAnnouncement re-renders a record's announcement message from its
// stored state after a mutation.
func (s *System) refreshAnnouncement(ctx context.Context, recordID string) (*EditResult, error) {
	record, err := s.store.GetRecord(recordID)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if record == nil {
		return nil, &utils.SystemError{
			Code:    utils.CodeNotFound,
			Message: "This record no longer exists.",
			Level:   utils.LevelSystem,
			Cause:   fmt.Errorf("no record for message %s", recordID),
		}
	}

	subject, err := s.lookup.User(ctx, record.UserID)
	if err != nil {
		return nil, wrapLookupError(err, fmt.Sprintf("%d", record.UserID))
	}
	avatarURL := s.fetchAvatar(ctx, subject.ID)
	warningCount, err := s.store.CountWarnings(subject.ID)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}

	embed := recordEmbed(record.AuthorID, subject.Name, record.UserID, avatarURL,
		record.Reason, record.Action, warningCount)
	_, err = s.sink.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: s.cfg.RecordChannelID,
		ID:      record.ID,
		Embeds:  &[]*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, fmt.Errorf("announcement refresh: %w", err))
	}
	return &EditResult{Consumed: true, Record: record}, nil
}

// DeleteResult reports a consumed delete confirmation.
type DeleteResult struct {
	Consumed bool
	RecordID string
}

// ConfirmDelete consumes the staged delete draft and removes the record and
// its announcement in lock-step: the row first, then the message. A failed
// message delete after the row is gone is fatal, since the two stores now
// disagree about one key.
func (s *System) ConfirmDelete(ctx context.Context, actor Actor) (*DeleteResult, error) {
	var draft model.DeleteDraft
	found, err := s.cache.Get(ctx, deleteKey(actor.ID), &draft, true)
	if err != nil {
		return nil, utils.SysError(utils.CodeCacheInvalid, err)
	}
	if !found {
		return &DeleteResult{}, nil
	}

	record, err := s.store.GetRecord(draft.RecordID)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if record == nil {
		return nil, &utils.SystemError{
			Code:    utils.CodeNotFound,
			Message: "This record no longer exists.",
			Level:   utils.LevelSystem,
			Cause:   fmt.Errorf("no record for message %s", draft.RecordID),
		}
	}

	if err := s.store.DeleteRecord(record.ID); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if err := s.sink.ChannelMessageDelete(s.cfg.RecordChannelID, record.ID); err != nil {
		return nil, utils.FatalError(utils.CodeOrphanedResource,
			"The record was deleted but its announcement could not be removed.\nPlease notify a system admin.",
			fmt.Errorf("record %s deleted by %s but announcement in %s remains: %w",
				record.ID, actor.ID, s.cfg.RecordChannelID, err))
	}
	return &DeleteResult{Consumed: true, RecordID: record.ID}, nil
}
