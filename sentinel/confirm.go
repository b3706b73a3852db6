package sentinel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// ConfirmResult reports what a confirmation did. Consumed is false when no
// draft was found under the key: a double click or a confirmation after TTL
// expiry, both of which are silent no-ops by contract.
type ConfirmResult struct {
	Consumed       bool
	Draft          model.Draft
	AnnouncementID string
}

// Confirm atomically consumes the draft staged under the prompt message and
// finalizes it: ordinary actions become persisted records, the ban-request
// sentinel becomes a pending ban request. The read-and-delete is a single
// step in the backing store, so concurrent confirmations of the same draft
// resolve to exactly one winner.
func (s *System) Confirm(ctx context.Context, actor Actor, messageID string) (*ConfirmResult, error) {
	var draft model.Draft
	found, err := s.cache.Get(ctx, draftKey(actor.ID, messageID), &draft, true)
	if err != nil {
		return nil, utils.SysError(utils.CodeCacheInvalid, err)
	}
	if !found {
		return &ConfirmResult{}, nil
	}

	if draft.Action == model.ActionBanRequest {
		return s.confirmBanRequest(ctx, actor, draft)
	}
	return s.confirmRecord(actor, draft)
}

func (s *System) confirmRecord(actor Actor, draft model.Draft) (*ConfirmResult, error) {
	warningCount := draft.WarningCount
	if draft.Action == model.ActionWarning {
		warningCount++
	}

	announcement, err := s.sink.ChannelMessageSendComplex(s.cfg.RecordChannelID,
		recordAnnouncement(actor, draft, warningCount))
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, fmt.Errorf("record announcement: %w", err))
	}

	record := model.Record{
		ID:        announcement.ID,
		AuthorID:  actor.ID,
		UserID:    int64(draft.SubjectID),
		Reason:    draft.Reason,
		Action:    draft.Action,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.store.CreateRecord(record); err != nil {
		// The announcement is already out; losing the record silently
		// would leave the two stores disagreeing.
		return nil, utils.FatalError(utils.CodeOrphanedResource,
			"The record could not be saved.\nPlease notify a system admin.",
			fmt.Errorf("announcement %s in channel %s by %s at %d has no record: %w",
				announcement.ID, s.cfg.RecordChannelID, actor.ID, record.CreatedAt, err))
	}

	return &ConfirmResult{Consumed: true, Draft: draft, AnnouncementID: announcement.ID}, nil
}

func (s *System) confirmBanRequest(ctx context.Context, actor Actor, draft model.Draft) (*ConfirmResult, error) {
	// Fail fast before anything becomes visible. The store's uniqueness
	// constraint below still decides races this check cannot see.
	pending, err := s.store.PendingBanRequest(int64(draft.SubjectID))
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if pending != nil {
		return nil, duplicateBanRequestError(draft.SubjectName)
	}

	announcement, err := s.sink.ChannelMessageSendComplex(s.cfg.BanRequestChannelID,
		banRequestAnnouncement(actor, draft))
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, fmt.Errorf("ban request announcement: %w", err))
	}

	request := model.BanRequest{
		ID:        announcement.ID,
		AuthorID:  actor.ID,
		UserID:    int64(draft.SubjectID),
		Reason:    draft.Reason,
		State:     model.BanRequestPending,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.store.CreateBanRequest(request); err != nil {
		if errors.Is(err, model.ErrPendingBanRequestExists) {
			// A concurrent request won the race after our check; the
			// announcement just sent is an orphan.
			return nil, utils.FatalError(utils.CodeDuplicateResource,
				fmt.Sprintf("The user ` %s ` already has a pending ban request.", draft.SubjectName),
				fmt.Errorf("orphan ban request announcement %s in channel %s by %s: %w",
					announcement.ID, s.cfg.BanRequestChannelID, actor.ID, err))
		}
		return nil, utils.FatalError(utils.CodeOrphanedResource,
			"The ban request could not be saved.\nPlease notify a system admin.",
			fmt.Errorf("announcement %s in channel %s by %s has no ban request: %w",
				announcement.ID, s.cfg.BanRequestChannelID, actor.ID, err))
	}

	return &ConfirmResult{Consumed: true, Draft: draft, AnnouncementID: announcement.ID}, nil
}
