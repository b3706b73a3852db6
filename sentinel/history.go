package sentinel

import (
	"context"

	"sentinel-bot/model"
	"sentinel-bot/roblox"
	"sentinel-bot/utils"
)

// HistoryResult aggregates a subject's moderation history for /lookup.
type HistoryResult struct {
	Subject           *roblox.User
	AvatarURL         string
	WarningsWeek      int
	WarningsMonth     int
	WarningsTotal     int
	Records           []model.Record
	PendingBanRequest *model.BanRequest
}

// History resolves a subject and collects their records and warning counts.
// beforeDays, when positive, limits the record list to entries older than
// that many days; the warning counters always cover the full history.
func (s *System) History(ctx context.Context, query string, beforeDays int) (*HistoryResult, error) {
	subject, err := s.resolveSubject(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{
		Subject:   subject,
		AvatarURL: s.fetchAvatar(ctx, subject.ID),
	}

	if result.WarningsWeek, err = s.store.CountWarningsSince(subject.ID, utils.DaysAgo(7)); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if result.WarningsMonth, err = s.store.CountWarningsSince(subject.ID, utils.DaysAgo(30)); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	if result.WarningsTotal, err = s.store.CountWarnings(subject.ID); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}

	if beforeDays > 0 {
		cutoff := utils.DaysAgo(beforeDays)
		result.Records, err = s.store.RecordsBySubject(subject.ID, &cutoff)
	} else {
		result.Records, err = s.store.RecordsBySubject(subject.ID, nil)
	}
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}

	if result.PendingBanRequest, err = s.store.PendingBanRequest(subject.ID); err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	return result, nil
}
