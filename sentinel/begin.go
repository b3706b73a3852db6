package sentinel

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sentinel-bot/model"
	"sentinel-bot/roblox"
	"sentinel-bot/utils"
)

// BeginResult carries everything the handler needs to render the
// confirmation prompt for a new moderation draft.
type BeginResult struct {
	Draft   model.Draft
	Subject *roblox.User
	History []model.Record
}

// Begin starts a moderation workflow: it resolves the subject, enriches it
// with an avatar (best effort), snapshots the subject's warning count and
// builds the draft awaiting confirmation. A Ban by an unprivileged actor is
// silently downgraded to a ban request; a downgrade fails fast when the
// subject already has one pending.
//
// The caller renders the prompt and then stages the draft against the
// resulting message id via StageDraft.
func (s *System) Begin(ctx context.Context, query, reason string, action model.Action, actor Actor, privileged bool) (*BeginResult, error) {
	subject, err := s.resolveSubject(ctx, query)
	if err != nil {
		return nil, err
	}

	avatarURL := s.fetchAvatar(ctx, subject.ID)

	warningCount, err := s.store.CountWarnings(subject.ID)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}
	history, err := s.store.RecordsBySubject(subject.ID, nil)
	if err != nil {
		return nil, utils.SysError(utils.CodeUnknown, err)
	}

	if action == model.ActionBan && !privileged {
		action = model.ActionBanRequest
	}
	if action == model.ActionBanRequest {
		pending, err := s.store.PendingBanRequest(subject.ID)
		if err != nil {
			return nil, utils.SysError(utils.CodeUnknown, err)
		}
		if pending != nil {
			return nil, duplicateBanRequestError(subject.Name)
		}
	}

	return &BeginResult{
		Draft: model.Draft{
			SubjectID:        model.Int64(subject.ID),
			SubjectName:      subject.Name,
			SubjectAvatarURL: avatarURL,
			Reason:           utils.EscapeBackticks(reason),
			Action:           action,
			WarningCount:     warningCount,
		},
		Subject: subject,
		History: history,
	}, nil
}

// resolveSubject turns the raw command input into a profile. Identifier
// input (the "::" autocomplete prefix) is looked up directly; everything
// else is validated as a username before any external call is made.
func (s *System) resolveSubject(ctx context.Context, query string) (*roblox.User, error) {
	if id, ok := utils.ExtractAutocompleteID(query); ok {
		subject, err := s.lookup.User(ctx, id)
		if err != nil {
			return nil, wrapLookupError(err, query)
		}
		return subject, nil
	}
	if err := roblox.ValidateUsername(query); err != nil {
		return nil, wrapLookupError(err, query)
	}
	subject, err := s.lookup.UserByName(ctx, query)
	if err != nil {
		return nil, wrapLookupError(err, query)
	}
	return subject, nil
}

// fetchAvatar is best-effort enrichment: one retry on a transient thumbnail
// state, then the workflow proceeds without an avatar. It never fails the
// moderation action.
func (s *System) fetchAvatar(ctx context.Context, userID int64) string {
	for attempt := 0; attempt < 2; attempt++ {
		avatars, err := s.lookup.Avatars(ctx, []int64{userID}, "720x720")
		if err != nil {
			log.Printf("avatar lookup for %d failed: %v", userID, err)
			return ""
		}
		if len(avatars) == 0 {
			return ""
		}
		switch avatars[0].State {
		case roblox.AvatarCompleted:
			return avatars[0].ImageURL
		case roblox.AvatarPending, roblox.AvatarTemporarilyUnavailable, roblox.AvatarError:
			continue
		case roblox.AvatarBlocked, roblox.AvatarInReview:
			return ""
		default:
			return ""
		}
	}
	return ""
}

func wrapLookupError(err error, query string) error {
	switch {
	case errors.Is(err, roblox.ErrUserTooShort):
		return utils.UserError(utils.CodeInvalid, "The username is too short.\nUsernames have at least 3 characters.")
	case errors.Is(err, roblox.ErrUserInvalid):
		return utils.UserError(utils.CodeInvalid, "That does not look like a Roblox username.")
	case errors.Is(err, roblox.ErrUserNotFound):
		return utils.UserError(utils.CodeNotFound, fmt.Sprintf("No Roblox user was found for ` %s `.", utils.EscapeBackticks(query)))
	case errors.Is(err, roblox.ErrRateLimited):
		return utils.SysError(utils.CodeLookupFailed, err)
	default:
		return utils.SysError(utils.CodeLookupFailed, err)
	}
}

func duplicateBanRequestError(subjectName string) error {
	return utils.UserError(utils.CodeDuplicateResource,
		fmt.Sprintf("The user ` %s ` already has a pending ban request.", subjectName))
}
