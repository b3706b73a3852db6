package sentinel

import (
	"context"

	"sentinel-bot/cachestore"
	"sentinel-bot/model"
)

// Draft keys follow the cachestore path convention: the moderation draft is
// keyed by requesting user and prompt message id; manage-flow drafts are
// keyed by requesting user and the component consuming them, since their
// prompt message id is not known until after staging.

func draftKey(actorID, messageID string) string {
	return cachestore.Key("cache", actorID, messageID)
}

func editReasonKey(actorID string) string {
	return cachestore.Key("cache", actorID, "modal", CustomIDEditReasonModal)
}

func editActionKey(actorID string) string {
	return cachestore.Key("cache", actorID, "menu", CustomIDEditAction)
}

func deleteKey(actorID string) string {
	return cachestore.Key("cache", actorID, "button", CustomIDConfirmDelete)
}

// StageDraft stores a moderation draft under the prompt message that was
// just rendered for it. From here until TTL expiry the draft is confirmable.
func (s *System) StageDraft(ctx context.Context, actor Actor, messageID string, draft model.Draft) error {
	return s.cache.Set(ctx, draftKey(actor.ID, messageID), draft, s.cfg.DraftTTL)
}

// Cancel discards a staged draft. The prompt message is left for the
// handler to put into its terminal state.
func (s *System) Cancel(ctx context.Context, actor Actor, messageID string) error {
	return s.cache.Delete(ctx, draftKey(actor.ID, messageID))
}
