// Package sentinel implements the moderation workflow: a command stages a
// draft of the intended action, and a follow-up component confirms it into a
// persisted record (or ban request), edits it, or discards it. Drafts live
// in the cachestore keyed by requesting user and prompt message id, and are
// consumed exactly once.
package sentinel

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/model"
	"sentinel-bot/roblox"
)

// Component and modal identifiers routed by the interaction dispatcher.
const (
	CustomIDConfirmRecord     = "sentinel_confirm_record"
	CustomIDConfirmBanRequest = "sentinel_confirm_ban_request"
	CustomIDCancelDraft       = "sentinel_cancel_draft"
	CustomIDManageRecord      = "sentinel_manage_record"
	CustomIDEditAction        = "sentinel_edit_action"
	CustomIDEditReasonModal   = "sentinel_edit_reason"
	CustomIDConfirmDelete     = "sentinel_confirm_delete"
)

// ManageOption selects a mutation of an existing record.
type ManageOption string

const (
	ManageEditReason ManageOption = "EDIT_REASON"
	ManageEditAction ManageOption = "EDIT_ACTION"
	ManageDelete     ManageOption = "DELETE"
)

// Actor is the Discord user driving an interaction.
type Actor struct {
	ID       string
	Username string
}

// Store is the persistence surface the workflow needs.
type Store interface {
	CreateRecord(record model.Record) error
	GetRecord(id string) (*model.Record, error)
	RecordsBySubject(userID int64, before *time.Time) ([]model.Record, error)
	CountWarnings(userID int64) (int, error)
	CountWarningsSince(userID int64, since time.Time) (int, error)
	UpdateRecordReason(id, reason, editorID string) error
	UpdateRecordAction(id string, action model.Action, editorID string) error
	DeleteRecord(id string) error
	CreateBanRequest(request model.BanRequest) error
	PendingBanRequest(userID int64) (*model.BanRequest, error)
}

// Lookup resolves Roblox identities and avatars.
type Lookup interface {
	User(ctx context.Context, id int64) (*roblox.User, error)
	UserByName(ctx context.Context, name string) (*roblox.User, error)
	Avatars(ctx context.Context, ids []int64, size string) ([]roblox.Avatar, error)
}

// MessageSink sends, edits and deletes announcement messages. It is the
// subset of *discordgo.Session the workflow touches.
type MessageSink interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// DraftCache stages serialized workflow state between interactions.
type DraftCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any, del bool) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Config holds the workflow's channel targets and timing.
type Config struct {
	// RecordChannelID receives finalized record announcements.
	RecordChannelID string
	// BanRequestChannelID receives ban requests awaiting approval.
	BanRequestChannelID string
	// DraftTTL bounds how long a staged draft stays confirmable. It must
	// not outlive the interaction token's ~15 minute validity window.
	DraftTTL time.Duration
}

// DefaultDraftTTL matches the interaction token validity window.
const DefaultDraftTTL = 15 * time.Minute

// System is the draft lifecycle controller.
type System struct {
	store  Store
	lookup Lookup
	sink   MessageSink
	cache  DraftCache
	cfg    Config
}

// New wires a System from its collaborators.
func New(store Store, lookup Lookup, sink MessageSink, cache DraftCache, cfg Config) *System {
	if cfg.DraftTTL == 0 {
		cfg.DraftTTL = DefaultDraftTTL
	}
	return &System{
		store:  store,
		lookup: lookup,
		sink:   sink,
		cache:  cache,
		cfg:    cfg,
	}
}
