package model

import "time"

// Config holds the bot configuration loaded from the environment.
type Config struct {
	BotToken string
	AppID    string
	GuildID  string

	// LogChannelID receives operational log embeds. Logging is disabled
	// when empty.
	LogChannelID string

	// RecordChannelID is where finalized record announcements are posted.
	RecordChannelID string
	// BanRequestChannelID is where ban requests await escalated approval.
	BanRequestChannelID string

	// SURoleIDs are the role ids allowed to ban directly and to manage
	// other people's records.
	SURoleIDs []string

	CacheAddr     string
	CachePassword string

	DatabasePath string

	RobloxUserAPI      string
	RobloxThumbnailAPI string

	// DraftTTL bounds how long a staged moderation draft stays
	// confirmable. It must not outlive the interaction token window.
	DraftTTL time.Duration
}
