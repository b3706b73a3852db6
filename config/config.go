package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sentinel-bot/model"
	"sentinel-bot/roblox"
	"sentinel-bot/sentinel"
)

// Load reads the configuration from the environment, with a .env file as a
// convenience for local runs.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("CACHE_ADDR", "localhost:6379")
	v.SetDefault("DATABASE_PATH", "data/sentinel.db")
	v.SetDefault("ROBLOX_USER_API", roblox.DefaultUserAPI)
	v.SetDefault("ROBLOX_THUMBNAIL_API", roblox.DefaultThumbnailAPI)
	v.SetDefault("DRAFT_TTL", sentinel.DefaultDraftTTL)

	token := v.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}
	appID := v.GetString("APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}
	guildID := v.GetString("GUILD_ID")
	if guildID == "" {
		return nil, fmt.Errorf("GUILD_ID environment variable not set")
	}
	recordChannelID := v.GetString("SENTINEL_CHANNEL_ID")
	if recordChannelID == "" {
		return nil, fmt.Errorf("SENTINEL_CHANNEL_ID environment variable not set")
	}
	banRequestChannelID := v.GetString("SENTINEL_BR_CHANNEL_ID")
	if banRequestChannelID == "" {
		return nil, fmt.Errorf("SENTINEL_BR_CHANNEL_ID environment variable not set")
	}

	logChannelID := v.GetString("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	var suRoleIDs []string
	for _, id := range strings.Split(v.GetString("SENTINEL_SU_ROLES"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			suRoleIDs = append(suRoleIDs, id)
		}
	}
	if len(suRoleIDs) == 0 {
		log.Println("Warning: SENTINEL_SU_ROLES not set, bans will always be downgraded to ban requests")
	}

	return &model.Config{
		BotToken:            token,
		AppID:               appID,
		GuildID:             guildID,
		LogChannelID:        logChannelID,
		RecordChannelID:     recordChannelID,
		BanRequestChannelID: banRequestChannelID,
		SURoleIDs:           suRoleIDs,
		CacheAddr:           v.GetString("CACHE_ADDR"),
		CachePassword:       v.GetString("CACHE_PASSWORD"),
		DatabasePath:        v.GetString("DATABASE_PATH"),
		RobloxUserAPI:       v.GetString("ROBLOX_USER_API"),
		RobloxThumbnailAPI:  v.GetString("ROBLOX_THUMBNAIL_API"),
		DraftTTL:            v.GetDuration("DRAFT_TTL"),
	}, nil
}
