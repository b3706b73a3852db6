package bot

import (
	"log"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"sentinel-bot/cachestore"
	"sentinel-bot/model"
	"sentinel-bot/roblox"
	"sentinel-bot/sentinel"
	"sentinel-bot/utils/database/records"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	Cache              *cachestore.Client
	Roblox             *roblox.Client
	Sentinel           *sentinel.System
	config             atomic.Value // *model.Config
	done               chan struct{}
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func New(cfg *model.Config, db *sqlx.DB, rdb *redis.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	dg.StateEnabled = false

	cache := cachestore.New(rdb)
	rbx := roblox.NewClient(cfg.RobloxUserAPI, cfg.RobloxThumbnailAPI)

	b := &Bot{
		Session: dg,
		DB:      db,
		Cache:   cache,
		Roblox:  rbx,
		Sentinel: sentinel.New(records.New(db), rbx, dg, cache, sentinel.Config{
			RecordChannelID:     cfg.RecordChannelID,
			BanRequestChannelID: cfg.BanRequestChannelID,
			DraftTTL:            cfg.DraftTTL,
		}),
		done: make(chan struct{}),
	}
	b.config.Store(cfg)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done)
	b.Session.Close()
	b.DB.Close()
}
