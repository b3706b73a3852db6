package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"sentinel-bot/bot"
	"sentinel-bot/config"
	"sentinel-bot/handlers"
	"sentinel-bot/utils/database/records"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := records.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.CacheAddr,
		Password: cfg.CachePassword,
	})

	b, err := bot.New(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
