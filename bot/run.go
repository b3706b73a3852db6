package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentinel-bot/commands"
	"sentinel-bot/utils"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	cfg := b.GetConfig()
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), cfg.GuildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, cfg.GuildID, cmds)
	if err != nil {
		log.Fatalf("cannot register commands for guild '%s': %v", cfg.GuildID, err)
	}
	b.RegisteredCommands = registered

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, cfg.LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
