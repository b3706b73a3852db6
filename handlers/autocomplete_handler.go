package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/cachestore"
	"sentinel-bot/utils"
)

const (
	autocompleteDelay = 750 * time.Millisecond
	autocompleteLimit = 10
)

// handleAutocomplete suggests Roblox users for the focused "user" option.
// Each keystroke produces an interaction; the throttle keeps only the latest
// one per user alive so the lookup API sees a single request per pause.
func handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if data.Name != "moderate" && data.Name != "lookup" {
		return
	}
	var query string
	for _, opt := range data.Options {
		if opt.Focused && opt.Name == "user" {
			query = strings.TrimSpace(opt.StringValue())
		}
	}

	ctx := context.Background()
	err := b.Cache.Throttle(ctx, []string{"autocomplete", "user", i.Member.User.ID}, i.ID, autocompleteDelay)
	if err != nil {
		if !errors.Is(err, cachestore.ErrSuperseded) {
			log.Printf("Autocomplete throttle failed: %v", err)
		}
		return
	}

	choices := suggestUsers(ctx, b, query)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to autocomplete: %v", err)
	}
}

func suggestUsers(ctx context.Context, b *bot.Bot, query string) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice

	// "#<id>" skips the keyword search and resolves the id directly.
	if raw, ok := strings.CutPrefix(query, "#"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return choices
		}
		user, err := b.Roblox.User(ctx, id)
		if err != nil {
			return choices
		}
		return append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%d)", user.Name, user.ID),
			Value: fmt.Sprintf("%s%d", utils.AutocompleteIDPrefix, user.ID),
		})
	}

	if len(query) < 3 {
		return choices
	}
	results, err := b.Roblox.Search(ctx, query, autocompleteLimit)
	if err != nil {
		log.Printf("Autocomplete search for %q failed: %v", query, err)
		return choices
	}
	for _, result := range results {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%d)", result.Name, result.ID),
			Value: fmt.Sprintf("%s%d", utils.AutocompleteIDPrefix, result.ID),
		})
	}
	return choices
}
