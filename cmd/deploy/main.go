// Command deploy upserts the bot's slash-command schemas, globally by
// default or scoped to one guild with --guild. --clear submits an empty
// batch, removing every command in the chosen scope.
package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	flag "github.com/spf13/pflag"

	"github.com/kkaribot/kkaribot/internal/commands"
	"github.com/kkaribot/kkaribot/internal/config"
	"github.com/kkaribot/kkaribot/internal/router"
)

// commandPutter is the one session call deployment needs.
type commandPutter interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// deploy submits the command batch and returns how many schemas it sent.
// An empty guildID targets the global scope.
func deploy(putter commandPutter, appID, guildID string, clear bool) (int, error) {
	var schemas []*discordgo.ApplicationCommand
	if !clear {
		registry := router.NewRegistry()
		// Handlers never run here; the schemas are all deployment needs.
		for _, cmd := range commands.All(nil) {
			registry.Register(cmd)
		}
		schemas = registry.ApplicationCommands()
	}
	if _, err := putter.ApplicationCommandBulkOverwrite(appID, guildID, schemas); err != nil {
		return 0, fmt.Errorf("bulk overwrite commands: %w", err)
	}
	return len(schemas), nil
}

func main() {
	guildID := flag.String("guild", "", "deploy to a single guild instead of globally")
	clear := flag.Bool("clear", false, "deploy an empty command set (removes all commands)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.RequireCredentials(); err != nil {
		fmt.Fprintf(os.Stderr, "deploy: %v\n", err)
		os.Exit(1)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deploy: create session: %v\n", err)
		os.Exit(1)
	}

	count, err := deploy(session, cfg.AppID, *guildID, *clear)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deploy: %v\n", err)
		os.Exit(1)
	}

	if *guildID != "" {
		fmt.Printf("[OK] deployed %d commands to guild %s\n", count, *guildID)
	} else {
		fmt.Printf("[OK] deployed %d global commands\n", count)
	}
}
