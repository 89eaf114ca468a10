// Command kkaribot is the bot entry point: it assembles the store, the
// dispatcher, the notification sink, the audit store, and the admin panel,
// then serves interactions until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/audit"
	"github.com/kkaribot/kkaribot/internal/commands"
	"github.com/kkaribot/kkaribot/internal/config"
	"github.com/kkaribot/kkaribot/internal/notify"
	"github.com/kkaribot/kkaribot/internal/panel"
	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
	"github.com/kkaribot/kkaribot/pkg/log"
)

func main() {
	if err := run(); err != nil {
		log.Errorf("Fatal: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	if err := log.Setup(cfg.LogDir); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer log.Close()

	if cfg.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN not set in environment or .env file")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildPresences

	store := storage.NewStore(cfg.DataDir)

	auditStore := audit.NewStore(cfg.AuditDBPath)
	if err := auditStore.Init(); err != nil {
		return fmt.Errorf("initialize audit store: %w", err)
	}
	defer auditStore.Close()

	notifier := notify.New(session, store, cfg.OwnerChannelID)
	defer notifier.Close()

	dispatcher := router.NewDispatcher(router.NewRegistry(), router.NewComponentRouter(), store)
	dispatcher.SetAuditSink(notifier)
	dispatcher.SetRecorder(auditStore)
	for _, cmd := range commands.All(store) {
		dispatcher.Register(cmd)
	}

	var adminPanel *panel.Panel
	if cfg.PanelConfigured() {
		adminPanel = panel.New(cfg.PanelGuildID, cfg.PanelChannelID, store, auditStore)
		adminPanel.Register(dispatcher)
	}

	session.AddHandler(dispatcher.HandleFunc())

	session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		for _, g := range r.Guilds {
			if err := store.EnsureGuild(g.ID); err != nil {
				log.Errorf("ensure guild %s: %v", g.ID, err)
			}
		}
		if cfg.AppID != "" {
			schemas := dispatcher.Registry().ApplicationCommands()
			if _, err := s.ApplicationCommandBulkOverwrite(cfg.AppID, "", schemas); err != nil {
				log.Errorf("deploy commands on startup: %v", err)
			} else {
				log.Infof(log.Discord, "Deployed %d global commands", len(schemas))
			}
		}
		if adminPanel != nil {
			adminPanel.Setup(s)
		}
		log.Infof(log.Discord, "✅ Logged in as %s", r.User.String())
		notifier.OwnerLog(fmt.Sprintf("Logged in as %s", r.User.String()))
	})

	session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if err := store.EnsureGuild(g.ID); err != nil {
			log.Errorf("ensure guild %s: %v", g.ID, err)
		}
		notifier.OwnerLog(fmt.Sprintf("Joined guild: %s (%s)", g.Name, g.ID))
	})

	session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		// Guild state is orphaned on purpose; nothing is deleted.
		notifier.OwnerLog(fmt.Sprintf("Removed from guild: %s", g.ID))
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer session.Close()

	log.Info(log.Application, "🚀 kkaribot is running. Press Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info(log.Application, "Shutting down...")
	return nil
}
