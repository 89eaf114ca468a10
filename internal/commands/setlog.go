package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
)

// SetLog configures the guild's log channel. Gated on Manage Guild.
func SetLog(store *storage.Store) *router.Command {
	manageGuild := int64(discordgo.PermissionManageGuild)
	return &router.Command{
		Name:                     "setlog",
		Description:              "Set the log channel",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Log channel",
				Required:    true,
			},
		},
		Execute: func(ctx *router.Context) error {
			if err := ctx.Defer(true); err != nil {
				return err
			}
			channelID := ctx.Options().ChannelID("channel")
			if channelID == "" {
				return ctx.Edit("A channel is required.")
			}
			settings := store.Settings(ctx.GuildID)
			settings.LogChannelID = &channelID
			if err := store.SetSettings(ctx.GuildID, settings); err != nil {
				return err
			}
			return ctx.Edit(fmt.Sprintf("Log channel set: <#%s>", channelID))
		},
	}
}
