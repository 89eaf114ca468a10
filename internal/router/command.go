// Package router is the interaction routing core: a command registry keyed
// by name, a component router matching custom ids by longest registered
// prefix, and the dispatcher that drives both for every inbound
// interaction.
package router

import (
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/storage"
)

// Context carries everything a handler needs for one interaction. It also
// tracks whether the interaction has been acknowledged so the dispatcher
// can edit instead of double-replying when a handler fails late.
type Context struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Store       *storage.Store
	GuildID     string
	UserID      string

	acknowledged bool
}

// Acknowledged reports whether a reply or deferral has been sent.
func (c *Context) Acknowledged() bool {
	return c.acknowledged
}

// Reply sends the initial interaction response.
func (c *Context) Reply(content string, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := c.Session.InteractionRespond(c.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: flags},
	})
	if err == nil {
		c.acknowledged = true
	}
	return err
}

// Defer acknowledges the interaction without visible content, extending
// the response window until Edit is called.
func (c *Context) Defer(ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := c.Session.InteractionRespond(c.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err == nil {
		c.acknowledged = true
	}
	return err
}

// Edit replaces the content of an already-acknowledged response.
func (c *Context) Edit(content string) error {
	_, err := c.Session.InteractionResponseEdit(c.Interaction.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// Handler executes one interaction.
type Handler func(ctx *Context) error

// Command bundles a slash command's declarative schema with its callbacks
// and any component routes it owns. Immutable after registration.
type Command struct {
	Name                     string
	Description              string
	Options                  []*discordgo.ApplicationCommandOption
	DefaultMemberPermissions *int64

	Execute        Handler
	Autocomplete   Handler
	ContextUser    Handler
	ContextMessage Handler

	Buttons map[string]Handler
	Selects map[string]Handler
	Modals  map[string]Handler
}

// ApplicationCommand builds the deployable schema for the command.
func (c *Command) ApplicationCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name,
		Description:              c.Description,
		Options:                  c.Options,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
	}
}

// Registry owns the command bundles, looked up by name.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register accepts cmd into the registry. Bundles without a name or an
// Execute callback are skipped silently; a duplicate name overwrites the
// earlier registration.
func (r *Registry) Register(cmd *Command) {
	if cmd == nil || cmd.Name == "" || cmd.Execute == nil {
		return
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// ApplicationCommands returns the deployable schemas of all registered
// commands, sorted by name for deterministic deployment.
func (r *Registry) ApplicationCommands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd.ApplicationCommand())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
