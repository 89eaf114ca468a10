package router

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/storage"
	"github.com/kkaribot/kkaribot/pkg/log"
)

const (
	msgUnsupportedButton = "Unsupported button."
	msgUnsupportedSelect = "Unsupported select menu."
	msgUnsupportedModal  = "Unsupported modal."
	msgHandlerFailed     = "Something went wrong while handling that."
)

// AuditSink receives fire-and-forget audit lines. Implementations must not
// block; see internal/notify.
type AuditSink interface {
	GuildLog(guildID, content string)
	OwnerLog(content string)
}

// InvocationRecorder persists an audit record per successful command.
type InvocationRecorder interface {
	RecordCommand(guildID, userID, name, status, detail string) error
}

// Dispatcher is the single entry point for inbound interactions. It
// classifies each event, gates non-guild interactions, ensures guild state
// exists, resolves the handler through the registry or the component
// router, and converts any failure into a user-visible fallback plus an
// owner-facing log line. It never lets one bad interaction take the event
// loop down.
type Dispatcher struct {
	registry   *Registry
	components *ComponentRouter
	store      *storage.Store
	sink       AuditSink          // optional
	recorder   InvocationRecorder // optional
}

func NewDispatcher(registry *Registry, components *ComponentRouter, store *storage.Store) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		components: components,
		store:      store,
	}
}

// SetAuditSink wires the notification sink for command audit lines and
// error reports. A nil sink disables both.
func (d *Dispatcher) SetAuditSink(sink AuditSink) {
	d.sink = sink
}

// SetRecorder wires the durable invocation recorder.
func (d *Dispatcher) SetRecorder(recorder InvocationRecorder) {
	d.recorder = recorder
}

// Register adds a command bundle: the command itself into the registry and
// its exported component maps into the three route tables.
func (d *Dispatcher) Register(cmd *Command) {
	d.registry.Register(cmd)
	if cmd == nil {
		return
	}
	for prefix, handler := range cmd.Buttons {
		d.components.Register(KindButton, prefix, handler)
	}
	for prefix, handler := range cmd.Selects {
		d.components.Register(KindSelect, prefix, handler)
	}
	for prefix, handler := range cmd.Modals {
		d.components.Register(KindModal, prefix, handler)
	}
}

// RegisterComponent adds a standalone component route outside any command
// bundle (the admin panel registers its buttons this way).
func (d *Dispatcher) RegisterComponent(kind ComponentKind, prefix string, handler Handler) {
	d.components.Register(kind, prefix, handler)
}

// Registry exposes the registry for deployment.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// HandleFunc adapts the dispatcher to discordgo's handler signature.
func (d *Dispatcher) HandleFunc() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		d.Dispatch(s, i)
	}
}

// Dispatch processes one interaction. Terminal in every branch: it always
// returns normally, whatever the handler did.
func (d *Dispatcher) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := d.buildContext(s, i)

	defer func() {
		if r := recover(); r != nil {
			d.reportFailure(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		d.dispatchAutocomplete(ctx)
	case discordgo.InteractionApplicationCommand:
		if !d.enterGuildScope(ctx) {
			return
		}
		d.dispatchCommand(ctx)
	case discordgo.InteractionMessageComponent:
		if !d.enterGuildScope(ctx) {
			return
		}
		d.dispatchComponent(ctx)
	case discordgo.InteractionModalSubmit:
		if !d.enterGuildScope(ctx) {
			return
		}
		d.dispatchModal(ctx)
	}
}

func (d *Dispatcher) buildContext(s *discordgo.Session, i *discordgo.InteractionCreate) *Context {
	ctx := &Context{
		Session:     s,
		Interaction: i,
		Store:       d.store,
		GuildID:     i.GuildID,
	}
	if i.Member != nil && i.Member.User != nil {
		ctx.UserID = i.Member.User.ID
	} else if i.User != nil {
		ctx.UserID = i.User.ID
	}
	return ctx
}

// enterGuildScope drops direct-message interactions and lazily creates the
// guild's state. Returns false when dispatch should stop.
func (d *Dispatcher) enterGuildScope(ctx *Context) bool {
	if ctx.GuildID == "" {
		return false
	}
	if err := d.store.EnsureGuild(ctx.GuildID); err != nil {
		d.reportFailure(ctx, fmt.Errorf("ensure guild state: %w", err))
		return false
	}
	return true
}

func (d *Dispatcher) dispatchAutocomplete(ctx *Context) {
	name := ctx.Interaction.ApplicationCommandData().Name
	cmd, ok := d.registry.Lookup(name)
	if !ok || cmd.Autocomplete == nil {
		return
	}
	if err := cmd.Autocomplete(ctx); err != nil {
		log.Errorf("autocomplete /%s failed: %v", name, err)
	}
}

func (d *Dispatcher) dispatchCommand(ctx *Context) {
	data := ctx.Interaction.ApplicationCommandData()
	cmd, ok := d.registry.Lookup(data.Name)
	if !ok {
		// Deregistered between deployment and invocation; nothing to say.
		return
	}

	switch data.CommandType {
	case discordgo.UserApplicationCommand:
		if cmd.ContextUser == nil {
			return
		}
		if err := cmd.ContextUser(ctx); err != nil {
			d.reportFailure(ctx, err)
		}
	case discordgo.MessageApplicationCommand:
		if cmd.ContextMessage == nil {
			return
		}
		if err := cmd.ContextMessage(ctx); err != nil {
			d.reportFailure(ctx, err)
		}
	default:
		if err := cmd.Execute(ctx); err != nil {
			d.reportFailure(ctx, err)
			return
		}
		d.auditSuccess(ctx, data.Name)
	}
}

func (d *Dispatcher) dispatchComponent(ctx *Context) {
	data := ctx.Interaction.MessageComponentData()

	var kind ComponentKind
	switch data.ComponentType {
	case discordgo.ButtonComponent:
		kind = KindButton
	case discordgo.SelectMenuComponent:
		kind = KindSelect
	default:
		return
	}

	d.invokeComponent(ctx, kind, data.CustomID)
}

func (d *Dispatcher) dispatchModal(ctx *Context) {
	d.invokeComponent(ctx, KindModal, ctx.Interaction.ModalSubmitData().CustomID)
}

func (d *Dispatcher) invokeComponent(ctx *Context, kind ComponentKind, customID string) {
	handler, ok := d.components.Route(kind, customID)
	if !ok {
		d.safeReply(ctx, unsupportedMessage(kind))
		return
	}
	if err := handler(ctx); err != nil {
		d.reportFailure(ctx, err)
	}
}

func unsupportedMessage(kind ComponentKind) string {
	switch kind {
	case KindSelect:
		return msgUnsupportedSelect
	case KindModal:
		return msgUnsupportedModal
	default:
		return msgUnsupportedButton
	}
}

// auditSuccess emits the two fire-and-forget audit lines for a completed
// chat command and records it durably.
func (d *Dispatcher) auditSuccess(ctx *Context, name string) {
	actor := d.actorTag(ctx)

	if d.sink != nil {
		d.sink.GuildLog(ctx.GuildID, fmt.Sprintf("[command] %s → /%s", actor, name))
		d.sink.OwnerLog(fmt.Sprintf("[%s] %s → /%s", d.guildName(ctx), actor, name))
	}
	if d.recorder != nil {
		if err := d.recorder.RecordCommand(ctx.GuildID, ctx.UserID, name, "ok", ""); err != nil {
			log.Errorf("record command invocation: %v", err)
		}
	}
}

// reportFailure is the dispatcher's recovery boundary: best-effort
// user-visible error, owner-facing line, operator log. Never escalates.
func (d *Dispatcher) reportFailure(ctx *Context, err error) {
	subject := d.subject(ctx)
	log.Errorf("interaction %s failed: %v", subject, err)

	d.safeReply(ctx, msgHandlerFailed)

	if d.sink != nil {
		d.sink.OwnerLog(fmt.Sprintf("error: %s: %v", subject, err))
	}
}

// safeReply edits the response if the handler already acknowledged the
// interaction, otherwise sends a fresh ephemeral reply. Failures of the
// fallback itself are swallowed.
func (d *Dispatcher) safeReply(ctx *Context, content string) {
	if ctx.Acknowledged() {
		_ = ctx.Edit(content)
		return
	}
	_ = ctx.Reply(content, true)
}

// subject names what the user invoked, for error reporting.
func (d *Dispatcher) subject(ctx *Context) string {
	i := ctx.Interaction
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		return "/" + i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	default:
		return "unknown"
	}
}

func (d *Dispatcher) actorTag(ctx *Context) string {
	i := ctx.Interaction
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.String()
	}
	if i.User != nil {
		return i.User.String()
	}
	return ctx.UserID
}

func (d *Dispatcher) guildName(ctx *Context) string {
	if ctx.Session != nil && ctx.Session.State != nil {
		if g, err := ctx.Session.State.Guild(ctx.GuildID); err == nil && g.Name != "" {
			return g.Name
		}
	}
	return ctx.GuildID
}
