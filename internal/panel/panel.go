// Package panel hosts the single live admin-panel message: one embed with
// four buttons that update the bot's source, redeploy its commands,
// restart the process, or refresh the display. Actions are gated on the
// administrator permission and run through the external task runner.
package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/audit"
	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
	"github.com/kkaribot/kkaribot/internal/task"
	"github.com/kkaribot/kkaribot/pkg/log"
)

const (
	// CustomIDPrefix routes every panel button through one component route.
	CustomIDPrefix = "botctl:"

	buttonUpdate  = "botctl:gitpull"
	buttonDeploy  = "botctl:deploy"
	buttonRestart = "botctl:restart"
	buttonRefresh = "botctl:refresh"

	// StateFile is the panel's persisted record in the target guild's
	// data directory.
	StateFile = "admin_panel.json"

	statusInProgress = "in-progress"
	statusSuccess    = "success"
	statusError      = "error"

	outputLimit = 1800

	colorNeutral = 0x3b82f6
	colorSuccess = 0x22c55e
	colorError   = 0xef4444
)

// State tracks the live panel message so it can be edited in place. At
// most one message is tracked per panel; a missing message is recreated
// and the record overwritten.
type State struct {
	MessageID  string `json:"messageId,omitempty"`
	ChannelID  string `json:"channelId,omitempty"`
	LastAction string `json:"lastAction,omitempty"`
	LastStatus string `json:"lastStatus,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Actions are the argv vectors the buttons execute.
type Actions struct {
	Update  []string
	Deploy  []string
	Restart []string
}

func DefaultActions() Actions {
	return Actions{
		Update:  []string{"git", "pull", "origin", "main"},
		Deploy:  []string{"./deploy"},
		Restart: []string{"systemctl", "restart", "kkaribot"},
	}
}

// Panel binds the fixed guild/channel, the persisted state, and the task
// runner together.
type Panel struct {
	guildID   string
	channelID string
	store     *storage.Store
	auditLog  *audit.Store // optional
	runner    task.Runner
	actions   Actions
}

func New(guildID, channelID string, store *storage.Store, auditLog *audit.Store) *Panel {
	return &Panel{
		guildID:   guildID,
		channelID: channelID,
		store:     store,
		auditLog:  auditLog,
		runner: task.Runner{
			Dir:       ".",
			Timeout:   5 * time.Minute,
			MaxOutput: 5 << 20,
		},
		actions: DefaultActions(),
	}
}

// SetActions overrides the default action argv vectors.
func (p *Panel) SetActions(actions Actions) {
	p.actions = actions
}

// Register wires the panel's button route into the dispatcher.
func (p *Panel) Register(d *router.Dispatcher) {
	d.RegisterComponent(router.KindButton, CustomIDPrefix, p.HandleButton)
}

// Setup ensures the panel message exists. Called on ready.
func (p *Panel) Setup(s *discordgo.Session) {
	if _, err := p.ensureMessage(s); err != nil {
		log.Errorf("admin panel setup: %v", err)
	}
}

// readState returns the persisted panel record, zero on any read failure.
func (p *Panel) readState() State {
	return storage.Read(p.store, p.guildID, StateFile, State{})
}

// ensureMessage finds the tracked panel message, recreating it (and
// overwriting the record) when it is gone.
func (p *Panel) ensureMessage(s *discordgo.Session) (*discordgo.Message, error) {
	if err := p.store.EnsureGuild(p.guildID); err != nil {
		return nil, err
	}
	state := p.readState()
	if state.MessageID != "" {
		if msg, err := s.ChannelMessage(p.channelID, state.MessageID); err == nil {
			return msg, nil
		}
	}
	msg, err := s.ChannelMessageSendComplex(p.channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{p.embed(state)},
		Components: p.rows(),
	})
	if err != nil {
		return nil, fmt.Errorf("send panel message: %w", err)
	}
	state.MessageID = msg.ID
	state.ChannelID = p.channelID
	if err := storage.Write(p.store, p.guildID, StateFile, state); err != nil {
		return nil, err
	}
	return msg, nil
}

// apply patches the persisted state and re-renders the panel message.
func (p *Panel) apply(s *discordgo.Session, patch func(*State)) error {
	next, err := storage.Update(p.store, p.guildID, StateFile, State{}, func(st State) State {
		patch(&st)
		st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return st
	})
	if err != nil {
		return err
	}
	msg, err := p.ensureMessage(s)
	if err != nil {
		return err
	}
	embeds := []*discordgo.MessageEmbed{p.embed(next)}
	components := p.rows()
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         msg.ID,
		Channel:    p.channelID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

// HandleButton processes one botctl button press.
func (p *Panel) HandleButton(ctx *router.Context) error {
	i := ctx.Interaction
	if ctx.GuildID != p.guildID || i.ChannelID != p.channelID {
		return nil
	}

	if !isAdministrator(i) {
		return ctx.Reply("Administrators only.", true)
	}

	if err := ctx.Defer(true); err != nil {
		return err
	}

	customID := i.MessageComponentData().CustomID

	var action string
	var argv []string
	switch customID {
	case buttonUpdate:
		action = "update source (git pull origin main)"
		argv = p.actions.Update
	case buttonDeploy:
		action = "redeploy commands"
		argv = p.actions.Deploy
	case buttonRestart:
		action = "restart process"
		argv = p.actions.Restart
	case buttonRefresh:
		if err := p.apply(ctx.Session, func(*State) {}); err != nil {
			return err
		}
		return ctx.Edit("Panel refreshed.")
	default:
		return ctx.Edit("Unknown panel action.")
	}

	if err := p.apply(ctx.Session, func(st *State) {
		st.LastAction = action
		st.LastStatus = statusInProgress
	}); err != nil {
		return err
	}

	stdout, stderr, runErr := p.runner.Run(context.Background(), argv[0], argv[1:]...)
	output := combineOutput(stdout, stderr)

	if runErr != nil {
		if err := p.apply(ctx.Session, func(st *State) {
			st.LastStatus = statusError
		}); err != nil {
			log.Errorf("persist panel error status: %v", err)
		}
		p.record(ctx.UserID, action, statusError, runErr.Error())
		return ctx.Edit(fmt.Sprintf("Failed: %s\n```\n%s\n```", action, truncate(output+"\n"+runErr.Error(), outputLimit)))
	}

	if err := p.apply(ctx.Session, func(st *State) {
		st.LastStatus = statusSuccess
	}); err != nil {
		log.Errorf("persist panel success status: %v", err)
	}
	p.record(ctx.UserID, action, statusSuccess, "")
	if output == "" {
		output = "(no output)"
	}
	return ctx.Edit(fmt.Sprintf("Done: %s\n```\n%s\n```", action, truncate(output, outputLimit)))
}

func (p *Panel) record(userID, action, status, detail string) {
	if p.auditLog == nil {
		return
	}
	if err := p.auditLog.RecordPanelAction(p.guildID, userID, action, status, detail); err != nil {
		log.Errorf("record panel action: %v", err)
	}
}

func isAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func (p *Panel) rows() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{CustomID: buttonUpdate, Label: "Update bot", Style: discordgo.PrimaryButton},
				discordgo.Button{CustomID: buttonDeploy, Label: "Update commands", Style: discordgo.PrimaryButton},
				discordgo.Button{CustomID: buttonRestart, Label: "Restart bot", Style: discordgo.DangerButton},
				discordgo.Button{CustomID: buttonRefresh, Label: "Refresh", Style: discordgo.SecondaryButton},
			},
		},
	}
}

func (p *Panel) embed(state State) *discordgo.MessageEmbed {
	color := colorNeutral
	switch state.LastStatus {
	case statusSuccess:
		color = colorSuccess
	case statusError:
		color = colorError
	}
	return &discordgo.MessageEmbed{
		Title:       "Bot admin panel",
		Description: "Operational controls for this bot.",
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target guild", Value: p.guildID, Inline: true},
			{Name: "Target channel", Value: p.channelID, Inline: true},
			{Name: "Last action", Value: orDash(state.LastAction), Inline: true},
			{Name: "Result", Value: orDash(state.LastStatus), Inline: true},
			{Name: "Updated", Value: orDash(state.UpdatedAt), Inline: true},
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func combineOutput(stdout, stderr string) string {
	switch {
	case stdout != "" && stderr != "":
		return "STDOUT:\n" + stdout + "\n\nSTDERR:\n" + stderr
	case stderr != "":
		return "STDERR:\n" + stderr
	default:
		return stdout
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
