package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
)

type replyRecorder struct {
	mu       sync.Mutex
	contents []string
}

func (r *replyRecorder) add(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contents = append(r.contents, content)
}

func (r *replyRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.contents...)
}

func newTestSession(t *testing.T) (*discordgo.Session, *replyRecorder) {
	t.Helper()
	rec := &replyRecorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/callback"):
			var resp discordgo.InteractionResponse
			_ = json.NewDecoder(r.Body).Decode(&resp)
			if resp.Data != nil {
				rec.add(resp.Data.Content)
			}
			_, _ = w.Write([]byte("{}"))
		case r.Method == http.MethodPatch:
			var edit struct {
				Content string `json:"content"`
			}
			_ = json.NewDecoder(r.Body).Decode(&edit)
			rec.add(edit.Content)
			_, _ = w.Write([]byte("{}"))
		case strings.Contains(r.URL.Path, "/users/"):
			parts := strings.Split(strings.TrimRight(r.URL.Path, "/"), "/")
			id := parts[len(parts)-1]
			_, _ = fmt.Fprintf(w, `{"id":%q,"username":%q}`, id, id)
		default:
			_, _ = w.Write([]byte("{}"))
		}
	}))
	t.Cleanup(server.Close)

	oldAPI := discordgo.EndpointAPI
	oldWebhooks := discordgo.EndpointWebhooks
	discordgo.EndpointAPI = server.URL + "/"
	discordgo.EndpointWebhooks = server.URL + "/webhooks/"
	t.Cleanup(func() {
		discordgo.EndpointAPI = oldAPI
		discordgo.EndpointWebhooks = oldWebhooks
	})

	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	return session, rec
}

func commandContext(s *discordgo.Session, store *storage.Store, name, guildID, userID string, options []*discordgo.ApplicationCommandInteractionDataOption) *router.Context {
	return &router.Context{
		Session: s,
		Interaction: &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{
				ID:      "interaction-" + name,
				AppID:   "app",
				Token:   "token",
				Type:    discordgo.InteractionApplicationCommand,
				GuildID: guildID,
				Member:  &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}},
				Data:    discordgo.ApplicationCommandInteractionData{ID: "cmd", Name: name, Options: options},
			},
		},
		Store:   store,
		GuildID: guildID,
		UserID:  userID,
	}
}

func userOption(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionUser,
		Name:  name,
		Value: userID,
	}
}

func intOption(name string, v int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionInteger,
		Name:  name,
		Value: float64(v),
	}
}

func TestBalanceDefaultsToInvoker(t *testing.T) {
	session, rec := newTestSession(t)
	store := storage.NewStore(t.TempDir())
	_, err := store.SetUserBalance("g1", "u1", 250)
	require.NoError(t, err)

	ctx := commandContext(session, store, "balance", "g1", "u1", nil)
	require.NoError(t, Balance(store).Execute(ctx))

	replies := rec.all()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "<@u1>")
	assert.Contains(t, replies[0], "250")
}

func TestPayMovesCoins(t *testing.T) {
	session, _ := newTestSession(t)
	store := storage.NewStore(t.TempDir())
	_, err := store.SetUserBalance("g1", "u1", 100)
	require.NoError(t, err)

	ctx := commandContext(session, store, "pay", "g1", "u1", []*discordgo.ApplicationCommandInteractionDataOption{
		userOption("user", "u2"),
		intOption("amount", 30),
	})
	require.NoError(t, Pay(store).Execute(ctx))

	assert.Equal(t, 70.0, store.UserBalance("g1", "u1"))
	assert.Equal(t, 30.0, store.UserBalance("g1", "u2"))
}

func TestPayRejectsInsufficientFunds(t *testing.T) {
	session, rec := newTestSession(t)
	store := storage.NewStore(t.TempDir())

	ctx := commandContext(session, store, "pay", "g1", "u1", []*discordgo.ApplicationCommandInteractionDataOption{
		userOption("user", "u2"),
		intOption("amount", 30),
	})
	require.NoError(t, Pay(store).Execute(ctx))

	assert.Equal(t, 0.0, store.UserBalance("g1", "u1"))
	assert.Equal(t, 0.0, store.UserBalance("g1", "u2"))
	replies := rec.all()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "not have enough")
}

func TestPayRejectsSelf(t *testing.T) {
	session, rec := newTestSession(t)
	store := storage.NewStore(t.TempDir())
	_, err := store.SetUserBalance("g1", "u1", 100)
	require.NoError(t, err)

	ctx := commandContext(session, store, "pay", "g1", "u1", []*discordgo.ApplicationCommandInteractionDataOption{
		userOption("user", "u1"),
		intOption("amount", 30),
	})
	require.NoError(t, Pay(store).Execute(ctx))

	assert.Equal(t, 100.0, store.UserBalance("g1", "u1"))
	replies := rec.all()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "yourself")
}

func TestDailyGrantsOncePerDay(t *testing.T) {
	session, rec := newTestSession(t)
	store := storage.NewStore(t.TempDir())
	cmd := Daily(store)

	require.NoError(t, cmd.Execute(commandContext(session, store, "daily", "g1", "u1", nil)))
	assert.Equal(t, float64(dailyStipend), store.UserBalance("g1", "u1"))

	require.NoError(t, cmd.Execute(commandContext(session, store, "daily", "g1", "u1", nil)))
	assert.Equal(t, float64(dailyStipend), store.UserBalance("g1", "u1"), "second collection same day must not grant")

	replies := rec.all()
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Already collected")
}

func TestSetLogUpdatesSettings(t *testing.T) {
	session, rec := newTestSession(t)
	store := storage.NewStore(t.TempDir())

	ctx := commandContext(session, store, "setlog", "g1", "u1", []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Type:  discordgo.ApplicationCommandOptionChannel,
			Name:  "channel",
			Value: "chan-9",
		},
	})
	require.NoError(t, SetLog(store).Execute(ctx))

	settings := store.Settings("g1")
	require.NotNil(t, settings.LogChannelID)
	assert.Equal(t, "chan-9", *settings.LogChannelID)

	replies := rec.all()
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[len(replies)-1], "<#chan-9>")
}
