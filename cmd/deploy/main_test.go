package main

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putterFake struct {
	appID   string
	guildID string
	batch   []*discordgo.ApplicationCommand
	calls   int
}

func (f *putterFake) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.appID = appID
	f.guildID = guildID
	f.batch = commands
	f.calls++
	return commands, nil
}

func TestDeployGlobalSubmitsAllCommands(t *testing.T) {
	putter := &putterFake{}

	count, err := deploy(putter, "app-id", "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, putter.calls)
	assert.Equal(t, "app-id", putter.appID)
	assert.Empty(t, putter.guildID, "no guild flag means global scope")
	assert.Equal(t, len(putter.batch), count)
	assert.NotZero(t, count)

	names := make([]string, 0, len(putter.batch))
	for _, c := range putter.batch {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "ping")
	assert.Contains(t, names, "setlog")
}

func TestDeployGuildScope(t *testing.T) {
	putter := &putterFake{}

	_, err := deploy(putter, "app-id", "guild-1", false)
	require.NoError(t, err)
	assert.Equal(t, "guild-1", putter.guildID)
}

func TestDeployClearSubmitsEmptyGlobalBatch(t *testing.T) {
	putter := &putterFake{}

	count, err := deploy(putter, "app-id", "", true)
	require.NoError(t, err)

	assert.Equal(t, 1, putter.calls)
	assert.Empty(t, putter.guildID)
	assert.Empty(t, putter.batch)
	assert.Zero(t, count)
}
