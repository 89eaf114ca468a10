package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "ping", Execute: func(*Context) error { return nil }})

	cmd, ok := r.Lookup("ping")
	require.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)

	_, ok = r.Lookup("absent")
	assert.False(t, ok)
}

func TestRegistrySkipsIncompleteBundles(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	r.Register(&Command{Name: "", Execute: func(*Context) error { return nil }})
	r.Register(&Command{Name: "noexec"})

	assert.Empty(t, r.ApplicationCommands())
}

func TestRegistryDuplicateLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "dup", Description: "first", Execute: func(*Context) error { return nil }})
	r.Register(&Command{Name: "dup", Description: "second", Execute: func(*Context) error { return nil }})

	cmd, ok := r.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, "second", cmd.Description)
	assert.Len(t, r.ApplicationCommands(), 1)
}

func TestRegistryApplicationCommandsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(&Command{Name: name, Execute: func(*Context) error { return nil }})
	}

	schemas := r.ApplicationCommands()
	require.Len(t, schemas, 3)
	assert.Equal(t, "alpha", schemas[0].Name)
	assert.Equal(t, "mid", schemas[1].Name)
	assert.Equal(t, "zeta", schemas[2].Name)
}
