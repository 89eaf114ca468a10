package commands

import (
	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
)

// All returns every command bundle in registration order. The order is
// fixed: a later bundle reusing a name overwrites the earlier one.
func All(store *storage.Store) []*router.Command {
	return []*router.Command{
		Ping(),
		SetLog(store),
		Balance(store),
		Pay(store),
		Daily(store),
	}
}
