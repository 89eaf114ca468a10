// Package commands holds the bot's command bundles. All returns the full
// set in its fixed registration order.
package commands

import (
	"fmt"
	"time"

	"github.com/kkaribot/kkaribot/internal/router"
)

// Ping replies immediately, then edits in the measured round-trip time.
func Ping() *router.Command {
	return &router.Command{
		Name:        "ping",
		Description: "Ping",
		Execute: func(ctx *router.Context) error {
			started := time.Now()
			if err := ctx.Reply("Pong!", true); err != nil {
				return err
			}
			return ctx.Edit(fmt.Sprintf("Pong! %dms", time.Since(started).Milliseconds()))
		},
	}
}
