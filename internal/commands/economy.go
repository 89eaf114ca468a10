package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/router"
	"github.com/kkaribot/kkaribot/internal/storage"
)

const dailyStipend = 100

// Balance shows the invoker's balance, or another user's when given.
func Balance(store *storage.Store) *router.Command {
	return &router.Command{
		Name:        "balance",
		Description: "Show a user's balance",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to look up",
			},
		},
		Execute: func(ctx *router.Context) error {
			targetID := ctx.UserID
			if u := ctx.Options().User("user"); u != nil {
				targetID = u.ID
			}
			balance := store.UserBalance(ctx.GuildID, targetID)
			return ctx.Reply(fmt.Sprintf("<@%s> has %s coins.", targetID, formatAmount(balance)), true)
		},
	}
}

// Pay moves coins from the invoker to another user. The two balance
// updates are independent writes; a concurrent payment touching the same
// users can lose one update, which the store documents as accepted.
func Pay(store *storage.Store) *router.Command {
	return &router.Command{
		Name:        "pay",
		Description: "Send coins to a user",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Recipient",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Amount to send",
				Required:    true,
				MinValue:    func() *float64 { v := 1.0; return &v }(),
			},
		},
		Execute: func(ctx *router.Context) error {
			target := ctx.Options().User("user")
			amount := float64(ctx.Options().Int("amount"))
			if target == nil || amount <= 0 {
				return ctx.Reply("Pick a recipient and a positive amount.", true)
			}
			if target.ID == ctx.UserID {
				return ctx.Reply("You cannot pay yourself.", true)
			}
			if store.UserBalance(ctx.GuildID, ctx.UserID) < amount {
				return ctx.Reply("You do not have enough coins.", true)
			}
			if _, err := store.AddUserBalance(ctx.GuildID, ctx.UserID, -amount); err != nil {
				return err
			}
			if _, err := store.AddUserBalance(ctx.GuildID, target.ID, amount); err != nil {
				return err
			}
			return ctx.Reply(fmt.Sprintf("Sent %s coins to <@%s>.", formatAmount(amount), target.ID), true)
		},
	}
}

// Daily grants a fixed stipend once per UTC day.
func Daily(store *storage.Store) *router.Command {
	return &router.Command{
		Name:        "daily",
		Description: "Collect your daily coins",
		Execute: func(ctx *router.Context) error {
			today := time.Now().UTC().Format("2006-01-02")
			var granted bool
			rec, err := store.UpdateUser(ctx.GuildID, ctx.UserID, func(rec *storage.UserRecord) {
				if rec.LastDaily == today {
					return
				}
				rec.LastDaily = today
				rec.Balance += dailyStipend
				granted = true
			})
			if err != nil {
				return err
			}
			if !granted {
				return ctx.Reply("Already collected today. Come back tomorrow.", true)
			}
			return ctx.Reply(fmt.Sprintf("Collected %d coins. Balance: %s.", dailyStipend, formatAmount(rec.Balance)), true)
		},
	}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
