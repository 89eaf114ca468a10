// Package notify delivers fire-and-forget audit lines to Discord
// channels. Messages go through a bounded queue drained by one background
// goroutine; when the queue is full or delivery fails the message is
// logged and dropped, never retried and never blocking the caller.
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/kkaribot/kkaribot/internal/storage"
	"github.com/kkaribot/kkaribot/pkg/log"
)

const queueCapacity = 64

// MessageSender is the slice of discordgo.Session the notifier needs.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type message struct {
	guildID string // empty targets the owner channel
	content string
}

// Notifier is the audit/notification sink. Guild messages go to the
// guild's configured log channel (skipped when unset); owner messages go
// to the fixed owner channel (skipped when unconfigured).
type Notifier struct {
	sender         MessageSender
	store          *storage.Store
	ownerChannelID string

	queue   chan message
	done    chan struct{}
	dropped atomic.Int64
	once    sync.Once
}

func New(sender MessageSender, store *storage.Store, ownerChannelID string) *Notifier {
	n := &Notifier{
		sender:         sender,
		store:          store,
		ownerChannelID: ownerChannelID,
		queue:          make(chan message, queueCapacity),
		done:           make(chan struct{}),
	}
	go n.run()
	return n
}

// GuildLog queues content for guildID's log channel. Never blocks.
func (n *Notifier) GuildLog(guildID, content string) {
	if guildID == "" {
		return
	}
	n.enqueue(message{guildID: guildID, content: content})
}

// OwnerLog queues content for the owner channel. Never blocks.
func (n *Notifier) OwnerLog(content string) {
	n.enqueue(message{content: content})
}

// Dropped reports how many messages were discarded on a full queue.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Close stops accepting messages, drains the queue, and waits for the
// worker to finish.
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.queue)
		<-n.done
	})
}

func (n *Notifier) enqueue(m message) {
	defer func() {
		// Losing a race with Close turns the send into a drop.
		if recover() != nil {
			n.dropped.Add(1)
		}
	}()
	select {
	case n.queue <- m:
	default:
		n.dropped.Add(1)
		log.Errorf("notify queue full, dropping message")
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for m := range n.queue {
		n.deliver(m)
	}
}

func (n *Notifier) deliver(m message) {
	channelID := n.ownerChannelID
	if m.guildID != "" {
		settings := n.store.Settings(m.guildID)
		if settings.LogChannelID == nil || *settings.LogChannelID == "" {
			return
		}
		channelID = *settings.LogChannelID
	}
	if channelID == "" {
		return
	}
	if _, err := n.sender.ChannelMessageSend(channelID, m.content); err != nil {
		n.dropped.Add(1)
		log.Errorf("notify delivery to %s failed: %v", channelID, err)
	}
}
