package events

// Package events provides the in-process channel that hands a completed
// verification from the web redemption flow to the bot's role-assignment
// flow. The channel is constructed once by the composition root and passed
// by reference to both sides; it is never an ambient singleton.

import (
	"context"
	"log/slog"
	"sync"
)

// Verification signals a completed verification for a (user, guild) pair.
// Delivery is immediate, in-process and fire-and-forget: there is no
// buffering, no acknowledgment and no redelivery across restarts.
type Verification struct {
	UserID  string
	GuildID string
}

// Handler receives verification events.
type Handler func(ctx context.Context, v Verification)

// Channel is a process-wide publish/subscribe point with a single event
// kind. Handlers are registered at startup; emission fans out synchronously
// to every handler registered at that moment.
type Channel struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []Handler
}

// NewChannel creates a verification event channel.
func NewChannel(logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{logger: logger}
}

// RegisterHandler subscribes a handler. Handlers registered after an
// emission never see that event.
func (c *Channel) RegisterHandler(fn Handler) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Emit synchronously notifies all currently-registered handlers of a
// completed verification. Each handler runs independently: a panicking
// handler is recovered and logged so the remaining handlers still run.
func (c *Channel) Emit(ctx context.Context, userID, guildID string) {
	c.mu.RLock()
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.RUnlock()

	v := Verification{UserID: userID, GuildID: guildID}
	for _, fn := range handlers {
		c.dispatch(ctx, fn, v)
	}
}

func (c *Channel) dispatch(ctx context.Context, fn Handler, v Verification) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "verification handler panicked",
				"panic", r,
				"user_id", v.UserID,
				"guild_id", v.GuildID)
		}
	}()
	fn(ctx, v)
}
