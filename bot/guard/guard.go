// Package guard holds the checks that run before an event reaches a command
// or flow handler.
package guard

import (
	"context"
	"fmt"
	"log/slog"

	"CopperxBot/bot/chat"
)

// Target describes what an event is about to run.
type Target struct {
	Feature      string
	RequiresAuth bool
}

// Denied is a deny decision. Reply tells the user what to do next.
type Denied struct {
	Guard  string
	Reason string
	Remedy chat.ActionKind
	Reply  chat.Reply
}

func (d *Denied) Error() string {
	return fmt.Sprintf("%s guard: %s", d.Guard, d.Reason)
}

type Guard interface {
	Name() string
	// Check returns nil to allow. It may mutate the session to drop stale
	// cached credentials, never the active flow.
	Check(ctx context.Context, sess *chat.Session, t Target) *Denied
}

// Chain runs guards in order and stops at the first deny.
type Chain struct {
	guards []Guard
	log    *slog.Logger
}

func NewChain(log *slog.Logger, guards ...Guard) *Chain {
	return &Chain{guards: guards, log: log}
}

func (c *Chain) Evaluate(ctx context.Context, sess *chat.Session, t Target) *Denied {
	for _, g := range c.guards {
		if d := g.Check(ctx, sess, t); d != nil {
			c.log.Debug("guard denied",
				slog.String("guard", g.Name()),
				slog.String("user_id", sess.UserID),
				slog.String("feature", t.Feature),
				slog.String("reason", d.Reason),
			)
			return d
		}
	}
	return nil
}
