package session

import (
	"context"

	"CopperxBot/bot/chat"
)

type Core interface {
	Session(ctx context.Context, userID string) (*chat.Session, error)
	CancelFlow(ctx context.Context, userID string) (bool, error)
}
