package fakes

import (
	"context"
	"io"
	"log/slog"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/entity"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LoggedIn persists a session for userID holding a token valid for an hour.
func LoggedIn(ctx context.Context, sessions *chat.Sessions, userID, chatID string) (*chat.Session, error) {
	sess, err := sessions.Load(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	err = sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		s.Auth = &chat.AuthBlock{
			AccessToken:    "token-" + userID,
			ExpiresAt:      now.Add(time.Hour),
			OrganizationID: "org-1",
			Profile: entity.UserProfile{
				ID:    userID,
				Email: userID + "@example.com",
			},
			CheckedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}
