package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultMaxRetries = 3

// Sessions loads sessions and applies mutations with re-read and retry on
// write conflicts.
type Sessions struct {
	store      Store
	maxRetries int
	log        *slog.Logger
}

func NewSessions(store Store, maxRetries int, log *slog.Logger) *Sessions {
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	return &Sessions{
		store:      store,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Load returns the stored session or a fresh unsaved one.
func (s *Sessions) Load(ctx context.Context, userID, chatID string) (*Session, error) {
	sess, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return NewSession(userID, chatID), nil
	}
	if chatID != "" {
		sess.ChatID = chatID
	}
	return sess, nil
}

// Mutate applies fn to a copy of sess and persists it. On ErrConflict the
// stored copy is re-read and fn is applied again. sess is only updated once a
// write succeeds, so on error it still matches what was last loaded.
func (s *Sessions) Mutate(ctx context.Context, sess *Session, fn func(*Session) error) error {
	target := sess.Clone()
	for attempt := 1; ; attempt++ {
		if err := fn(target); err != nil {
			return err
		}
		target.UpdatedAt = time.Now()

		err := s.store.Put(ctx, target)
		if err == nil {
			*sess = *target
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("saving session: %w", err)
		}
		if attempt >= s.maxRetries {
			return fmt.Errorf("saving session after %d attempts: %w", attempt, err)
		}

		s.log.Debug("session write conflict, retrying",
			slog.String("user_id", sess.UserID),
			slog.Int("attempt", attempt),
		)

		fresh, err := s.store.Get(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("reloading session: %w", err)
		}
		if fresh == nil {
			fresh = NewSession(sess.UserID, sess.ChatID)
		}
		if fresh.ChatID == "" {
			fresh.ChatID = sess.ChatID
		}
		target = fresh
	}
}

// Get returns the stored session without creating one.
func (s *Sessions) Get(ctx context.Context, userID string) (*Session, error) {
	return s.store.Get(ctx, userID)
}
