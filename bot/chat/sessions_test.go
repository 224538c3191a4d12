package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"CopperxBot/bot/chat"
	"CopperxBot/internal/database/memory"

	"github.com/stretchr/testify/require"
)

// racingStore lets another writer sneak in before the next Puts.
type racingStore struct {
	*memory.Store
	races int
	other func(s *chat.Session)
}

func (r *racingStore) Put(ctx context.Context, s *chat.Session) error {
	if r.races > 0 {
		r.races--
		cur, err := r.Store.Get(ctx, s.UserID)
		if err != nil {
			return err
		}
		if cur == nil {
			cur = chat.NewSession(s.UserID, s.ChatID)
		}
		r.other(cur)
		if err := r.Store.Put(ctx, cur); err != nil {
			return err
		}
	}
	return r.Store.Put(ctx, s)
}

func TestMutateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{
		Store: memory.New(),
		races: 1,
		other: func(s *chat.Session) {
			s.Kyc = &chat.KycCache{Status: "pending"}
		},
	}
	sessions := chat.NewSessions(store, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sess, err := sessions.Load(ctx, "u1", "c1")
	require.NoError(t, err)

	calls := 0
	err = sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		calls++
		s.Flow = chat.NewFlow(chat.FlowDeposit, "select_network")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored.Flow)
	require.NotNil(t, stored.Kyc, "the concurrent write must not be lost")
	require.Equal(t, stored.Version, sess.Version)
	require.NotNil(t, sess.Kyc)
}

func TestMutateGivesUp(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{
		Store: memory.New(),
		races: 10,
		other: func(s *chat.Session) {},
	}
	sessions := chat.NewSessions(store, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sess, err := sessions.Load(ctx, "u1", "c1")
	require.NoError(t, err)
	err = sessions.Mutate(ctx, sess, func(*chat.Session) error { return nil })
	require.ErrorIs(t, err, chat.ErrConflict)
}

func TestMutateStopsOnApplyError(t *testing.T) {
	ctx := context.Background()
	sessions := chat.NewSessions(memory.New(), 3, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sess, err := sessions.Load(ctx, "u1", "c1")
	require.NoError(t, err)

	boom := errors.New("boom")
	require.ErrorIs(t, sessions.Mutate(ctx, sess, func(*chat.Session) error { return boom }), boom)

	stored, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, stored)
}

type failingStore struct {
	*memory.Store
	err error
}

func (f *failingStore) Put(context.Context, *chat.Session) error { return f.err }

func TestMutateKeepsSessionOnWriteError(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection reset")
	store := &failingStore{Store: memory.New(), err: down}
	sessions := chat.NewSessions(store, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sess, err := sessions.Load(ctx, "u1", "c1")
	require.NoError(t, err)
	version := sess.Version

	err = sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		s.Kyc = &chat.KycCache{Status: "verified"}
		s.Flow = chat.NewFlow(chat.FlowDeposit, "select_network")
		return nil
	})
	require.ErrorIs(t, err, down)
	require.Nil(t, sess.Kyc)
	require.Nil(t, sess.Flow)
	require.Equal(t, version, sess.Version)
}
