package guard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/guard"
	"CopperxBot/entity"
	"CopperxBot/internal/database/memory"
	"CopperxBot/internal/fakes"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store    *memory.Store
	sessions *chat.Sessions
	api      *fakes.Copperx
	auth     *guard.AuthGuard
	kyc      *guard.KycGuard
	chain    *guard.Chain
	clock    *clock
	sess     *chat.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := fakes.Logger()
	store := memory.New()
	sessions := chat.NewSessions(store, 3, log)
	api := fakes.NewCopperx()
	c := &clock{t: time.Now()}

	auth := guard.NewAuthGuard(sessions, api, time.Minute, log)
	auth.SetClock(c.now)
	kyc := guard.NewKycGuard(sessions, api, 5*time.Minute, guard.ParseFeatures("start, help,login,balance"), log)
	kyc.SetClock(c.now)

	sess, err := fakes.LoggedIn(context.Background(), sessions, "u1", "c1")
	require.NoError(t, err)
	return &fixture{
		store:    store,
		sessions: sessions,
		api:      api,
		auth:     auth,
		kyc:      kyc,
		chain:    guard.NewChain(log, auth, kyc),
		clock:    c,
		sess:     sess,
	}
}

func (f *fixture) stored(t *testing.T) *chat.Session {
	t.Helper()
	sess, err := f.store.Get(context.Background(), "u1")
	require.NoError(t, err)
	return sess
}

var sendTarget = guard.Target{Feature: "send", RequiresAuth: true}

func TestExpiredAuthIsClearedFlowKept(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.sessions.Mutate(ctx, f.sess, func(s *chat.Session) error {
		s.Flow = chat.NewFlow(chat.FlowSend, "enter_amount")
		return nil
	}))

	f.clock.advance(2 * time.Hour)
	d := f.chain.Evaluate(ctx, f.sess, sendTarget)
	require.NotNil(t, d)
	require.Equal(t, "auth", d.Guard)
	require.Equal(t, chat.ActionLogin, d.Remedy)

	stored := f.stored(t)
	require.Nil(t, stored.Auth)
	require.NotNil(t, stored.Flow)
	require.Equal(t, chat.StepID("enter_amount"), stored.Flow.Step)
	require.Zero(t, f.api.TokenChecks)
	require.Zero(t, f.api.KycCalls)
}

func TestAuthGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("not required", func(t *testing.T) {
		f := setup(t)
		f.sess.Auth = nil
		require.Nil(t, f.auth.Check(ctx, f.sess, guard.Target{Feature: "help"}))
	})

	t.Run("not logged in", func(t *testing.T) {
		f := setup(t)
		sess, err := f.sessions.Load(ctx, "u2", "c2")
		require.NoError(t, err)
		d := f.auth.Check(ctx, sess, sendTarget)
		require.NotNil(t, d)
		require.Contains(t, d.Reply.Text, "not logged in")
	})

	t.Run("live check cached", func(t *testing.T) {
		f := setup(t)
		f.clock.advance(2 * time.Minute)
		require.Nil(t, f.auth.Check(ctx, f.sess, sendTarget))
		require.Nil(t, f.auth.Check(ctx, f.sess, sendTarget))
		require.Equal(t, 1, f.api.TokenChecks)
		require.Equal(t, f.clock.t, f.stored(t).Auth.CheckedAt)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := setup(t)
		f.api.TokenValid = false
		f.clock.advance(2 * time.Minute)
		require.NotNil(t, f.auth.Check(ctx, f.sess, sendTarget))
		require.Nil(t, f.stored(t).Auth)
	})

	t.Run("unauthorized error", func(t *testing.T) {
		f := setup(t)
		f.api.TokenErr = entity.ErrUnauthorized
		f.clock.advance(2 * time.Minute)
		require.NotNil(t, f.auth.Check(ctx, f.sess, sendTarget))
		require.Nil(t, f.stored(t).Auth)
	})

	t.Run("check unavailable keeps auth", func(t *testing.T) {
		f := setup(t)
		f.api.TokenErr = errors.New("timeout")
		f.clock.advance(2 * time.Minute)
		d := f.auth.Check(ctx, f.sess, sendTarget)
		require.NotNil(t, d)
		require.NotNil(t, f.stored(t).Auth)
	})
}

func TestKycCacheFreshness(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.Nil(t, f.kyc.Check(ctx, f.sess, sendTarget))
	f.clock.advance(time.Minute)
	require.Nil(t, f.kyc.Check(ctx, f.sess, sendTarget))
	require.Equal(t, 1, f.api.KycCalls)

	// within the window a status change upstream is not observed
	f.api.Kyc = entity.KycInfo{Status: entity.KycRejected}
	require.Nil(t, f.kyc.Check(ctx, f.sess, sendTarget))
	require.Equal(t, 1, f.api.KycCalls)

	f.clock.advance(5 * time.Minute)
	d := f.kyc.Check(ctx, f.sess, sendTarget)
	require.NotNil(t, d)
	require.Equal(t, chat.ActionKyc, d.Remedy)
	require.Equal(t, 2, f.api.KycCalls)
	require.Equal(t, entity.KycRejected, f.stored(t).Kyc.Status)
}

func TestKycGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("exempt feature", func(t *testing.T) {
		f := setup(t)
		f.api.Kyc = entity.KycInfo{Status: entity.KycPending}
		require.Nil(t, f.kyc.Check(ctx, f.sess, guard.Target{Feature: "balance", RequiresAuth: true}))
		require.Zero(t, f.api.KycCalls)
		require.True(t, f.kyc.Exempt("help"))
	})

	t.Run("pending denied", func(t *testing.T) {
		f := setup(t)
		f.api.Kyc = entity.KycInfo{Status: entity.KycPending}
		d := f.kyc.Check(ctx, f.sess, sendTarget)
		require.NotNil(t, d)
		require.Contains(t, d.Reply.Text, "pending")
		require.NotNil(t, f.stored(t).Kyc)
	})

	t.Run("fails open", func(t *testing.T) {
		f := setup(t)
		f.api.KycErr = errors.New("502")
		require.Nil(t, f.kyc.Check(ctx, f.sess, sendTarget))
		require.Nil(t, f.kyc.Check(ctx, f.sess, sendTarget))
		require.Equal(t, 2, f.api.KycCalls)
		require.Nil(t, f.stored(t).Kyc)
	})
}

func TestChainStopsAtFirstDeny(t *testing.T) {
	f := setup(t)
	f.api.TokenValid = false
	f.clock.advance(2 * time.Minute)

	d := f.chain.Evaluate(context.Background(), f.sess, sendTarget)
	require.NotNil(t, d)
	require.Equal(t, "auth", d.Guard)
	require.Zero(t, f.api.KycCalls)
}
