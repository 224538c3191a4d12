package broadcast_test

import (
	"context"
	"errors"
	"testing"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows/broadcast"
	"CopperxBot/internal/database/memory"
	"CopperxBot/internal/fakes"

	"github.com/stretchr/testify/require"
)

type failingDirectory struct{}

func (failingDirectory) Recipients(context.Context) ([]chat.Recipient, error) {
	return nil, errors.New("db down")
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	log := fakes.Logger()
	store := memory.New()
	sessions := chat.NewSessions(store, 3, log)
	for _, id := range []string{"u2", "u3"} {
		_, err := fakes.LoggedIn(ctx, sessions, id, "chat-"+id)
		require.NoError(t, err)
	}

	messenger := &fakes.Messenger{}
	m := chat.NewMachine(sessions, log)
	m.RegisterWorkflow(broadcast.NewWorkflow(store, messenger, log))

	admin, err := sessions.Load(ctx, "admin", "chat-admin")
	require.NoError(t, err)
	res, err := m.StartFlow(ctx, admin, chat.FlowBroadcast, chat.Input{Text: "Maintenance <tonight>"})
	require.NoError(t, err)
	require.Equal(t, chat.StepConfirm, admin.Flow.Step)
	require.Contains(t, res.Replies[0].Text, "&lt;tonight&gt;")

	confirm := chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, admin.Flow.ID)}
	res, err = m.Advance(ctx, admin, confirm)
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	// the admin session was stored by StartFlow, so it is a recipient too
	require.Contains(t, res.Replies[0].Text, "3 of 3")
	require.Len(t, messenger.Sent, 3)

	_, err = m.Advance(ctx, admin, confirm)
	require.ErrorIs(t, err, chat.ErrNoActiveFlow)
	require.Len(t, messenger.Sent, 3)
}

func TestBroadcastDirectoryFailure(t *testing.T) {
	ctx := context.Background()
	log := fakes.Logger()
	sessions := chat.NewSessions(memory.New(), 3, log)
	m := chat.NewMachine(sessions, log)
	m.RegisterWorkflow(broadcast.NewWorkflow(failingDirectory{}, &fakes.Messenger{}, log))

	admin, err := sessions.Load(ctx, "admin", "chat-admin")
	require.NoError(t, err)
	_, err = m.StartFlow(ctx, admin, chat.FlowBroadcast, chat.Input{Text: "hi"})
	require.NoError(t, err)

	res, err := m.Advance(ctx, admin, chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, admin.Flow.ID)})
	require.NoError(t, err)
	require.Equal(t, chat.StatusFailed, res.Status)
	require.Equal(t, chat.StepConfirm, admin.Flow.Step)
}
