package deposit_test

import (
	"context"
	"errors"
	"testing"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows/deposit"
	"CopperxBot/entity"
	"CopperxBot/internal/database/memory"
	"CopperxBot/internal/fakes"

	"github.com/stretchr/testify/require"
)

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	log := fakes.Logger()
	store := memory.New()
	sessions := chat.NewSessions(store, 3, log)
	api := fakes.NewCopperx()
	api.Wallets = []entity.WalletBalance{{Network: "polygon", Balance: "1"}, {Network: "base", Balance: "2"}}
	api.Deposit = entity.DepositAddress{Address: "0xabc", MinAmount: "1"}

	m := chat.NewMachine(sessions, log)
	m.RegisterWorkflow(deposit.NewWorkflow(api))
	sess, err := fakes.LoggedIn(ctx, sessions, "u1", "c1")
	require.NoError(t, err)

	res, err := m.StartFlow(ctx, sess, chat.FlowDeposit, chat.Input{})
	require.NoError(t, err)
	require.Len(t, res.Replies[0].Buttons, 3)

	api.DepositErr = errors.New("unavailable")
	res, err = m.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionDepositNetwork, "base")})
	require.NoError(t, err)
	require.Equal(t, chat.StatusFailed, res.Status)
	require.NotNil(t, sess.Flow)

	api.DepositErr = nil
	res, err = m.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionDepositNetwork, "base")})
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	require.Contains(t, res.Replies[0].Text, "0xabc")
	require.Nil(t, sess.Flow)
}

func TestDepositWithInitialNetwork(t *testing.T) {
	ctx := context.Background()
	log := fakes.Logger()
	sessions := chat.NewSessions(memory.New(), 3, log)
	api := fakes.NewCopperx()
	api.Deposit = entity.DepositAddress{Address: "0xdef"}

	m := chat.NewMachine(sessions, log)
	m.RegisterWorkflow(deposit.NewWorkflow(api))
	sess, err := fakes.LoggedIn(ctx, sessions, "u1", "c1")
	require.NoError(t, err)

	res, err := m.StartFlow(ctx, sess, chat.FlowDeposit, chat.Input{Text: "Polygon"})
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	require.Contains(t, res.Replies[0].Text, "0xdef")
}
