package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/internal/lib/sl"
)

// Feature names. Guards and the KYC exempt list use these.
const (
	FeatureStart     = "start"
	FeatureHelp      = "help"
	FeatureMenu      = "menu"
	FeatureCancel    = "cancel"
	FeatureLogin     = "login"
	FeatureLogout    = "logout"
	FeatureProfile   = "profile"
	FeatureBalance   = "balance"
	FeatureWallets   = "wallets"
	FeatureKyc       = "kyc"
	FeatureHistory   = "history"
	FeatureDeposit   = "deposit"
	FeatureSend      = "send"
	FeatureWithdraw  = "withdraw"
	FeatureBroadcast = "broadcast"
)

type handlerFunc func(ctx context.Context, sess *chat.Session, ev Event, a chat.Action) ([]chat.Reply, error)

type command struct {
	feature      string
	requiresAuth bool
	adminOnly    bool
	run          handlerFunc
}

func (d *Dispatcher) registerCommands() {
	add := func(feature string, requiresAuth bool, run handlerFunc) {
		d.commands[feature] = &command{feature: feature, requiresAuth: requiresAuth, run: run}
	}
	add(FeatureStart, false, d.start)
	add(FeatureHelp, false, func(context.Context, *chat.Session, Event, chat.Action) ([]chat.Reply, error) {
		return []chat.Reply{present.Help()}, nil
	})
	add(FeatureMenu, false, func(context.Context, *chat.Session, Event, chat.Action) ([]chat.Reply, error) {
		return []chat.Reply{present.Menu()}, nil
	})
	add(FeatureCancel, false, d.cancel)
	add(FeatureLogin, false, d.login)
	add(FeatureLogout, false, d.logout)
	add(FeatureProfile, true, d.profile)
	add(FeatureBalance, true, d.balance)
	add(FeatureWallets, true, d.wallets)
	add(FeatureKyc, true, d.kyc)
	add(FeatureHistory, true, d.history)
	add(FeatureDeposit, true, d.startFlow(chat.FlowDeposit))
	add(FeatureSend, true, d.startFlow(chat.FlowSend))
	add(FeatureWithdraw, true, d.startFlow(chat.FlowWithdraw))
	d.commands[FeatureBroadcast] = &command{
		feature:   FeatureBroadcast,
		adminOnly: true,
		run:       d.startFlow(chat.FlowBroadcast),
	}
}

// actionFeatures maps entry buttons to the command they run.
var actionFeatures = map[chat.ActionKind]string{
	chat.ActionMenu:        FeatureMenu,
	chat.ActionCancel:      FeatureCancel,
	chat.ActionLogin:       FeatureLogin,
	chat.ActionLogout:      FeatureLogout,
	chat.ActionProfile:     FeatureProfile,
	chat.ActionBalance:     FeatureBalance,
	chat.ActionWallets:     FeatureWallets,
	chat.ActionKyc:         FeatureKyc,
	chat.ActionHistory:     FeatureHistory,
	chat.ActionHistoryPage: FeatureHistory,
	chat.ActionDeposit:     FeatureDeposit,
	chat.ActionSend:        FeatureSend,
	chat.ActionWithdraw:    FeatureWithdraw,
}

// confirmFlows maps confirm buttons to the flow they submit.
var confirmFlows = map[chat.ActionKind]chat.FlowKind{
	chat.ActionConfirmSend:      chat.FlowSend,
	chat.ActionConfirmWithdraw:  chat.FlowWithdraw,
	chat.ActionConfirmBroadcast: chat.FlowBroadcast,
}

func (d *Dispatcher) start(_ context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	return []chat.Reply{present.Welcome(sess.ActiveAuth(d.now()) != nil)}, nil
}

func (d *Dispatcher) cancel(ctx context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	had, err := d.machine.Cancel(ctx, sess)
	if err != nil {
		return nil, err
	}
	return []chat.Reply{present.Cancelled(had)}, nil
}

func (d *Dispatcher) login(ctx context.Context, sess *chat.Session, ev Event, _ chat.Action) ([]chat.Reply, error) {
	if auth := sess.ActiveAuth(d.now()); auth != nil {
		return []chat.Reply{{
			Text: fmt.Sprintf("You are already logged in as %s. Use /logout to switch accounts.", present.Escape(auth.Profile.Email)),
		}}, nil
	}
	return d.flowReplies(d.machine.StartFlow(ctx, sess, chat.FlowLogin, chat.Input{Text: ev.Args}))
}

// logout drops the credentials only; the user row stays.
func (d *Dispatcher) logout(ctx context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	if sess.Auth == nil {
		return []chat.Reply{{Text: "You are not logged in."}}, nil
	}
	err := d.sessions.Mutate(ctx, sess, func(s *chat.Session) error {
		s.Auth = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.log.Info("user logged out", slog.String("user_id", sess.UserID))
	return []chat.Reply{present.LoggedOut()}, nil
}

func (d *Dispatcher) profile(_ context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	auth := sess.ActiveAuth(d.now())
	if auth == nil {
		return []chat.Reply{present.LoginRequired("You are not logged in.")}, nil
	}
	return []chat.Reply{present.Profile(auth.Profile, sess.Kyc)}, nil
}

func (d *Dispatcher) balance(ctx context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	wallets, err := d.services.Wallets.ListBalances(ctx, d.token(sess))
	if err != nil {
		return d.upstream(sess, "list balances", err), nil
	}
	return []chat.Reply{present.Balances(wallets)}, nil
}

func (d *Dispatcher) wallets(ctx context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	wallets, err := d.services.Wallets.ListBalances(ctx, d.token(sess))
	if err != nil {
		return d.upstream(sess, "list wallets", err), nil
	}
	return []chat.Reply{present.Wallets(wallets)}, nil
}

// kyc always refreshes the cached status.
func (d *Dispatcher) kyc(ctx context.Context, sess *chat.Session, _ Event, _ chat.Action) ([]chat.Reply, error) {
	info, err := d.services.Kyc.Refresh(ctx, sess)
	if err != nil {
		return d.upstream(sess, "kyc status", err), nil
	}
	return []chat.Reply{present.Kyc(*info)}, nil
}

func (d *Dispatcher) history(ctx context.Context, sess *chat.Session, _ Event, a chat.Action) ([]chat.Reply, error) {
	page := 1
	if a.Kind == chat.ActionHistoryPage {
		page = a.Page()
	}
	if page < 1 {
		page = 1
	}
	result, err := d.services.History.ListTransfers(ctx, d.token(sess), page, d.pageSize)
	if err != nil {
		return d.upstream(sess, "list transfers", err), nil
	}
	return []chat.Reply{present.History(*result)}, nil
}

func (d *Dispatcher) startFlow(kind chat.FlowKind) handlerFunc {
	return func(ctx context.Context, sess *chat.Session, ev Event, _ chat.Action) ([]chat.Reply, error) {
		return d.flowReplies(d.machine.StartFlow(ctx, sess, kind, chat.Input{Text: ev.Args}))
	}
}

func (d *Dispatcher) upstream(sess *chat.Session, op string, err error) []chat.Reply {
	up := chat.Upstream(op, err)
	d.log.Warn("upstream call failed",
		slog.String("user_id", sess.UserID),
		slog.String("op", op),
		slog.Bool("timeout", up.Timeout),
		sl.Err(err),
	)
	return []chat.Reply{{Text: up.UserMessage()}}
}
