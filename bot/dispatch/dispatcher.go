// Package dispatch routes inbound chat events to commands and flows.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/guard"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/sl"
)

const defaultPageSize = 5

type HistoryAPI interface {
	ListTransfers(ctx context.Context, token string, page, limit int) (*entity.TransferPage, error)
}

// KycRefresher fetches the KYC status and updates the session cache.
type KycRefresher interface {
	Refresh(ctx context.Context, sess *chat.Session) (*entity.KycInfo, error)
}

// Services are the payments collaborators of the stateless commands.
type Services struct {
	Wallets flows.WalletAPI
	History HistoryAPI
	Kyc     KycRefresher
}

type Dispatcher struct {
	locker    *chat.Locker
	sessions  *chat.Sessions
	machine   *chat.Machine
	guards    *guard.Chain
	messenger chat.Messenger
	services  Services
	commands  map[string]*command
	pageSize  int
	now       func() time.Time
	log       *slog.Logger
}

func New(
	locker *chat.Locker,
	sessions *chat.Sessions,
	machine *chat.Machine,
	guards *guard.Chain,
	messenger chat.Messenger,
	services Services,
	log *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		locker:    locker,
		sessions:  sessions,
		machine:   machine,
		guards:    guards,
		messenger: messenger,
		services:  services,
		commands:  make(map[string]*command),
		pageSize:  defaultPageSize,
		now:       time.Now,
		log:       log.With(sl.Module("dispatch")),
	}
	d.registerCommands()
	return d
}

func (d *Dispatcher) SetPageSize(n int) {
	if n > 0 {
		d.pageSize = n
	}
}

func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// route is the single handler chosen for an event.
type route struct {
	name   string
	target guard.Target
	action chat.Action
	run    handlerFunc
}

// Handle processes one event under the user's lock: load, route, guard,
// run, deliver. Ignored events produce no reply and no error.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	if ev.UserID == "" {
		return fmt.Errorf("event without user id")
	}
	unlock, err := d.locker.Lock(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("locking user %s: %w", ev.UserID, err)
	}
	defer unlock()

	sess, err := d.sessions.Load(ctx, ev.UserID, ev.ChatID)
	if err != nil {
		return err
	}
	if sess.Version == 0 {
		// first contact: store the user so broadcasts reach them
		if err = d.sessions.Mutate(ctx, sess, func(*chat.Session) error { return nil }); err != nil {
			return fmt.Errorf("creating session for %s: %w", ev.UserID, err)
		}
		d.log.Info("new user", slog.String("user_id", ev.UserID))
	}
	chatID := ev.ChatID
	if chatID == "" {
		chatID = sess.ChatID
	}

	r := d.route(sess, ev)
	if r == nil {
		d.log.Debug("event ignored",
			slog.String("user_id", ev.UserID),
			slog.String("kind", ev.Kind()),
		)
		return nil
	}

	if denied := d.guards.Evaluate(ctx, sess, r.target); denied != nil {
		d.log.Info("event denied",
			slog.String("user_id", ev.UserID),
			slog.String("route", r.name),
			slog.String("guard", denied.Guard),
		)
		return d.deliver(chatID, []chat.Reply{denied.Reply})
	}

	replies, err := r.run(ctx, sess, ev, r.action)
	if err != nil {
		d.log.Error("event failed",
			slog.String("user_id", ev.UserID),
			slog.String("route", r.name),
			sl.Err(err),
		)
		replies = append(replies, present.Unavailable("Something went wrong. Please try again or /cancel."))
		_ = d.deliver(chatID, replies)
		return err
	}

	d.log.Debug("event handled",
		slog.String("user_id", ev.UserID),
		slog.String("kind", ev.Kind()),
		slog.String("route", r.name),
		slog.Int("replies", len(replies)),
	)
	return d.deliver(chatID, replies)
}

// route picks the handler: callback action, then text for an active flow,
// then command or menu keyword. Anything else is ignored.
func (d *Dispatcher) route(sess *chat.Session, ev Event) *route {
	if ev.Callback != "" {
		return d.routeAction(sess, ev, chat.ParseAction(ev.Callback))
	}
	if ev.Command == "" && ev.Text != "" && d.machine.IsAwaitingInput(sess) {
		return d.flowRoute(sess.Flow.Kind, "flow input", chat.Action{})
	}
	name := ev.Command
	if name == "" {
		name = present.Keywords[strings.TrimSpace(ev.Text)]
	}
	return d.commandRoute(name, ev, chat.Action{})
}

func (d *Dispatcher) routeAction(sess *chat.Session, ev Event, a chat.Action) *route {
	if a.IsZero() {
		return nil
	}
	if feature, ok := actionFeatures[a.Kind]; ok {
		return d.commandRoute(feature, ev, a)
	}
	if kind, ok := confirmFlows[a.Kind]; ok {
		r := d.flowRoute(kind, string(a.Kind), a)
		r.run = d.confirm(kind)
		return r
	}
	// buttons inside a flow: methods, networks, back
	if sess.Flow == nil {
		return &route{
			name:   string(a.Kind),
			target: guard.Target{Feature: string(a.Kind)},
			run: func(context.Context, *chat.Session, Event, chat.Action) ([]chat.Reply, error) {
				return []chat.Reply{present.NoActiveFlow()}, nil
			},
		}
	}
	return d.flowRoute(sess.Flow.Kind, string(a.Kind), a)
}

func (d *Dispatcher) commandRoute(name string, ev Event, a chat.Action) *route {
	cmd, ok := d.commands[name]
	if !ok || (cmd.adminOnly && !ev.IsAdmin) {
		return nil
	}
	return &route{
		name:   name,
		target: guard.Target{Feature: cmd.feature, RequiresAuth: cmd.requiresAuth},
		action: a,
		run:    cmd.run,
	}
}

// flowRoute feeds input to the active flow, guarded as the flow's feature.
func (d *Dispatcher) flowRoute(kind chat.FlowKind, name string, a chat.Action) *route {
	feature := string(kind)
	return &route{
		name:   name,
		target: guard.Target{Feature: feature, RequiresAuth: kind != chat.FlowLogin && kind != chat.FlowBroadcast},
		action: a,
		run: func(ctx context.Context, sess *chat.Session, ev Event, a chat.Action) ([]chat.Reply, error) {
			return d.flowReplies(d.machine.Advance(ctx, sess, chat.Input{Text: ev.Text, Action: a}))
		},
	}
}

// confirm only reaches the machine while the flow named by the button still
// waits at its confirm step, so a repeated tap cannot submit twice.
func (d *Dispatcher) confirm(kind chat.FlowKind) handlerFunc {
	return func(ctx context.Context, sess *chat.Session, _ Event, a chat.Action) ([]chat.Reply, error) {
		if !d.machine.AtStep(sess, kind, a.Param, chat.StepConfirm) {
			d.log.Info("stale confirmation",
				slog.String("user_id", sess.UserID),
				slog.String("kind", string(kind)),
				slog.String("flow_id", a.Param),
			)
			return []chat.Reply{present.ConfirmationExpired()}, nil
		}
		return d.flowReplies(d.machine.Advance(ctx, sess, chat.Input{Action: a}))
	}
}

func (d *Dispatcher) flowReplies(res chat.Result, err error) ([]chat.Reply, error) {
	switch {
	case err == nil:
		return res.Replies, nil
	case errors.Is(err, chat.ErrNoActiveFlow):
		return []chat.Reply{present.NoActiveFlow()}, nil
	}
	return res.Replies, err
}

func (d *Dispatcher) token(sess *chat.Session) string {
	if auth := sess.ActiveAuth(d.now()); auth != nil {
		return auth.AccessToken
	}
	return ""
}

func (d *Dispatcher) deliver(chatID string, replies []chat.Reply) error {
	var errs []error
	for _, r := range replies {
		if err := chat.Deliver(d.messenger, chatID, r); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		d.log.Warn("delivering replies", slog.String("chat_id", chatID), sl.Err(err))
		return err
	}
	return nil
}

// Session returns the stored session of userID, or nil.
func (d *Dispatcher) Session(ctx context.Context, userID string) (*chat.Session, error) {
	return d.sessions.Get(ctx, userID)
}

// CancelFlow cancels the active flow of userID from outside the chat and
// tells the user.
func (d *Dispatcher) CancelFlow(ctx context.Context, userID string) (bool, error) {
	unlock, err := d.locker.Lock(ctx, userID)
	if err != nil {
		return false, err
	}
	defer unlock()

	sess, err := d.sessions.Get(ctx, userID)
	if err != nil || sess == nil {
		return false, err
	}
	had, err := d.machine.Cancel(ctx, sess)
	if err != nil || !had {
		return had, err
	}
	if sess.ChatID != "" {
		_ = d.deliver(sess.ChatID, []chat.Reply{present.Cancelled(true)})
	}
	return true, nil
}
