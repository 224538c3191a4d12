// Package broadcast lets an admin message every known user.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/internal/lib/sl"

	"golang.org/x/sync/errgroup"
)

const (
	StepEnterMessage chat.StepID = "enter_message"

	maxMessageLength = 4000
	parallelSends    = 8
)

type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func NewWorkflow(dir chat.Directory, messenger chat.Messenger, log *slog.Logger) *Workflow {
	w := &Workflow{
		steps: make(map[chat.StepID]chat.Step),
	}
	w.steps[StepEnterMessage] = &EnterMessageStep{}
	w.steps[chat.StepConfirm] = &ConfirmStep{}
	w.steps[chat.StepSubmit] = &DeliverStep{
		dir:       dir,
		messenger: messenger,
		log:       log.With(sl.Module("broadcast")),
	}
	return w
}

func (w *Workflow) Kind() chat.FlowKind      { return chat.FlowBroadcast }
func (w *Workflow) InitialStep() chat.StepID { return StepEnterMessage }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Transitions() chat.Transitions {
	return chat.Transitions{
		StepEnterMessage: {chat.StepConfirm},
		chat.StepConfirm: {chat.StepSubmit, StepEnterMessage},
		chat.StepSubmit:  {chat.StepConfirm},
	}
}

type EnterMessageStep struct{}

func (s *EnterMessageStep) ID() chat.StepID   { return StepEnterMessage }
func (s *EnterMessageStep) AcceptsText() bool { return true }

func (s *EnterMessageStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "📣 Send the message to broadcast to all users:",
		Buttons: chat.Column(present.CancelButton()),
	}}
}

func (s *EnterMessageStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	msg := strings.TrimSpace(in.Text)
	if msg == "" {
		return chat.StepResult{Error: chat.Invalid("The message is empty.")}
	}
	if len(msg) > maxMessageLength {
		return chat.StepResult{Error: chat.Invalid("The message is too long: %d characters, at most %d.", len(msg), maxMessageLength)}
	}
	sc.Flow.Broadcast.Message = msg
	return chat.StepResult{NextStep: chat.StepConfirm}
}

// ConfirmStep waits for confirm_broadcast carrying this flow's id.
type ConfirmStep struct{}

func (s *ConfirmStep) ID() chat.StepID   { return chat.StepConfirm }
func (s *ConfirmStep) AcceptsText() bool { return false }

func (s *ConfirmStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text: "📣 Broadcast this message?\n\n" + present.Escape(sc.Flow.Broadcast.Message),
		Buttons: [][]chat.InlineButton{
			{chat.Button("✅ Send to everyone", chat.NewAction(chat.ActionConfirmBroadcast, sc.Flow.ID))},
			{chat.Button("✏️ Edit", chat.NewAction(chat.ActionBack)), present.CancelButton()},
		},
	}}
}

func (s *ConfirmStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	switch in.Action.Kind {
	case chat.ActionConfirmBroadcast:
		if in.Action.Param != sc.Flow.ID {
			return chat.StepResult{Error: chat.Invalid("This confirmation has expired.")}
		}
		return chat.StepResult{NextStep: chat.StepSubmit}
	case chat.ActionBack:
		return chat.StepResult{NextStep: StepEnterMessage}
	}
	return chat.StepResult{Error: chat.Invalid("Please confirm or cancel using the buttons.")}
}

// DeliverStep sends the message to every recipient on entry.
type DeliverStep struct {
	dir       chat.Directory
	messenger chat.Messenger
	log       *slog.Logger
}

func (s *DeliverStep) ID() chat.StepID   { return chat.StepSubmit }
func (s *DeliverStep) AcceptsText() bool { return false }

func (s *DeliverStep) Enter(ctx context.Context, sc *chat.StepContext) chat.StepResult {
	recipients, err := s.dir.Recipients(ctx)
	if err != nil {
		return chat.StepResult{NextStep: chat.StepConfirm, Error: chat.Upstream("list recipients", err)}
	}

	msg := chat.Reply{Text: "📣 " + present.Escape(sc.Flow.Broadcast.Message)}
	var delivered atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(parallelSends)
	for _, r := range recipients {
		if r.ChatID == "" {
			continue
		}
		r := r
		g.Go(func() error {
			if err := chat.Deliver(s.messenger, r.ChatID, msg); err != nil {
				s.log.Debug("delivery failed",
					slog.String("user_id", r.UserID),
					sl.Err(err),
				)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("broadcast delivered",
		slog.Int64("delivered", delivered.Load()),
		slog.Int("recipients", len(recipients)),
	)
	return chat.StepResult{
		Complete: true,
		Reply:    &chat.Reply{Text: fmt.Sprintf("✅ Broadcast delivered to %d of %d users.", delivered.Load(), len(recipients))},
	}
}

func (s *DeliverStep) HandleInput(context.Context, *chat.StepContext, chat.Input) chat.StepResult {
	return chat.StepResult{Error: chat.Invalid("The broadcast is being delivered.")}
}
