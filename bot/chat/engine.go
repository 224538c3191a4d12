package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

const maxTransitions = 20

// Status is the outcome of a machine operation.
type Status int

const (
	StatusPrompt Status = iota
	StatusCompleted
	StatusFailed
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPrompt:
		return "prompt"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// Result carries the replies to deliver and, for failures, the typed cause.
type Result struct {
	Status  Status
	Replies []Reply
	Err     error
}

// Machine advances the single active flow of a session. Callers hold the
// per-user lock for the whole operation.
type Machine struct {
	workflows map[FlowKind]Workflow
	sessions  *Sessions
	listener  Listener
	log       *slog.Logger
	now       func() time.Time
}

func NewMachine(sessions *Sessions, log *slog.Logger) *Machine {
	return &Machine{
		workflows: make(map[FlowKind]Workflow),
		sessions:  sessions,
		log:       log,
		now:       time.Now,
	}
}

func (m *Machine) SetListener(l Listener) {
	m.listener = l
}

func (m *Machine) SetClock(now func() time.Time) {
	m.now = now
}

// RegisterWorkflow adds a workflow to the machine.
func (m *Machine) RegisterWorkflow(w Workflow) {
	m.workflows[w.Kind()] = w
	m.log.Info("flow machine: registered workflow", slog.String("kind", string(w.Kind())))
}

// StartFlow replaces any active flow with a new one of kind and returns its
// first prompt. A non-empty initial input is fed to the first step right away.
func (m *Machine) StartFlow(ctx context.Context, sess *Session, kind FlowKind, initial Input) (Result, error) {
	w, ok := m.workflows[kind]
	if !ok {
		m.log.Warn("flow machine: unknown flow", slog.String("kind", string(kind)))
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownFlow, kind)
	}

	flow := NewFlow(kind, w.InitialStep())
	if err := flow.Check(); err != nil {
		return Result{}, err
	}
	step, ok := w.GetStep(flow.Step)
	if !ok {
		return Result{}, fmt.Errorf("initial step not found: %s", flow.Step)
	}

	replaced := sess.Flow
	err := m.sessions.Mutate(ctx, sess, func(s *Session) error {
		s.Flow = flow.Clone()
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if replaced != nil {
		m.publish(EventFlowCancelled, sess.UserID, replaced, "")
	}
	m.publish(EventFlowStarted, sess.UserID, flow, "")

	m.log.Info("flow machine: starting flow",
		slog.String("user_id", sess.UserID),
		slog.String("kind", string(kind)),
		slog.String("flow_id", flow.ID),
	)

	work := flow.Clone()
	out, err := m.process(ctx, sess, w, work, step.Enter(ctx, m.stepContext(sess, work)))
	if err != nil || initial.IsZero() || out.Status != StatusPrompt {
		return out, err
	}

	next, err := m.Advance(ctx, sess, initial)
	if next.Status == StatusRejected {
		next.Replies = append(out.Replies, next.Replies...)
	}
	return next, err
}

// Advance interprets input as what the current step expects.
func (m *Machine) Advance(ctx context.Context, sess *Session, input Input) (Result, error) {
	if sess.Flow == nil {
		return Result{}, ErrNoActiveFlow
	}
	w, ok := m.workflows[sess.Flow.Kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownFlow, sess.Flow.Kind)
	}
	step, ok := w.GetStep(sess.Flow.Step)
	if !ok {
		return Result{}, fmt.Errorf("step not found: %s", sess.Flow.Step)
	}

	work := sess.Flow.Clone()
	return m.process(ctx, sess, w, work, step.HandleInput(ctx, m.stepContext(sess, work), input))
}

// Cancel discards the active flow. It reports whether there was one.
func (m *Machine) Cancel(ctx context.Context, sess *Session) (bool, error) {
	if sess.Flow == nil {
		return false, nil
	}
	flow := sess.Flow
	err := m.sessions.Mutate(ctx, sess, func(s *Session) error {
		s.Flow = nil
		return nil
	})
	if err != nil {
		return false, err
	}
	m.publish(EventFlowCancelled, sess.UserID, flow, "")
	m.log.Info("flow machine: flow cancelled",
		slog.String("user_id", sess.UserID),
		slog.String("kind", string(flow.Kind)),
		slog.String("step", string(flow.Step)),
	)
	return true, nil
}

// IsAwaitingInput reports whether plain text belongs to the active flow.
func (m *Machine) IsAwaitingInput(sess *Session) bool {
	if sess.Flow == nil {
		return false
	}
	w, ok := m.workflows[sess.Flow.Kind]
	if !ok {
		return false
	}
	step, ok := w.GetStep(sess.Flow.Step)
	return ok && step.AcceptsText()
}

// AtStep reports whether the active flow is the given one and sits at step.
func (m *Machine) AtStep(sess *Session, kind FlowKind, flowID string, step StepID) bool {
	f := sess.Flow
	return f != nil && f.Kind == kind && f.ID == flowID && f.Step == step
}

func (m *Machine) stepContext(sess *Session, work *Flow) *StepContext {
	return &StepContext{
		Session: sess,
		Flow:    work,
		Now:     m.now(),
	}
}

// process applies a step result: commits, transitions and auto-enters steps.
// Every transition is persisted before the next step is entered.
func (m *Machine) process(ctx context.Context, sess *Session, w Workflow, work *Flow, res StepResult) (Result, error) {
	var out Result
	flowID := work.ID
	committed := work.Step

	for i := 0; i < maxTransitions; i++ {
		work.Step = committed
		if res.Reply != nil {
			out.Replies = append(out.Replies, *res.Reply)
		}
		if res.Submitted != nil {
			m.publish(EventTransferSubmitted, sess.UserID, work, res.Submitted.TransferID)
		}

		if res.Error != nil {
			return m.fail(ctx, sess, w, work, committed, res, out)
		}

		if res.Complete {
			out.Status = StatusCompleted
			if err := m.commit(ctx, sess, flowID, committed, nil, res.Apply); err != nil {
				return out, err
			}
			m.publish(EventFlowCompleted, sess.UserID, work, "")
			m.log.Info("flow machine: flow completed",
				slog.String("user_id", sess.UserID),
				slog.String("kind", string(work.Kind)),
				slog.String("flow_id", flowID),
			)
			return out, nil
		}

		if res.NextStep == "" || res.NextStep == committed {
			out.Status = StatusPrompt
			if res.Apply == nil && reflect.DeepEqual(work, sess.Flow) {
				return out, nil
			}
			return m.commitStep(ctx, sess, flowID, committed, work, res.Apply, out)
		}

		if !w.Transitions().Allows(committed, res.NextStep) {
			m.log.Error("flow machine: illegal transition",
				slog.String("kind", string(w.Kind())),
				slog.String("from", string(committed)),
				slog.String("to", string(res.NextStep)),
			)
			return out, fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, w.Kind(), committed, res.NextStep)
		}

		work.Step = res.NextStep
		var err error
		out, err = m.commitStep(ctx, sess, flowID, committed, work, res.Apply, out)
		if err != nil || out.Status == StatusFailed {
			return out, err
		}
		committed = res.NextStep

		step, ok := w.GetStep(committed)
		if !ok {
			return out, fmt.Errorf("next step not found: %s", committed)
		}

		m.log.Debug("flow machine: transitioning",
			slog.String("user_id", sess.UserID),
			slog.String("kind", string(w.Kind())),
			slog.String("step", string(committed)),
		)

		work = sess.Flow.Clone()
		res = step.Enter(ctx, m.stepContext(sess, work))
	}

	return out, fmt.Errorf("flow %s: too many transitions", w.Kind())
}

func (m *Machine) fail(ctx context.Context, sess *Session, w Workflow, work *Flow, committed StepID, res StepResult, out Result) (Result, error) {
	var verr *ValidationError
	var terr *TerminalError

	switch {
	case errors.As(res.Error, &terr):
		out.Status = StatusFailed
		out.Err = terr
		out.Replies = append(out.Replies, Reply{Text: "⛔ " + terr.Message})
		if err := m.commit(ctx, sess, work.ID, committed, nil, res.Apply); err != nil {
			return out, err
		}
		m.publish(EventFlowFailed, sess.UserID, work, "")
		m.log.Info("flow machine: flow failed",
			slog.String("user_id", sess.UserID),
			slog.String("kind", string(work.Kind)),
			slog.String("reason", terr.Message),
		)
		return out, nil

	case errors.As(res.Error, &verr):
		out.Status = StatusRejected
		out.Err = verr
		out.Replies = append(out.Replies, Reply{
			Text:    "❌ " + verr.Message,
			Buttons: Column(Button("✖️ Cancel", NewAction(ActionCancel))),
		})
		if res.Apply == nil && reflect.DeepEqual(work, sess.Flow) {
			return out, nil
		}
		out, err := m.commitStep(ctx, sess, work.ID, committed, work, res.Apply, out)
		if err == nil && out.Status != StatusFailed {
			out.Status = StatusRejected
		}
		return out, err
	}

	var up *UpstreamError
	if !errors.As(res.Error, &up) {
		up = Upstream(string(committed), res.Error)
	}
	out.Status = StatusFailed
	out.Err = up
	out.Replies = append(out.Replies, Reply{
		Text:    up.UserMessage(),
		Buttons: Column(Button("✖️ Cancel", NewAction(ActionCancel))),
	})
	m.log.Warn("flow machine: upstream failure",
		slog.String("user_id", sess.UserID),
		slog.String("kind", string(w.Kind())),
		slog.String("step", string(committed)),
		slog.Bool("timeout", up.Timeout),
		slog.String("error", up.Error()),
	)

	// A step may name a fallback step, e.g. back to confirmation after a
	// failed submission.
	if res.NextStep == "" || sess.Flow == nil || !w.Transitions().Allows(committed, res.NextStep) {
		return out, nil
	}
	fallback := sess.Flow.Clone()
	fallback.Step = res.NextStep
	if err := m.commit(ctx, sess, work.ID, committed, fallback, nil); err != nil {
		if errors.Is(err, ErrFlowReplaced) {
			return out, nil
		}
		return out, err
	}
	if step, ok := w.GetStep(res.NextStep); ok {
		again := step.Enter(ctx, m.stepContext(sess, sess.Flow.Clone()))
		if again.Reply != nil {
			out.Replies = append(out.Replies, *again.Reply)
		}
	}
	return out, nil
}

// commitStep persists work as the active flow. A flow replaced in the store
// meanwhile is reported as a failed result, not an error.
func (m *Machine) commitStep(ctx context.Context, sess *Session, flowID string, from StepID, work *Flow, apply func(*Session), out Result) (Result, error) {
	err := m.commit(ctx, sess, flowID, from, work, apply)
	if errors.Is(err, ErrFlowReplaced) {
		out.Status = StatusFailed
		out.Err = err
		out.Replies = append(out.Replies, Reply{Text: "This operation is no longer active."})
		return out, nil
	}
	return out, err
}

// commit stores next as the flow identified by flowID, which must still sit
// at step from; a nil next ends it. On a write conflict the closure runs
// against the re-read session, so a flow another writer has moved on is
// reported as ErrFlowReplaced rather than overwritten. apply always runs
// when ending a flow, even if the flow was already gone.
func (m *Machine) commit(ctx context.Context, sess *Session, flowID string, from StepID, next *Flow, apply func(*Session)) error {
	return m.sessions.Mutate(ctx, sess, func(s *Session) error {
		current := s.Flow != nil && s.Flow.ID == flowID && s.Flow.Step == from
		switch {
		case current:
			s.Flow = next.Clone()
		case next != nil:
			return ErrFlowReplaced
		}
		if apply != nil {
			apply(s)
		}
		return nil
	})
}

func (m *Machine) publish(kind, userID string, f *Flow, transferID string) {
	if m.listener == nil || f == nil {
		return
	}
	m.listener.FlowEvent(FlowEvent{
		Type:       kind,
		UserID:     userID,
		FlowID:     f.ID,
		Kind:       f.Kind,
		Step:       f.Step,
		TransferID: transferID,
		At:         m.now(),
	})
}
