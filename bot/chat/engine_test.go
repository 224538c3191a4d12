package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"CopperxBot/bot/chat"
	"CopperxBot/entity"
	"CopperxBot/internal/database/memory"

	"github.com/stretchr/testify/require"
)

const stepWrite chat.StepID = "write"

// noteWorkflow is a small write -> confirm -> submit flow used to exercise
// the machine without any payments collaborator.
type noteWorkflow struct {
	steps    map[chat.StepID]chat.Step
	submitFn func(ctx context.Context, sc *chat.StepContext) error
	submits  int
}

func newNoteWorkflow() *noteWorkflow {
	w := &noteWorkflow{steps: make(map[chat.StepID]chat.Step)}
	w.steps[stepWrite] = &writeStep{}
	w.steps[chat.StepConfirm] = &reviewStep{}
	w.steps[chat.StepSubmit] = &submitStep{w: w}
	return w
}

func (w *noteWorkflow) Kind() chat.FlowKind      { return chat.FlowBroadcast }
func (w *noteWorkflow) InitialStep() chat.StepID { return stepWrite }
func (w *noteWorkflow) GetStep(id chat.StepID) (chat.Step, bool) {
	s, ok := w.steps[id]
	return s, ok
}
func (w *noteWorkflow) Transitions() chat.Transitions {
	return chat.Transitions{
		stepWrite:        {chat.StepConfirm},
		chat.StepConfirm: {chat.StepSubmit, stepWrite},
		chat.StepSubmit:  {chat.StepConfirm},
	}
}

type writeStep struct{}

func (s *writeStep) ID() chat.StepID   { return stepWrite }
func (s *writeStep) AcceptsText() bool { return true }
func (s *writeStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{Text: "write a note"}}
}
func (s *writeStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	switch in.Text {
	case "":
		return chat.StepResult{Error: chat.Invalid("empty note")}
	case "jump":
		return chat.StepResult{NextStep: chat.StepSubmit}
	case "upstream":
		return chat.StepResult{Error: chat.Upstream("note", context.DeadlineExceeded)}
	}
	sc.Flow.Broadcast.Message = in.Text
	return chat.StepResult{NextStep: chat.StepConfirm}
}

type reviewStep struct{}

func (s *reviewStep) ID() chat.StepID   { return chat.StepConfirm }
func (s *reviewStep) AcceptsText() bool { return false }
func (s *reviewStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{Text: "confirm " + sc.Flow.Broadcast.Message}}
}
func (s *reviewStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionConfirmBroadcast && in.Action.Param == sc.Flow.ID {
		return chat.StepResult{NextStep: chat.StepSubmit}
	}
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: stepWrite}
	}
	return chat.StepResult{Error: chat.Invalid("use the buttons")}
}

type submitStep struct {
	w *noteWorkflow
}

func (s *submitStep) ID() chat.StepID   { return chat.StepSubmit }
func (s *submitStep) AcceptsText() bool { return false }
func (s *submitStep) Enter(ctx context.Context, sc *chat.StepContext) chat.StepResult {
	s.w.submits++
	if s.w.submitFn != nil {
		if err := s.w.submitFn(ctx, sc); err != nil {
			return chat.StepResult{NextStep: chat.StepConfirm, Error: chat.Upstream("submit", err)}
		}
	}
	return chat.StepResult{
		Complete:  true,
		Reply:     &chat.Reply{Text: "sent"},
		Submitted: &entity.TransferReceipt{TransferID: "tx-" + sc.Flow.ID},
	}
}
func (s *submitStep) HandleInput(context.Context, *chat.StepContext, chat.Input) chat.StepResult {
	return chat.StepResult{Error: chat.Invalid("busy")}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []chat.FlowEvent
}

func (r *eventRecorder) FlowEvent(ev chat.FlowEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	machine  *chat.Machine
	workflow *noteWorkflow
	events   *eventRecorder
	sessions *chat.Sessions
}

func setupMachine(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	sessions := chat.NewSessions(store, 3, log)
	m := chat.NewMachine(sessions, log)
	w := newNoteWorkflow()
	m.RegisterWorkflow(w)
	events := &eventRecorder{}
	m.SetListener(events)
	return &fixture{store: store, machine: m, workflow: w, events: events, sessions: sessions}
}

func (f *fixture) session(t *testing.T) *chat.Session {
	t.Helper()
	sess, err := f.sessions.Load(context.Background(), "u1", "c1")
	require.NoError(t, err)
	return sess
}

func (f *fixture) stored(t *testing.T) *chat.Session {
	t.Helper()
	sess, err := f.store.Get(context.Background(), "u1")
	require.NoError(t, err)
	return sess
}

func text(s string) chat.Input { return chat.Input{Text: s} }

func TestStartFlow(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)

	res, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)
	require.Equal(t, chat.StatusPrompt, res.Status)
	require.Equal(t, "write a note", res.Replies[0].Text)
	require.Equal(t, stepWrite, f.stored(t).Flow.Step)
	first := sess.Flow.ID

	_, err = f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)
	require.NotEqual(t, first, f.stored(t).Flow.ID)
	require.Equal(t, []string{chat.EventFlowStarted, chat.EventFlowCancelled, chat.EventFlowStarted}, f.events.types())
}

func TestStartFlowWithInitialInput(t *testing.T) {
	f := setupMachine(t)
	sess := f.session(t)

	res, err := f.machine.StartFlow(context.Background(), sess, chat.FlowBroadcast, text("hello"))
	require.NoError(t, err)
	require.Equal(t, chat.StatusPrompt, res.Status)
	require.Len(t, res.Replies, 1)
	require.Equal(t, "confirm hello", res.Replies[0].Text)
	require.Equal(t, chat.StepConfirm, f.stored(t).Flow.Step)
}

func TestStartUnknownFlow(t *testing.T) {
	f := setupMachine(t)
	sess := f.session(t)

	_, err := f.machine.StartFlow(context.Background(), sess, chat.FlowWithdraw, chat.Input{})
	require.ErrorIs(t, err, chat.ErrUnknownFlow)
	require.Nil(t, sess.Flow)
	require.Nil(t, f.stored(t))
}

func TestAdvanceInvalidInputNeverMovesStep(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)
	version := f.stored(t).Version

	for i := 0; i < 5; i++ {
		res, err := f.machine.Advance(ctx, sess, text(""))
		require.NoError(t, err)
		require.Equal(t, chat.StatusRejected, res.Status)
		var verr *chat.ValidationError
		require.ErrorAs(t, res.Err, &verr)
		require.Equal(t, stepWrite, f.stored(t).Flow.Step)
	}
	require.Equal(t, version, f.stored(t).Version)
}

func TestAdvanceUpstreamKeepsFields(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, text("draft"))
	require.NoError(t, err)
	_, err = f.machine.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionBack)})
	require.NoError(t, err)
	require.Equal(t, stepWrite, f.stored(t).Flow.Step)

	res, err := f.machine.Advance(ctx, sess, text("upstream"))
	require.NoError(t, err)
	require.Equal(t, chat.StatusFailed, res.Status)
	var up *chat.UpstreamError
	require.ErrorAs(t, res.Err, &up)
	require.True(t, up.Timeout)

	stored := f.stored(t)
	require.Equal(t, stepWrite, stored.Flow.Step)
	require.Equal(t, "draft", stored.Flow.Broadcast.Message)
}

func TestAdvanceWithoutFlow(t *testing.T) {
	f := setupMachine(t)
	_, err := f.machine.Advance(context.Background(), f.session(t), text("hi"))
	require.ErrorIs(t, err, chat.ErrNoActiveFlow)
}

func TestIllegalTransitionIsRefused(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)

	_, err = f.machine.Advance(ctx, sess, text("jump"))
	require.ErrorIs(t, err, chat.ErrIllegalTransition)
	require.Equal(t, stepWrite, f.stored(t).Flow.Step)
	require.Zero(t, f.workflow.submits)
}

func TestConfirmSubmitsOnce(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, text("hello"))
	require.NoError(t, err)
	confirm := chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, sess.Flow.ID)}

	res, err := f.machine.Advance(ctx, sess, confirm)
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	require.Nil(t, f.stored(t).Flow)

	_, err = f.machine.Advance(ctx, sess, confirm)
	require.ErrorIs(t, err, chat.ErrNoActiveFlow)
	require.Equal(t, 1, f.workflow.submits)
	require.Contains(t, f.events.types(), chat.EventTransferSubmitted)
}

func TestSubmitLeavesConfirmBeforeCalling(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, text("hello"))
	require.NoError(t, err)

	var stepDuringSubmit chat.StepID
	f.workflow.submitFn = func(context.Context, *chat.StepContext) error {
		stepDuringSubmit = f.stored(t).Flow.Step
		return errors.New("boom")
	}

	res, err := f.machine.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, sess.Flow.ID)})
	require.NoError(t, err)
	require.Equal(t, chat.StepSubmit, stepDuringSubmit)
	require.Equal(t, chat.StatusFailed, res.Status)
	require.Equal(t, "confirm hello", res.Replies[len(res.Replies)-1].Text)

	stored := f.stored(t)
	require.Equal(t, chat.StepConfirm, stored.Flow.Step)
	require.Equal(t, "hello", stored.Flow.Broadcast.Message)

	f.workflow.submitFn = nil
	res, err = f.machine.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, sess.Flow.ID)})
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	require.Equal(t, 2, f.workflow.submits)
}

func TestCompletionAfterConcurrentCancelIsStillReported(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, text("hello"))
	require.NoError(t, err)

	f.workflow.submitFn = func(context.Context, *chat.StepContext) error {
		other := f.stored(t)
		other.Flow = nil
		require.NoError(t, f.store.Put(ctx, other))
		return nil
	}

	res, err := f.machine.Advance(ctx, sess, chat.Input{Action: chat.NewAction(chat.ActionConfirmBroadcast, sess.Flow.ID)})
	require.NoError(t, err)
	require.Equal(t, chat.StatusCompleted, res.Status)
	require.Equal(t, "sent", res.Replies[0].Text)
	require.Nil(t, f.stored(t).Flow)
	require.Contains(t, f.events.types(), chat.EventTransferSubmitted)
}

func TestStepOnReplacedFlowFails(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)
	_, err := f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)

	other := f.stored(t)
	other.Flow = nil
	require.NoError(t, f.store.Put(ctx, other))

	res, err := f.machine.Advance(ctx, sess, text("late"))
	require.NoError(t, err)
	require.Equal(t, chat.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, chat.ErrFlowReplaced)
	require.Nil(t, f.stored(t).Flow)
}

func TestCancel(t *testing.T) {
	f := setupMachine(t)
	ctx := context.Background()
	sess := f.session(t)

	cancelled, err := f.machine.Cancel(ctx, sess)
	require.NoError(t, err)
	require.False(t, cancelled)

	_, err = f.machine.StartFlow(ctx, sess, chat.FlowBroadcast, text("hello"))
	require.NoError(t, err)
	require.False(t, f.machine.IsAwaitingInput(sess))

	for i := 0; i < 3; i++ {
		_, err = f.machine.Cancel(ctx, sess)
		require.NoError(t, err)
		require.Nil(t, sess.Flow)
		require.Nil(t, f.stored(t).Flow)
	}
}

func TestIsAwaitingInput(t *testing.T) {
	f := setupMachine(t)
	sess := f.session(t)
	require.False(t, f.machine.IsAwaitingInput(sess))

	_, err := f.machine.StartFlow(context.Background(), sess, chat.FlowBroadcast, chat.Input{})
	require.NoError(t, err)
	require.True(t, f.machine.IsAwaitingInput(sess))
	require.True(t, f.machine.AtStep(sess, chat.FlowBroadcast, sess.Flow.ID, stepWrite))
	require.False(t, f.machine.AtStep(sess, chat.FlowBroadcast, "other", stepWrite))
}
