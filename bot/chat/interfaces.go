package chat

import (
	"context"
	"time"

	"CopperxBot/entity"
)

// StepContext is what a step sees while it runs. Flow is a working copy;
// changes are kept only when the machine commits the step's result.
type StepContext struct {
	Session *Session
	Flow    *Flow
	Now     time.Time
}

// Token returns the access token if the session is logged in.
func (c *StepContext) Token() string {
	if auth := c.Session.ActiveAuth(c.Now); auth != nil {
		return auth.AccessToken
	}
	return ""
}

// StepResult represents the outcome of handling an event in a step.
type StepResult struct {
	NextStep StepID
	Reply    *Reply
	Complete bool
	Error    error
	// Apply runs against the stored session when the result is committed.
	// It may be called more than once on write conflicts.
	Apply func(s *Session)
	// Submitted is set when money moved.
	Submitted *entity.TransferReceipt
}

// Step defines the interface for a single flow step.
type Step interface {
	ID() StepID

	// AcceptsText reports whether plain text messages are input for this step.
	AcceptsText() bool

	// Enter is called when the flow arrives at this step.
	Enter(ctx context.Context, sc *StepContext) StepResult

	// HandleInput processes text or a button action.
	HandleInput(ctx context.Context, sc *StepContext, input Input) StepResult
}

// Workflow defines the step table of one flow kind.
type Workflow interface {
	Kind() FlowKind
	InitialStep() StepID
	GetStep(id StepID) (Step, bool)
	Transitions() Transitions
}
