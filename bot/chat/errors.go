package chat

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoActiveFlow      = errors.New("no active flow")
	ErrUnknownFlow       = errors.New("unknown flow")
	ErrConflict          = errors.New("session version conflict")
	ErrFlowReplaced      = errors.New("flow was replaced")
	ErrIllegalTransition = errors.New("illegal step transition")
)

// ValidationError rejects user input; the flow stays at its step.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failed or timed out payments API call.
type UpstreamError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown with the retry affordance.
func (e *UpstreamError) UserMessage() string {
	if e.Timeout {
		return "⏳ The payments service did not answer in time. Nothing was changed, please try again."
	}
	return "⚠️ The payments service is unavailable right now. Your progress is saved, please try again."
}

func Upstream(op string, err error) *UpstreamError {
	return &UpstreamError{
		Op:      op,
		Err:     err,
		Timeout: errors.Is(err, context.DeadlineExceeded),
	}
}

// TerminalError ends the flow and discards what was collected.
type TerminalError struct {
	Message string
}

func (e *TerminalError) Error() string {
	return e.Message
}
