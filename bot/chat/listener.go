package chat

import "time"

// Flow event types published to the listener.
const (
	EventFlowStarted       = "flow_started"
	EventFlowCompleted     = "flow_completed"
	EventFlowCancelled     = "flow_cancelled"
	EventFlowFailed        = "flow_failed"
	EventTransferSubmitted = "transfer_submitted"
)

type FlowEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	FlowID     string    `json:"flow_id"`
	Kind       FlowKind  `json:"kind"`
	Step       StepID    `json:"step,omitempty"`
	TransferID string    `json:"transfer_id,omitempty"`
	At         time.Time `json:"at"`
}

// Listener is notified about flow lifecycle events, e.g. to feed a websocket
// hub without the bot packages importing it.
type Listener interface {
	FlowEvent(ev FlowEvent)
}
