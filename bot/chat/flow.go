package chat

import (
	"fmt"
	"time"

	"CopperxBot/entity"

	"github.com/google/uuid"
)

// FlowKind names a multi-step operation.
type FlowKind string

const (
	FlowNone      FlowKind = ""
	FlowLogin     FlowKind = "login"
	FlowSend      FlowKind = "send"
	FlowWithdraw  FlowKind = "withdraw"
	FlowDeposit   FlowKind = "deposit"
	FlowBroadcast FlowKind = "broadcast"
)

// StepID is a stage within a flow.
type StepID string

// Steps shared by every money-moving flow.
const (
	StepConfirm StepID = "confirm"
	StepSubmit  StepID = "submit"
)

// Flow is a tagged variant: exactly the field matching Kind is set.
type Flow struct {
	ID        string    `json:"id" bson:"id"`
	Kind      FlowKind  `json:"kind" bson:"kind"`
	Step      StepID    `json:"step" bson:"step"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	StartedAt time.Time `json:"started_at" bson:"started_at"`

	Login     *LoginData     `json:"login,omitempty" bson:"login,omitempty"`
	Send      *SendData      `json:"send,omitempty" bson:"send,omitempty"`
	Withdraw  *WithdrawData  `json:"withdraw,omitempty" bson:"withdraw,omitempty"`
	Deposit   *DepositData   `json:"deposit,omitempty" bson:"deposit,omitempty"`
	Broadcast *BroadcastData `json:"broadcast,omitempty" bson:"broadcast,omitempty"`
}

type LoginData struct {
	Email string `json:"email" bson:"email"`
	Sid   string `json:"sid" bson:"sid"`
}

type SendMethod string

const (
	SendByEmail  SendMethod = "email"
	SendByWallet SendMethod = "wallet"
)

type SendData struct {
	Method    SendMethod    `json:"method" bson:"method"`
	Recipient string        `json:"recipient" bson:"recipient"`
	Amount    string        `json:"amount" bson:"amount"`
	Network   string        `json:"network" bson:"network"`
	Quote     *entity.Quote `json:"quote,omitempty" bson:"quote,omitempty"`
}

type WithdrawMethod string

const (
	WithdrawToWallet WithdrawMethod = "wallet"
	WithdrawToBank   WithdrawMethod = "bank"
)

type WithdrawData struct {
	Method      WithdrawMethod `json:"method" bson:"method"`
	Recipient   string         `json:"recipient" bson:"recipient"`
	Amount      string         `json:"amount" bson:"amount"`
	BankDetails string         `json:"bank_details" bson:"bank_details"`
	Network     string         `json:"network" bson:"network"`
	Quote       *entity.Quote  `json:"quote,omitempty" bson:"quote,omitempty"`
}

type DepositData struct {
	Network   string `json:"network" bson:"network"`
	Address   string `json:"address" bson:"address"`
	MinAmount string `json:"min_amount" bson:"min_amount"`
}

type BroadcastData struct {
	Message string `json:"message" bson:"message"`
}

// NewFlow creates a flow of kind at step with an empty variant.
func NewFlow(kind FlowKind, step StepID) *Flow {
	f := &Flow{
		ID:        uuid.NewString(),
		Kind:      kind,
		Step:      step,
		StartedAt: time.Now(),
	}
	switch kind {
	case FlowLogin:
		f.Login = &LoginData{}
	case FlowSend:
		f.Send = &SendData{}
	case FlowWithdraw:
		f.Withdraw = &WithdrawData{}
	case FlowDeposit:
		f.Deposit = &DepositData{}
	case FlowBroadcast:
		f.Broadcast = &BroadcastData{}
	}
	return f
}

// Check verifies that the variant matches the kind.
func (f *Flow) Check() error {
	set := 0
	match := false
	for kind, present := range map[FlowKind]bool{
		FlowLogin:     f.Login != nil,
		FlowSend:      f.Send != nil,
		FlowWithdraw:  f.Withdraw != nil,
		FlowDeposit:   f.Deposit != nil,
		FlowBroadcast: f.Broadcast != nil,
	} {
		if present {
			set++
			match = match || kind == f.Kind
		}
	}
	if set != 1 || !match {
		return fmt.Errorf("flow %s: variant does not match kind %q", f.ID, f.Kind)
	}
	return nil
}

func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	c := *f
	if f.Login != nil {
		v := *f.Login
		c.Login = &v
	}
	if f.Send != nil {
		v := *f.Send
		v.Quote = cloneQuote(f.Send.Quote)
		c.Send = &v
	}
	if f.Withdraw != nil {
		v := *f.Withdraw
		v.Quote = cloneQuote(f.Withdraw.Quote)
		c.Withdraw = &v
	}
	if f.Deposit != nil {
		v := *f.Deposit
		c.Deposit = &v
	}
	if f.Broadcast != nil {
		v := *f.Broadcast
		c.Broadcast = &v
	}
	return &c
}

func cloneQuote(q *entity.Quote) *entity.Quote {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}

// Transitions lists the legal next steps of each step.
type Transitions map[StepID][]StepID

func (t Transitions) Allows(from, to StepID) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}
