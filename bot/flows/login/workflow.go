// Package login implements the email OTP login flow.
package login

import (
	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
)

const (
	StepEnterEmail chat.StepID = "enter_email"
	StepEnterOtp   chat.StepID = "enter_otp"
)

type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func NewWorkflow(auth flows.AuthAPI, limits flows.Limits) *Workflow {
	w := &Workflow{
		steps: make(map[chat.StepID]chat.Step),
	}
	w.steps[StepEnterEmail] = &EnterEmailStep{auth: auth}
	w.steps[StepEnterOtp] = &EnterOtpStep{auth: auth, maxAttempts: limits.OtpMaxAttempts}
	return w
}

func (w *Workflow) Kind() chat.FlowKind      { return chat.FlowLogin }
func (w *Workflow) InitialStep() chat.StepID { return StepEnterEmail }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Transitions() chat.Transitions {
	return chat.Transitions{
		StepEnterEmail: {StepEnterOtp},
		StepEnterOtp:   {StepEnterEmail},
	}
}
