package send

import (
	"context"
	"strings"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
	"CopperxBot/internal/lib/validate"

	"github.com/shopspring/decimal"
)

type SelectMethodStep struct{}

func (s *SelectMethodStep) ID() chat.StepID   { return flows.StepSelectMethod }
func (s *SelectMethodStep) AcceptsText() bool { return true }

func (s *SelectMethodStep) buttons() [][]chat.InlineButton {
	return [][]chat.InlineButton{
		{chat.Button("📧 By email", chat.NewAction(chat.ActionSendMethod, string(chat.SendByEmail)))},
		{chat.Button("👛 To a wallet", chat.NewAction(chat.ActionSendMethod, string(chat.SendByWallet)))},
	}
}

func (s *SelectMethodStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	rows := append(s.buttons(), []chat.InlineButton{present.CancelButton()})
	return chat.StepResult{Reply: &chat.Reply{Text: "📤 How would you like to send USDC?", Buttons: rows}}
}

func (s *SelectMethodStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	action := in.Action
	if action.IsZero() {
		action = chat.MatchNumberToInline(in.Text, s.buttons())
	}
	method := chat.SendMethod(strings.ToLower(strings.TrimSpace(in.Text)))
	if action.Kind == chat.ActionSendMethod {
		method = chat.SendMethod(action.Param)
	}
	if method != chat.SendByEmail && method != chat.SendByWallet {
		return chat.StepResult{Error: chat.Invalid("Choose email or wallet.")}
	}
	if sc.Flow.Send.Method != method {
		sc.Flow.Send.Recipient = ""
	}
	sc.Flow.Send.Method = method
	return chat.StepResult{NextStep: flows.StepEnterRecipient}
}

type EnterRecipientStep struct {
	validWallet func(string) bool
}

func (s *EnterRecipientStep) ID() chat.StepID   { return flows.StepEnterRecipient }
func (s *EnterRecipientStep) AcceptsText() bool { return true }

func (s *EnterRecipientStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	text := "📧 Enter the recipient's email address:"
	if sc.Flow.Send.Method == chat.SendByWallet {
		text = "👛 Enter the recipient's wallet address:"
	}
	return chat.StepResult{Reply: &chat.Reply{
		Text:    text,
		Buttons: [][]chat.InlineButton{{present.BackButton(), present.CancelButton()}},
	}}
}

func (s *EnterRecipientStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: flows.StepSelectMethod}
	}
	recipient := strings.TrimSpace(in.Text)
	if sc.Flow.Send.Method == chat.SendByWallet {
		if !s.validWallet(recipient) {
			return chat.StepResult{Error: chat.Invalid("That does not look like a wallet address. Please check and try again.")}
		}
	} else {
		recipient = strings.ToLower(recipient)
		if !validate.IsValidEmail(recipient) {
			return chat.StepResult{Error: chat.Invalid("Please enter a valid email address.")}
		}
	}
	sc.Flow.Send.Recipient = recipient
	return chat.StepResult{NextStep: flows.StepEnterAmount}
}

type EnterAmountStep struct {
	min decimal.Decimal
}

func (s *EnterAmountStep) ID() chat.StepID   { return flows.StepEnterAmount }
func (s *EnterAmountStep) AcceptsText() bool { return true }

func (s *EnterAmountStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "💵 How much USDC? Minimum " + s.min.String() + ".",
		Buttons: [][]chat.InlineButton{{present.BackButton(), present.CancelButton()}},
	}}
}

func (s *EnterAmountStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: flows.StepEnterRecipient}
	}
	amount, err := flows.ParseAmount(in.Text, s.min)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	sc.Flow.Send.Amount = amount.String()
	sc.Flow.Send.Quote = nil
	return chat.StepResult{NextStep: flows.StepSelectNetwork}
}
