package withdraw

import (
	"context"
	"strings"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
	"CopperxBot/internal/lib/validate"

	"github.com/shopspring/decimal"
)

var backRow = []chat.InlineButton{present.BackButton(), present.CancelButton()}

type SelectMethodStep struct{}

func (s *SelectMethodStep) ID() chat.StepID   { return flows.StepSelectMethod }
func (s *SelectMethodStep) AcceptsText() bool { return true }

func (s *SelectMethodStep) buttons() [][]chat.InlineButton {
	return [][]chat.InlineButton{
		{chat.Button("👛 To a wallet", chat.NewAction(chat.ActionWithdrawMethod, string(chat.WithdrawToWallet)))},
		{chat.Button("🏦 To a bank account", chat.NewAction(chat.ActionWithdrawMethod, string(chat.WithdrawToBank)))},
	}
}

func (s *SelectMethodStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	rows := append(s.buttons(), []chat.InlineButton{present.CancelButton()})
	return chat.StepResult{Reply: &chat.Reply{Text: "🏦 Where would you like to withdraw?", Buttons: rows}}
}

func (s *SelectMethodStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	action := in.Action
	if action.IsZero() {
		action = chat.MatchNumberToInline(in.Text, s.buttons())
	}
	method := chat.WithdrawMethod(strings.ToLower(strings.TrimSpace(in.Text)))
	if action.Kind == chat.ActionWithdrawMethod {
		method = chat.WithdrawMethod(action.Param)
	}

	data := sc.Flow.Withdraw
	switch method {
	case chat.WithdrawToWallet:
		data.BankDetails = ""
		data.Method = method
		return chat.StepResult{NextStep: flows.StepEnterRecipient}
	case chat.WithdrawToBank:
		data.Recipient = ""
		data.Method = method
		return chat.StepResult{NextStep: flows.StepEnterAmount}
	}
	return chat.StepResult{Error: chat.Invalid("Choose wallet or bank.")}
}

type EnterWalletStep struct {
	validWallet func(string) bool
}

func (s *EnterWalletStep) ID() chat.StepID   { return flows.StepEnterRecipient }
func (s *EnterWalletStep) AcceptsText() bool { return true }

func (s *EnterWalletStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "👛 Enter the destination wallet address:",
		Buttons: [][]chat.InlineButton{backRow},
	}}
}

func (s *EnterWalletStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: flows.StepSelectMethod}
	}
	address := strings.TrimSpace(in.Text)
	if !s.validWallet(address) {
		return chat.StepResult{Error: chat.Invalid("That does not look like a wallet address. Please check and try again.")}
	}
	sc.Flow.Withdraw.Recipient = address
	return chat.StepResult{NextStep: flows.StepEnterAmount}
}

// EnterAmountStep applies the minimum of the chosen method.
type EnterAmountStep struct {
	limits flows.Limits
}

func (s *EnterAmountStep) ID() chat.StepID   { return flows.StepEnterAmount }
func (s *EnterAmountStep) AcceptsText() bool { return true }

func (s *EnterAmountStep) min(f *chat.Flow) decimal.Decimal {
	if f.Withdraw.Method == chat.WithdrawToBank {
		return s.limits.WithdrawBankMin
	}
	return s.limits.WithdrawWalletMin
}

func (s *EnterAmountStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "💵 How much USDC? Minimum " + s.min(sc.Flow).String() + ".",
		Buttons: [][]chat.InlineButton{backRow},
	}}
}

func (s *EnterAmountStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	bank := sc.Flow.Withdraw.Method == chat.WithdrawToBank
	if in.Action.Kind == chat.ActionBack {
		if bank {
			return chat.StepResult{NextStep: flows.StepSelectMethod}
		}
		return chat.StepResult{NextStep: flows.StepEnterRecipient}
	}
	amount, err := flows.ParseAmount(in.Text, s.min(sc.Flow))
	if err != nil {
		return chat.StepResult{Error: err}
	}
	sc.Flow.Withdraw.Amount = amount.String()
	sc.Flow.Withdraw.Quote = nil
	if bank {
		return chat.StepResult{NextStep: StepEnterBankDetails}
	}
	return chat.StepResult{NextStep: flows.StepSelectNetwork}
}

type EnterBankDetailsStep struct{}

func (s *EnterBankDetailsStep) ID() chat.StepID   { return StepEnterBankDetails }
func (s *EnterBankDetailsStep) AcceptsText() bool { return true }

func (s *EnterBankDetailsStep) Enter(context.Context, *chat.StepContext) chat.StepResult {
	return chat.StepResult{Reply: &chat.Reply{
		Text:    "🏦 Send your bank details in one message, e.g.\n\nBank: Example Bank\nAccount: 12345678\nName: Jane Doe",
		Buttons: [][]chat.InlineButton{backRow},
	}}
}

func (s *EnterBankDetailsStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		return chat.StepResult{NextStep: flows.StepEnterAmount}
	}
	details := strings.TrimSpace(in.Text)
	if !validate.IsValidBankDetails(details) {
		return chat.StepResult{Error: chat.Invalid("Please include at least the bank, the account number and the account holder's name.")}
	}
	sc.Flow.Withdraw.BankDetails = details
	return chat.StepResult{NextStep: flows.StepSelectNetwork}
}
