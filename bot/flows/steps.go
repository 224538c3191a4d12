package flows

import (
	"context"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/entity"

	"github.com/shopspring/decimal"
)

// NetworkStep picks the source network, checks the balance and fetches a
// quote before moving to confirmation.
type NetworkStep struct {
	Wallets   WalletAPI
	Transfers TransferAPI
	Back      chat.StepID
	// BackTo overrides Back when the previous step depends on the flow.
	BackTo func(f *chat.Flow) chat.StepID
	Prompt string

	// Amount returns the amount collected so far.
	Amount func(f *chat.Flow) string
	// Request builds the quote request for network.
	Request func(f *chat.Flow, network string) entity.TransferRequest
	// Store saves the chosen network and quote into the flow.
	Store func(f *chat.Flow, network string, quote *entity.Quote)
}

func (s *NetworkStep) ID() chat.StepID   { return StepSelectNetwork }
func (s *NetworkStep) AcceptsText() bool { return true }

func (s *NetworkStep) Enter(ctx context.Context, sc *chat.StepContext) chat.StepResult {
	wallets, _ := s.Wallets.ListBalances(ctx, sc.Token())
	rows := NetworkButtons(chat.ActionNetwork, wallets)
	rows = append(rows, []chat.InlineButton{present.BackButton(), present.CancelButton()})
	return chat.StepResult{Reply: &chat.Reply{Text: s.Prompt, Buttons: rows}}
}

func (s *NetworkStep) HandleInput(ctx context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	if in.Action.Kind == chat.ActionBack {
		if s.BackTo != nil {
			return chat.StepResult{NextStep: s.BackTo(sc.Flow)}
		}
		return chat.StepResult{NextStep: s.Back}
	}
	network := PickNetwork(in, chat.ActionNetwork)
	if network == "" {
		return chat.StepResult{Error: chat.Invalid("Choose a network using the buttons.")}
	}
	amount, err := decimal.NewFromString(s.Amount(sc.Flow))
	if err != nil {
		return chat.StepResult{Error: &chat.TerminalError{Message: "The amount of this operation was lost. Please start again."}}
	}

	wallets, err := s.Wallets.ListBalances(ctx, sc.Token())
	if err != nil {
		return chat.StepResult{Error: chat.Upstream("list balances", err)}
	}
	if err := CheckBalance(wallets, network, amount); err != nil {
		return chat.StepResult{Error: err}
	}

	quote, err := s.Transfers.Quote(ctx, sc.Token(), s.Request(sc.Flow, network))
	if err != nil {
		return chat.StepResult{Error: chat.Upstream("quote", err)}
	}
	if err := CheckQuote(quote, amount); err != nil {
		return chat.StepResult{Error: err}
	}

	s.Store(sc.Flow, network, quote)
	return chat.StepResult{NextStep: chat.StepConfirm}
}

// ConfirmStep shows the summary and waits for the confirm button carrying
// this flow's id.
type ConfirmStep struct {
	Action  chat.ActionKind
	Back    chat.StepID
	Summary func(f *chat.Flow) present.TransferSummary
}

func (s *ConfirmStep) ID() chat.StepID   { return chat.StepConfirm }
func (s *ConfirmStep) AcceptsText() bool { return false }

func (s *ConfirmStep) Enter(_ context.Context, sc *chat.StepContext) chat.StepResult {
	reply := present.Confirmation(s.Summary(sc.Flow), chat.NewAction(s.Action, sc.Flow.ID))
	return chat.StepResult{Reply: &reply}
}

func (s *ConfirmStep) HandleInput(_ context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	switch in.Action.Kind {
	case s.Action:
		if in.Action.Param != sc.Flow.ID {
			return chat.StepResult{Error: chat.Invalid("This confirmation has expired.")}
		}
		return chat.StepResult{NextStep: chat.StepSubmit}
	case chat.ActionBack:
		if s.Back != "" {
			return chat.StepResult{NextStep: s.Back}
		}
	}
	return chat.StepResult{Error: chat.Invalid("Please confirm or cancel using the buttons.")}
}

// SubmitStep performs the transfer on entry. The flow id is the idempotency
// key, so a retry after a failure cannot create a second transfer.
type SubmitStep struct {
	Title     string
	Transfers TransferAPI
	Request   func(f *chat.Flow) entity.TransferRequest
}

func (s *SubmitStep) ID() chat.StepID   { return chat.StepSubmit }
func (s *SubmitStep) AcceptsText() bool { return false }

func (s *SubmitStep) Enter(ctx context.Context, sc *chat.StepContext) chat.StepResult {
	req := s.Request(sc.Flow)
	req.IdempotencyKey = sc.Flow.ID

	receipt, err := s.Transfers.Submit(ctx, sc.Token(), req)
	if err != nil {
		return chat.StepResult{NextStep: chat.StepConfirm, Error: chat.Upstream("submit transfer", err)}
	}
	reply := present.Submitted(s.Title, receipt)
	return chat.StepResult{
		Complete:  true,
		Reply:     &reply,
		Submitted: receipt,
	}
}

func (s *SubmitStep) HandleInput(context.Context, *chat.StepContext, chat.Input) chat.StepResult {
	return chat.StepResult{Error: chat.Invalid("Your transfer is being processed.")}
}
