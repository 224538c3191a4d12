// Package deposit shows a deposit address for a chosen network.
package deposit

import (
	"context"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
)

type Workflow struct {
	step *SelectNetworkStep
}

func NewWorkflow(wallets flows.WalletAPI) *Workflow {
	return &Workflow{step: &SelectNetworkStep{wallets: wallets}}
}

func (w *Workflow) Kind() chat.FlowKind      { return chat.FlowDeposit }
func (w *Workflow) InitialStep() chat.StepID { return flows.StepSelectNetwork }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	if id == flows.StepSelectNetwork {
		return w.step, true
	}
	return nil, false
}

func (w *Workflow) Transitions() chat.Transitions {
	return chat.Transitions{}
}

type SelectNetworkStep struct {
	wallets flows.WalletAPI
}

func (s *SelectNetworkStep) ID() chat.StepID   { return flows.StepSelectNetwork }
func (s *SelectNetworkStep) AcceptsText() bool { return true }

func (s *SelectNetworkStep) Enter(ctx context.Context, sc *chat.StepContext) chat.StepResult {
	wallets, _ := s.wallets.ListBalances(ctx, sc.Token())
	rows := flows.NetworkButtons(chat.ActionDepositNetwork, wallets)
	rows = append(rows, []chat.InlineButton{present.CancelButton()})
	return chat.StepResult{Reply: &chat.Reply{Text: "📥 Which network will you deposit on?", Buttons: rows}}
}

func (s *SelectNetworkStep) HandleInput(ctx context.Context, sc *chat.StepContext, in chat.Input) chat.StepResult {
	network := flows.PickNetwork(in, chat.ActionDepositNetwork)
	if network == "" {
		return chat.StepResult{Error: chat.Invalid("Choose a network using the buttons.")}
	}
	addr, err := s.wallets.DepositAddress(ctx, sc.Token(), network)
	if err != nil {
		return chat.StepResult{Error: chat.Upstream("deposit address", err)}
	}
	if addr.Address == "" {
		return chat.StepResult{Error: chat.Invalid("No deposit address is available on %s. Choose another network.", network)}
	}
	sc.Flow.Deposit.Network = addr.Network
	sc.Flow.Deposit.Address = addr.Address
	sc.Flow.Deposit.MinAmount = addr.MinAmount

	reply := present.DepositAddress(*addr)
	return chat.StepResult{Complete: true, Reply: &reply}
}
