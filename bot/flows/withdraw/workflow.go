package withdraw

import (
	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/validate"
)

const StepEnterBankDetails chat.StepID = "enter_bank_details"

// Workflow withdraws USDC to an external wallet or a bank account.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func NewWorkflow(wallets flows.WalletAPI, transfers flows.TransferAPI, limits flows.Limits) *Workflow {
	w := &Workflow{
		steps: make(map[chat.StepID]chat.Step),
	}

	w.steps[flows.StepSelectMethod] = &SelectMethodStep{}
	w.steps[flows.StepEnterRecipient] = &EnterWalletStep{validWallet: validate.WalletAddressValidator(limits.StrictWallet)}
	w.steps[flows.StepEnterAmount] = &EnterAmountStep{limits: limits}
	w.steps[StepEnterBankDetails] = &EnterBankDetailsStep{}
	w.steps[flows.StepSelectNetwork] = &flows.NetworkStep{
		Wallets:   wallets,
		Transfers: transfers,
		BackTo: func(f *chat.Flow) chat.StepID {
			if f.Withdraw.Method == chat.WithdrawToBank {
				return StepEnterBankDetails
			}
			return flows.StepEnterAmount
		},
		Prompt:  "🌐 Which network should the USDC be taken from?",
		Amount:  func(f *chat.Flow) string { return f.Withdraw.Amount },
		Request: quoteRequest,
		Store: func(f *chat.Flow, network string, quote *entity.Quote) {
			f.Withdraw.Network = network
			f.Withdraw.Quote = quote
		},
	}
	w.steps[chat.StepConfirm] = &flows.ConfirmStep{
		Action:  chat.ActionConfirmWithdraw,
		Back:    flows.StepSelectNetwork,
		Summary: summary,
	}
	w.steps[chat.StepSubmit] = &flows.SubmitStep{
		Title:     "Withdrawal",
		Transfers: transfers,
		Request: func(f *chat.Flow) entity.TransferRequest {
			return quoteRequest(f, f.Withdraw.Network)
		},
	}

	return w
}

func (w *Workflow) Kind() chat.FlowKind      { return chat.FlowWithdraw }
func (w *Workflow) InitialStep() chat.StepID { return flows.StepSelectMethod }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Transitions() chat.Transitions {
	return chat.Transitions{
		flows.StepSelectMethod:   {flows.StepEnterRecipient, flows.StepEnterAmount},
		flows.StepEnterRecipient: {flows.StepEnterAmount, flows.StepSelectMethod},
		flows.StepEnterAmount:    {flows.StepSelectNetwork, StepEnterBankDetails, flows.StepEnterRecipient, flows.StepSelectMethod},
		StepEnterBankDetails:     {flows.StepSelectNetwork, flows.StepEnterAmount},
		flows.StepSelectNetwork:  {chat.StepConfirm, flows.StepEnterAmount, StepEnterBankDetails},
		chat.StepConfirm:         {chat.StepSubmit, flows.StepSelectNetwork},
		chat.StepSubmit:          {chat.StepConfirm},
	}
}

func quoteRequest(f *chat.Flow, network string) entity.TransferRequest {
	req := entity.TransferRequest{
		Kind:     entity.TransferWithdrawWallet,
		Amount:   f.Withdraw.Amount,
		Currency: "USDC",
		Network:  network,
	}
	if f.Withdraw.Method == chat.WithdrawToBank {
		req.Kind = entity.TransferWithdrawBank
		req.BankDetails = f.Withdraw.BankDetails
	} else {
		req.Recipient = f.Withdraw.Recipient
	}
	return req
}

func summary(f *chat.Flow) present.TransferSummary {
	s := present.TransferSummary{
		Title:     "Withdraw to wallet",
		Recipient: f.Withdraw.Recipient,
		Amount:    f.Withdraw.Amount,
		Network:   f.Withdraw.Network,
		Quote:     f.Withdraw.Quote,
	}
	if f.Withdraw.Method == chat.WithdrawToBank {
		s.Title = "Withdraw to bank"
		s.Recipient = ""
		s.BankDetails = f.Withdraw.BankDetails
	}
	return s
}
