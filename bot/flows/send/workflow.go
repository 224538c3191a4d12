package send

import (
	"CopperxBot/bot/chat"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/lib/validate"
)

const title = "Send USDC"

// Workflow sends USDC to an email address or a wallet.
type Workflow struct {
	steps map[chat.StepID]chat.Step
}

func NewWorkflow(wallets flows.WalletAPI, transfers flows.TransferAPI, limits flows.Limits) *Workflow {
	w := &Workflow{
		steps: make(map[chat.StepID]chat.Step),
	}

	w.steps[flows.StepSelectMethod] = &SelectMethodStep{}
	w.steps[flows.StepEnterRecipient] = &EnterRecipientStep{validWallet: validate.WalletAddressValidator(limits.StrictWallet)}
	w.steps[flows.StepEnterAmount] = &EnterAmountStep{min: limits.SendMin}
	w.steps[flows.StepSelectNetwork] = &flows.NetworkStep{
		Wallets:   wallets,
		Transfers: transfers,
		Back:      flows.StepEnterAmount,
		Prompt:    "🌐 Which network should the USDC be sent from?",
		Amount:    func(f *chat.Flow) string { return f.Send.Amount },
		Request:   quoteRequest,
		Store: func(f *chat.Flow, network string, quote *entity.Quote) {
			f.Send.Network = network
			f.Send.Quote = quote
		},
	}
	w.steps[chat.StepConfirm] = &flows.ConfirmStep{
		Action:  chat.ActionConfirmSend,
		Back:    flows.StepSelectNetwork,
		Summary: summary,
	}
	w.steps[chat.StepSubmit] = &flows.SubmitStep{
		Title:     title,
		Transfers: transfers,
		Request: func(f *chat.Flow) entity.TransferRequest {
			return quoteRequest(f, f.Send.Network)
		},
	}

	return w
}

func (w *Workflow) Kind() chat.FlowKind      { return chat.FlowSend }
func (w *Workflow) InitialStep() chat.StepID { return flows.StepSelectMethod }

func (w *Workflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *Workflow) Transitions() chat.Transitions {
	return chat.Transitions{
		flows.StepSelectMethod:   {flows.StepEnterRecipient},
		flows.StepEnterRecipient: {flows.StepEnterAmount, flows.StepSelectMethod},
		flows.StepEnterAmount:    {flows.StepSelectNetwork, flows.StepEnterRecipient},
		flows.StepSelectNetwork:  {chat.StepConfirm, flows.StepEnterAmount},
		chat.StepConfirm:         {chat.StepSubmit, flows.StepSelectNetwork},
		chat.StepSubmit:          {chat.StepConfirm},
	}
}

func quoteRequest(f *chat.Flow, network string) entity.TransferRequest {
	kind := entity.TransferSendEmail
	if f.Send.Method == chat.SendByWallet {
		kind = entity.TransferSendWallet
	}
	return entity.TransferRequest{
		Kind:      kind,
		Recipient: f.Send.Recipient,
		Amount:    f.Send.Amount,
		Currency:  "USDC",
		Network:   network,
	}
}

func summary(f *chat.Flow) present.TransferSummary {
	return present.TransferSummary{
		Title:     title,
		Recipient: f.Send.Recipient,
		Amount:    f.Send.Amount,
		Network:   f.Send.Network,
		Quote:     f.Send.Quote,
	}
}
