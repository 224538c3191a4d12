package entity

import "time"

type TransferKind string

const (
	TransferSendEmail      TransferKind = "send_email"
	TransferSendWallet     TransferKind = "send_wallet"
	TransferWithdrawWallet TransferKind = "withdraw_wallet"
	TransferWithdrawBank   TransferKind = "withdraw_bank"
)

// TransferRequest is the payload of a quote or a submission.
type TransferRequest struct {
	Kind           TransferKind `json:"kind" validate:"required"`
	Recipient      string       `json:"recipient,omitempty"`
	Amount         string       `json:"amount" validate:"required"`
	Currency       string       `json:"currency"`
	Network        string       `json:"network" validate:"required"`
	BankDetails    string       `json:"bankDetails,omitempty"`
	IdempotencyKey string       `json:"-"`
}

type Quote struct {
	Fee       string `json:"fee" bson:"fee"`
	Total     string `json:"total" bson:"total"`
	MinAmount string `json:"minAmount" bson:"min_amount"`
	MaxAmount string `json:"maxAmount" bson:"max_amount"`
}

type TransferReceipt struct {
	TransferID string `json:"id" validate:"required"`
	Status     string `json:"status"`
}

type Transfer struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Network   string    `json:"network"`
	Recipient string    `json:"recipient"`
	CreatedAt time.Time `json:"createdAt"`
}

type TransferPage struct {
	Data  []Transfer `json:"data"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"count"`
}

func (p TransferPage) HasNext() bool {
	return p.Page*p.Limit < p.Total
}
