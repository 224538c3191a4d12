// Package flows holds what the payment flows share: collaborator contracts,
// amount limits and the network, confirm and submit steps.
package flows

import (
	"context"
	"fmt"
	"strings"

	"CopperxBot/bot/chat"
	"CopperxBot/bot/present"
	"CopperxBot/entity"
	"CopperxBot/internal/config"
	"CopperxBot/internal/lib/validate"

	"github.com/shopspring/decimal"
)

// AuthAPI is the email OTP login of the payments API.
type AuthAPI interface {
	RequestOtp(ctx context.Context, email string) (*entity.OtpChallenge, error)
	VerifyOtp(ctx context.Context, email, otp, sid string) (*entity.AuthResult, error)
}

// WalletAPI lists balances and deposit addresses.
type WalletAPI interface {
	ListBalances(ctx context.Context, token string) ([]entity.WalletBalance, error)
	DepositAddress(ctx context.Context, token, network string) (*entity.DepositAddress, error)
}

// TransferAPI quotes and submits transfers.
type TransferAPI interface {
	Quote(ctx context.Context, token string, req entity.TransferRequest) (*entity.Quote, error)
	Submit(ctx context.Context, token string, req entity.TransferRequest) (*entity.TransferReceipt, error)
}

// DefaultNetworks are offered when the wallet list cannot be loaded.
var DefaultNetworks = []string{"polygon", "arbitrum", "base"}

type Limits struct {
	SendMin           decimal.Decimal
	WithdrawWalletMin decimal.Decimal
	WithdrawBankMin   decimal.Decimal
	OtpMaxAttempts    int
	StrictWallet      bool
}

func NewLimits(conf config.Flow) (Limits, error) {
	var l Limits
	var err error
	if l.SendMin, err = decimal.NewFromString(conf.SendMinAmount); err != nil {
		return l, fmt.Errorf("send_min_amount: %w", err)
	}
	if l.WithdrawWalletMin, err = decimal.NewFromString(conf.WithdrawWalletMinAmount); err != nil {
		return l, fmt.Errorf("withdraw_wallet_min_amount: %w", err)
	}
	if l.WithdrawBankMin, err = decimal.NewFromString(conf.WithdrawBankMinAmount); err != nil {
		return l, fmt.Errorf("withdraw_bank_min_amount: %w", err)
	}
	l.OtpMaxAttempts = conf.OtpMaxAttempts
	if l.OtpMaxAttempts < 1 {
		l.OtpMaxAttempts = 3
	}
	l.StrictWallet = conf.StrictWalletAddress
	return l, nil
}

func DefaultLimits() Limits {
	return Limits{
		SendMin:           decimal.NewFromInt(1),
		WithdrawWalletMin: decimal.NewFromInt(10),
		WithdrawBankMin:   decimal.NewFromInt(100),
		OtpMaxAttempts:    3,
	}
}

// ParseAmount validates text as an amount of at least min.
func ParseAmount(text string, min decimal.Decimal) (decimal.Decimal, error) {
	amount, ok := validate.ParseAmount(text)
	if !ok {
		return decimal.Zero, chat.Invalid("Please enter a valid amount, e.g. 25 or 10.5")
	}
	if amount.LessThan(min) {
		return decimal.Zero, chat.Invalid("The minimum amount is %s USDC.", min.String())
	}
	return amount, nil
}

// CheckBalance rejects a network without a wallet or with too little funds.
func CheckBalance(wallets []entity.WalletBalance, network string, amount decimal.Decimal) error {
	w, ok := entity.FindWallet(wallets, network)
	if !ok {
		return chat.Invalid("You have no wallet on %s. Choose another network.", network)
	}
	balance, err := decimal.NewFromString(w.Balance)
	if err != nil {
		balance = decimal.Zero
	}
	if balance.LessThan(amount) {
		return chat.Invalid("Insufficient balance on %s: you have %s USDC, need %s.", network, balance.String(), amount.String())
	}
	return nil
}

// CheckQuote rejects amounts outside the limits reported by a quote.
func CheckQuote(q *entity.Quote, amount decimal.Decimal) error {
	if min, err := decimal.NewFromString(q.MinAmount); err == nil && min.IsPositive() && amount.LessThan(min) {
		return chat.Invalid("The minimum for this transfer is %s USDC. Tap Back to change the amount.", min.String())
	}
	if max, err := decimal.NewFromString(q.MaxAmount); err == nil && max.IsPositive() && amount.GreaterThan(max) {
		return chat.Invalid("The maximum for this transfer is %s USDC. Tap Back to change the amount.", max.String())
	}
	return nil
}

// NetworkButtons lists one button per wallet network, falling back to
// DefaultNetworks when no wallets are known.
func NetworkButtons(kind chat.ActionKind, wallets []entity.WalletBalance) [][]chat.InlineButton {
	var buttons []chat.InlineButton
	for _, w := range wallets {
		label := fmt.Sprintf("%s · %s", present.Network(w.Network), w.Balance)
		if w.Balance == "" {
			label = present.Network(w.Network)
		}
		buttons = append(buttons, chat.Button(label, chat.NewAction(kind, w.Network)))
	}
	if len(buttons) == 0 {
		for _, n := range DefaultNetworks {
			buttons = append(buttons, chat.Button(present.Network(n), chat.NewAction(kind, n)))
		}
	}
	return chat.Column(buttons...)
}

// PickNetwork reads a network from a button of kind or from typed text.
func PickNetwork(in chat.Input, kind chat.ActionKind) string {
	if in.Action.Kind == kind {
		return in.Action.Param
	}
	text := strings.ToLower(strings.TrimSpace(in.Text))
	if text == "" || strings.ContainsAny(text, " :/") {
		return ""
	}
	return text
}

// Step ids shared by send and withdraw.
const (
	StepSelectMethod   chat.StepID = "select_method"
	StepEnterRecipient chat.StepID = "enter_recipient"
	StepEnterAmount    chat.StepID = "enter_amount"
	StepSelectNetwork  chat.StepID = "select_network"
)
