// Package fakes provides in-memory collaborators for tests.
package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CopperxBot/entity"
)

// Copperx is a scripted payments API. Zero value answers with empty data.
type Copperx struct {
	mu sync.Mutex

	Otp         string
	OtpErr      error
	VerifyErr   error
	Profile     entity.UserProfile
	TokenTTL    time.Duration
	OtpRequests int
	VerifyCalls int

	TokenValid  bool
	TokenErr    error
	TokenChecks int

	Kyc      entity.KycInfo
	KycErr   error
	KycCalls int

	Wallets    []entity.WalletBalance
	WalletsErr error
	Deposit    entity.DepositAddress
	DepositErr error

	Quoted     entity.Quote
	QuoteErr   error
	QuoteCalls int

	SubmitErr  error
	SubmitHook func(req entity.TransferRequest)
	Submits    []entity.TransferRequest

	Transfers []entity.Transfer
}

func NewCopperx() *Copperx {
	return &Copperx{
		Otp:        "123456",
		TokenTTL:   time.Hour,
		TokenValid: true,
		Profile: entity.UserProfile{
			ID:             "user-1",
			FirstName:      "Ada",
			Email:          "ada@example.com",
			OrganizationID: "org-1",
		},
		Kyc:    entity.KycInfo{Status: entity.KycVerified},
		Quoted: entity.Quote{Fee: "0.5", Total: "50.5"},
	}
}

func (c *Copperx) RequestOtp(_ context.Context, email string) (*entity.OtpChallenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OtpRequests++
	if c.OtpErr != nil {
		return nil, c.OtpErr
	}
	return &entity.OtpChallenge{Email: email, Sid: fmt.Sprintf("sid-%d", c.OtpRequests)}, nil
}

func (c *Copperx) VerifyOtp(_ context.Context, email, otp, _ string) (*entity.AuthResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.VerifyCalls++
	if c.VerifyErr != nil {
		return nil, c.VerifyErr
	}
	if otp != c.Otp {
		return nil, entity.ErrInvalidOtp
	}
	profile := c.Profile
	profile.Email = email
	return &entity.AuthResult{
		AccessToken: "token-" + email,
		ExpireAt:    time.Now().Add(c.TokenTTL).Unix(),
		User:        profile,
	}, nil
}

func (c *Copperx) CheckToken(_ context.Context, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenChecks++
	return c.TokenValid, c.TokenErr
}

func (c *Copperx) KycStatus(_ context.Context, _, _ string) (*entity.KycInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.KycCalls++
	if c.KycErr != nil {
		return nil, c.KycErr
	}
	info := c.Kyc
	return &info, nil
}

func (c *Copperx) ListBalances(_ context.Context, _ string) ([]entity.WalletBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WalletsErr != nil {
		return nil, c.WalletsErr
	}
	return append([]entity.WalletBalance(nil), c.Wallets...), nil
}

func (c *Copperx) DepositAddress(_ context.Context, _, network string) (*entity.DepositAddress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DepositErr != nil {
		return nil, c.DepositErr
	}
	addr := c.Deposit
	addr.Network = network
	return &addr, nil
}

func (c *Copperx) Quote(_ context.Context, _ string, _ entity.TransferRequest) (*entity.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuoteCalls++
	if c.QuoteErr != nil {
		return nil, c.QuoteErr
	}
	q := c.Quoted
	return &q, nil
}

func (c *Copperx) Submit(_ context.Context, _ string, req entity.TransferRequest) (*entity.TransferReceipt, error) {
	c.mu.Lock()
	hook := c.SubmitHook
	c.Submits = append(c.Submits, req)
	err := c.SubmitErr
	n := len(c.Submits)
	c.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if err != nil {
		return nil, err
	}
	return &entity.TransferReceipt{TransferID: fmt.Sprintf("tx-%d", n), Status: "pending"}, nil
}

func (c *Copperx) ListTransfers(_ context.Context, _ string, page, limit int) (*entity.TransferPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := (page - 1) * limit
	if start > len(c.Transfers) {
		start = len(c.Transfers)
	}
	end := start + limit
	if end > len(c.Transfers) {
		end = len(c.Transfers)
	}
	return &entity.TransferPage{
		Data:  append([]entity.Transfer(nil), c.Transfers[start:end]...),
		Page:  page,
		Limit: limit,
		Total: len(c.Transfers),
	}, nil
}

// SubmitCount returns how many submissions were attempted.
func (c *Copperx) SubmitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Submits)
}
