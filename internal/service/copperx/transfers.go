package copperx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"CopperxBot/entity"
	"CopperxBot/internal/lib/validate"
)

const purposeCode = "self"

var submitPaths = map[entity.TransferKind]string{
	entity.TransferSendEmail:      "/api/transfers/send",
	entity.TransferSendWallet:     "/api/transfers/wallet-withdraw",
	entity.TransferWithdrawWallet: "/api/transfers/wallet-withdraw",
	entity.TransferWithdrawBank:   "/api/transfers/offramp",
}

type transferBody struct {
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	BankDetails   string `json:"bankDetails,omitempty"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Network       string `json:"preferredWalletNetwork,omitempty"`
	PurposeCode   string `json:"purposeCode"`
}

func newTransferBody(req entity.TransferRequest) transferBody {
	body := transferBody{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Network:     req.Network,
		PurposeCode: purposeCode,
		BankDetails: req.BankDetails,
	}
	if body.Currency == "" {
		body.Currency = "USDC"
	}
	if req.Kind == entity.TransferSendEmail {
		body.Email = req.Recipient
	} else {
		body.WalletAddress = req.Recipient
	}
	return body
}

func (c *Client) Quote(ctx context.Context, token string, req entity.TransferRequest) (*entity.Quote, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	body := struct {
		Kind entity.TransferKind `json:"kind"`
		transferBody
	}{Kind: req.Kind, transferBody: newTransferBody(req)}

	var out entity.Quote
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/quotes",
		token:  token,
		body:   body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit creates the transfer. The idempotency key makes a repeated
// submission return the first transfer instead of creating another.
func (c *Client) Submit(ctx context.Context, token string, req entity.TransferRequest) (*entity.TransferReceipt, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("transfer request: %w", err)
	}
	path, ok := submitPaths[req.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown transfer kind %q", req.Kind)
	}
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var out entity.TransferReceipt
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    path,
		token:   token,
		body:    newTransferBody(req),
		headers: headers,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(out); err != nil {
		return nil, fmt.Errorf("transfer receipt: %w", err)
	}
	return &out, nil
}

func (c *Client) ListTransfers(ctx context.Context, token string, page, limit int) (*entity.TransferPage, error) {
	var out entity.TransferPage
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/transfers",
		token:  token,
		query: url.Values{
			"page":  {strconv.Itoa(page)},
			"limit": {strconv.Itoa(limit)},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = page
	}
	if out.Limit == 0 {
		out.Limit = limit
	}
	return &out, nil
}
