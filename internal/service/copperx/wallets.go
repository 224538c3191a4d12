package copperx

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"CopperxBot/entity"
)

type walletBalances struct {
	WalletID  string `json:"walletId"`
	IsDefault bool   `json:"isDefault"`
	Network   string `json:"network"`
	Balances  []struct {
		Symbol  string `json:"symbol"`
		Balance string `json:"balance"`
		Address string `json:"address"`
	} `json:"balances"`
}

func (c *Client) ListBalances(ctx context.Context, token string) ([]entity.WalletBalance, error) {
	var out []walletBalances
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/wallets/balances",
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}

	var wallets []entity.WalletBalance
	for _, w := range out {
		wallet := entity.WalletBalance{
			WalletID:  w.WalletID,
			Network:   strings.ToLower(w.Network),
			IsDefault: w.IsDefault,
			Symbol:    "USDC",
			Balance:   "0",
		}
		for _, b := range w.Balances {
			if strings.EqualFold(b.Symbol, "USDC") || len(w.Balances) == 1 {
				wallet.Symbol = b.Symbol
				wallet.Balance = b.Balance
				wallet.Address = b.Address
			}
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

type walletAccount struct {
	ID            string `json:"id"`
	Network       string `json:"network"`
	WalletAddress string `json:"walletAddress"`
	IsDefault     bool   `json:"isDefault"`
}

// DepositAddress returns the address of the user's wallet on network.
func (c *Client) DepositAddress(ctx context.Context, token, network string) (*entity.DepositAddress, error) {
	var out []walletAccount
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/wallets",
		token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	for _, w := range out {
		if strings.EqualFold(w.Network, network) {
			return &entity.DepositAddress{
				Network: strings.ToLower(w.Network),
				Address: w.WalletAddress,
			}, nil
		}
	}
	return nil, fmt.Errorf("no wallet on network %q", network)
}
