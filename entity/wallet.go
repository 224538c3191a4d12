package entity

type WalletBalance struct {
	WalletID  string `json:"walletId" bson:"wallet_id"`
	Network   string `json:"network" bson:"network" validate:"required"`
	Symbol    string `json:"symbol" bson:"symbol"`
	Balance   string `json:"balance" bson:"balance"`
	Address   string `json:"address" bson:"address"`
	IsDefault bool   `json:"isDefault" bson:"is_default"`
}

type DepositAddress struct {
	Network   string `json:"network" validate:"required"`
	Address   string `json:"address" validate:"required"`
	MinAmount string `json:"minAmount"`
}

// FindWallet returns the balance entry for network, if any.
func FindWallet(wallets []WalletBalance, network string) (WalletBalance, bool) {
	for _, w := range wallets {
		if w.Network == network {
			return w, true
		}
	}
	return WalletBalance{}, false
}
