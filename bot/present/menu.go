package present

import "CopperxBot/bot/chat"

// Menu keyboard texts. Each maps to the command of the same feature.
const (
	BtnBalance  = "💰 Balance"
	BtnSend     = "📤 Send"
	BtnWithdraw = "🏦 Withdraw"
	BtnDeposit  = "📥 Deposit"
	BtnHistory  = "📜 History"
	BtnProfile  = "👤 Profile"
	BtnKyc      = "🪪 KYC"
	BtnHelp     = "❓ Help"
)

// Keywords maps menu keyboard texts to command names.
var Keywords = map[string]string{
	BtnBalance:  "balance",
	BtnSend:     "send",
	BtnWithdraw: "withdraw",
	BtnDeposit:  "deposit",
	BtnHistory:  "history",
	BtnProfile:  "profile",
	BtnKyc:      "kyc",
	BtnHelp:     "help",
}

func menuRows() [][]chat.MenuButton {
	return [][]chat.MenuButton{
		{{Text: BtnBalance}, {Text: BtnDeposit}},
		{{Text: BtnSend}, {Text: BtnWithdraw}},
		{{Text: BtnHistory}, {Text: BtnProfile}},
		{{Text: BtnKyc}, {Text: BtnHelp}},
	}
}

func Welcome(loggedIn bool) chat.Reply {
	text := "👋 Welcome to the Copperx payout bot.\n\nSend, withdraw and deposit USDC right from this chat."
	if !loggedIn {
		text += "\n\nStart with /login to connect your Copperx account."
	}
	return chat.Reply{Text: text, Menu: menuRows()}
}

func Menu() chat.Reply {
	return chat.Reply{
		Text: "What would you like to do?",
		Buttons: [][]chat.InlineButton{
			{chat.Button("💰 Balance", chat.NewAction(chat.ActionBalance)), chat.Button("👛 Wallets", chat.NewAction(chat.ActionWallets))},
			{chat.Button("📤 Send", chat.NewAction(chat.ActionSend)), chat.Button("🏦 Withdraw", chat.NewAction(chat.ActionWithdraw))},
			{chat.Button("📥 Deposit", chat.NewAction(chat.ActionDeposit)), chat.Button("📜 History", chat.NewAction(chat.ActionHistory))},
			{chat.Button("👤 Profile", chat.NewAction(chat.ActionProfile)), chat.Button("🪪 KYC", chat.NewAction(chat.ActionKyc))},
		},
	}
}

func Help() chat.Reply {
	return chat.Reply{Text: `<b>Commands</b>
/login - connect your Copperx account
/logout - disconnect this chat
/profile - your account details
/balance - wallet balances
/wallets - wallet addresses
/deposit - get a deposit address
/send - send USDC by email or to a wallet
/withdraw - withdraw to a wallet or bank
/history - recent transfers
/kyc - verification status
/cancel - abort the current operation
/menu - show the menu`}
}

func Cancelled(had bool) chat.Reply {
	if had {
		return chat.Reply{Text: "✖️ Operation cancelled.", Menu: menuRows()}
	}
	return chat.Reply{Text: "Nothing to cancel."}
}

func LoggedOut() chat.Reply {
	return chat.Reply{Text: "👋 You have been logged out. Use /login to connect again."}
}

func LoginRequired(reason string) chat.Reply {
	return chat.Reply{
		Text:    "🔐 " + reason + "\nPlease log in to continue.",
		Buttons: chat.Column(chat.Button("🔑 Login", chat.NewAction(chat.ActionLogin))),
	}
}

func KycRequired(status string) chat.Reply {
	return chat.Reply{
		Text:    "🪪 Your KYC status is " + bold(status) + ". Complete verification to use this feature.",
		Buttons: chat.Column(chat.Button("🪪 Check KYC", chat.NewAction(chat.ActionKyc))),
	}
}

func Unavailable(reason string) chat.Reply {
	return chat.Reply{Text: "⚠️ " + reason}
}

func ConfirmationExpired() chat.Reply {
	return chat.Reply{Text: "This confirmation has expired or was already processed."}
}

func NoActiveFlow() chat.Reply {
	return chat.Reply{Text: "There is no active operation. Use /menu to start one."}
}

func CancelButton() chat.InlineButton {
	return chat.Button("✖️ Cancel", chat.NewAction(chat.ActionCancel))
}

func BackButton() chat.InlineButton {
	return chat.Button("↩️ Back", chat.NewAction(chat.ActionBack))
}
