package present

import (
	"fmt"
	"strings"

	"CopperxBot/bot/chat"
	"CopperxBot/entity"
)

func Profile(p entity.UserProfile, kyc *chat.KycCache) chat.Reply {
	var sb strings.Builder
	sb.WriteString("👤 <b>Profile</b>\n\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", Escape(p.DisplayName())))
	sb.WriteString(fmt.Sprintf("Email: %s\n", Escape(p.Email)))
	if p.Role != "" {
		sb.WriteString(fmt.Sprintf("Role: %s\n", Escape(p.Role)))
	}
	if p.WalletAddress != "" {
		sb.WriteString(fmt.Sprintf("Wallet: %s\n", code(p.WalletAddress)))
	}
	if kyc != nil {
		sb.WriteString(fmt.Sprintf("KYC: %s\n", Escape(string(kyc.Status))))
	}
	return chat.Reply{Text: sb.String()}
}

func Balances(wallets []entity.WalletBalance) chat.Reply {
	if len(wallets) == 0 {
		return chat.Reply{Text: "You have no wallets yet. Use /deposit to fund your account."}
	}
	var sb strings.Builder
	sb.WriteString("💰 <b>Balances</b>\n")
	for _, w := range wallets {
		mark := ""
		if w.IsDefault {
			mark = " ⭐"
		}
		symbol := w.Symbol
		if symbol == "" {
			symbol = "USDC"
		}
		sb.WriteString(fmt.Sprintf("\n%s%s: %s %s", bold(Network(w.Network)), mark, Amount(w.Balance), Escape(symbol)))
	}
	return chat.Reply{
		Text: sb.String(),
		Buttons: [][]chat.InlineButton{{
			chat.Button("📥 Deposit", chat.NewAction(chat.ActionDeposit)),
			chat.Button("📤 Send", chat.NewAction(chat.ActionSend)),
		}},
	}
}

func Wallets(wallets []entity.WalletBalance) chat.Reply {
	if len(wallets) == 0 {
		return chat.Reply{Text: "You have no wallets yet."}
	}
	var sb strings.Builder
	sb.WriteString("👛 <b>Wallets</b>\n")
	for _, w := range wallets {
		mark := ""
		if w.IsDefault {
			mark = " (default)"
		}
		sb.WriteString(fmt.Sprintf("\n%s%s\n%s\n", bold(Network(w.Network)), mark, code(w.Address)))
	}
	return chat.Reply{Text: sb.String()}
}

func Kyc(info entity.KycInfo) chat.Reply {
	icon := map[entity.KycStatus]string{
		entity.KycVerified:   "✅",
		entity.KycPending:    "⏳",
		entity.KycRejected:   "❌",
		entity.KycExpired:    "⌛",
		entity.KycNotStarted: "📝",
	}[info.Status]
	if icon == "" {
		icon = "ℹ️"
	}
	text := fmt.Sprintf("%s KYC status: %s", icon, bold(string(info.Status)))
	if info.Limits != "" {
		text += "\nLimits: " + Escape(info.Limits)
	}
	if !info.Status.Verified() {
		next := info.NextSteps
		if next == "" {
			next = "Complete verification on the Copperx web app: https://payout.copperx.io"
		}
		text += "\n\n" + Escape(next)
	}
	return chat.Reply{Text: text}
}

// History renders one page of transfers with paging buttons.
func History(page entity.TransferPage) chat.Reply {
	if len(page.Data) == 0 {
		return chat.Reply{Text: "No transfers yet."}
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📜 <b>Transfers</b> (page %d)\n", page.Page))
	for _, tr := range page.Data {
		sb.WriteString(fmt.Sprintf("\n%s %s %s · %s",
			tr.CreatedAt.Format("02 Jan 15:04"),
			Escape(tr.Type),
			Amount(tr.Amount),
			Escape(tr.Status),
		))
		if tr.Recipient != "" {
			sb.WriteString(" → " + Escape(Short(tr.Recipient)))
		}
	}

	var nav []chat.InlineButton
	if page.Page > 1 {
		nav = append(nav, chat.Button("⬅️ Prev", chat.NewAction(chat.ActionHistoryPage, fmt.Sprint(page.Page-1))))
	}
	if page.HasNext() {
		nav = append(nav, chat.Button("Next ➡️", chat.NewAction(chat.ActionHistoryPage, fmt.Sprint(page.Page+1))))
	}
	reply := chat.Reply{Text: sb.String()}
	if len(nav) > 0 {
		reply.Buttons = [][]chat.InlineButton{nav}
	}
	return reply
}

func DepositAddress(addr entity.DepositAddress) chat.Reply {
	text := fmt.Sprintf("📥 Deposit USDC on %s to:\n\n%s", bold(Network(addr.Network)), code(addr.Address))
	if addr.MinAmount != "" {
		text += fmt.Sprintf("\n\nMinimum deposit: %s USDC", Amount(addr.MinAmount))
	}
	text += "\n\nOnly send USDC on this network. Funds on other networks may be lost."
	return chat.Reply{Text: text}
}

// TransferSummary describes a transfer awaiting confirmation.
type TransferSummary struct {
	Title       string
	Recipient   string
	BankDetails string
	Amount      string
	Network     string
	Quote       *entity.Quote
}

func Confirmation(s TransferSummary, confirm chat.Action) chat.Reply {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 <b>%s</b>\n\n", Escape(s.Title)))
	if s.Recipient != "" {
		sb.WriteString(fmt.Sprintf("To: %s\n", code(s.Recipient)))
	}
	if s.BankDetails != "" {
		sb.WriteString(fmt.Sprintf("Bank: %s\n", Escape(s.BankDetails)))
	}
	sb.WriteString(fmt.Sprintf("Amount: %s USDC\n", Amount(s.Amount)))
	sb.WriteString(fmt.Sprintf("Network: %s\n", Network(s.Network)))
	if s.Quote != nil {
		sb.WriteString(fmt.Sprintf("Fee: %s USDC\n", Amount(s.Quote.Fee)))
		sb.WriteString(fmt.Sprintf("Total: %s USDC\n", bold(Amount(s.Quote.Total))))
	}
	return chat.Reply{
		Text: sb.String(),
		Buttons: [][]chat.InlineButton{
			{chat.Button("✅ Confirm", confirm)},
			{BackButton(), CancelButton()},
		},
	}
}

func Submitted(title string, receipt *entity.TransferReceipt) chat.Reply {
	text := fmt.Sprintf("✅ %s submitted.", Escape(title))
	if receipt != nil {
		text += fmt.Sprintf("\nTransfer: %s", code(receipt.TransferID))
		if receipt.Status != "" {
			text += fmt.Sprintf("\nStatus: %s", Escape(receipt.Status))
		}
	}
	return chat.Reply{Text: text, Menu: menuRows()}
}
