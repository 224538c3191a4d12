package present

import (
	"testing"
	"time"

	"CopperxBot/bot/chat"
	"CopperxBot/entity"

	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	require.Equal(t, "50.00", Amount("50"))
	require.Equal(t, "0.125", Amount("0.125"))
	require.Equal(t, "1.12345679", Amount("1.123456789"))
	require.Equal(t, "n/a", Amount("n/a"))
}

func TestNetwork(t *testing.T) {
	require.Equal(t, "Polygon", Network("polygon"))
	require.Equal(t, "BNB Chain", Network("bsc"))
	require.Equal(t, "Celo", Network("celo"))
	require.Equal(t, "", Network(""))
}

func TestHistoryPaging(t *testing.T) {
	page := entity.TransferPage{
		Data:  []entity.Transfer{{ID: "t1", Type: "send", Amount: "5", Status: "success", CreatedAt: time.Now()}},
		Page:  2,
		Limit: 1,
		Total: 3,
	}
	r := History(page)
	require.Len(t, r.Buttons, 1)
	require.Equal(t, "history_page:1", r.Buttons[0][0].Data)
	require.Equal(t, "history_page:3", r.Buttons[0][1].Data)

	page.Page = 3
	r = History(page)
	require.Len(t, r.Buttons[0], 1)
	require.Equal(t, "history_page:2", r.Buttons[0][0].Data)
}

func TestConfirmationCarriesAction(t *testing.T) {
	r := Confirmation(TransferSummary{
		Title:     "Send",
		Recipient: "a@b.com",
		Amount:    "50",
		Network:   "polygon",
		Quote:     &entity.Quote{Fee: "0.5", Total: "50.5"},
	}, chat.NewAction(chat.ActionConfirmSend, "f1"))

	require.Contains(t, r.Text, "50.50")
	require.Contains(t, r.Text, "Polygon")
	require.Equal(t, "confirm_send:f1", r.Buttons[0][0].Data)
}

func TestKycNextSteps(t *testing.T) {
	r := Kyc(entity.KycInfo{Status: entity.KycPending})
	require.Contains(t, r.Text, "pending")
	require.Contains(t, r.Text, "payout.copperx.io")

	r = Kyc(entity.KycInfo{Status: entity.KycVerified})
	require.NotContains(t, r.Text, "payout.copperx.io")
}
