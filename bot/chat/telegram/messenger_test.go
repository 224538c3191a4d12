package telegram

import (
	"testing"

	"CopperxBot/bot/chat"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/stretchr/testify/require"
)

type sent struct {
	chatID int64
	text   string
	opts   *tgbotapi.SendMessageOpts
}

type fakeAPI struct {
	sent []sent
}

func (f *fakeAPI) SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error) {
	f.sent = append(f.sent, sent{chatID: chatId, text: text, opts: opts})
	return &tgbotapi.Message{Text: text}, nil
}

func TestMessenger(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api)

	require.NoError(t, m.SendText("42", "<b>hi</b>"))
	require.Equal(t, int64(42), api.sent[0].chatID)
	require.Equal(t, "HTML", api.sent[0].opts.ParseMode)

	require.NoError(t, m.SendMenu("42", "menu", [][]chat.MenuButton{{{Text: "💰 Balance"}, {Text: "❓ Help"}}}))
	menu, ok := api.sent[1].opts.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.True(t, menu.ResizeKeyboard)
	require.Equal(t, "❓ Help", menu.Keyboard[0][1].Text)

	require.NoError(t, m.SendInlineGrid("42", "pick", [][]chat.InlineButton{
		{{Text: "Email", Data: "send_method:email"}},
		{{Text: "Cancel", Data: "cancel"}},
	}))
	grid, ok := api.sent[2].opts.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, grid.InlineKeyboard, 2)
	require.Equal(t, "send_method:email", grid.InlineKeyboard[0][0].CallbackData)

	require.Error(t, m.SendText("not-a-number", "x"))
	require.Len(t, api.sent, 3)
}
