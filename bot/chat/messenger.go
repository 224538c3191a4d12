package chat

// Messenger delivers replies to the chat platform.
type Messenger interface {
	SendText(chatID, text string) error
	SendMenu(chatID, text string, rows [][]MenuButton) error
	SendInlineGrid(chatID, text string, rows [][]InlineButton) error
}

// MenuButton represents a button in a reply/menu keyboard.
type MenuButton struct {
	Text string
}

// InlineButton represents an inline button with callback data.
type InlineButton struct {
	Text string
	Data string
}

// Reply is one outbound message: a prompt or a result.
type Reply struct {
	Text    string
	Buttons [][]InlineButton
	Menu    [][]MenuButton
}

// Deliver sends r through m using the richest keyboard it carries.
func Deliver(m Messenger, chatID string, r Reply) error {
	switch {
	case len(r.Buttons) > 0:
		return m.SendInlineGrid(chatID, r.Text, r.Buttons)
	case len(r.Menu) > 0:
		return m.SendMenu(chatID, r.Text, r.Menu)
	default:
		return m.SendText(chatID, r.Text)
	}
}

// Input is what a flow step receives: typed text or a parsed button action.
type Input struct {
	Text   string
	Action Action
}

func (in Input) IsZero() bool {
	return in.Text == "" && in.Action.IsZero()
}
