package dispatch

import "strings"

// Event is one inbound chat event. Exactly one of Command, Text and
// Callback is set.
type Event struct {
	UserID   string
	ChatID   string
	Command  string
	Args     string
	Text     string
	Callback string
	IsAdmin  bool
}

func (e Event) Kind() string {
	switch {
	case e.Callback != "":
		return "callback"
	case e.Command != "":
		return "command"
	default:
		return "text"
	}
}

// ParseCommand splits "/send@SomeBot a b" into "send" and "a b".
func ParseCommand(text string) (cmd, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// TextEvent builds a command or text event from a typed message.
func TextEvent(userID, chatID, text string) Event {
	ev := Event{UserID: userID, ChatID: chatID}
	if cmd, args, ok := ParseCommand(text); ok {
		ev.Command = cmd
		ev.Args = args
		return ev
	}
	ev.Text = text
	return ev
}
