package fakes

import (
	"sync"

	"CopperxBot/bot/chat"
)

type Sent struct {
	ChatID  string
	Text    string
	Buttons [][]chat.InlineButton
	Menu    [][]chat.MenuButton
}

// Messenger records every outbound message.
type Messenger struct {
	mu   sync.Mutex
	Sent []Sent
	Err  error
}

func (m *Messenger) SendText(chatID, text string) error {
	return m.record(Sent{ChatID: chatID, Text: text})
}

func (m *Messenger) SendMenu(chatID, text string, rows [][]chat.MenuButton) error {
	return m.record(Sent{ChatID: chatID, Text: text, Menu: rows})
}

func (m *Messenger) SendInlineGrid(chatID, text string, rows [][]chat.InlineButton) error {
	return m.record(Sent{ChatID: chatID, Text: text, Buttons: rows})
}

func (m *Messenger) record(s Sent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, s)
	return nil
}

// Last returns the most recent message.
func (m *Messenger) Last() Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Sent{}
	}
	return m.Sent[len(m.Sent)-1]
}

func (m *Messenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, s := range m.Sent {
		out = append(out, s.Text)
	}
	return out
}

// Reset drops everything recorded so far.
func (m *Messenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = nil
}
