package chat

import (
	"strconv"
	"strings"
)

// Button is a shorthand for an inline button carrying an action.
func Button(text string, a Action) InlineButton {
	return InlineButton{Text: text, Data: a.String()}
}

// Column lays buttons out one per row.
func Column(buttons ...InlineButton) [][]InlineButton {
	rows := make([][]InlineButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineButton{b})
	}
	return rows
}

// MatchNumberToInline converts a typed number ("1", "2", ...) to the
// corresponding button's action.
func MatchNumberToInline(text string, rows [][]InlineButton) Action {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 {
		return Action{}
	}
	idx := 1
	for _, row := range rows {
		for _, btn := range row {
			if idx == num {
				return ParseAction(btn.Data)
			}
			idx++
		}
	}
	return Action{}
}
