package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"cancel", Action{Kind: ActionCancel}},
		{"confirm_send:5f1c", Action{Kind: ActionConfirmSend, Param: "5f1c"}},
		{"confirm_broadcast:abc", Action{Kind: ActionConfirmBroadcast, Param: "abc"}},
		{"history_page:3", Action{Kind: ActionHistoryPage, Param: "3"}},
		{"network:polygon", Action{Kind: ActionNetwork, Param: "polygon"}},
		{"history_page:x", Action{}},
		{"history_page:0", Action{}},
		{"confirm_send", Action{}},
		{"cancel:now", Action{}},
		{"wf:menu", Action{}},
		{"", Action{}},
		{"unknown_action", Action{}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, ParseAction(tc.in))
		})
	}
}

func TestActionRoundTrip(t *testing.T) {
	a := NewAction(ActionConfirmWithdraw, "flow-1")
	require.Equal(t, "confirm_withdraw:flow-1", a.String())
	require.Equal(t, a, ParseAction(a.String()))
	require.Equal(t, 4, ParseAction("history_page:4").Page())
	require.Equal(t, 0, NewAction(ActionMenu).Page())
}
