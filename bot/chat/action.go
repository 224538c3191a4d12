package chat

import (
	"strconv"
	"strings"
)

// ActionKind identifies a button callback.
type ActionKind string

const (
	ActionUnknown          ActionKind = ""
	ActionMenu             ActionKind = "menu"
	ActionCancel           ActionKind = "cancel"
	ActionBack             ActionKind = "back"
	ActionLogin            ActionKind = "login"
	ActionLogout           ActionKind = "logout"
	ActionProfile          ActionKind = "profile"
	ActionBalance          ActionKind = "balance"
	ActionWallets          ActionKind = "wallets"
	ActionKyc              ActionKind = "kyc"
	ActionDeposit          ActionKind = "deposit"
	ActionSend             ActionKind = "send"
	ActionWithdraw         ActionKind = "withdraw"
	ActionHistory          ActionKind = "history"
	ActionSendMethod       ActionKind = "send_method"
	ActionWithdrawMethod   ActionKind = "withdraw_method"
	ActionNetwork          ActionKind = "network"
	ActionDepositNetwork   ActionKind = "deposit_network"
	ActionConfirmSend      ActionKind = "confirm_send"
	ActionConfirmWithdraw  ActionKind = "confirm_withdraw"
	ActionConfirmBroadcast ActionKind = "confirm_broadcast"
	ActionHistoryPage      ActionKind = "history_page"
)

type paramRule int

const (
	paramNone paramRule = iota
	paramString
	paramInt
)

var actionRules = map[ActionKind]paramRule{
	ActionMenu:             paramNone,
	ActionCancel:           paramNone,
	ActionBack:             paramNone,
	ActionLogin:            paramNone,
	ActionLogout:           paramNone,
	ActionProfile:          paramNone,
	ActionBalance:          paramNone,
	ActionWallets:          paramNone,
	ActionKyc:              paramNone,
	ActionDeposit:          paramNone,
	ActionSend:             paramNone,
	ActionWithdraw:         paramNone,
	ActionHistory:          paramNone,
	ActionSendMethod:       paramString,
	ActionWithdrawMethod:   paramString,
	ActionNetwork:          paramString,
	ActionDepositNetwork:   paramString,
	ActionConfirmSend:      paramString,
	ActionConfirmWithdraw:  paramString,
	ActionConfirmBroadcast: paramString,
	ActionHistoryPage:      paramInt,
}

// Action is a parsed callback payload: "<kind>" or "<kind>:<param>".
type Action struct {
	Kind  ActionKind
	Param string
}

// ParseAction never fails; malformed payloads yield ActionUnknown.
func ParseAction(data string) Action {
	name, param, hasParam := strings.Cut(strings.TrimSpace(data), ":")
	kind := ActionKind(name)
	rule, ok := actionRules[kind]
	if !ok {
		return Action{}
	}
	switch rule {
	case paramNone:
		if hasParam {
			return Action{}
		}
	case paramString:
		if param == "" {
			return Action{}
		}
	case paramInt:
		n, err := strconv.Atoi(param)
		if err != nil || n < 1 {
			return Action{}
		}
	}
	return Action{Kind: kind, Param: param}
}

// NewAction builds an action; use String to get the wire payload.
func NewAction(kind ActionKind, param ...string) Action {
	a := Action{Kind: kind}
	if len(param) > 0 {
		a.Param = param[0]
	}
	return a
}

func (a Action) String() string {
	if a.Param == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.Param
}

func (a Action) IsZero() bool {
	return a.Kind == ActionUnknown
}

// Page returns the page number of a history_page action.
func (a Action) Page() int {
	if a.Kind != ActionHistoryPage {
		return 0
	}
	n, _ := strconv.Atoi(a.Param)
	return n
}
