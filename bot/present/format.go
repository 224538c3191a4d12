package present

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount renders a decimal string with two to eight fractional digits.
func Amount(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
		if places > 8 {
			places = 8
		}
	}
	return d.StringFixed(places)
}

// Network turns an API network id into a label, e.g. "polygon" -> "Polygon".
func Network(name string) string {
	if name == "" {
		return ""
	}
	if label, ok := networkLabels[strings.ToLower(name)]; ok {
		return label
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var networkLabels = map[string]string{
	"polygon":  "Polygon",
	"arbitrum": "Arbitrum",
	"base":     "Base",
	"ethereum": "Ethereum",
	"solana":   "Solana",
	"starknet": "Starknet",
	"bsc":      "BNB Chain",
}

// Short abbreviates long identifiers such as wallet addresses.
func Short(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

func Escape(s string) string {
	return html.EscapeString(s)
}

func bold(s string) string {
	return fmt.Sprintf("<b>%s</b>", Escape(s))
}

func code(s string) string {
	return fmt.Sprintf("<code>%s</code>", Escape(s))
}
