package validate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	walletMinLength = 26
	walletMaxLength = 64
	maxFraction     = 8
)

var (
	amountPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]{1,8})?$`)
	evmPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// IsValidEmail accepts a single '@' with non-empty local and dotted domain parts.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.IndexByte(s, '@')
	local, domain := s[:at], s[at+1:]
	if local == "" || domain == "" {
		return false
	}
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// IsValidWalletAddress checks length and charset only. No network checksum is verified.
func IsValidWalletAddress(s string) bool {
	if len(s) < walletMinLength || len(s) > walletMaxLength {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// IsValidWalletAddressStrict additionally requires an EVM hex or base58 shaped address.
func IsValidWalletAddressStrict(s string) bool {
	if !IsValidWalletAddress(s) {
		return false
	}
	return evmPattern.MatchString(s) || base58Pattern.MatchString(s)
}

// WalletAddressValidator returns the lax or strict checker.
func WalletAddressValidator(strict bool) func(string) bool {
	if strict {
		return IsValidWalletAddressStrict
	}
	return IsValidWalletAddress
}

func IsValidAmount(s string) bool {
	_, ok := ParseAmount(s)
	return ok
}

// ParseAmount parses a positive decimal with at most 8 fractional digits.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() || -d.Exponent() > maxFraction {
		return decimal.Zero, false
	}
	return d, true
}

// IsValidBankDetails is a keyword heuristic: at least two of account, bank and name must appear.
func IsValidBankDetails(blob string) bool {
	lower := strings.ToLower(blob)
	found := 0
	for _, kw := range []string{"account", "bank", "name"} {
		if strings.Contains(lower, kw) {
			found++
		}
	}
	return found >= 2
}
