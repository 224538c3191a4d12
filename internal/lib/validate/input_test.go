package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":           true,
		"user.name@mail.io": true,
		"":                  false,
		"no-at-sign.com":    false,
		"two@@b.com":        false,
		"a@b@c.com":         false,
		"@b.com":            false,
		"a@":                false,
		"a@b":               false,
		"a@.com":            false,
		"a b@c.com":         false,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, want, IsValidEmail(in))
		})
	}
}

func TestIsValidWalletAddress(t *testing.T) {
	require.True(t, IsValidWalletAddress("0x1234567890abcdef1234567890abcdef12345678"))
	require.True(t, IsValidWalletAddress("abcdefghijklmnopqrstuvwxyz"))
	require.False(t, IsValidWalletAddress("short"))
	require.False(t, IsValidWalletAddress("0x1234567890abcdef1234567890abcdef1234567-"))
	require.False(t, IsValidWalletAddress("0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef0"))
}

func TestIsValidWalletAddressStrict(t *testing.T) {
	require.True(t, IsValidWalletAddressStrict("0x1234567890abcdef1234567890abcdef12345678"))
	require.True(t, IsValidWalletAddressStrict("7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"))
	require.False(t, IsValidWalletAddressStrict("abcdefghijklmnopqrstuvwxyz0OIl"))
	require.False(t, IsValidWalletAddressStrict("0xZZ34567890abcdef1234567890abcdef12345678"))

	require.True(t, WalletAddressValidator(false)("abcdefghijklmnopqrstuvwxyz0OIl"))
	require.False(t, WalletAddressValidator(true)("abcdefghijklmnopqrstuvwxyz0OIl"))
}

func TestIsValidAmount(t *testing.T) {
	cases := map[string]bool{
		"50":         true,
		"0.5":        true,
		"1.12345678": true,
		"100.0":      true,
		"":           false,
		"0":          false,
		"0.0":        false,
		"01":         false,
		"-5":         false,
		"abc":        false,
		"1.":         false,
		".5":         false,
		"1.123456789": false,
		"1e5":        false,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, want, IsValidAmount(in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	d, ok := ParseAmount(" 12.50 ")
	require.True(t, ok)
	require.Equal(t, "12.5", d.String())
}

func TestIsValidBankDetails(t *testing.T) {
	require.True(t, IsValidBankDetails("Account 123456, Bank: Chase"))
	require.True(t, IsValidBankDetails("NAME John, ACCOUNT 1"))
	require.False(t, IsValidBankDetails("bank only"))
	require.False(t, IsValidBankDetails(""))
}

type sample struct {
	Email string `validate:"required,email"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(&sample{Email: "a@b.com"}))
	require.Error(t, Struct(&sample{}))
}
