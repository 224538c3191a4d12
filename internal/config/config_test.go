package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	conf, err := Default()
	require.NoError(t, err)

	require.Equal(t, 15*time.Second, conf.Copperx.Timeout)
	require.Equal(t, 5*time.Minute, conf.Guard.KycCacheTTL)
	require.Equal(t, 3, conf.Flow.OtpMaxAttempts)
	require.Equal(t, "1", conf.Flow.SendMinAmount)
	require.Equal(t, "10", conf.Flow.WithdrawWalletMinAmount)
	require.Equal(t, "100", conf.Flow.WithdrawBankMinAmount)
	require.Contains(t, conf.Guard.KycExempt, "deposit")
	require.NotContains(t, conf.Guard.KycExempt, "send")
}

func TestMustLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := []byte(`
env: dev
flow:
  withdraw_bank_min_amount: "250"
guard:
  kyc_cache_ttl: 30s
  kyc_exempt: [start, help]
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	conf := MustLoad(path)
	require.Equal(t, "dev", conf.Env)
	require.Equal(t, "250", conf.Flow.WithdrawBankMinAmount)
	require.Equal(t, "10", conf.Flow.WithdrawWalletMinAmount)
	require.Equal(t, 30*time.Second, conf.Guard.KycCacheTTL)
	require.Equal(t, []string{"start", "help"}, conf.Guard.KycExempt)
}
