package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"CopperxPayoutBot"`
		Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"copperx"`
	} `yaml:"mongo"`
	Copperx struct {
		BaseURL string        `yaml:"base_url" env:"COPPERX_BASE_URL" env-default:"https://income-api.copperx.io"`
		Timeout time.Duration `yaml:"timeout" env:"COPPERX_TIMEOUT" env-default:"15s"`
	} `yaml:"copperx"`
	Flow  Flow  `yaml:"flow"`
	Guard Guard `yaml:"guard"`
	Store struct {
		MaxRetries int `yaml:"max_retries" env-default:"3"`
	} `yaml:"store"`
	Listen struct {
		Enabled bool   `yaml:"enabled" env:"LISTEN_ENABLED" env-default:"true"`
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"9100"`
		ApiKey  string `yaml:"key" env:"LISTEN_KEY" env-default:""`
	} `yaml:"listen"`
}

// Flow holds the tunables of the conversational flows.
type Flow struct {
	OtpMaxAttempts          int    `yaml:"otp_max_attempts" env-default:"3"`
	SendMinAmount           string `yaml:"send_min_amount" env-default:"1"`
	WithdrawWalletMinAmount string `yaml:"withdraw_wallet_min_amount" env-default:"10"`
	WithdrawBankMinAmount   string `yaml:"withdraw_bank_min_amount" env-default:"100"`
	HistoryPageSize         int    `yaml:"history_page_size" env-default:"5"`
	StrictWalletAddress     bool   `yaml:"strict_wallet_address" env-default:"false"`
}

// Guard holds the tunables of the auth and KYC guards.
type Guard struct {
	KycCacheTTL   time.Duration `yaml:"kyc_cache_ttl" env-default:"5m"`
	TokenCheckTTL time.Duration `yaml:"token_check_ttl" env-default:"1m"`
	KycExempt     []string      `yaml:"kyc_exempt" env-default:"start,help,login,logout,profile,balance,wallets,deposit,kyc,cancel,menu,broadcast"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Default returns a configuration filled from defaults and the environment only.
func Default() (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, err
	}
	return conf, nil
}
