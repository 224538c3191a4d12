package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"CopperxBot/bot"
	"CopperxBot/bot/chat"
	"CopperxBot/bot/chat/telegram"
	"CopperxBot/bot/dispatch"
	"CopperxBot/bot/flows"
	"CopperxBot/bot/flows/broadcast"
	"CopperxBot/bot/flows/deposit"
	"CopperxBot/bot/flows/login"
	"CopperxBot/bot/flows/send"
	"CopperxBot/bot/flows/withdraw"
	"CopperxBot/bot/guard"
	"CopperxBot/internal/config"
	"CopperxBot/internal/database"
	"CopperxBot/internal/database/memory"
	"CopperxBot/internal/http-server/api"
	"CopperxBot/internal/http-server/handlers/key"
	"CopperxBot/internal/http-server/middleware/authenticate"
	"CopperxBot/internal/lib/logger"
	"CopperxBot/internal/lib/sl"
	"CopperxBot/internal/service/copperx"
	"CopperxBot/internal/ws"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type sessionStore interface {
	chat.Store
	chat.Directory
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	newKey := flag.String("new-key", "", "issue an operations API key for a username and exit")
	flag.Parse()

	// a missing .env is fine, the config file and environment still apply
	_ = godotenv.Load()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	if !conf.Telegram.Enabled {
		lg.Error("telegram is disabled, nothing to serve")
		os.Exit(1)
	}

	tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
	if err != nil {
		lg.Error("failed to initialize telegram bot", sl.Err(err))
		os.Exit(1)
	}
	lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
	lg.With(
		slog.String("bot_name", conf.Telegram.BotName),
	).Info("telegram bot initialized")

	lg.Info("starting copperx bot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
		os.Exit(1)
	}

	var store sessionStore = memory.New()
	var keys key.Core
	var keyStore authenticate.KeyStore
	if db != nil {
		if err = db.EnsureIndexes(ctx); err != nil {
			lg.Error("mongo indexes", sl.Err(err))
			os.Exit(1)
		}
		store = chat.NewRepositoryStore(db)
		keys = db
		keyStore = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		lg.Warn("mongo disabled, sessions are kept in memory")
	}

	if *newKey != "" {
		if keys == nil {
			lg.Error("issuing api keys requires mongo")
			os.Exit(1)
		}
		k, err := keys.GenerateApiKey(*newKey)
		if err != nil {
			lg.Error("generate api key", sl.Err(err))
			os.Exit(1)
		}
		lg.Info("api key issued", slog.String("username", *newKey), sl.Secret("key", k))
		return
	}

	limits, err := flows.NewLimits(conf.Flow)
	if err != nil {
		lg.Error("flow limits", sl.Err(err))
		os.Exit(1)
	}

	payments := copperx.New(conf.Copperx.BaseURL, conf.Copperx.Timeout, lg)
	messenger := telegram.NewMessenger(tgBot.API())
	hub := ws.NewHub(lg)

	sessions := chat.NewSessions(store, conf.Store.MaxRetries, lg)
	machine := chat.NewMachine(sessions, lg)
	machine.SetListener(hub)
	machine.RegisterWorkflow(login.NewWorkflow(payments, limits))
	machine.RegisterWorkflow(send.NewWorkflow(payments, payments, limits))
	machine.RegisterWorkflow(withdraw.NewWorkflow(payments, payments, limits))
	machine.RegisterWorkflow(deposit.NewWorkflow(payments))
	machine.RegisterWorkflow(broadcast.NewWorkflow(store, messenger, lg))

	kycGuard := guard.NewKycGuard(sessions, payments, conf.Guard.KycCacheTTL, conf.Guard.KycExempt, lg)
	guards := guard.NewChain(lg,
		guard.NewAuthGuard(sessions, payments, conf.Guard.TokenCheckTTL, lg),
		kycGuard,
	)

	dispatcher := dispatch.New(chat.NewLocker(), sessions, machine, guards, messenger, dispatch.Services{
		Wallets: payments,
		History: payments,
		Kyc:     kycGuard,
	}, lg)
	dispatcher.SetPageSize(conf.Flow.HistoryPageSize)
	tgBot.SetHandler(dispatcher)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	group.Go(func() error {
		return tgBot.Start(gctx)
	})
	if conf.Listen.Enabled {
		server := api.New(conf, lg, api.Deps{
			Auth:     authenticate.NewKeyChain(conf.Listen.ApiKey, keyStore),
			Sessions: dispatcher,
			Keys:     keys,
			Hub:      hub,
		})
		group.Go(func() error {
			return server.Start(gctx)
		})
	}

	if err = group.Wait(); err != nil {
		lg.Error("service stopped", sl.Err(err))
		os.Exit(1)
	}
	lg.Info("service stopped")
}
