package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"CopperxBot/bot/dispatch"
	"CopperxBot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

const (
	handleTimeout  = 45 * time.Second
	maxAdminLength = 4000
)

// Handler processes one chat event.
type Handler interface {
	Handle(ctx context.Context, ev dispatch.Event) error
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminId     int64
	handler     Handler
	ctx         context.Context
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
		ctx:         context.Background(),
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

// API exposes the underlying client for the messenger.
func (t *TgBot) API() *tgbotapi.Bot {
	return t.api
}

func (t *TgBot) SetHandler(handler Handler) {
	t.handler = handler
}

// Start polls for updates until ctx is done.
func (t *TgBot) Start(ctx context.Context) error {
	if t.handler == nil {
		return fmt.Errorf("event handler not set")
	}
	t.ctx = ctx

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Warn("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, t.handleCallback))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleMessage))

	updater := ext.NewUpdater(dispatcher, nil)

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("bot started", slog.String("username", t.botUsername))

	<-ctx.Done()
	if err = updater.Stop(); err != nil {
		t.log.Warn("stopping updater", sl.Err(err))
	}
	return nil
}

func (t *TgBot) handleMessage(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if ctx.EffectiveUser == nil || ctx.EffectiveChat == nil {
		return nil
	}
	ev := dispatch.TextEvent(
		strconv.FormatInt(ctx.EffectiveUser.Id, 10),
		strconv.FormatInt(ctx.EffectiveChat.Id, 10),
		ctx.EffectiveMessage.Text,
	)
	ev.IsAdmin = t.isAdmin(ctx.EffectiveUser.Id)
	return t.dispatch(ev)
}

func (t *TgBot) handleCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	// stop the client spinner whatever the outcome
	if _, err := cq.Answer(b, nil); err != nil {
		t.log.Debug("answering callback", sl.Err(err))
	}
	if ctx.EffectiveChat == nil || cq.Data == "" {
		return nil
	}
	ev := dispatch.Event{
		UserID:   strconv.FormatInt(cq.From.Id, 10),
		ChatID:   strconv.FormatInt(ctx.EffectiveChat.Id, 10),
		Callback: cq.Data,
		IsAdmin:  t.isAdmin(cq.From.Id),
	}
	return t.dispatch(ev)
}

func (t *TgBot) dispatch(ev dispatch.Event) error {
	ctx, cancel := context.WithTimeout(t.ctx, handleTimeout)
	defer cancel()
	if err := t.handler.Handle(ctx, ev); err != nil {
		return fmt.Errorf("user %s %s event: %w", ev.UserID, ev.Kind(), err)
	}
	return nil
}

func (t *TgBot) isAdmin(userID int64) bool {
	return t.adminId != 0 && userID == t.adminId
}

// SendMessage sends a plain text notice to the administrator.
func (t *TgBot) SendMessage(msg string) {
	if t.adminId == 0 || msg == "" {
		return
	}
	if len(msg) > maxAdminLength {
		msg = msg[:maxAdminLength]
	}
	_, err := t.api.SendMessage(t.adminId, msg, &tgbotapi.SendMessageOpts{})
	if err != nil {
		// logging here would loop through the admin notifier
		fmt.Printf("tgbot: sending admin message: %v\n", err)
	}
}
