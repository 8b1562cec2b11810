package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/onnwee/slot-tender/telemetry"
)

// longPollTimeout is the getUpdates timeout in seconds.
const longPollTimeout = 60

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// TelegramBot answers commands received through Telegram long polling.
type TelegramBot struct {
	api        telegramAPI
	username   string // bot's own username; commands addressed to other bots are ignored
	dispatcher *Dispatcher
	wg         sync.WaitGroup
}

// NewTelegramBot authenticates token against the Bot API. An empty endpoint
// selects the public api.telegram.org endpoint.
func NewTelegramBot(token, endpoint string, d *Dispatcher) (*TelegramBot, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("telegram bot authorized", slog.String("username", api.Self.UserName), slog.String("component", "telegram"))
	return &TelegramBot{api: api, username: api.Self.UserName, dispatcher: d}, nil
}

// Run polls for updates until ctx is canceled. Every message is handled on
// its own goroutine; Run waits for in-flight handlers before returning.
func (b *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = longPollTimeout
	updates := b.api.GetUpdatesChan(u)
	slog.Info("telegram bot started", slog.String("component", "telegram"))

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram bot stopped", slog.String("component", "telegram"))
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(m *tgbotapi.Message) {
				defer b.wg.Done()
				b.handle(ctx, m)
			}(update.Message)
		}
	}
}

func (b *TelegramBot) handle(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	if to := addressee(m.Text); to != "" && b.username != "" && !strings.EqualFold(to, b.username) {
		return
	}
	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	var from string
	if m.From != nil {
		from = strconv.FormatInt(m.From.ID, 10)
	}

	reply, ok := b.dispatcher.Handle(ctx, Message{From: from, Text: m.Text})
	if !ok {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(m.Chat.ID, reply)); err != nil {
		telemetry.LoggerWithCorr(ctx).Error("telegram send failed", slog.Int64("chat_id", m.Chat.ID), slog.Any("err", err), slog.String("component", "telegram"))
	}
}
