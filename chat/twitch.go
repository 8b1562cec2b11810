package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/google/uuid"

	"github.com/onnwee/slot-tender/telemetry"
)

// TwitchBot answers "!toggle 025" style commands in one Twitch channel.
type TwitchBot struct {
	channel    string
	username   string
	oauth      string
	dispatcher *Dispatcher
}

func NewTwitchBot(channel, username, oauth string, d *Dispatcher) *TwitchBot {
	return &TwitchBot{channel: channel, username: username, oauth: oauth, dispatcher: d}
}

// Run connects to Twitch IRC and blocks until ctx is canceled. A failed
// connection is logged but does not stop the rest of the process.
func (b *TwitchBot) Run(ctx context.Context) error {
	client := twitch.NewClient(b.username, b.oauth)

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		if reply, ok := b.handle(ctx, msg); ok {
			client.Say(msg.Channel, reply)
		}
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		_ = client.Disconnect()
		close(done)
	}()

	client.Join(b.channel)
	slog.Info("twitch bot joining", slog.String("channel", b.channel), slog.String("component", "twitch"))
	if err := client.Connect(); err != nil && !errors.Is(err, twitch.ErrClientDisconnected) {
		slog.Error("twitch chat connect error", slog.Any("err", err), slog.String("component", "twitch"))
	}
	<-done
	return nil
}

func (b *TwitchBot) handle(ctx context.Context, msg twitch.PrivateMessage) (string, bool) {
	if strings.EqualFold(msg.User.Name, b.username) {
		return "", false
	}
	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	reply, ok := b.dispatcher.Handle(ctx, Message{From: msg.User.ID, Text: msg.Message})
	if !ok {
		return "", false
	}
	// IRC messages are single-line.
	return strings.ReplaceAll(reply, "\n", " | "), true
}
