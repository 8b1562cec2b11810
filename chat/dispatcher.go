package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onnwee/slot-tender/slots"
	"github.com/onnwee/slot-tender/telemetry"
)

// DefaultListLimit caps how many slots /lista prints.
const DefaultListLimit = 200

// Message is an inbound chat message, independent of transport.
type Message struct {
	From string // sender identity as the transport reports it
	Text string
}

// Dispatcher runs parsed commands against the store.
type Dispatcher struct {
	store     *slots.Store
	auth      Authorizer
	listLimit int
}

// NewDispatcher returns a Dispatcher. listLimit <= 0 selects DefaultListLimit.
func NewDispatcher(store *slots.Store, auth Authorizer, listLimit int) *Dispatcher {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &Dispatcher{store: store, auth: auth, listLimit: listLimit}
}

// Handle returns the reply for msg. ok is false when nothing should be sent
// (plain text or an unknown command).
func (d *Dispatcher) Handle(ctx context.Context, msg Message) (reply string, ok bool) {
	log := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "chat"))

	cmd, err := Parse(msg.Text)
	if errors.Is(err, ErrNotCommand) || errors.Is(err, ErrUnknownCommand) {
		return "", false
	}
	name := commandName(cmd, err)
	prefix := commandPrefix(msg.Text)

	if requiresAdmin(name) {
		if authErr := d.auth.Allow(msg.From); authErr != nil {
			log.Debug("command refused", slog.String("command", name), slog.String("from", msg.From))
			telemetry.RecordCommand(name, "unauthorized")
			return replyUnauthorized, true
		}
	}

	if err != nil {
		telemetry.RecordCommand(name, "bad_argument")
		if errors.Is(err, ErrMissingArgument) {
			return usageReply(prefix, name), true
		}
		return invalidReply(prefix, name), true
	}

	if _, isStart := cmd.(Start); isStart {
		// Operators read this line to find the id for TELEGRAM_ADMIN_ID.
		log.Info("start received", slog.String("from", msg.From))
	}

	reply, err = d.execute(ctx, cmd, prefix)
	if err != nil {
		log.Error("command failed", slog.String("command", name), slog.Any("err", err))
		telemetry.RecordCommand(name, "error")
		return replyStorageFailure, true
	}
	telemetry.RecordCommand(name, "ok")
	return reply, true
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command, prefix string) (string, error) {
	switch c := cmd.(type) {
	case Toggle:
		state, err := d.store.Toggle(ctx, c.Slot)
		if err != nil {
			return "", err
		}
		return toggleReply(c.Slot, state), nil
	case Status:
		state, err := d.store.Query(ctx, c.Slot)
		if err != nil {
			return "", err
		}
		return statusReply(c.Slot, state), nil
	case List:
		listed, total, err := d.store.List(ctx, d.listLimit)
		if err != nil {
			return "", err
		}
		return listReply(listed, total), nil
	case Reset:
		if err := d.store.Reset(ctx); err != nil {
			return "", err
		}
		return replyReset, nil
	case Start:
		return startReply(prefix), nil
	case Help:
		return helpReply(prefix, d.listLimit), nil
	default:
		return "", fmt.Errorf("unhandled command %T", cmd)
	}
}
