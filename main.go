// Command slot-tender runs the slot occupancy bot.
// It:
//   - Loads configuration (.env supported) and initializes structured logging.
//   - Opens the occupancy store (a JSON file by default, Postgres optionally)
//     and seeds an empty document on first run.
//   - Starts the Telegram command bot and, when configured, the Twitch chat bot.
//   - Exposes the read API: /, /states.json, /healthz and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/slot-tender/chat"
	"github.com/onnwee/slot-tender/config"
	"github.com/onnwee/slot-tender/db"
	"github.com/onnwee/slot-tender/server"
	"github.com/onnwee/slot-tender/slots"
	"github.com/onnwee/slot-tender/telemetry"
)

const (
	serviceName    = "slot-tender"
	serviceVersion = "1.0.0"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	if err := run(); err != nil {
		if errors.Is(err, config.ErrMissingBotToken) {
			slog.Error("BOT_TOKEN is required; refusing to start")
		} else {
			slog.Error("fatal", slog.Any("err", err))
		}
		os.Exit(1)
	}
}

// run wires the components and blocks until shutdown. Returning instead of
// exiting lets deferred cleanup (tracer flush, db close) run.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	telemetry.Init()

	// Optional; requires OTEL_EXPORTER_OTLP_ENDPOINT
	shutdownTracing, err := telemetry.InitTracing(serviceName, serviceVersion)
	if err != nil {
		return fmt.Errorf("tracing initialization failed: %w", err)
	}
	defer shutdownTracing()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := slots.NewStore(backend)
	if err := store.EnsureInitialized(ctx); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	_, total, err := store.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	telemetry.SetOccupiedSlots(total)
	slog.Info("store ready", slog.String("backend", cfg.StorageBackend), slog.Int("occupied", total))

	if cfg.AdminIdentity() == "" {
		slog.Warn("TELEGRAM_ADMIN_ID not set - every Telegram user can modify slots")
	}
	telegramDispatcher := chat.NewDispatcher(store, chat.NewAuthorizer(cfg.AdminIdentity()), cfg.ListLimit)
	telegram, err := chat.NewTelegramBot(cfg.BotToken, cfg.TelegramAPIEndpoint, telegramDispatcher)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx, store, cfg.ListenAddr()) })
	g.Go(func() error { return telegram.Run(gctx) })

	if cfg.TwitchEnabled() {
		if err := cfg.ValidateTwitchReady(); err != nil {
			slog.Warn("twitch bot disabled", slog.Any("err", err))
		} else {
			if cfg.TwitchAdminID == "" {
				slog.Warn("TWITCH_ADMIN_ID not set - every Twitch chatter can modify slots")
			}
			twitchDispatcher := chat.NewDispatcher(store, chat.NewAuthorizer(cfg.TwitchAdminID), cfg.ListLimit)
			twitchBot := chat.NewTwitchBot(cfg.TwitchChannel, cfg.TwitchBotUsername, cfg.TwitchOAuthToken, twitchDispatcher)
			g.Go(func() error { return twitchBot.Run(gctx) })
		}
	}

	err = g.Wait()
	slog.Info("shutting down")
	return err
}

// openBackend selects the document backend configured by STORAGE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config) (slots.Backend, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		database, err := db.Connect(ctx, cfg.DBDsn)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, database); err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		return db.NewDocumentBackend(database, db.DefaultDocumentName), func() {
			if err := database.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}, nil
	default:
		slog.Info("using file storage", slog.String("path", cfg.StorageFile))
		return slots.NewFileBackend(cfg.StorageFile), func() {}, nil
	}
}
