package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"masabot/internal/api"
	"masabot/internal/bot"
	"masabot/internal/config"
	"masabot/internal/engine"
	"masabot/internal/events"
	"masabot/internal/menu"
	"masabot/internal/metrics"
	"masabot/internal/session"
	"masabot/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("MASABOT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}

	st, err := store.Open(cfg.Data.Dir, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open data store error")
	}

	bus := events.NewEventBus()
	subscribeDomainEvents(bus, &logger)
	eng := engine.New(st, cfg, bus, &logger)
	windowStart, _ := cfg.BookingWindow()
	gen := menu.NewGenerator(st, windowStart)

	var rdb *redis.Client
	var states bot.StateManager = session.NewMemoryStateRepository()
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		states = session.NewFailoverStateRepository(
			session.NewRedisStateRepository(rdb),
			session.NewMemoryStateRepository(),
			&logger,
		)
	}

	b, err := bot.New(cfg.Telegram.BotToken, eng, gen, states, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hot-reload operating hours and booking window on config edits.
	go func() {
		err := config.Watch(ctx, os.Getenv("MASABOT_CONFIG_PATH"), 30*time.Second, func(updated *config.Config) {
			eng.SetConfig(updated)
			logger.Info().Msg("config reloaded")
		})
		if err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("config watcher stopped")
		}
	}()

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, st, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Admin.Enabled {
		admin := api.NewServer(eng, gen, st, cfg.Admin.APIKey, &logger)
		go func() {
			if err := admin.Start(ctx, cfg.Admin.Port); err != nil {
				logger.Error().Err(err).Msg("admin api error")
			}
		}()
	}

	if cfg.Backup.Enabled {
		backup := store.NewBackupService(st, cfg.Backup.Dir, cfg.Backup.KeepDays, &logger)
		go backup.Start(ctx)
	}

	b.StartReminders(ctx)
	logger.Info().Msg("reservation bot started")
	b.Start(ctx)
}

// subscribeDomainEvents attaches the logging handler and the metrics
// bump to every event type the engine publishes.
func subscribeDomainEvents(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			Str("event_id", ev.ID).
			RawJSON("payload", ev.Payload).
			Msg("domain event")
		metrics.IncEvent(ev.Type)
		return nil
	}
	for _, eventType := range []string{events.ReservationCreated, events.ReservationCancelled, events.InventoryUpdated} {
		bus.Subscribe(eventType, handler)
	}
}

func startHealthServer(ctx context.Context, port int, st *store.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := os.Stat(st.Path(store.FileReservations)); err != nil {
			http.Error(w, "ledger not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
