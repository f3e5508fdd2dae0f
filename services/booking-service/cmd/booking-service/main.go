package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trimly-app/trimly/libs/config"
	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/libs/httpx"
	"github.com/trimly-app/trimly/libs/kafkax"
	otelx "github.com/trimly-app/trimly/libs/otel"
	"github.com/trimly-app/trimly/libs/runtime"
	"github.com/trimly-app/trimly/services/booking-service/internal/consumer"
	"github.com/trimly-app/trimly/services/booking-service/internal/handlers"
	"github.com/trimly-app/trimly/services/booking-service/internal/inbox"
	"github.com/trimly-app/trimly/services/booking-service/internal/outbox"
	"github.com/trimly-app/trimly/services/booking-service/internal/policy"
	"github.com/trimly-app/trimly/services/booking-service/internal/schedule"
	"github.com/trimly-app/trimly/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseReminderOffsets(raw string, logger *slog.Logger) []time.Duration {
	var offsets []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			logger.Warn("invalid reminder offset", "value", part)
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	if len(offsets) == 0 {
		offsets = []time.Duration{24 * time.Hour}
	}
	return offsets
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewBookingRepository(pool)
	scheduleRepo := storage.NewScheduleRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	offsets := parseReminderOffsets(config.String("REMINDER_OFFSETS_MINUTES", "1440,60"), logger)
	policyProvider, err := policy.NewShopPolicyProvider(logger, offsets, config.String("BARBERSHOP_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("policy provider init failed", "err", err)
		policyProvider = policy.NewStaticProvider(offsets)
	}
	scheduleProvider, err := schedule.NewShopScheduleProvider(logger, scheduleRepo, config.String("BARBERSHOP_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("schedule provider init failed; using storage provider", "err", err)
		scheduleProvider = schedule.NewStorageProvider(scheduleRepo)
	}
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		consumerCfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "booking-service"),
			Topic:   topic,
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
			// Both billing events carry the same limit fields; booking
			// enforces the cap from this local cache.
			var payload struct {
				BarbershopID           string `json:"barbershop_id"`
				Tier                   string `json:"tier"`
				MaxStaff               int    `json:"max_staff"`
				MaxServices            int    `json:"max_services"`
				MaxMonthlyAppointments int    `json:"max_monthly_appointments"`
			}
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			if payload.BarbershopID == "" || payload.Tier == "" || payload.MaxMonthlyAppointments <= 0 {
				logger.Error("missing required event fields", "topic", msg.Topic)
				return nil
			}

			tx, err := pool.Begin(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback(ctx) }()

			if err := repo.UpsertShopEntitlements(ctx, tx, storage.ShopEntitlements{
				BarbershopID:           payload.BarbershopID,
				Tier:                   payload.Tier,
				MaxStaff:               payload.MaxStaff,
				MaxServices:            payload.MaxServices,
				MaxMonthlyAppointments: payload.MaxMonthlyAppointments,
			}); err != nil {
				return err
			}
			return tx.Commit(ctx)
		})
		go eventConsumer.Run(ctx)
	}

	startConsumer(config.String("KAFKA_CONSUME_TOPIC", "billing.subscription.activated.v1"))
	startConsumer(config.String("KAFKA_CONSUME_TOPIC_2", "billing.subscription.changed.v1"))
	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, logger, policyProvider, scheduleProvider, offsets)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	setupEntitlementsRoutes(ctx, mux, logger)
	mux.HandleFunc("/api/v1/public/slots", bookingHandler.Slots)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Create)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
