package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trimly-app/trimly/libs/config"
	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/libs/httpx"
	"github.com/trimly-app/trimly/libs/kafkax"
	otelx "github.com/trimly-app/trimly/libs/otel"
	"github.com/trimly-app/trimly/libs/runtime"
	"github.com/trimly-app/trimly/services/reminder-service/internal/consumer"
	"github.com/trimly-app/trimly/services/reminder-service/internal/inbox"
	"github.com/trimly-app/trimly/services/reminder-service/internal/jobs"
	"github.com/trimly-app/trimly/services/reminder-service/internal/outbox"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "reminder-service")
	port, err := config.Port("PORT", "8087")
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

	inboxRepo := inbox.NewRepository(pool)
	jobRepo := jobs.NewRepository()
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	backoffSeconds, err := strconv.Atoi(config.String("REMINDER_BACKOFF_SECONDS", "60"))
	if err != nil || backoffSeconds <= 0 {
		backoffSeconds = 60
	}
	jobWorker := jobs.NewWorker(pool, jobRepo, outboxRepo, logger, jobs.WorkerConfig{
		Interval:  2 * time.Second,
		BatchSize: 50,
		Backoff:   time.Duration(backoffSeconds) * time.Second,
	})
	go jobWorker.Run(ctx)

	consumerCfg := consumer.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "reminder-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "booking.reminder.requested.v1"),
	}

	type reminderRequest struct {
		AppointmentID string         `json:"appointment_id"`
		BarbershopID  string         `json:"barbershop_id"`
		Channel       string         `json:"channel"`
		Recipient     string         `json:"recipient"`
		RemindAt      string         `json:"remind_at"`
		TemplateData  map[string]any `json:"template_data"`
	}

	eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
		var payload reminderRequest
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reminder request", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.BarbershopID == "" || payload.Channel == "" || payload.Recipient == "" || payload.RemindAt == "" {
			logger.Error("missing reminder fields")
			return nil
		}
		remindAt, err := time.Parse(time.RFC3339, payload.RemindAt)
		if err != nil {
			logger.Error("invalid remind_at", "err", err)
			return nil
		}

		idempotencyKey := payload.AppointmentID + "|" + payload.RemindAt + "|" + payload.Channel

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := jobRepo.Insert(ctx, tx, jobs.Job{
			IdempotencyKey: idempotencyKey,
			AppointmentID:  payload.AppointmentID,
			BarbershopID:   payload.BarbershopID,
			Channel:        payload.Channel,
			Recipient:      payload.Recipient,
			RemindAt:       remindAt,
			TemplateData:   payload.TemplateData,
		}); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	go eventConsumer.Run(ctx)

	cancelConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "reminder-service"),
		Topic:   "booking.appointment.cancelled.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			AppointmentID string `json:"appointment_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid cancellation payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" {
			logger.Error("missing appointment_id on cancellation")
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		cancelled, err := jobRepo.CancelPending(ctx, tx, payload.AppointmentID)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		if cancelled > 0 {
			logger.Info("pending reminders cancelled", "appointment_id", payload.AppointmentID, "count", cancelled)
		}
		return nil
	})
	go cancelConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "reminder")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
