package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trimly-app/trimly/libs/config"
	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/libs/httpx"
	"github.com/trimly-app/trimly/libs/kafkax"
	otelx "github.com/trimly-app/trimly/libs/otel"
	"github.com/trimly-app/trimly/libs/runtime"
	"github.com/trimly-app/trimly/services/notification-service/internal/consumer"
	"github.com/trimly-app/trimly/services/notification-service/internal/email"
	"github.com/trimly-app/trimly/services/notification-service/internal/inbox"
	"github.com/trimly-app/trimly/services/notification-service/internal/outbox"
	"github.com/trimly-app/trimly/services/notification-service/internal/storage"
	"github.com/trimly-app/trimly/services/notification-service/internal/whatsapp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// dispatcher delivers one message, records the notification row and enqueues
// the sent/failed event in a single place for every consumed topic.
type dispatcher struct {
	pool       *db.Pool
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	whatsapp   whatsapp.Sender
	email      email.Sender
	failSuffix string
}

type delivery struct {
	AppointmentID string
	BarbershopID  string
	Channel       string
	Recipient     string
	Subject       string
	Body          string
	TemplateData  map[string]any
}

func (d *dispatcher) deliver(ctx context.Context, msg delivery) (string, error) {
	if d.failSuffix != "" && strings.HasSuffix(msg.Recipient, d.failSuffix) {
		return "", fmt.Errorf("simulated failure")
	}
	switch strings.ToLower(msg.Channel) {
	case "whatsapp":
		if err := d.whatsapp.Send(ctx, msg.Recipient, msg.Body); err != nil {
			return "", err
		}
		return d.whatsapp.ProviderID(), nil
	case "email":
		if err := d.email.Send(msg.Recipient, msg.Subject, msg.Body); err != nil {
			return "", err
		}
		return "smtp", nil
	default:
		return "", fmt.Errorf("unsupported channel: %s", msg.Channel)
	}
}

func (d *dispatcher) process(ctx context.Context, msg delivery) error {
	providerID, sendErr := d.deliver(ctx, msg)

	status := "sent"
	if sendErr != nil {
		status = "failed"
	}
	if err := d.repo.Insert(ctx, storage.Notification{
		AppointmentID: msg.AppointmentID,
		BarbershopID:  msg.BarbershopID,
		Channel:       msg.Channel,
		Recipient:     msg.Recipient,
		Payload:       msg.TemplateData,
		Status:        status,
	}); err != nil {
		return err
	}

	if sendErr != nil {
		return d.writeOutcome(ctx, "notification.failed.v1", msg, map[string]any{
			"error_reason": sendErr.Error(),
			"failed_at":    time.Now().UTC().Format(time.RFC3339),
		})
	}
	if strings.TrimSpace(providerID) == "" {
		providerID = "unknown"
	}
	return d.writeOutcome(ctx, "notification.sent.v1", msg, map[string]any{
		"provider_id": providerID,
		"sent_at":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (d *dispatcher) writeOutcome(ctx context.Context, eventType string, msg delivery, extra map[string]any) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	body := map[string]any{
		"appointment_id": msg.AppointmentID,
		"barbershop_id":  msg.BarbershopID,
		"channel":        msg.Channel,
	}
	for k, v := range extra {
		body[k] = v
	}
	eventPayload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	if err := d.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notification",
		AggregateID:   msg.AppointmentID,
		EventType:     eventType,
		Payload:       eventPayload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type reminderPayload struct {
	AppointmentID string         `json:"appointment_id"`
	BarbershopID  string         `json:"barbershop_id"`
	Channel       string         `json:"channel"`
	Recipient     string         `json:"recipient"`
	RemindAt      string         `json:"remind_at"`
	TemplateData  map[string]any `json:"template_data"`
}

type bookedPayload struct {
	AppointmentID string `json:"appointment_id"`
	BarbershopID  string `json:"barbershop_id"`
	ServiceName   string `json:"service_name"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	ClientEmail   string `json:"client_email"`
	StartTime     string `json:"start_time"`
}

type otpPayload struct {
	BarbershopID string `json:"barbershop_id"`
	Phone        string `json:"phone"`
	Code         string `json:"code"`
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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
	notificationsRepo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@trimly.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	waProvider := strings.ToLower(config.String("WHATSAPP_PROVIDER", "noop"))
	var waSender whatsapp.Sender
	switch waProvider {
	case "cloud":
		waSender = whatsapp.NewCloudSender(
			config.String("WHATSAPP_API_BASE_URL", ""),
			config.String("WHATSAPP_PHONE_NUMBER_ID", ""),
			config.String("WHATSAPP_ACCESS_TOKEN", ""),
		)
	default:
		waSender = whatsapp.NewNoopSender()
	}

	disp := &dispatcher{
		pool:       pool,
		repo:       notificationsRepo,
		outboxRepo: outboxRepo,
		whatsapp:   waSender,
		email:      emailSender,
		failSuffix: config.String("NOTIFICATION_FAIL_SUFFIX", ""),
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")

	reminderConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   "reminder.due.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload reminderPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.BarbershopID == "" || payload.Channel == "" || payload.Recipient == "" {
			logger.Error("missing reminder fields", "appointment_id", payload.AppointmentID)
			return nil
		}

		clientName, _ := payload.TemplateData["client_name"].(string)
		serviceName, _ := payload.TemplateData["service_name"].(string)
		startTime, _ := payload.TemplateData["start_time"].(string)
		body := reminderText(clientName, serviceName, startTime)

		if err := disp.process(ctx, delivery{
			AppointmentID: payload.AppointmentID,
			BarbershopID:  payload.BarbershopID,
			Channel:       payload.Channel,
			Recipient:     payload.Recipient,
			Subject:       "Appointment reminder",
			Body:          body,
			TemplateData:  payload.TemplateData,
		}); err != nil {
			return err
		}
		logger.Info("reminder processed", "appointment_id", payload.AppointmentID, "channel", payload.Channel)
		return nil
	})
	go reminderConsumer.Run(ctx)

	bookedConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   "booking.appointment.booked.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload bookedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid booked payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.BarbershopID == "" {
			logger.Error("missing booked fields")
			return nil
		}

		body := confirmationText(payload.ClientName, payload.ServiceName, payload.StartTime)
		data := map[string]any{
			"client_name":  payload.ClientName,
			"service_name": payload.ServiceName,
			"start_time":   payload.StartTime,
		}

		if strings.TrimSpace(payload.ClientPhone) != "" {
			if err := disp.process(ctx, delivery{
				AppointmentID: payload.AppointmentID,
				BarbershopID:  payload.BarbershopID,
				Channel:       "whatsapp",
				Recipient:     payload.ClientPhone,
				Body:          body,
				TemplateData:  data,
			}); err != nil {
				return err
			}
		}
		if strings.TrimSpace(payload.ClientEmail) != "" {
			if err := disp.process(ctx, delivery{
				AppointmentID: payload.AppointmentID,
				BarbershopID:  payload.BarbershopID,
				Channel:       "email",
				Recipient:     payload.ClientEmail,
				Subject:       "Appointment confirmed",
				Body:          body,
				TemplateData:  data,
			}); err != nil {
				return err
			}
		}
		logger.Info("booking confirmation processed", "appointment_id", payload.AppointmentID)
		return nil
	})
	go bookedConsumer.Run(ctx)

	otpConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   "auth.otp.requested.v1",
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload otpPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid otp payload", "err", err)
			return nil
		}
		if payload.Phone == "" || payload.Code == "" {
			logger.Error("missing otp fields")
			return nil
		}

		if err := disp.process(ctx, delivery{
			BarbershopID: payload.BarbershopID,
			Channel:      "whatsapp",
			Recipient:    payload.Phone,
			Body:         fmt.Sprintf("Your login code is %s. It expires in 5 minutes.", payload.Code),
		}); err != nil {
			return err
		}
		logger.Info("otp delivery processed", "barbershop_id", payload.BarbershopID)
		return nil
	})
	go otpConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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

func reminderText(clientName, serviceName, startTime string) string {
	who := strings.TrimSpace(clientName)
	if who == "" {
		who = "there"
	}
	what := strings.TrimSpace(serviceName)
	if what == "" {
		what = "your appointment"
	}
	if startTime != "" {
		return fmt.Sprintf("Hi %s, reminder: %s at %s.", who, what, startTime)
	}
	return fmt.Sprintf("Hi %s, reminder: %s is coming up.", who, what)
}

func confirmationText(clientName, serviceName, startTime string) string {
	who := strings.TrimSpace(clientName)
	if who == "" {
		who = "there"
	}
	what := strings.TrimSpace(serviceName)
	if what == "" {
		what = "your appointment"
	}
	if startTime != "" {
		return fmt.Sprintf("Hi %s, %s is booked for %s.", who, what, startTime)
	}
	return fmt.Sprintf("Hi %s, %s is booked.", who, what)
}
