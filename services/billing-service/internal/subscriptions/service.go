package subscriptions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/trimly-app/trimly/services/billing-service/internal/entitlements"
	"github.com/trimly-app/trimly/services/billing-service/internal/outbox"
	"github.com/trimly-app/trimly/services/billing-service/internal/storage"
)

// Service encapsulates subscription state transitions and the side effects (outbox events).
// Keeping this out of HTTP handlers makes it reusable for webhook + reconciliation flows.
type Service struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository) *Service {
	return &Service{repo: repo, outboxRepo: outboxRepo}
}

func (s *Service) ApplyActivated(ctx context.Context, tx pgx.Tx, barbershopID, tier string, activatedAt time.Time, provider string, stripeCustomerID string, stripeSubscriptionID string, periodStart, periodEnd *time.Time) error {
	existing, ok, err := s.repo.GetSubscriptionForUpdate(ctx, tx, barbershopID)
	if err != nil {
		return err
	}

	if err := s.repo.UpsertSubscription(ctx, tx, storage.Subscription{
		BarbershopID:         barbershopID,
		Tier:                 tier,
		Status:               "active",
		Provider:             provider,
		StripeCustomerID:     stripeCustomerID,
		StripeSubscriptionID: stripeSubscriptionID,
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
	}); err != nil {
		return err
	}

	// Only emit when the effective entitlement changes (tier/status). Provider ID updates alone shouldn't fan out.
	if ok && existing.Status == "active" && existing.Tier == tier {
		return nil
	}

	payload, err := entitlementPayload(barbershopID, tier, map[string]any{
		"activated_at": activatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	eventType := "billing.subscription.activated.v1"
	if ok && existing.Status == "active" {
		// Already on a paid plan, this is a tier change rather than a fresh activation.
		eventType = "billing.subscription.changed.v1"
	}
	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "subscription",
		AggregateID:   barbershopID,
		EventType:     eventType,
		Payload:       payload,
	})
}

func (s *Service) ApplyCanceled(ctx context.Context, tx pgx.Tx, barbershopID string, canceledAt time.Time, provider string, stripeCustomerID string, stripeSubscriptionID string, periodStart, periodEnd *time.Time) error {
	existing, ok, err := s.repo.GetSubscriptionForUpdate(ctx, tx, barbershopID)
	if err != nil {
		return err
	}

	if err := s.repo.UpsertSubscription(ctx, tx, storage.Subscription{
		BarbershopID:         barbershopID,
		Tier:                 "free",
		Status:               "canceled",
		Provider:             provider,
		StripeCustomerID:     stripeCustomerID,
		StripeSubscriptionID: stripeSubscriptionID,
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
	}); err != nil {
		return err
	}

	// Only emit when the effective entitlement changes (tier/status).
	if ok && existing.Status == "canceled" && existing.Tier == "free" {
		return nil
	}

	payload, err := entitlementPayload(barbershopID, "free", map[string]any{
		"canceled_at": canceledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "subscription",
		AggregateID:   barbershopID,
		EventType:     "billing.subscription.changed.v1",
		Payload:       payload,
	})
}

func entitlementPayload(barbershopID, tier string, extra map[string]any) ([]byte, error) {
	limits := entitlements.LimitsForTier(tier)
	body := map[string]any{
		"barbershop_id":            barbershopID,
		"tier":                     limits.Tier,
		"max_staff":                limits.MaxStaff,
		"max_services":             limits.MaxServices,
		"max_monthly_appointments": limits.MaxMonthlyAppointments,
	}
	for k, v := range extra {
		body[k] = v
	}
	return json.Marshal(body)
}
