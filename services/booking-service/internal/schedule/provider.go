package schedule

import (
	"context"
	"time"

	"github.com/trimly-app/trimly/services/booking-service/internal/availability"
	"github.com/trimly-app/trimly/services/booking-service/internal/storage"
)

// Config is everything the resolver needs to answer availability questions
// for one shop, one service and optionally one staff member over a date
// range.
type Config struct {
	Location        *time.Location
	ServiceName     string
	ServiceActive   bool
	ServiceDuration availability.Minutes
	Inputs          availability.Inputs
}

// Provider resolves scheduling configuration. unitID is optional: when set,
// unit-scoped staff schedule rows take precedence over the staff member's
// shop-wide rows; when empty only shop-wide rows apply.
type Provider interface {
	ScheduleConfig(ctx context.Context, barbershopID, serviceID, staffID, unitID string, from, to time.Time) (Config, error)
}

type storageProvider struct {
	repo *storage.ScheduleRepository
}

func NewStorageProvider(repo *storage.ScheduleRepository) Provider {
	return &storageProvider{repo: repo}
}

func (p *storageProvider) ScheduleConfig(ctx context.Context, barbershopID, serviceID, staffID, unitID string, from, to time.Time) (Config, error) {
	shop, err := p.repo.GetShopConfig(ctx, barbershopID)
	if err != nil {
		return Config{}, err
	}
	loc, err := time.LoadLocation(shop.Timezone)
	if err != nil {
		return Config{}, err
	}
	svc, err := p.repo.GetService(ctx, barbershopID, serviceID)
	if err != nil {
		return Config{}, err
	}
	inputs, err := p.repo.LoadInputs(ctx, barbershopID, staffID, unitID, from, to)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Location:        loc,
		ServiceName:     svc.Name,
		ServiceActive:   svc.Active,
		ServiceDuration: availability.Minutes(svc.DurationMinutes),
		Inputs:          inputs,
	}, nil
}
