package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trimly-app/trimly/services/booking-service/internal/availability"
	"github.com/trimly-app/trimly/services/booking-service/internal/model"
	"github.com/trimly-app/trimly/services/booking-service/internal/schedule"
)

func TestSlotExists(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	in := availability.Inputs{
		Blocked: map[string]struct{}{},
		Special: map[string]availability.SpecialDay{},
		Shop: availability.WeeklySchedule{
			date.Weekday(): {Enabled: true, Start: 9 * 60, End: 12 * 60},
		},
	}

	if !slotExists(in, date, 9*60, 30) {
		t.Fatalf("expected 09:00 to be a bookable slot start")
	}
	if slotExists(in, date, 9*60+10, 30) {
		t.Fatalf("09:10 is off the slot grid and must not be bookable")
	}
	if slotExists(in, date, 11*60+45, 30) {
		t.Fatalf("11:45 does not fit a 30 minute service before close")
	}
}

func TestBookedMinutes(t *testing.T) {
	loc := time.UTC
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

	appts := []model.Appointment{
		{
			StartTime: time.Date(2026, 3, 2, 10, 0, 0, 0, loc),
			EndTime:   time.Date(2026, 3, 2, 10, 45, 0, 0, loc),
		},
		{
			// Zero-length intervals never block slots.
			StartTime: time.Date(2026, 3, 2, 11, 0, 0, 0, loc),
			EndTime:   time.Date(2026, 3, 2, 11, 0, 0, 0, loc),
		},
	}

	got := bookedMinutes(appts, dayStart)
	if len(got) != 1 {
		t.Fatalf("expected 1 booked interval, got %d", len(got))
	}
	if got[0].Start != 10*60 || got[0].Duration != 45 {
		t.Fatalf("unexpected interval: start=%d duration=%d", got[0].Start, got[0].Duration)
	}
}

func TestDefaultMonthlyCapMatchesFreeTier(t *testing.T) {
	// Shops that never subscribed must get the free tier's cap, not more.
	if defaultFreeMonthlyMax != 50 {
		t.Fatalf("default monthly cap = %d, want 50", defaultFreeMonthlyMax)
	}
}

type recordingScheduleProvider struct {
	gotUnit string
}

func (p *recordingScheduleProvider) ScheduleConfig(_ context.Context, _, _, _, unitID string, _, _ time.Time) (schedule.Config, error) {
	p.gotUnit = unitID
	return schedule.Config{}, errors.New("unavailable")
}

func TestSlotsPassesUnitToScheduleProvider(t *testing.T) {
	provider := &recordingScheduleProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewBookingHandler(nil, nil, logger, nil, provider, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/public/slots?barbershop_id=shop-1&staff_id=staff-1&service_id=svc-1&unit_id=downtown&date=2026-03-02", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if provider.gotUnit != "downtown" {
		t.Fatalf("unit passed to provider = %q, want %q", provider.gotUnit, "downtown")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
