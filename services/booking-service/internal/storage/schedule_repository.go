package storage

import (
	"context"
	"time"

	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/services/booking-service/internal/availability"
)

// ScheduleRepository reads the scheduling configuration the barbershop
// service owns. Booking only ever reads these tables; all writes go
// through the barbershop service.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

type ShopConfig struct {
	Timezone string
}

type ServiceConfig struct {
	ID              string
	Name            string
	DurationMinutes int
	Active          bool
}

func (r *ScheduleRepository) GetShopConfig(ctx context.Context, barbershopID string) (ShopConfig, error) {
	var cfg ShopConfig
	err := r.pool.QueryRow(ctx, `
		SELECT timezone
		FROM barbershops
		WHERE id = $1
	`, barbershopID).Scan(&cfg.Timezone)
	if err != nil {
		return ShopConfig{}, err
	}
	return cfg, nil
}

func (r *ScheduleRepository) GetService(ctx context.Context, barbershopID, serviceID string) (ServiceConfig, error) {
	var svc ServiceConfig
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, duration_minutes, active
		FROM barbershop_services
		WHERE id = $1 AND barbershop_id = $2
	`, serviceID, barbershopID).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Active)
	if err != nil {
		return ServiceConfig{}, err
	}
	return svc, nil
}

// LoadInputs gathers every scheduling layer for one shop and, when staffID is
// non-empty, one staff member, covering the dates in [from, to]. unitID
// selects unit-scoped staff schedule rows: rows with a NULL unit apply
// everywhere, rows matching the unit override them for that location.
func (r *ScheduleRepository) LoadInputs(ctx context.Context, barbershopID, staffID, unitID string, from, to time.Time) (availability.Inputs, error) {
	in := availability.Inputs{
		Blocked: map[string]struct{}{},
		Special: map[string]availability.SpecialDay{},
	}

	shop, err := r.loadWeekly(ctx, `
		SELECT weekday, open, open_min, close_min, break_start_min, break_end_min
		FROM shop_hours
		WHERE barbershop_id = $1
	`, barbershopID)
	if err != nil {
		return availability.Inputs{}, err
	}
	in.Shop = shop

	if staffID != "" {
		// NULLS FIRST makes unit-scoped rows overwrite shop-wide rows in
		// the weekly map. With an empty unitID only NULL-unit rows match.
		staff, err := r.loadWeekly(ctx, `
			SELECT weekday, enabled, start_min, end_min, break_start_min, break_end_min
			FROM staff_schedules
			WHERE staff_id = $1 AND (unit IS NULL OR unit = NULLIF($2, ''))
			ORDER BY unit NULLS FIRST
		`, staffID, unitID)
		if err != nil {
			return availability.Inputs{}, err
		}
		if len(staff) > 0 {
			in.Staff = staff
		}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT day::text, open, open_min, close_min, break_start_min, break_end_min
		FROM special_hours
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
	`, barbershopID, from.Format(availability.DateLayout), to.Format(availability.DateLayout))
	if err != nil {
		return availability.Inputs{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var open bool
		var day availability.DaySchedule
		var breakStart, breakEnd *int
		if err := rows.Scan(&key, &open, &day.Start, &day.End, &breakStart, &breakEnd); err != nil {
			return availability.Inputs{}, err
		}
		day.Enabled = open
		day.Break = spanFrom(breakStart, breakEnd)
		in.Special[key] = availability.SpecialDay{Open: open, Day: day}
	}
	if rows.Err() != nil {
		return availability.Inputs{}, rows.Err()
	}

	blocked, err := r.pool.Query(ctx, `
		SELECT day::text
		FROM blocked_dates
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
	`, barbershopID, from.Format(availability.DateLayout), to.Format(availability.DateLayout))
	if err != nil {
		return availability.Inputs{}, err
	}
	defer blocked.Close()
	for blocked.Next() {
		var key string
		if err := blocked.Scan(&key); err != nil {
			return availability.Inputs{}, err
		}
		in.Blocked[key] = struct{}{}
	}
	if blocked.Err() != nil {
		return availability.Inputs{}, blocked.Err()
	}

	return in, nil
}

func (r *ScheduleRepository) loadWeekly(ctx context.Context, query string, args ...any) (availability.WeeklySchedule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weekly := availability.WeeklySchedule{}
	for rows.Next() {
		var weekday int
		var day availability.DaySchedule
		var breakStart, breakEnd *int
		if err := rows.Scan(&weekday, &day.Enabled, &day.Start, &day.End, &breakStart, &breakEnd); err != nil {
			return nil, err
		}
		day.Break = spanFrom(breakStart, breakEnd)
		weekly[time.Weekday(weekday)] = day
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(weekly) == 0 {
		return nil, nil
	}
	return weekly, nil
}

func spanFrom(start, end *int) *availability.Span {
	if start == nil || end == nil {
		return nil
	}
	return &availability.Span{Start: availability.Minutes(*start), End: availability.Minutes(*end)}
}
