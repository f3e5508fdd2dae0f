package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type ShopEntitlements struct {
	BarbershopID           string
	Tier                   string
	MaxStaff               int
	MaxServices            int
	MaxMonthlyAppointments int
	UpdatedAt              time.Time
}

func (r *BookingRepository) UpsertShopEntitlements(ctx context.Context, tx pgx.Tx, ent ShopEntitlements) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO barbershop_entitlements (barbershop_id, tier, max_staff, max_services, max_monthly_appointments)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (barbershop_id)
		DO UPDATE SET tier = EXCLUDED.tier,
		              max_staff = EXCLUDED.max_staff,
		              max_services = EXCLUDED.max_services,
		              max_monthly_appointments = EXCLUDED.max_monthly_appointments,
		              updated_at = now()
	`, ent.BarbershopID, ent.Tier, ent.MaxStaff, ent.MaxServices, ent.MaxMonthlyAppointments)
	return err
}

func (r *BookingRepository) GetShopEntitlements(ctx context.Context, tx pgx.Tx, barbershopID string) (ShopEntitlements, bool, error) {
	var ent ShopEntitlements
	err := tx.QueryRow(ctx, `
		SELECT barbershop_id::text, tier, max_staff, max_services, max_monthly_appointments, updated_at
		FROM barbershop_entitlements
		WHERE barbershop_id = $1
	`, barbershopID).Scan(&ent.BarbershopID, &ent.Tier, &ent.MaxStaff, &ent.MaxServices, &ent.MaxMonthlyAppointments, &ent.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return ShopEntitlements{}, false, nil
		}
		return ShopEntitlements{}, false, err
	}
	return ent, true, nil
}

func (r *BookingRepository) CountBookedInRange(ctx context.Context, tx pgx.Tx, barbershopID string, startInclusive, endExclusive time.Time) (int, error) {
	var cnt int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE barbershop_id = $1
		  AND status = 'booked'
		  AND start_time >= $2
		  AND start_time < $3
	`, barbershopID, startInclusive, endExclusive).Scan(&cnt)
	return cnt, err
}
