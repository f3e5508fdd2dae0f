package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	BarbershopID    string
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, barbershopID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, barbershopID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (barbershop_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (barbershop_id, idempotency_key) DO NOTHING
	`, barbershopID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, barbershopID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, barbershopID, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $3,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE barbershop_id = $1 AND idempotency_key = $2
	`, barbershopID, key, appointmentID, statusCode, response)
	return err
}

func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(barbershop_id, service_id, staff_id, unit_id, client_name, client_phone, client_email, start_time, end_time, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, appt.BarbershopID, appt.ServiceID, appt.StaffID, appt.UnitID, appt.ClientName, appt.ClientPhone, appt.ClientEmail,
		appt.StartTime, appt.EndTime, appt.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BookingRepository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, barbershopID, appointmentID string) (model.Appointment, error) {
	var appt model.Appointment
	var cancelledAt *time.Time
	err := tx.QueryRow(ctx, `
		SELECT id, barbershop_id, service_id, staff_id, COALESCE(unit_id::text, ''), client_name, client_phone, client_email,
			start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE id = $1 AND barbershop_id = $2
		FOR UPDATE
	`, appointmentID, barbershopID).Scan(
		&appt.ID,
		&appt.BarbershopID,
		&appt.ServiceID,
		&appt.StaffID,
		&appt.UnitID,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.ClientEmail,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func (r *BookingRepository) CancelAppointment(ctx context.Context, tx pgx.Tx, barbershopID, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $3
		WHERE id = $1 AND barbershop_id = $2
		RETURNING cancelled_at
	`, appointmentID, barbershopID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

// ListBookedIntervals returns booked appointments for one staff member whose
// occupied interval intersects [start, end). Cancelled appointments never
// block a slot.
func (r *BookingRepository) ListBookedIntervals(ctx context.Context, barbershopID, staffID string, start, end time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, barbershop_id, service_id, staff_id, COALESCE(unit_id::text, ''), client_name, client_phone, client_email,
			start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE barbershop_id = $1
			AND staff_id = $2
			AND status = 'booked'
			AND start_time < $4
			AND end_time > $3
		ORDER BY start_time ASC
	`, barbershopID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *BookingRepository) ListByBarbershop(ctx context.Context, barbershopID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, barbershop_id, service_id, staff_id, COALESCE(unit_id::text, ''), client_name, client_phone, client_email,
			start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE barbershop_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, barbershopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		var cancelledAt *time.Time
		if err := rows.Scan(
			&appt.ID,
			&appt.BarbershopID,
			&appt.ServiceID,
			&appt.StaffID,
			&appt.UnitID,
			&appt.ClientName,
			&appt.ClientPhone,
			&appt.ClientEmail,
			&appt.StartTime,
			&appt.EndTime,
			&appt.Status,
			&cancelledAt,
			&appt.CancelReason,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		appt.CancelledAt = cancelledAt
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// IsConflict reports the Postgres exclusion-constraint violation raised when
// two bookings for the same staff member overlap. The constraint, not the
// resolver, owns double-booking races.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, barbershopID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT barbershop_id::text,
			idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE barbershop_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, barbershopID, key).Scan(
		&rec.BarbershopID,
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
