package reports

import (
	"context"
	"time"

	"github.com/trimly-app/trimly/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type DailyBookings struct {
	Day       string `json:"day"`
	Booked    int    `json:"booked"`
	Cancelled int    `json:"cancelled"`
}

func (r *Repository) DailyBookings(ctx context.Context, barbershopID string, from, to time.Time) ([]DailyBookings, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day::text, booked_count, canceled_count
		FROM daily_appointment_metrics
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
		ORDER BY day
	`, barbershopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyBookings
	for rows.Next() {
		var d DailyBookings
		if err := rows.Scan(&d.Day, &d.Booked, &d.Cancelled); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type DailyNotifications struct {
	Day     string `json:"day"`
	Channel string `json:"channel"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

func (r *Repository) DailyNotifications(ctx context.Context, barbershopID string, from, to time.Time) ([]DailyNotifications, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day::text, channel, sent_count, failed_count
		FROM daily_notification_metrics
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
		ORDER BY day, channel
	`, barbershopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyNotifications
	for rows.Next() {
		var d DailyNotifications
		if err := rows.Scan(&d.Day, &d.Channel, &d.Sent, &d.Failed); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
