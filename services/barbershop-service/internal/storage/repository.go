package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trimly-app/trimly/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type ShopProfile struct {
	BarbershopID   string
	Name           string
	Slug           string
	Timezone       string
	WhatsappNumber string
	Address        string
	OffsetsMins    []int
}

func (r *Repository) GetOrCreateProfile(ctx context.Context, barbershopID string) (ShopProfile, error) {
	// Create a default profile if missing (keeps dev UX smooth while other services mature).
	_, err := r.pool.Exec(ctx, `
		INSERT INTO barbershops (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, barbershopID)
	if err != nil {
		return ShopProfile{}, err
	}

	var p ShopProfile
	err = r.pool.QueryRow(ctx, `
		SELECT id::text, name, slug, timezone, whatsapp_number, address, reminder_offsets_minutes
		FROM barbershops
		WHERE id = $1
	`, barbershopID).Scan(&p.BarbershopID, &p.Name, &p.Slug, &p.Timezone, &p.WhatsappNumber, &p.Address, &p.OffsetsMins)
	return p, err
}

func (r *Repository) UpdateProfile(ctx context.Context, p ShopProfile) error {
	if len(p.OffsetsMins) == 0 {
		p.OffsetsMins = []int{1440, 60}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO barbershops (id, name, slug, timezone, whatsapp_number, address, reminder_offsets_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			timezone = EXCLUDED.timezone,
			whatsapp_number = EXCLUDED.whatsapp_number,
			address = EXCLUDED.address,
			reminder_offsets_minutes = EXCLUDED.reminder_offsets_minutes,
			updated_at = now()
	`, p.BarbershopID, p.Name, p.Slug, p.Timezone, p.WhatsappNumber, p.Address, p.OffsetsMins)
	return err
}

type Service struct {
	ID           string
	BarbershopID string
	Name         string
	DurationMins int
	Price        string
	Description  string
	Active       bool
	CreatedAt    time.Time
}

func (r *Repository) CreateService(ctx context.Context, barbershopID, name string, durationMinutes int, price string, description string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO barbershop_services (id, barbershop_id, name, duration_minutes, price, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
	`, id, barbershopID, name, durationMinutes, price, description)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) SetServiceActive(ctx context.Context, barbershopID, serviceID string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE barbershop_services
		SET active = $3
		WHERE barbershop_id = $1 AND id = $2
	`, barbershopID, serviceID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListServices(ctx context.Context, barbershopID string, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, barbershop_id::text, name, duration_minutes, price::text, description, active, created_at
		FROM barbershop_services
		WHERE barbershop_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, barbershopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.BarbershopID, &s.Name, &s.DurationMins, &s.Price, &s.Description, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) GetService(ctx context.Context, barbershopID, serviceID string) (Service, error) {
	var s Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, barbershop_id::text, name, duration_minutes, price::text, description, active, created_at
		FROM barbershop_services
		WHERE barbershop_id = $1 AND id = $2
	`, barbershopID, serviceID).Scan(&s.ID, &s.BarbershopID, &s.Name, &s.DurationMins, &s.Price, &s.Description, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *Repository) CountServices(ctx context.Context, barbershopID string) (int, error) {
	var cnt int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM barbershop_services WHERE barbershop_id = $1
	`, barbershopID).Scan(&cnt)
	return cnt, err
}

type Staff struct {
	ID           string
	BarbershopID string
	Name         string
	Unit         string
	Active       bool
}

func (r *Repository) CreateStaff(ctx context.Context, barbershopID, name, unit string, active bool) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO staff (barbershop_id, name, unit, active)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id::text
	`, barbershopID, name, unit, active).Scan(&id)
	if err != nil {
		return "", err
	}

	// Default schedule: Mon-Sat 09:00-18:00 with a 13:00-14:00 break, Sunday off.
	for wd := 0; wd <= 6; wd++ {
		enabled := wd >= 1 && wd <= 6
		startMin, endMin := 540, 1080
		var breakStart, breakEnd *int
		if enabled {
			bs, be := 780, 840
			breakStart, breakEnd = &bs, &be
		} else {
			startMin, endMin = 0, 0
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO staff_schedules (staff_id, weekday, enabled, start_min, end_min, break_start_min, break_end_min)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (staff_id, weekday, unit) DO NOTHING
		`, id, wd, enabled, startMin, endMin, breakStart, breakEnd); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListStaff(ctx context.Context, barbershopID string, limit int) ([]Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, barbershop_id::text, name, COALESCE(unit, ''), active
		FROM staff
		WHERE barbershop_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, barbershopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.BarbershopID, &s.Name, &s.Unit, &s.Active); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) CountStaff(ctx context.Context, barbershopID string) (int, error) {
	var cnt int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM staff WHERE barbershop_id = $1
	`, barbershopID).Scan(&cnt)
	return cnt, err
}

func (r *Repository) staffBelongsToShop(ctx context.Context, barbershopID, staffID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM staff WHERE id = $1 AND barbershop_id = $2
		)
	`, staffID, barbershopID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return nil
}

// DayHours is one weekday row of either the shop-wide hours or a staff
// schedule. Break bounds are nil when the day has no break.
type DayHours struct {
	Weekday       int
	Enabled       bool
	StartMin      int
	EndMin        int
	BreakStartMin *int
	BreakEndMin   *int
}

func (r *Repository) ListShopHours(ctx context.Context, barbershopID string) ([]DayHours, error) {
	return r.listDayHours(ctx, `
		SELECT weekday, open, open_min, close_min, break_start_min, break_end_min
		FROM shop_hours
		WHERE barbershop_id = $1
		ORDER BY weekday ASC
	`, barbershopID)
}

func (r *Repository) UpsertShopHours(ctx context.Context, barbershopID string, d DayHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shop_hours (barbershop_id, weekday, open, open_min, close_min, break_start_min, break_end_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (barbershop_id, weekday) DO UPDATE
		SET open = EXCLUDED.open,
			open_min = EXCLUDED.open_min,
			close_min = EXCLUDED.close_min,
			break_start_min = EXCLUDED.break_start_min,
			break_end_min = EXCLUDED.break_end_min
	`, barbershopID, d.Weekday, d.Enabled, d.StartMin, d.EndMin, d.BreakStartMin, d.BreakEndMin)
	return err
}

// ListStaffSchedule returns the effective weekly schedule for one staff
// member at one unit: shop-wide rows (NULL unit) merged with unit-scoped
// rows, the latter winning per weekday. An empty unit returns shop-wide
// rows only.
func (r *Repository) ListStaffSchedule(ctx context.Context, barbershopID, staffID, unit string) ([]DayHours, error) {
	if err := r.staffBelongsToShop(ctx, barbershopID, staffID); err != nil {
		return nil, err
	}
	rows, err := r.listDayHours(ctx, `
		SELECT weekday, enabled, start_min, end_min, break_start_min, break_end_min
		FROM staff_schedules
		WHERE staff_id = $1 AND (unit IS NULL OR unit = NULLIF($2, ''))
		ORDER BY unit NULLS FIRST, weekday ASC
	`, staffID, unit)
	if err != nil {
		return nil, err
	}
	return mergeByWeekday(rows), nil
}

func (r *Repository) UpsertStaffSchedule(ctx context.Context, barbershopID, staffID, unit string, d DayHours) error {
	if err := r.staffBelongsToShop(ctx, barbershopID, staffID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_schedules (staff_id, unit, weekday, enabled, start_min, end_min, break_start_min, break_end_min)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		ON CONFLICT (staff_id, weekday, unit) DO UPDATE
		SET enabled = EXCLUDED.enabled,
			start_min = EXCLUDED.start_min,
			end_min = EXCLUDED.end_min,
			break_start_min = EXCLUDED.break_start_min,
			break_end_min = EXCLUDED.break_end_min
	`, staffID, unit, d.Weekday, d.Enabled, d.StartMin, d.EndMin, d.BreakStartMin, d.BreakEndMin)
	return err
}

// mergeByWeekday collapses an ordered row set to one row per weekday, later
// rows overriding earlier ones.
func mergeByWeekday(rows []DayHours) []DayHours {
	byDay := map[int]DayHours{}
	for _, d := range rows {
		byDay[d.Weekday] = d
	}
	out := make([]DayHours, 0, len(byDay))
	for wd := 0; wd <= 6; wd++ {
		if d, ok := byDay[wd]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *Repository) listDayHours(ctx context.Context, query string, args ...any) ([]DayHours, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayHours
	for rows.Next() {
		var d DayHours
		if err := rows.Scan(&d.Weekday, &d.Enabled, &d.StartMin, &d.EndMin, &d.BreakStartMin, &d.BreakEndMin); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type SpecialHours struct {
	Day           string
	Open          bool
	OpenMin       int
	CloseMin      int
	BreakStartMin *int
	BreakEndMin   *int
}

func (r *Repository) UpsertSpecialHours(ctx context.Context, barbershopID string, s SpecialHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO special_hours (barbershop_id, day, open, open_min, close_min, break_start_min, break_end_min)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7)
		ON CONFLICT (barbershop_id, day) DO UPDATE
		SET open = EXCLUDED.open,
			open_min = EXCLUDED.open_min,
			close_min = EXCLUDED.close_min,
			break_start_min = EXCLUDED.break_start_min,
			break_end_min = EXCLUDED.break_end_min
	`, barbershopID, s.Day, s.Open, s.OpenMin, s.CloseMin, s.BreakStartMin, s.BreakEndMin)
	return err
}

func (r *Repository) ListSpecialHours(ctx context.Context, barbershopID string, from, to string) ([]SpecialHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day::text, open, open_min, close_min, break_start_min, break_end_min
		FROM special_hours
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
		ORDER BY day ASC
	`, barbershopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpecialHours
	for rows.Next() {
		var s SpecialHours
		if err := rows.Scan(&s.Day, &s.Open, &s.OpenMin, &s.CloseMin, &s.BreakStartMin, &s.BreakEndMin); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteSpecialHours(ctx context.Context, barbershopID, day string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM special_hours
		WHERE barbershop_id = $1 AND day = $2::date
	`, barbershopID, day)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type BlockedDate struct {
	Day  string
	Note string
}

func (r *Repository) CreateBlockedDate(ctx context.Context, barbershopID, day, note string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocked_dates (barbershop_id, day, note)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (barbershop_id, day) DO UPDATE SET note = EXCLUDED.note
	`, barbershopID, day, note)
	return err
}

func (r *Repository) ListBlockedDates(ctx context.Context, barbershopID string, from, to string) ([]BlockedDate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day::text, COALESCE(note, '')
		FROM blocked_dates
		WHERE barbershop_id = $1 AND day >= $2::date AND day <= $3::date
		ORDER BY day ASC
	`, barbershopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BlockedDate
	for rows.Next() {
		var b BlockedDate
		if err := rows.Scan(&b.Day, &b.Note); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteBlockedDate(ctx context.Context, barbershopID, day string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM blocked_dates
		WHERE barbershop_id = $1 AND day = $2::date
	`, barbershopID, day)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type LandingPage struct {
	BarbershopID string
	Slug         string
	Published    bool
	Sections     []byte
	UpdatedAt    time.Time
}

func (r *Repository) UpsertLandingPage(ctx context.Context, barbershopID, slug string, published bool, sections []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO landing_pages (barbershop_id, slug, published, sections)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (barbershop_id) DO UPDATE
		SET slug = EXCLUDED.slug,
			published = EXCLUDED.published,
			sections = EXCLUDED.sections,
			updated_at = now()
	`, barbershopID, slug, published, sections)
	return err
}

func (r *Repository) GetLandingPage(ctx context.Context, barbershopID string) (LandingPage, error) {
	var p LandingPage
	err := r.pool.QueryRow(ctx, `
		SELECT barbershop_id::text, slug, published, sections, updated_at
		FROM landing_pages
		WHERE barbershop_id = $1
	`, barbershopID).Scan(&p.BarbershopID, &p.Slug, &p.Published, &p.Sections, &p.UpdatedAt)
	return p, err
}

// GetPublishedLandingPage serves the public page lookup by slug. Unpublished
// pages are invisible to the public route.
func (r *Repository) GetPublishedLandingPage(ctx context.Context, slug string) (LandingPage, error) {
	var p LandingPage
	err := r.pool.QueryRow(ctx, `
		SELECT barbershop_id::text, slug, published, sections, updated_at
		FROM landing_pages
		WHERE slug = $1 AND published
	`, slug).Scan(&p.BarbershopID, &p.Slug, &p.Published, &p.Sections, &p.UpdatedAt)
	return p, err
}

type TierCaps struct {
	Tier        string
	MaxStaff    int
	MaxServices int
}

// GetTierCaps reads the entitlement row billing-service maintains. Shops
// without a row yet get free-tier limits.
func (r *Repository) GetTierCaps(ctx context.Context, barbershopID string) (TierCaps, error) {
	caps := TierCaps{Tier: "free", MaxStaff: 1, MaxServices: 5}
	err := r.pool.QueryRow(ctx, `
		SELECT tier, max_staff, max_services
		FROM barbershop_entitlements
		WHERE barbershop_id = $1
	`, barbershopID).Scan(&caps.Tier, &caps.MaxStaff, &caps.MaxServices)
	if err == pgx.ErrNoRows {
		return caps, nil
	}
	if err != nil {
		return TierCaps{}, err
	}
	return caps, nil
}
