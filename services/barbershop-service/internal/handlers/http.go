package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/trimly-app/trimly/services/barbershop-service/internal/storage"
)

type Handler struct {
	repo *storage.Repository
}

func New(repo *storage.Repository) *Handler {
	return &Handler{repo: repo}
}

func barbershopIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Barbershop-Id"))
}

const dateLayout = "2006-01-02"

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetOrCreateProfile(r.Context(), barbershopID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"barbershop_id":            p.BarbershopID,
		"name":                     p.Name,
		"slug":                     p.Slug,
		"timezone":                 p.Timezone,
		"whatsapp_number":          p.WhatsappNumber,
		"address":                  p.Address,
		"reminder_offsets_minutes": p.OffsetsMins,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name                   string `json:"name"`
		Slug                   string `json:"slug"`
		Timezone               string `json:"timezone"`
		WhatsappNumber         string `json:"whatsapp_number"`
		Address                string `json:"address"`
		ReminderOffsetsMinutes []int  `json:"reminder_offsets_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}
	if req.Slug != "" && !validSlug(req.Slug) {
		http.Error(w, "slug may contain lowercase letters, digits and hyphens only", http.StatusBadRequest)
		return
	}

	var offsets []int
	for _, v := range req.ReminderOffsetsMinutes {
		if v <= 0 || v > 365*24*60 {
			http.Error(w, "invalid reminder_offsets_minutes", http.StatusBadRequest)
			return
		}
		offsets = append(offsets, v)
	}
	if len(offsets) == 0 {
		offsets = []int{1440, 60}
	}

	err := h.repo.UpdateProfile(r.Context(), storage.ShopProfile{
		BarbershopID:   barbershopID,
		Name:           req.Name,
		Slug:           req.Slug,
		Timezone:       req.Timezone,
		WhatsappNumber: strings.TrimSpace(req.WhatsappNumber),
		Address:        strings.TrimSpace(req.Address),
		OffsetsMins:    offsets,
	})
	if err != nil {
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validSlug(s string) bool {
	if len(s) < 3 || len(s) > 63 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return true
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name         string  `json:"name"`
		DurationMins int     `json:"duration_minutes"`
		Price        float64 `json:"price"`
		Description  string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.DurationMins <= 0 || req.DurationMins > 8*60 {
		http.Error(w, "name and duration_minutes required", http.StatusBadRequest)
		return
	}

	caps, err := h.repo.GetTierCaps(r.Context(), barbershopID)
	if err != nil {
		http.Error(w, "entitlements check failed", http.StatusInternalServerError)
		return
	}
	if caps.MaxServices > 0 {
		cnt, err := h.repo.CountServices(r.Context(), barbershopID)
		if err != nil {
			http.Error(w, "entitlements check failed", http.StatusInternalServerError)
			return
		}
		if cnt >= caps.MaxServices {
			http.Error(w, "service limit reached for tier "+caps.Tier+" (upgrade required)", http.StatusPaymentRequired)
			return
		}
	}

	id, err := h.repo.CreateService(r.Context(), barbershopID, req.Name, req.DurationMins, strconv.FormatFloat(req.Price, 'f', 2, 64), req.Description)
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id": id,
	})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	services, err := h.repo.ListServices(r.Context(), barbershopID, 100)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(services)
}

func (h *Handler) SetServiceActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("id"))
	if serviceID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetServiceActive(r.Context(), barbershopID, serviceID, req.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name   string `json:"name"`
		Unit   string `json:"unit"`
		Active *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	caps, err := h.repo.GetTierCaps(r.Context(), barbershopID)
	if err != nil {
		http.Error(w, "entitlements check failed", http.StatusInternalServerError)
		return
	}
	if caps.MaxStaff > 0 {
		cnt, err := h.repo.CountStaff(r.Context(), barbershopID)
		if err != nil {
			http.Error(w, "entitlements check failed", http.StatusInternalServerError)
			return
		}
		if cnt >= caps.MaxStaff {
			http.Error(w, "staff limit reached for tier "+caps.Tier+" (upgrade required)", http.StatusPaymentRequired)
			return
		}
	}

	id, err := h.repo.CreateStaff(r.Context(), barbershopID, req.Name, strings.TrimSpace(req.Unit), active)
	if err != nil {
		http.Error(w, "failed to create staff", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id": id,
	})
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	staff, err := h.repo.ListStaff(r.Context(), barbershopID, 100)
	if err != nil {
		http.Error(w, "failed to list staff", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(staff)
}

type dayHoursRequest struct {
	Weekday       int  `json:"weekday"`
	Enabled       bool `json:"enabled"`
	StartMin      int  `json:"start_min"`
	EndMin        int  `json:"end_min"`
	BreakStartMin *int `json:"break_start_min"`
	BreakEndMin   *int `json:"break_end_min"`
}

func (req dayHoursRequest) toDayHours() (storage.DayHours, string) {
	if req.Weekday < 0 || req.Weekday > 6 {
		return storage.DayHours{}, "weekday must be between 0 and 6"
	}
	d := storage.DayHours{Weekday: req.Weekday, Enabled: req.Enabled}
	if !req.Enabled {
		return d, ""
	}
	if req.StartMin < 0 || req.StartMin >= 1440 || req.EndMin <= 0 || req.EndMin > 1440 || req.StartMin >= req.EndMin {
		return storage.DayHours{}, "invalid start_min/end_min"
	}
	d.StartMin = req.StartMin
	d.EndMin = req.EndMin
	if (req.BreakStartMin == nil) != (req.BreakEndMin == nil) {
		return storage.DayHours{}, "break_start_min and break_end_min must be set together"
	}
	if req.BreakStartMin != nil {
		bs, be := *req.BreakStartMin, *req.BreakEndMin
		if bs < req.StartMin || be <= bs || be > req.EndMin {
			return storage.DayHours{}, "break must sit inside working hours"
		}
		d.BreakStartMin = req.BreakStartMin
		d.BreakEndMin = req.BreakEndMin
	}
	return d, ""
}

func (h *Handler) ShopHours(w http.ResponseWriter, r *http.Request) {
	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		hours, err := h.repo.ListShopHours(r.Context(), barbershopID)
		if err != nil {
			http.Error(w, "failed to list shop hours", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(hours)
	case http.MethodPut:
		var req dayHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		d, msg := req.toDayHours()
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if err := h.repo.UpsertShopHours(r.Context(), barbershopID, d); err != nil {
			http.Error(w, "failed to upsert shop hours", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) StaffSchedule(w http.ResponseWriter, r *http.Request) {
	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	if staffID == "" {
		http.Error(w, "staff_id is required", http.StatusBadRequest)
		return
	}
	// Optional: scope the schedule to one unit for multi-location staff.
	unit := strings.TrimSpace(r.URL.Query().Get("unit"))

	switch r.Method {
	case http.MethodGet:
		sched, err := h.repo.ListStaffSchedule(r.Context(), barbershopID, staffID, unit)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "staff not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to list staff schedule", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sched)
	case http.MethodPut:
		var req dayHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		d, msg := req.toDayHours()
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if err := h.repo.UpsertStaffSchedule(r.Context(), barbershopID, staffID, unit, d); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "staff not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to upsert staff schedule", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) SpecialHours(w http.ResponseWriter, r *http.Request) {
	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		from, to, ok := dateRange(w, r)
		if !ok {
			return
		}
		items, err := h.repo.ListSpecialHours(r.Context(), barbershopID, from, to)
		if err != nil {
			http.Error(w, "failed to list special hours", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(items)
	case http.MethodPut:
		var req struct {
			Day string `json:"day"`
			dayHoursRequest
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse(dateLayout, strings.TrimSpace(req.Day)); err != nil {
			http.Error(w, "invalid day (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		req.Weekday = 0 // unused for exact dates
		d, msg := req.toDayHours()
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		err := h.repo.UpsertSpecialHours(r.Context(), barbershopID, storage.SpecialHours{
			Day:           strings.TrimSpace(req.Day),
			Open:          d.Enabled,
			OpenMin:       d.StartMin,
			CloseMin:      d.EndMin,
			BreakStartMin: d.BreakStartMin,
			BreakEndMin:   d.BreakEndMin,
		})
		if err != nil {
			http.Error(w, "failed to upsert special hours", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		day := strings.TrimSpace(r.URL.Query().Get("day"))
		if _, err := time.Parse(dateLayout, day); err != nil {
			http.Error(w, "invalid day (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteSpecialHours(r.Context(), barbershopID, day); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "special hours not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to delete special hours", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) BlockedDates(w http.ResponseWriter, r *http.Request) {
	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		from, to, ok := dateRange(w, r)
		if !ok {
			return
		}
		items, err := h.repo.ListBlockedDates(r.Context(), barbershopID, from, to)
		if err != nil {
			http.Error(w, "failed to list blocked dates", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(items)
	case http.MethodPost:
		var req struct {
			Day  string `json:"day"`
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		day := strings.TrimSpace(req.Day)
		if _, err := time.Parse(dateLayout, day); err != nil {
			http.Error(w, "invalid day (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		if err := h.repo.CreateBlockedDate(r.Context(), barbershopID, day, strings.TrimSpace(req.Note)); err != nil {
			http.Error(w, "failed to block date", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		day := strings.TrimSpace(r.URL.Query().Get("day"))
		if _, err := time.Parse(dateLayout, day); err != nil {
			http.Error(w, "invalid day (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteBlockedDate(r.Context(), barbershopID, day); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "blocked date not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to unblock date", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func dateRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		http.Error(w, "from and to are required (YYYY-MM-DD)", http.StatusBadRequest)
		return "", "", false
	}
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return "", "", false
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return "", "", false
	}
	if toDay.Before(fromDay) {
		http.Error(w, "to must not be before from", http.StatusBadRequest)
		return "", "", false
	}
	return from, to, true
}

func (h *Handler) LandingPage(w http.ResponseWriter, r *http.Request) {
	barbershopID := barbershopIDFromHeader(r)
	if barbershopID == "" {
		http.Error(w, "missing X-Barbershop-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.repo.GetLandingPage(r.Context(), barbershopID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "landing page not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to load landing page", http.StatusInternalServerError)
			return
		}
		writeLandingPage(w, p)
	case http.MethodPut:
		var req struct {
			Slug      string          `json:"slug"`
			Published bool            `json:"published"`
			Sections  json.RawMessage `json:"sections"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
		if !validSlug(req.Slug) {
			http.Error(w, "slug may contain lowercase letters, digits and hyphens only", http.StatusBadRequest)
			return
		}
		if len(req.Sections) == 0 {
			req.Sections = json.RawMessage("{}")
		}
		if err := h.repo.UpsertLandingPage(r.Context(), barbershopID, req.Slug, req.Published, req.Sections); err != nil {
			http.Error(w, "failed to save landing page", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PublicLandingPage is the unauthenticated lookup used by the booking site.
func (h *Handler) PublicLandingPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("slug")))
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetPublishedLandingPage(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "landing page not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load landing page", http.StatusInternalServerError)
		return
	}
	writeLandingPage(w, p)
}

func writeLandingPage(w http.ResponseWriter, p storage.LandingPage) {
	sections := json.RawMessage(p.Sections)
	if len(sections) == 0 {
		sections = json.RawMessage("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"barbershop_id": p.BarbershopID,
		"slug":          p.Slug,
		"published":     p.Published,
		"sections":      sections,
		"updated_at":    p.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
