package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/trimly-app/trimly/services/booking-service/internal/availability"
	"github.com/trimly-app/trimly/services/booking-service/internal/model"
	"github.com/trimly-app/trimly/services/booking-service/internal/outbox"
	"github.com/trimly-app/trimly/services/booking-service/internal/policy"
	"github.com/trimly-app/trimly/services/booking-service/internal/schedule"
	"github.com/trimly-app/trimly/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	policy     policy.Provider
	schedule   schedule.Provider
	defaults   []time.Duration
}

func NewBookingHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, logger *slog.Logger, policyProvider policy.Provider, scheduleProvider schedule.Provider, defaults []time.Duration) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		policy:     policyProvider,
		schedule:   scheduleProvider,
		defaults:   defaults,
	}
}

type createBookingRequest struct {
	BarbershopID string `json:"barbershop_id"`
	ServiceID    string `json:"service_id"`
	StaffID      string `json:"staff_id"`
	UnitID       string `json:"unit_id"`
	ClientName   string `json:"client_name"`
	ClientPhone  string `json:"client_phone"`
	ClientEmail  string `json:"client_email"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type rejectionResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	Source string `json:"source,omitempty"`
}

type cancelBookingRequest struct {
	BarbershopID  string `json:"barbershop_id"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type listAppointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	StaffID       string `json:"staff_id"`
	ServiceID     string `json:"service_id"`
	ClientName    string `json:"client_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type slotItem struct {
	StartClock string `json:"start"`
	EndClock   string `json:"end"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type slotsResponse struct {
	Date   string     `json:"date"`
	Open   bool       `json:"open"`
	Reason string     `json:"reason,omitempty"`
	Slots  []slotItem `json:"slots"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.BarbershopID = strings.TrimSpace(req.BarbershopID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)

	if req.BarbershopID == "" || req.ServiceID == "" || req.StaffID == "" || req.ClientName == "" || req.ClientPhone == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(availability.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	startMin, err := availability.ParseClock(strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	cfg, err := h.schedule.ScheduleConfig(ctx, req.BarbershopID, req.ServiceID, req.StaffID, strings.TrimSpace(req.UnitID), date, date)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "barbershop or service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("schedule config fetch failed", "err", err)
		http.Error(w, "schedule unavailable", http.StatusServiceUnavailable)
		return
	}
	if !cfg.ServiceActive {
		http.Error(w, "service is not bookable", http.StatusUnprocessableEntity)
		return
	}
	if cfg.ServiceDuration <= 0 {
		http.Error(w, "service has no duration", http.StatusUnprocessableEntity)
		return
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, req.BarbershopID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
				return
			}
			_ = json.NewEncoder(w).Encode(createBookingResponse{AppointmentID: rec.AppointmentID})
			return
		}
	}

	// Layered schedule check first: blocked dates, special days, staff
	// schedule, shop hours. A failure names the layer that rejected.
	result := availability.Validate(cfg.Inputs, date, &startMin)
	if !result.Valid {
		h.rejectBooking(ctx, tx, w, req.BarbershopID, idempotencyKey, result)
		return
	}

	// The start must also sit on the slot grid and leave room for the full
	// service before closing or a break.
	if !slotExists(cfg.Inputs, date, startMin, cfg.ServiceDuration) {
		h.rejectBooking(ctx, tx, w, req.BarbershopID, idempotencyKey, availability.Result{
			Reason: "slot_unavailable",
			Source: availability.SourceNone,
		})
		return
	}

	startTime := startMin.At(date, cfg.Location)
	endTime := (startMin + cfg.ServiceDuration).At(date, cfg.Location)

	// Enforce billing entitlements: cap monthly booked appointments per shop.
	// Shops without a row yet get free-tier limits.
	if err := h.enforceMonthlyAppointmentLimit(ctx, tx, req.BarbershopID, startTime); err != nil {
		if errors.Is(err, errPaymentRequired) {
			if idempotencyKey != "" {
				if h.finalizeIdempotencyError(ctx, tx, req.BarbershopID, idempotencyKey, http.StatusPaymentRequired, err.Error()) {
					_ = tx.Commit(ctx)
					return
				}
			}
			http.Error(w, err.Error(), http.StatusPaymentRequired)
			return
		}
		http.Error(w, "entitlements check failed", http.StatusInternalServerError)
		return
	}

	appt := &model.Appointment{
		BarbershopID: req.BarbershopID,
		ServiceID:    req.ServiceID,
		StaffID:      req.StaffID,
		UnitID:       strings.TrimSpace(req.UnitID),
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		ClientEmail:  strings.TrimSpace(req.ClientEmail),
		StartTime:    startTime,
		EndTime:      endTime,
		Status:       "booked",
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"barbershop_id":  appt.BarbershopID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"service_name":   cfg.ServiceName,
		"client_name":    appt.ClientName,
		"client_phone":   appt.ClientPhone,
		"client_email":   appt.ClientEmail,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}

	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	offsets := h.defaults
	if h.policy != nil {
		if policyOffsets, err := h.policy.ReminderOffsets(ctx, appt.BarbershopID); err == nil && len(policyOffsets) > 0 {
			offsets = policyOffsets
		} else if err != nil {
			h.logger.Warn("policy offsets fetch failed; using defaults", "err", err)
		}
	}
	for _, offset := range offsets {
		remindAt := appt.StartTime.Add(-offset)
		if remindAt.Before(now) {
			continue
		}
		h.enqueueReminder(ctx, tx, id, cfg.ServiceName, appt, remindAt, "whatsapp", appt.ClientPhone)
		h.enqueueReminder(ctx, tx, id, cfg.ServiceName, appt, remindAt, "email", appt.ClientEmail)
	}

	respBody, err := json.Marshal(createBookingResponse{
		AppointmentID: id,
		StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
		EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, appt.BarbershopID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

// slotExists reports whether startMin is one of the bookable slot starts for
// the day, given the service duration.
func slotExists(in availability.Inputs, date time.Time, startMin, duration availability.Minutes) bool {
	for _, s := range availability.Slots(in, date, duration) {
		if s == startMin {
			return true
		}
	}
	return false
}

func (h *BookingHandler) rejectBooking(ctx context.Context, tx pgx.Tx, w http.ResponseWriter, barbershopID, idempotencyKey string, result availability.Result) {
	resp := rejectionResponse{
		Error:  "requested time is not bookable",
		Reason: string(result.Reason),
		Source: string(result.Source),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, barbershopID, idempotencyKey, "", http.StatusUnprocessableEntity, body); err != nil {
			h.logger.Error("failed to finalize idempotency (rejection)", "err", err)
		} else {
			_ = tx.Commit(ctx)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_, _ = w.Write(body)
}

var errPaymentRequired = errors.New("monthly appointment limit reached (upgrade required)")

// defaultFreeMonthlyMax is the free tier's monthly appointment cap, applied to
// shops that have no entitlements row yet. Must match billing's free tier.
const defaultFreeMonthlyMax = 50

func (h *BookingHandler) enforceMonthlyAppointmentLimit(ctx context.Context, tx pgx.Tx, barbershopID string, start time.Time) error {

	ent, ok, err := h.repo.GetShopEntitlements(ctx, tx, barbershopID)
	if err != nil {
		return err
	}
	max := defaultFreeMonthlyMax
	if ok && ent.MaxMonthlyAppointments > 0 {
		max = ent.MaxMonthlyAppointments
	}
	if max <= 0 {
		return nil
	}

	startUTC := start.UTC()
	monthStart := time.Date(startUTC.Year(), startUTC.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	cnt, err := h.repo.CountBookedInRange(ctx, tx, barbershopID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if cnt >= max {
		return errPaymentRequired
	}
	return nil
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarbershopID = strings.TrimSpace(req.BarbershopID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.BarbershopID == "" || req.AppointmentID == "" {
		http.Error(w, "barbershop_id and appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.BarbershopID, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status == "cancelled" && appt.CancelledAt != nil {
		h.writeCancelResponse(w, appt.ID, appt.CancelledAt.UTC())
		return
	}
	if appt.Status != "booked" {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.CancelAppointment(ctx, tx, req.BarbershopID, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"barbershop_id":  appt.BarbershopID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"client_name":    appt.ClientName,
		"client_phone":   appt.ClientPhone,
		"client_email":   appt.ClientEmail,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, appt.ID, cancelledAt.UTC())
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := strings.TrimSpace(r.Header.Get("X-Barbershop-Id"))
	if barbershopID == "" {
		barbershopID = strings.TrimSpace(r.URL.Query().Get("barbershop_id"))
	}
	if barbershopID == "" {
		http.Error(w, "barbershop_id required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.ListByBarbershop(r.Context(), barbershopID, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			StaffID:       appt.StaffID,
			ServiceID:     appt.ServiceID,
			ClientName:    appt.ClientName,
			StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	body, err := json.Marshal(items)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbershopID := strings.TrimSpace(r.URL.Query().Get("barbershop_id"))
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	unitID := strings.TrimSpace(r.URL.Query().Get("unit_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if barbershopID == "" || staffID == "" || serviceID == "" || dateStr == "" {
		http.Error(w, "barbershop_id, staff_id, service_id, and date are required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(availability.DateLayout, dateStr)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	cfg, err := h.schedule.ScheduleConfig(ctx, barbershopID, serviceID, staffID, unitID, date, date)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "barbershop or service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("schedule config fetch failed", "err", err)
		http.Error(w, "schedule unavailable", http.StatusServiceUnavailable)
		return
	}
	if !cfg.ServiceActive || cfg.ServiceDuration <= 0 {
		h.writeSlots(w, slotsResponse{Date: dateStr, Open: false, Slots: []slotItem{}})
		return
	}

	dayResult := availability.Validate(cfg.Inputs, date, nil)
	if !dayResult.Valid {
		h.writeSlots(w, slotsResponse{
			Date:   dateStr,
			Open:   false,
			Reason: string(dayResult.Reason),
			Slots:  []slotItem{},
		})
		return
	}

	slots := availability.Slots(cfg.Inputs, date, cfg.ServiceDuration)
	if len(slots) > 0 {
		dayStart := availability.Minutes(0).At(date, cfg.Location)
		dayEnd := availability.Minutes(24 * 60).At(date, cfg.Location)
		appts, err := h.repo.ListBookedIntervals(ctx, barbershopID, staffID, dayStart, dayEnd)
		if err != nil {
			http.Error(w, "failed to load booked slots", http.StatusInternalServerError)
			return
		}
		slots = availability.FilterBooked(slots, cfg.ServiceDuration, bookedMinutes(appts, dayStart))
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		end := s + cfg.ServiceDuration
		items = append(items, slotItem{
			StartClock: s.Clock(),
			EndClock:   end.Clock(),
			StartTime:  s.At(date, cfg.Location).UTC().Format(time.RFC3339),
			EndTime:    end.At(date, cfg.Location).UTC().Format(time.RFC3339),
		})
	}
	h.writeSlots(w, slotsResponse{Date: dateStr, Open: true, Slots: items})
}

// bookedMinutes projects booked wall-clock intervals onto minutes since the
// shop-local midnight of the requested day.
func bookedMinutes(appts []model.Appointment, dayStart time.Time) []availability.Booking {
	out := make([]availability.Booking, 0, len(appts))
	for _, a := range appts {
		start := availability.Minutes(a.StartTime.Sub(dayStart) / time.Minute)
		dur := availability.Minutes(a.EndTime.Sub(a.StartTime) / time.Minute)
		if dur <= 0 {
			continue
		}
		out = append(out, availability.Booking{Start: start, Duration: dur})
	}
	return out
}

func (h *BookingHandler) writeSlots(w http.ResponseWriter, resp slotsResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *BookingHandler) enqueueReminder(ctx context.Context, tx pgx.Tx, appointmentID, serviceName string, appt *model.Appointment, remindAt time.Time, channel string, recipient string) {
	if strings.TrimSpace(recipient) == "" {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appointmentID,
		"barbershop_id":  appt.BarbershopID,
		"channel":        channel,
		"recipient":      recipient,
		"remind_at":      remindAt.UTC().Format(time.RFC3339),
		"template_data": map[string]any{
			"client_name":  appt.ClientName,
			"service_name": serviceName,
			"start_time":   appt.StartTime.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		h.logger.Error("failed to build reminder payload", "err", err)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     "booking.reminder.requested.v1",
		Payload:       payload,
	}); err != nil {
		h.logger.Error("failed to enqueue reminder", "err", err)
	}
}

func (h *BookingHandler) writeCancelResponse(w http.ResponseWriter, appointmentID string, cancelledAt time.Time) {
	resp := cancelBookingResponse{
		AppointmentID: appointmentID,
		Status:        "cancelled",
		CancelledAt:   cancelledAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *BookingHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, barbershopID, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, barbershopID, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}
