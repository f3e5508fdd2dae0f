package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) DailyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	barbershopID, from, to, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.repo.DailyBookings(r.Context(), barbershopID, from, to)
	if err != nil {
		h.logger.Error("failed to load booking report", "err", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []DailyBookings{}
	}
	writeJSON(w, map[string]any{
		"barbershop_id": barbershopID,
		"from":          from.Format(dateLayout),
		"to":            to.Format(dateLayout),
		"days":          rows,
	})
}

func (h *Handler) DailyNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	barbershopID, from, to, ok := h.reportQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.repo.DailyNotifications(r.Context(), barbershopID, from, to)
	if err != nil {
		h.logger.Error("failed to load notification report", "err", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []DailyNotifications{}
	}
	writeJSON(w, map[string]any{
		"barbershop_id": barbershopID,
		"from":          from.Format(dateLayout),
		"to":            to.Format(dateLayout),
		"days":          rows,
	})
}

// reportQuery resolves the shop from the gateway-injected header and the date
// range from from/to query params, defaulting to the last 30 days.
func (h *Handler) reportQuery(w http.ResponseWriter, r *http.Request) (string, time.Time, time.Time, bool) {
	barbershopID := strings.TrimSpace(r.Header.Get("X-Barbershop-Id"))
	if barbershopID == "" {
		barbershopID = strings.TrimSpace(r.URL.Query().Get("barbershop_id"))
	}
	if barbershopID == "" {
		http.Error(w, "barbershop_id is required", http.StatusBadRequest)
		return "", time.Time{}, time.Time{}, false
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return "", time.Time{}, time.Time{}, false
		}
		from = t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return "", time.Time{}, time.Time{}, false
		}
		to = t
	}
	if to.Before(from) {
		http.Error(w, "to must not precede from", http.StatusBadRequest)
		return "", time.Time{}, time.Time{}, false
	}
	return barbershopID, from, to, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
