package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/trimly-app/trimly/services/auth-service/internal/otp"
	"github.com/trimly-app/trimly/services/auth-service/internal/outbox"
)

// OTPHandler implements the WhatsApp one-time-code login used by shop
// clients. The code itself is delivered out of band: an outbox event carries
// it to notification-service.
type OTPHandler struct {
	auth   *AuthHandler
	store  *otp.Store
	logger *slog.Logger
}

func NewOTPHandler(auth *AuthHandler, store *otp.Store, logger *slog.Logger) *OTPHandler {
	return &OTPHandler{auth: auth, store: store, logger: logger}
}

type otpRequestBody struct {
	BarbershopID string `json:"barbershop_id"`
	Phone        string `json:"phone"`
}

type otpVerifyBody struct {
	BarbershopID string `json:"barbershop_id"`
	Phone        string `json:"phone"`
	Code         string `json:"code"`
}

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "otp login not available", http.StatusServiceUnavailable)
		return
	}

	var req otpRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarbershopID = strings.TrimSpace(req.BarbershopID)
	if req.BarbershopID == "" {
		http.Error(w, "barbershop_id required", http.StatusBadRequest)
		return
	}
	phone, err := otp.NormalizePhone(req.Phone)
	if err != nil {
		http.Error(w, "invalid phone", http.StatusBadRequest)
		return
	}

	code, err := otp.NewCode()
	if err != nil {
		http.Error(w, "failed to generate code", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if err := h.store.Issue(ctx, req.BarbershopID, phone, code); err != nil {
		if errors.Is(err, otp.ErrRateLimited) {
			http.Error(w, "too many requests, try again later", http.StatusTooManyRequests)
			return
		}
		h.logger.Error("otp issue failed", "err", err)
		http.Error(w, "failed to issue code", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"barbershop_id": req.BarbershopID,
		"phone":         phone,
		"code":          code,
		"expires_in":    300,
		"requested_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}

	tx, err := h.auth.pool.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.auth.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "otp",
		AggregateID:   phone,
		EventType:     outbox.EventOTPRequested,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to enqueue delivery", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	// 202 whether or not the phone is known: no account enumeration.
	w.WriteHeader(http.StatusAccepted)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "otp login not available", http.StatusServiceUnavailable)
		return
	}

	var req otpVerifyBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarbershopID = strings.TrimSpace(req.BarbershopID)
	req.Code = strings.TrimSpace(req.Code)
	if req.BarbershopID == "" || len(req.Code) != 6 {
		http.Error(w, "barbershop_id and 6-digit code required", http.StatusBadRequest)
		return
	}
	phone, err := otp.NormalizePhone(req.Phone)
	if err != nil {
		http.Error(w, "invalid phone", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.store.Check(ctx, req.BarbershopID, phone, req.Code); err != nil {
		switch {
		case errors.Is(err, otp.ErrCodeExpired):
			http.Error(w, "code expired, request a new one", http.StatusUnauthorized)
		case errors.Is(err, otp.ErrTooManyTries):
			http.Error(w, "too many attempts, request a new code", http.StatusUnauthorized)
		case errors.Is(err, otp.ErrCodeMismatch):
			http.Error(w, "invalid code", http.StatusUnauthorized)
		default:
			h.logger.Error("otp check failed", "err", err)
			http.Error(w, "failed to verify code", http.StatusInternalServerError)
		}
		return
	}

	tx, err := h.auth.pool.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	user, created, err := h.auth.users.UpsertClientByPhone(ctx, tx, req.BarbershopID, phone)
	if err != nil {
		http.Error(w, "failed to upsert user", http.StatusInternalServerError)
		return
	}
	if created {
		createdPayload, err := json.Marshal(map[string]any{
			"user_id":       user.ID,
			"barbershop_id": user.BarbershopID,
			"phone":         phone,
			"role":          user.Role,
			"created_at":    time.Now().UTC(),
		})
		if err != nil {
			http.Error(w, "failed to marshal user event", http.StatusInternalServerError)
			return
		}
		if err := h.auth.outbox.Insert(ctx, tx, outbox.Event{
			AggregateType: "user",
			AggregateID:   user.ID,
			EventType:     outbox.EventUserCreated,
			Payload:       createdPayload,
		}); err != nil {
			http.Error(w, "failed to enqueue user event", http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	token, err := issueJWT(user, h.auth.signer)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.auth.issueRefreshToken(ctx, user.ID)
	if err != nil {
		http.Error(w, "failed to issue refresh token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(loginResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	})
}
