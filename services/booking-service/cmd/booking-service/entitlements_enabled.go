//go:build protogen

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/trimly-app/trimly/libs/runtime"
	"github.com/trimly-app/trimly/services/booking-service/internal/entitlements"
)

func setupEntitlementsRoutes(ctx context.Context, mux *http.ServeMux, logger *slog.Logger) {
	addr := runtime.Getenv("BILLING_GRPC_ADDR", "billing-service:9091")
	client, err := entitlements.NewClient(addr)
	if err != nil {
		logger.Error("entitlements client init failed", "err", err)
		return
	}

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	mux.HandleFunc("/debug/entitlements", func(w http.ResponseWriter, r *http.Request) {
		barbershopID := r.URL.Query().Get("barbershop_id")
		if barbershopID == "" {
			http.Error(w, "barbershop_id is required", http.StatusBadRequest)
			return
		}

		reqCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp, err := client.GetEntitlements(reqCtx, barbershopID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}
