//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/trimly-app/trimly/libs/db"
	"github.com/trimly-app/trimly/services/barbershop-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool, _ *storage.Repository) error {
	return nil
}
