//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/trimly-app/trimly/libs/db"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool) error {
	return nil
}
