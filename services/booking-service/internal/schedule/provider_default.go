//go:build !protogen

package schedule

import (
	"log/slog"

	"github.com/trimly-app/trimly/services/booking-service/internal/storage"
)

func NewShopScheduleProvider(_ *slog.Logger, repo *storage.ScheduleRepository, _ string) (Provider, error) {
	return NewStorageProvider(repo), nil
}
