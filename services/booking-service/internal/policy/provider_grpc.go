//go:build protogen

package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/trimly-app/trimly/libs/grpcx"
	barbershopv1 "github.com/trimly-app/trimly/protos/gen/barbershop/v1"
)

type grpcProvider struct {
	client barbershopv1.BarbershopServiceClient
}

func NewShopPolicyProvider(logger *slog.Logger, fallback []time.Duration, addr string) (Provider, error) {
	if addr == "" {
		return NewStaticProvider(fallback), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc policy provider unavailable, using fallback", "err", err)
		return NewStaticProvider(fallback), nil
	}

	logger.Info("grpc policy provider enabled", "addr", addr)
	return &grpcProvider{client: barbershopv1.NewBarbershopServiceClient(conn)}, nil
}

func (p *grpcProvider) ReminderOffsets(ctx context.Context, barbershopID string) ([]time.Duration, error) {
	resp, err := p.client.GetBarbershopProfile(ctx, &barbershopv1.BarbershopProfileRequest{BarbershopId: barbershopID})
	if err != nil {
		return nil, err
	}
	var offsets []time.Duration
	for _, mins := range resp.GetReminderPolicy().GetReminderOffsetsMinutes() {
		if mins <= 0 {
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	return offsets, nil
}
