//go:build protogen

package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/trimly-app/trimly/libs/grpcx"
	barbershopv1 "github.com/trimly-app/trimly/protos/gen/barbershop/v1"
	"github.com/trimly-app/trimly/services/booking-service/internal/availability"
	"github.com/trimly-app/trimly/services/booking-service/internal/storage"
)

type grpcProvider struct {
	client barbershopv1.BarbershopServiceClient
}

func NewShopScheduleProvider(logger *slog.Logger, repo *storage.ScheduleRepository, addr string) (Provider, error) {
	if addr == "" {
		return NewStorageProvider(repo), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc schedule provider unavailable, using storage fallback", "err", err)
		return NewStorageProvider(repo), nil
	}

	logger.Info("grpc schedule provider enabled", "addr", addr)
	return &grpcProvider{client: barbershopv1.NewBarbershopServiceClient(conn)}, nil
}

func (p *grpcProvider) ScheduleConfig(ctx context.Context, barbershopID, serviceID, staffID, unitID string, from, to time.Time) (Config, error) {
	resp, err := p.client.GetScheduleConfig(ctx, &barbershopv1.ScheduleConfigRequest{
		BarbershopId: barbershopID,
		ServiceId:    serviceID,
		StaffId:      staffID,
		UnitId:       unitID,
		FromDate:     from.Format(availability.DateLayout),
		ToDate:       to.Format(availability.DateLayout),
	})
	if err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(resp.GetTimezone())
	if err != nil {
		return Config{}, err
	}

	in := availability.Inputs{
		Blocked: map[string]struct{}{},
		Special: map[string]availability.SpecialDay{},
		Shop:    weeklyFromProto(resp.GetShopHours()),
	}
	if staff := weeklyFromProto(resp.GetStaffSchedule()); len(staff) > 0 {
		in.Staff = staff
	}
	for _, day := range resp.GetBlockedDates() {
		in.Blocked[day] = struct{}{}
	}
	for _, sp := range resp.GetSpecialDays() {
		in.Special[sp.GetDate()] = availability.SpecialDay{
			Open: sp.GetOpen(),
			Day:  dayFromProto(sp.GetOpen(), sp.GetHours()),
		}
	}

	svc := resp.GetService()
	return Config{
		Location:        loc,
		ServiceName:     svc.GetName(),
		ServiceActive:   svc.GetActive(),
		ServiceDuration: availability.Minutes(svc.GetDurationMinutes()),
		Inputs:          in,
	}, nil
}

func weeklyFromProto(days []*barbershopv1.WeekdayHours) availability.WeeklySchedule {
	if len(days) == 0 {
		return nil
	}
	weekly := availability.WeeklySchedule{}
	for _, d := range days {
		weekly[time.Weekday(d.GetWeekday())] = dayFromProto(d.GetOpen(), d.GetHours())
	}
	return weekly
}

func dayFromProto(open bool, h *barbershopv1.DayHours) availability.DaySchedule {
	day := availability.DaySchedule{
		Enabled: open,
		Start:   availability.Minutes(h.GetStartMin()),
		End:     availability.Minutes(h.GetEndMin()),
	}
	if h.GetBreakEndMin() > h.GetBreakStartMin() {
		day.Break = &availability.Span{
			Start: availability.Minutes(h.GetBreakStartMin()),
			End:   availability.Minutes(h.GetBreakEndMin()),
		}
	}
	return day
}
