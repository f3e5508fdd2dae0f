//go:build protogen

package grpcserver

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/trimly-app/trimly/libs/config"
	"github.com/trimly-app/trimly/libs/db"
	barbershopv1 "github.com/trimly-app/trimly/protos/gen/barbershop/v1"
	"github.com/trimly-app/trimly/services/barbershop-service/internal/storage"
	"google.golang.org/grpc"
)

type server struct {
	barbershopv1.UnimplementedBarbershopServiceServer
	pool *db.Pool
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository) {
	barbershopv1.RegisterBarbershopServiceServer(grpcServer, &server{pool: pool, repo: repo})
}

func (s *server) GetBarbershopProfile(ctx context.Context, req *barbershopv1.BarbershopProfileRequest) (*barbershopv1.BarbershopProfileResponse, error) {
	offsets := parseOffsets(config.String("REMINDER_OFFSETS_MINUTES", "1440,60"))
	timezone := config.String("TIMEZONE", "UTC")
	name := "Demo Barbershop"

	if s.repo != nil && req.GetBarbershopId() != "" {
		p, err := s.repo.GetOrCreateProfile(ctx, req.GetBarbershopId())
		if err == nil {
			if strings.TrimSpace(p.Timezone) != "" {
				timezone = strings.TrimSpace(p.Timezone)
			}
			if strings.TrimSpace(p.Name) != "" {
				name = strings.TrimSpace(p.Name)
			}
			if len(p.OffsetsMins) > 0 {
				offsets = nil
				for _, v := range p.OffsetsMins {
					if v <= 0 {
						continue
					}
					offsets = append(offsets, int32(v))
				}
				if len(offsets) == 0 {
					offsets = parseOffsets("1440,60")
				}
			}
		}
	}

	return &barbershopv1.BarbershopProfileResponse{
		BarbershopId: req.BarbershopId,
		Name:         name,
		ReminderPolicy: &barbershopv1.ReminderPolicy{
			ReminderOffsetsMinutes: offsets,
			Timezone:               timezone,
		},
	}, nil
}

// GetScheduleConfig hands booking-service every schedule layer for one shop,
// one service and optionally one staff member over a date range, already
// normalized to minute-of-day values.
func (s *server) GetScheduleConfig(ctx context.Context, req *barbershopv1.ScheduleConfigRequest) (*barbershopv1.ScheduleConfigResponse, error) {
	resp := &barbershopv1.ScheduleConfigResponse{
		BarbershopId: req.GetBarbershopId(),
		Timezone:     "UTC",
	}
	if s.repo == nil || req.GetBarbershopId() == "" {
		return resp, nil
	}

	profile, err := s.repo.GetOrCreateProfile(ctx, req.GetBarbershopId())
	if err != nil {
		return nil, err
	}
	if tz := strings.TrimSpace(profile.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			resp.Timezone = tz
		}
	}

	if req.GetServiceId() != "" {
		svc, err := s.repo.GetService(ctx, req.GetBarbershopId(), req.GetServiceId())
		if err != nil {
			return nil, err
		}
		resp.Service = &barbershopv1.ServiceConfig{
			ServiceId:       svc.ID,
			Name:            svc.Name,
			DurationMinutes: int32(svc.DurationMins),
			Active:          svc.Active,
		}
	}

	shopHours, err := s.repo.ListShopHours(ctx, req.GetBarbershopId())
	if err != nil {
		return nil, err
	}
	resp.ShopHours = weekdayHoursProto(shopHours)

	if req.GetStaffId() != "" {
		staffSched, err := s.repo.ListStaffSchedule(ctx, req.GetBarbershopId(), req.GetStaffId(), req.GetUnitId())
		if err != nil {
			return nil, err
		}
		resp.StaffSchedule = weekdayHoursProto(staffSched)
	}

	from, to := req.GetFromDate(), req.GetToDate()
	if from == "" {
		from = time.Now().UTC().Format("2006-01-02")
	}
	if to == "" {
		to = from
	}

	special, err := s.repo.ListSpecialHours(ctx, req.GetBarbershopId(), from, to)
	if err != nil {
		return nil, err
	}
	for _, sp := range special {
		resp.SpecialDays = append(resp.SpecialDays, &barbershopv1.SpecialDayConfig{
			Date: sp.Day,
			Open: sp.Open,
			Hours: &barbershopv1.DayHours{
				StartMin:      int32(sp.OpenMin),
				EndMin:        int32(sp.CloseMin),
				BreakStartMin: int32FromPtr(sp.BreakStartMin),
				BreakEndMin:   int32FromPtr(sp.BreakEndMin),
			},
		})
	}

	blocked, err := s.repo.ListBlockedDates(ctx, req.GetBarbershopId(), from, to)
	if err != nil {
		return nil, err
	}
	for _, b := range blocked {
		resp.BlockedDates = append(resp.BlockedDates, b.Day)
	}

	return resp, nil
}

func weekdayHoursProto(days []storage.DayHours) []*barbershopv1.WeekdayHours {
	out := make([]*barbershopv1.WeekdayHours, 0, len(days))
	for _, d := range days {
		out = append(out, &barbershopv1.WeekdayHours{
			Weekday: int32(d.Weekday),
			Open:    d.Enabled,
			Hours: &barbershopv1.DayHours{
				StartMin:      int32(d.StartMin),
				EndMin:        int32(d.EndMin),
				BreakStartMin: int32FromPtr(d.BreakStartMin),
				BreakEndMin:   int32FromPtr(d.BreakEndMin),
			},
		})
	}
	return out
}

func int32FromPtr(v *int) int32 {
	if v == nil {
		return 0
	}
	return int32(*v)
}

func parseOffsets(raw string) []int32 {
	var out []int32
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			continue
		}
		out = append(out, int32(mins))
	}
	if len(out) == 0 {
		out = []int32{1440}
	}
	return out
}
