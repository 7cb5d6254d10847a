package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/timeframe"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

type SettingsService interface {
	GetQueueSettings(ctx context.Context) (models.QueueSettings, error)
	UpdateQueueSettings(ctx context.Context, in *transfer.QueueSettingsUpdate) (models.QueueSettings, error)
	GetTimezone(ctx context.Context) string
	UpdateTimezone(ctx context.Context, name string) error
}

type settingsService struct {
	or    repository.OptionRepository
	q     QueueService
	hooks *hooks.Registry
}

func NewSettingsService(or repository.OptionRepository, q QueueService, h *hooks.Registry) SettingsService {
	return &settingsService{
		or:    or,
		q:     q,
		hooks: h,
	}
}

func (s *settingsService) GetQueueSettings(ctx context.Context) (models.QueueSettings, error) {
	return s.q.Settings(ctx)
}

// UpdateQueueSettings stores the sanitized form and asks for every timer to
// be recreated.
func (s *settingsService) UpdateQueueSettings(ctx context.Context, in *transfer.QueueSettingsUpdate) (models.QueueSettings, error) {
	settings := SanitizeSettings(in)
	s.hooks.Emit(ctx, hooks.BeforeUpdateSettings, hooks.Payload{Settings: &settings})

	raw, err := json.Marshal(settings)
	if err != nil {
		return settings, err
	}
	if err := s.or.Set(ctx, models.OptionQueueSettings, raw); err != nil {
		return settings, fmt.Errorf("save queue settings: %w", err)
	}
	if err := s.q.ScheduleReschedule(ctx); err != nil {
		slog.Error("failed to schedule reschedule", "error", err)
		return settings, err
	}

	s.hooks.Emit(ctx, hooks.AfterUpdateSettings, hooks.Payload{Settings: &settings})
	return settings, nil
}

func (s *settingsService) GetTimezone(ctx context.Context) string {
	return s.q.Location(ctx).String()
}

func (s *settingsService) UpdateTimezone(ctx context.Context, name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("unknown timezone %q", name)
	}
	if err := s.or.Set(ctx, models.OptionTimezone, []byte(name)); err != nil {
		return fmt.Errorf("save timezone: %w", err)
	}
	return s.q.ScheduleReschedule(ctx)
}

// SanitizeSettings keeps the valid subset of a settings form:
// a positive interval, weekdays in 0..6 unless all seven are chosen, and an
// hour range only when restricting hours is switched on and the range is
// usable.
func SanitizeSettings(in *transfer.QueueSettingsUpdate) models.QueueSettings {
	var out models.QueueSettings
	if in == nil {
		return out
	}

	if in.Interval > 0 {
		out.Interval = uint(in.Interval)
	}

	if days := timeframe.DaysFrom(in.Days); len(days) > 0 && len(days) < 7 {
		out.Days = days
	}

	if in.RestrictHours && in.Hours != nil {
		r := &models.HoursRange{Start: in.Hours.Start, End: in.Hours.End}
		if timeframe.HoursFrom(r) != nil {
			out.Hours = r
		}
	}
	return out
}
