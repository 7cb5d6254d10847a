package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/cache"
	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/metrics"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/timeframe"
)

// EventPrefix prefixes the per post type timer name.
const EventPrefix = "ptq_event_"

func EventName(postType string) string { return EventPrefix + postType }

// Timers is the recurring timer set the scheduler drives.
type Timers interface {
	Schedule(name string, first time.Time, every time.Duration, fn func()) time.Time
	Clear(name string) bool
	ClearAll()
	Has(name string) bool
	Next(name string) (time.Time, bool)
}

// EventDispatcher defers work to the background worker.
type EventDispatcher interface {
	EnqueueReschedule(ctx context.Context) error
	EnqueueMaybeSchedule(ctx context.Context, postType string) error
}

type QueueService interface {
	Status() string
	UnqueuedStatus() string
	PostTypes() []string
	CanTypeBeQueued(postType string) bool
	IsQueued(post *models.Post) bool

	Settings(ctx context.Context) (models.QueueSettings, error)
	Location(ctx context.Context) *time.Location
	Frame(ctx context.Context) (*timeframe.Frame, error)

	GetOneQueued(ctx context.Context, postType string, desc bool) (*models.QueuedPost, error)
	ListQueued(ctx context.Context, postType string) ([]*models.QueuedPost, error)
	LastPublishedTime(ctx context.Context, postType string) (time.Time, error)
	IsInTimeFrame(ctx context.Context, postType string) (bool, error)

	QueuedExistence(ctx context.Context) (map[string]bool, error)
	AreQueuedForType(ctx context.Context, postType string) (bool, error)
	DeleteQueuedExistence(ctx context.Context) error

	SchedulePostType(ctx context.Context, postType string) error
	MaybeScheduleEvent(ctx context.Context, postType string) error
	Reschedule(ctx context.Context) error
	ScheduleReschedule(ctx context.Context) error
	ScheduleMaybeSchedule(ctx context.Context, postType string) error
	NextScheduled(postType string) (time.Time, bool)

	Event(ctx context.Context, postType string) error
	MaybePublish(ctx context.Context, postType string) error

	AddQueueOrder(ctx context.Context, post *models.Post) error
	AddOrder(ctx context.Context, postID int64, order int) error
	DeleteOrder(ctx context.Context, postID int64) error
	GetOrder(ctx context.Context, postID int64) (int, bool, error)
	OnSave(ctx context.Context, post *models.Post) error
	OnTrash(ctx context.Context, postID int64) error

	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
}

// QueueDeps groups what the queue service is built from. Hooks, Metrics and
// Now may be left nil.
type QueueDeps struct {
	Config     config.Queue
	Posts      repository.PostRepository
	Meta       repository.PostMetaRepository
	Options    repository.OptionRepository
	History    repository.PostingHistoryRepository
	Existence  cache.ExistenceStore
	Timers     Timers
	Dispatcher EventDispatcher
	Hooks      *hooks.Registry
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

type queueService struct {
	cfg        config.Queue
	pr         repository.PostRepository
	mr         repository.PostMetaRepository
	or         repository.OptionRepository
	hr         repository.PostingHistoryRepository
	existence  cache.ExistenceStore
	timers     Timers
	dispatcher EventDispatcher
	hooks      *hooks.Registry
	metrics    *metrics.Metrics
	now        func() time.Time

	// serialises order assignment so two saves do not take the same slot
	orderMu sync.Mutex
}

func NewQueueService(d QueueDeps) QueueService {
	ctx := context.Background()
	d.Hooks.Emit(ctx, hooks.BeforeConstruct, hooks.Payload{})

	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Config.Status == "" {
		d.Config.Status = "queue"
	}
	if d.Config.UnqueuedStatus == "" {
		d.Config.UnqueuedStatus = models.PostStatusDraft
	}
	s := &queueService{
		cfg:        d.Config,
		pr:         d.Posts,
		mr:         d.Meta,
		or:         d.Options,
		hr:         d.History,
		existence:  d.Existence,
		timers:     d.Timers,
		dispatcher: d.Dispatcher,
		hooks:      d.Hooks,
		metrics:    d.Metrics,
		now:        d.Now,
	}

	d.Hooks.Emit(ctx, hooks.AfterConstruct, hooks.Payload{})
	return s
}

func (s *queueService) Status() string { return s.cfg.Status }

func (s *queueService) UnqueuedStatus() string { return s.cfg.UnqueuedStatus }

func (s *queueService) PostTypes() []string {
	return append([]string(nil), s.cfg.PostTypes...)
}

func (s *queueService) CanTypeBeQueued(postType string) bool {
	for _, pt := range s.cfg.PostTypes {
		if pt == postType {
			return true
		}
	}
	return false
}

func (s *queueService) IsQueued(post *models.Post) bool {
	return post != nil && post.Status == s.cfg.Status
}

// Settings reads the stored queue settings. A missing or unreadable option
// yields the zero value, which means "every day, every hour, once a day".
func (s *queueService) Settings(ctx context.Context) (models.QueueSettings, error) {
	var settings models.QueueSettings
	raw, ok, err := s.or.Get(ctx, models.OptionQueueSettings)
	if err != nil {
		return settings, fmt.Errorf("load queue settings: %w", err)
	}
	if !ok || len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		slog.Warn("ignoring malformed queue settings", "error", err)
		return models.QueueSettings{}, nil
	}
	return settings, nil
}

// Location resolves the site's time zone: the stored option, then the
// configured default, then UTC.
func (s *queueService) Location(ctx context.Context) *time.Location {
	name := s.cfg.Timezone
	raw, ok, err := s.or.Get(ctx, models.OptionTimezone)
	if err != nil {
		slog.Warn("failed to read timezone option", "error", err)
	} else if ok && len(raw) > 0 {
		name = string(raw)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, falling back to UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

func (s *queueService) Frame(ctx context.Context) (*timeframe.Frame, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	f := timeframe.New(settings, s.Location(ctx))
	return f.WithInterval(s.hooks.ApplyInterval(f.Interval())), nil
}

func (s *queueService) GetOneQueued(ctx context.Context, postType string, desc bool) (*models.QueuedPost, error) {
	return s.pr.GetOneQueued(ctx, postType, s.cfg.Status, desc)
}

func (s *queueService) ListQueued(ctx context.Context, postType string) ([]*models.QueuedPost, error) {
	return s.pr.ListQueued(ctx, postType, s.cfg.Status)
}

// LastPublishedTime is the zero time when nothing of postType was published.
func (s *queueService) LastPublishedTime(ctx context.Context, postType string) (time.Time, error) {
	post, err := s.pr.GetLastPublished(ctx, postType)
	if err != nil {
		return time.Time{}, err
	}
	if post == nil {
		return time.Time{}, nil
	}
	return post.PostDate, nil
}

func (s *queueService) IsInTimeFrame(ctx context.Context, postType string) (bool, error) {
	frame, err := s.Frame(ctx)
	if err != nil {
		return false, err
	}
	last, err := s.LastPublishedTime(ctx, postType)
	if err != nil {
		return false, err
	}
	now := s.now()
	return s.hooks.ApplyTimeFrame(ctx, postType, now, frame.InTimeFrame(now, last)), nil
}

// QueuedExistence reports for every queueable type whether it has at least
// one queued post. The answer is cached; cache failures fall through to the
// database.
func (s *queueService) QueuedExistence(ctx context.Context) (map[string]bool, error) {
	existence, ok, err := s.existence.Get(ctx)
	if err != nil {
		slog.Warn("queued existence cache unavailable", "error", err)
	}
	if ok {
		return existence, nil
	}

	existence = make(map[string]bool, len(s.cfg.PostTypes))
	for _, pt := range s.cfg.PostTypes {
		q, err := s.GetOneQueued(ctx, pt, false)
		if err != nil {
			return nil, err
		}
		existence[pt] = q != nil
	}

	if err := s.existence.Set(ctx, existence, s.cfg.ExistenceTTL); err != nil {
		slog.Warn("failed to cache queued existence", "error", err)
	}
	return existence, nil
}

func (s *queueService) AreQueuedForType(ctx context.Context, postType string) (bool, error) {
	existence, err := s.QueuedExistence(ctx)
	if err != nil {
		return false, err
	}
	return existence[postType], nil
}

func (s *queueService) DeleteQueuedExistence(ctx context.Context) error {
	return s.existence.Delete(ctx)
}

func (s *queueService) NextScheduled(postType string) (time.Time, bool) {
	return s.timers.Next(EventName(postType))
}

func (s *queueService) ScheduleReschedule(ctx context.Context) error {
	return s.dispatcher.EnqueueReschedule(ctx)
}

func (s *queueService) ScheduleMaybeSchedule(ctx context.Context, postType string) error {
	return s.dispatcher.EnqueueMaybeSchedule(ctx, postType)
}

// Activate asks the worker to create every timer.
func (s *queueService) Activate(ctx context.Context) error {
	return s.ScheduleReschedule(ctx)
}

// Deactivate drops every timer and the cached existence flags.
func (s *queueService) Deactivate(ctx context.Context) error {
	s.timers.ClearAll()
	return s.DeleteQueuedExistence(ctx)
}
