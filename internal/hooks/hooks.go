// Package hooks is the extension surface of the queue: ordered listeners
// notified before and after each operation, and filter chains that may
// override the in-time-frame decision and the publishing interval.
//
// Listeners run synchronously on the caller's goroutine, in registration
// order. They must not block for long; a timer firing waits for them.
package hooks

import (
	"context"
	"sync"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

type Event string

const (
	BeforeConstruct      Event = "before_construct"
	AfterConstruct       Event = "after_construct"
	BeforeEvent          Event = "before_event"
	AfterEvent           Event = "after_event"
	BeforePublish        Event = "before_publish"
	AfterPublish         Event = "after_publish"
	BeforeSchedule       Event = "before_schedule_post_type"
	AfterSchedule        Event = "after_schedule_post_type"
	BeforeMaybeSchedule  Event = "before_maybe_schedule_event"
	AfterMaybeSchedule   Event = "after_maybe_schedule_event"
	BeforeReschedule     Event = "before_reschedule"
	AfterReschedule      Event = "after_reschedule"
	BeforeAddQueueOrder  Event = "before_add_queue_order"
	AfterAddQueueOrder   Event = "after_add_queue_order"
	BeforeReorder        Event = "before_reorder"
	AfterReorder         Event = "after_reorder"
	BeforeToggle         Event = "before_toggle"
	AfterToggle          Event = "after_toggle"
	BeforeUpdateSettings Event = "before_update_settings"
	AfterUpdateSettings  Event = "after_update_settings"
)

// Payload carries whatever the event concerns; unused fields are zero.
type Payload struct {
	PostType string
	Post     *models.Post
	PostIDs  []int64
	Settings *models.QueueSettings
}

type Listener func(ctx context.Context, e Event, p Payload)

// TimeFrameFilter may override whether now is inside the publishing frame
// for postType. It receives the decision made so far.
type TimeFrameFilter func(ctx context.Context, postType string, now time.Time, inFrame bool) bool

// IntervalFilter may replace the publishing interval. Non-positive results
// are ignored.
type IntervalFilter func(interval time.Duration) time.Duration

type Registry struct {
	mu         sync.RWMutex
	listeners  map[Event][]Listener
	any        []Listener
	timeFrames []TimeFrameFilter
	intervals  []IntervalFilter
}

func New() *Registry {
	return &Registry{listeners: map[Event][]Listener{}}
}

// On registers l for e.
func (r *Registry) On(e Event, l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[e] = append(r.listeners[e], l)
}

// OnAny registers l for every event.
func (r *Registry) OnAny(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.any = append(r.any, l)
}

func (r *Registry) FilterTimeFrame(f TimeFrameFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeFrames = append(r.timeFrames, f)
}

func (r *Registry) FilterInterval(f IntervalFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intervals = append(r.intervals, f)
}

// Emit notifies the listeners of e. A nil Registry is a no-op.
func (r *Registry) Emit(ctx context.Context, e Event, p Payload) {
	if r == nil {
		return
	}
	r.mu.RLock()
	ls := make([]Listener, 0, len(r.listeners[e])+len(r.any))
	ls = append(ls, r.listeners[e]...)
	ls = append(ls, r.any...)
	r.mu.RUnlock()

	for _, l := range ls {
		l(ctx, e, p)
	}
}

// ApplyTimeFrame runs the time frame filters in order.
func (r *Registry) ApplyTimeFrame(ctx context.Context, postType string, now time.Time, inFrame bool) bool {
	if r == nil {
		return inFrame
	}
	r.mu.RLock()
	fs := append([]TimeFrameFilter(nil), r.timeFrames...)
	r.mu.RUnlock()

	for _, f := range fs {
		inFrame = f(ctx, postType, now, inFrame)
	}
	return inFrame
}

// ApplyInterval runs the interval filters in order.
func (r *Registry) ApplyInterval(interval time.Duration) time.Duration {
	if r == nil {
		return interval
	}
	r.mu.RLock()
	fs := append([]IntervalFilter(nil), r.intervals...)
	r.mu.RUnlock()

	for _, f := range fs {
		if d := f(interval); d > 0 {
			interval = d
		}
	}
	return interval
}
