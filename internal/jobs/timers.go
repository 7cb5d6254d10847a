package job

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Timers keeps at most one recurring timer per name on top of a cron runner.
// A timer fires first at a given instant and then every interval, and the
// same name never runs twice at once, even across reschedules.
type Timers struct {
	mu      sync.Mutex
	c       *cron.Cron
	log     cron.Logger
	now     func() time.Time
	entries map[string]timerEntry
	funcs   map[string]func()
	guards  map[string]cron.Job
}

type timerEntry struct {
	id       cron.EntryID
	schedule *IntervalSchedule
}

func NewTimers(loc *time.Location) *Timers {
	if loc == nil {
		loc = time.UTC
	}
	logger := slogCronLogger{}
	return &Timers{
		c:       cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(logger)), cron.WithLogger(logger)),
		log:     logger,
		now:     time.Now,
		entries: map[string]timerEntry{},
		funcs:   map[string]func(){},
		guards:  map[string]cron.Job{},
	}
}

func (t *Timers) Start() { t.c.Start() }

// Stop halts the runner; the returned context is done once running jobs finish.
func (t *Timers) Stop() context.Context { return t.c.Stop() }

// Schedule replaces the timer called name. A first instant that is not in the
// future fires on the next tick.
func (t *Timers) Schedule(name string, first time.Time, every time.Duration, fn func()) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clearLocked(name)

	now := t.now()
	if !first.After(now) {
		first = now.Add(time.Second)
	}
	sched := &IntervalSchedule{First: first, Every: every}

	t.funcs[name] = fn
	guard, ok := t.guards[name]
	if !ok {
		guard = cron.NewChain(cron.SkipIfStillRunning(t.log)).Then(cron.FuncJob(func() { t.run(name) }))
		t.guards[name] = guard
	}
	id := t.c.Schedule(sched, guard)
	t.entries[name] = timerEntry{id: id, schedule: sched}
	return first
}

func (t *Timers) run(name string) {
	t.mu.Lock()
	fn := t.funcs[name]
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Clear removes the timer called name and reports whether one existed.
func (t *Timers) Clear(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clearLocked(name)
}

func (t *Timers) clearLocked(name string) bool {
	e, ok := t.entries[name]
	if !ok {
		return false
	}
	t.c.Remove(e.id)
	delete(t.entries, name)
	delete(t.funcs, name)
	return true
}

func (t *Timers) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name := range t.entries {
		t.clearLocked(name)
	}
}

func (t *Timers) Has(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[name]
	return ok
}

// Next returns when the timer called name fires next.
func (t *Timers) Next(name string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[name]
	if !ok {
		return time.Time{}, false
	}
	if entry := t.c.Entry(e.id); entry.Valid() && !entry.Next.IsZero() {
		return entry.Next, true
	}
	return e.schedule.Next(t.now()), true
}

func (t *Timers) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IntervalSchedule fires at First and then every Every after it.
type IntervalSchedule struct {
	First time.Time
	Every time.Duration
}

func (s *IntervalSchedule) Next(t time.Time) time.Time {
	if t.Before(s.First) {
		return s.First
	}
	if s.Every <= 0 {
		// cron treats the zero time as "never".
		return time.Time{}
	}
	n := t.Sub(s.First)/s.Every + 1
	return s.First.Add(n * s.Every)
}

type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
