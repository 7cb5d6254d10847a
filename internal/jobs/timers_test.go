package job

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalScheduleNext(t *testing.T) {
	t.Parallel()
	first := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	s := &IntervalSchedule{First: first, Every: time.Hour}

	for _, tc := range []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"before first", first.Add(-time.Minute), first},
		{"at first", first, first.Add(time.Hour)},
		{"mid interval", first.Add(90 * time.Minute), first.Add(2 * time.Hour)},
		{"on boundary", first.Add(3 * time.Hour), first.Add(4 * time.Hour)},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := s.Next(tc.at); !got.Equal(tc.want) {
				t.Fatalf("Next(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}

	never := &IntervalSchedule{First: first}
	if got := never.Next(first.Add(time.Second)); !got.IsZero() {
		t.Fatalf("zero interval after first = %v, want zero time", got)
	}
}

func newTestTimers(now time.Time) *Timers {
	tm := NewTimers(time.UTC)
	tm.now = func() time.Time { return now }
	return tm
}

func TestTimersScheduleReplaceClear(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	tm := newTestTimers(now)

	first := now.Add(2 * time.Hour)
	if got := tm.Schedule("ptq_event_post", first, time.Hour, func() {}); !got.Equal(first) {
		t.Fatalf("Schedule returned %v, want %v", got, first)
	}
	if next, ok := tm.Next("ptq_event_post"); !ok || !next.Equal(first) {
		t.Fatalf("Next = %v, %v", next, ok)
	}

	later := now.Add(5 * time.Hour)
	tm.Schedule("ptq_event_post", later, time.Hour, func() {})
	if next, _ := tm.Next("ptq_event_post"); !next.Equal(later) {
		t.Fatalf("Next after replace = %v, want %v", next, later)
	}
	if n := len(tm.c.Entries()); n != 1 {
		t.Fatalf("cron entries = %d, want 1", n)
	}

	tm.Schedule("ptq_event_page", later, time.Hour, func() {})
	if names := tm.Names(); len(names) != 2 || names[0] != "ptq_event_page" {
		t.Fatalf("Names = %v", names)
	}

	if !tm.Clear("ptq_event_post") {
		t.Fatal("Clear should report an existing timer")
	}
	if tm.Clear("ptq_event_post") {
		t.Fatal("second Clear should report nothing removed")
	}
	if tm.Has("ptq_event_post") {
		t.Fatal("timer still present after Clear")
	}

	tm.ClearAll()
	if len(tm.Names()) != 0 || len(tm.c.Entries()) != 0 {
		t.Fatal("ClearAll left timers behind")
	}
}

func TestTimersPastFirstFiresNextTick(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)
	tm := newTestTimers(now)

	got := tm.Schedule("ptq_event_post", now.Add(-48*time.Hour), time.Hour, func() {})
	if want := now.Add(time.Second); !got.Equal(want) {
		t.Fatalf("first = %v, want %v", got, want)
	}
}

func TestTimersSkipWhileRunning(t *testing.T) {
	t.Parallel()
	tm := NewTimers(time.UTC)

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	tm.Schedule("ptq_event_post", time.Now().Add(time.Hour), time.Hour, func() {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
	})

	guard := tm.guards["ptq_event_post"]
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		guard.Run()
	}()
	<-started

	// Rescheduling keeps the same guard, so an overlapping run is skipped.
	tm.Schedule("ptq_event_post", time.Now().Add(time.Hour), time.Hour, func() {
		atomic.AddInt32(&calls, 1)
	})
	tm.guards["ptq_event_post"].Run()

	close(release)
	wg.Wait()
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}
