package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeScheduler struct {
	reschedules int
	maybe       []string
}

func (f *fakeScheduler) Reschedule(context.Context) error {
	f.reschedules++
	return nil
}

func (f *fakeScheduler) MaybeScheduleEvent(_ context.Context, postType string) error {
	f.maybe = append(f.maybe, postType)
	return nil
}

func TestHandleRescheduleTask(t *testing.T) {
	s := &fakeScheduler{}
	q := NewQueue(s)
	if err := q.HandleRescheduleTask(context.Background(), asynq.NewTask(TaskTypeReschedule, nil)); err != nil {
		t.Fatalf("HandleRescheduleTask: %v", err)
	}
	if s.reschedules != 1 {
		t.Fatalf("reschedules = %d", s.reschedules)
	}
}

func TestHandleMaybeScheduleTask(t *testing.T) {
	for _, tc := range []struct {
		name    string
		payload string
		want    []string
		skip    bool
	}{
		{"valid", `{"post_type":"page"}`, []string{"page"}, false},
		{"malformed", `{`, nil, true},
		{"empty type", `{}`, nil, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeScheduler{}
			err := NewQueue(s).HandleMaybeScheduleTask(context.Background(), asynq.NewTask(TaskTypeMaybeSchedule, []byte(tc.payload)))
			if tc.skip != errors.Is(err, asynq.SkipRetry) {
				t.Fatalf("err = %v, want SkipRetry=%v", err, tc.skip)
			}
			if len(s.maybe) != len(tc.want) || (len(tc.want) > 0 && s.maybe[0] != tc.want[0]) {
				t.Fatalf("maybe = %v, want %v", s.maybe, tc.want)
			}
		})
	}
}
