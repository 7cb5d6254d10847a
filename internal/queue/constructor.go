package queue

import "context"

// Scheduler is the part of the queue service the worker drives.
type Scheduler interface {
	Reschedule(ctx context.Context) error
	MaybeScheduleEvent(ctx context.Context, postType string) error
}

type Queue struct {
	s Scheduler
}

func NewQueue(s Scheduler) *Queue {
	return &Queue{s: s}
}

const (
	TaskTypeReschedule    = "ptq:reschedule"
	TaskTypeMaybeSchedule = "ptq:maybe_schedule"
)

type MaybeSchedulePayload struct {
	PostType string `json:"post_type"`
}
