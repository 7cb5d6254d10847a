package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (j *Queue) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeReschedule, j.HandleRescheduleTask)
	mux.HandleFunc(TaskTypeMaybeSchedule, j.HandleMaybeScheduleTask)
}

func (j *Queue) HandleRescheduleTask(ctx context.Context, task *asynq.Task) error {
	return j.s.Reschedule(ctx)
}

func (j *Queue) HandleMaybeScheduleTask(ctx context.Context, task *asynq.Task) error {
	var payload MaybeSchedulePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.PostType == "" {
		return fmt.Errorf("missing post type: %w", asynq.SkipRetry)
	}

	return j.s.MaybeScheduleEvent(ctx, payload.PostType)
}
