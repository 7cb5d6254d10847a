package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// uniqueFor collapses identical pending events; the worker always reads
// current state so one run covers them all.
const uniqueFor = time.Minute

type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueReschedule(ctx context.Context) error {
	task := asynq.NewTask(TaskTypeReschedule, nil)
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) EnqueueMaybeSchedule(ctx context.Context, postType string) error {
	taskPayload, err := json.Marshal(MaybeSchedulePayload{PostType: postType})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeMaybeSchedule, taskPayload)
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task) error {
	_, err := e.client.EnqueueContext(ctx, task, asynq.Unique(uniqueFor), asynq.MaxRetry(0))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("task enqueued", "type", task.Type(), "payload", string(task.Payload()))
	return nil
}
