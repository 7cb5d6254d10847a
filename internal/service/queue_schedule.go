package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/metrics"
	"github.com/maheshrc27/postqueue/internal/models"
)

// SchedulePostType (re)creates the timer of postType so that it first fires
// at the next valid publishing time, or clears it when nothing is queued.
func (s *queueService) SchedulePostType(ctx context.Context, postType string) error {
	s.hooks.Emit(ctx, hooks.BeforeSchedule, hooks.Payload{PostType: postType})

	queued, err := s.AreQueuedForType(ctx, postType)
	if err != nil {
		return err
	}
	if !queued {
		s.timers.Clear(EventName(postType))
		return nil
	}

	frame, err := s.Frame(ctx)
	if err != nil {
		return err
	}
	last, err := s.LastPublishedTime(ctx, postType)
	if err != nil {
		return err
	}

	next := frame.NextRun(last, s.now())
	first := s.timers.Schedule(EventName(postType), next, frame.Interval(), func() {
		s.fire(postType)
	})
	s.metrics.Scheduled(postType)
	slog.Info("queue timer scheduled", "post_type", postType, "first", first, "every", frame.Interval())

	s.hooks.Emit(ctx, hooks.AfterSchedule, hooks.Payload{PostType: postType})
	return nil
}

// fire is the timer callback.
func (s *queueService) fire(postType string) {
	if err := s.Event(context.Background(), postType); err != nil {
		slog.Error("queue event failed", "post_type", postType, "error", err)
		s.metrics.Run(postType, metrics.OutcomeError)
	}
}

// MaybeScheduleEvent schedules postType only if it has no timer yet.
func (s *queueService) MaybeScheduleEvent(ctx context.Context, postType string) error {
	s.hooks.Emit(ctx, hooks.BeforeMaybeSchedule, hooks.Payload{PostType: postType})

	if s.timers.Has(EventName(postType)) {
		return nil
	}
	if err := s.SchedulePostType(ctx, postType); err != nil {
		return err
	}

	s.hooks.Emit(ctx, hooks.AfterMaybeSchedule, hooks.Payload{PostType: postType})
	return nil
}

// Reschedule recreates the timers of every queueable type.
func (s *queueService) Reschedule(ctx context.Context) error {
	s.hooks.Emit(ctx, hooks.BeforeReschedule, hooks.Payload{})

	var errs []error
	for _, pt := range s.cfg.PostTypes {
		if err := s.SchedulePostType(ctx, pt); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", pt, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.hooks.Emit(ctx, hooks.AfterReschedule, hooks.Payload{})
	return nil
}

// Event runs when the timer of postType fires.
func (s *queueService) Event(ctx context.Context, postType string) error {
	s.hooks.Emit(ctx, hooks.BeforeEvent, hooks.Payload{PostType: postType})

	if !s.CanTypeBeQueued(postType) {
		s.metrics.Run(postType, metrics.OutcomeNotQueueable)
		return nil
	}
	if err := s.MaybePublish(ctx, postType); err != nil {
		return err
	}

	s.hooks.Emit(ctx, hooks.AfterEvent, hooks.Payload{PostType: postType})
	return nil
}

// MaybePublish publishes the first queued post of postType when now is in
// the publishing frame. Outside the frame the timer is moved to the next
// valid time; with an empty queue it is cleared.
func (s *queueService) MaybePublish(ctx context.Context, postType string) error {
	s.hooks.Emit(ctx, hooks.BeforePublish, hooks.Payload{PostType: postType})

	if !s.CanTypeBeQueued(postType) {
		return nil
	}

	inFrame, err := s.IsInTimeFrame(ctx, postType)
	if err != nil {
		return err
	}
	if !inFrame {
		s.metrics.Run(postType, metrics.OutcomeOutOfFrame)
		return s.SchedulePostType(ctx, postType)
	}

	queued, err := s.GetOneQueued(ctx, postType, false)
	if err != nil {
		return err
	}
	if queued == nil {
		s.timers.Clear(EventName(postType))
		s.metrics.Run(postType, metrics.OutcomeEmpty)
		return nil
	}

	post := queued.Post
	now := s.now()
	// The date the post was queued on is dropped; it goes out dated now.
	post.Status = models.PostStatusPublish
	post.PostDate = now
	if err := s.pr.Update(ctx, &post); err != nil {
		return fmt.Errorf("publish post %d: %w", post.ID, err)
	}
	if err := s.DeleteOrder(ctx, post.ID); err != nil {
		return err
	}
	if err := s.DeleteQueuedExistence(ctx); err != nil {
		slog.Warn("failed to invalidate queued existence", "error", err)
	}

	if _, err := s.hr.Create(ctx, &models.PostingHistory{PostID: post.ID, PostType: postType, PublishedAt: now}); err != nil {
		slog.Warn("failed to record publication", "post_id", post.ID, "error", err)
	}
	s.metrics.Published(postType)
	s.metrics.Run(postType, metrics.OutcomePublished)
	slog.Info("queued post published", "post_id", post.ID, "post_type", postType)

	s.hooks.Emit(ctx, hooks.AfterPublish, hooks.Payload{PostType: postType, Post: &post})
	return nil
}
