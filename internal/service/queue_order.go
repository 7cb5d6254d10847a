package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/models"
)

// AddQueueOrder puts a queued post without an order at the end of its
// type's queue.
func (s *queueService) AddQueueOrder(ctx context.Context, post *models.Post) error {
	s.hooks.Emit(ctx, hooks.BeforeAddQueueOrder, hooks.Payload{Post: post})

	if post == nil || !s.CanTypeBeQueued(post.PostType) || !s.IsQueued(post) {
		return nil
	}

	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	_, has, err := s.GetOrder(ctx, post.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	last, err := s.GetOneQueued(ctx, post.PostType, true)
	if err != nil {
		return err
	}
	order := 0
	if last != nil {
		order = last.Order + 1
	}
	if err := s.AddOrder(ctx, post.ID, order); err != nil {
		return err
	}

	s.hooks.Emit(ctx, hooks.AfterAddQueueOrder, hooks.Payload{PostType: post.PostType, Post: post})
	return nil
}

func (s *queueService) AddOrder(ctx context.Context, postID int64, order int) error {
	return s.mr.Set(ctx, postID, models.MetaQueueOrder, strconv.Itoa(order))
}

func (s *queueService) DeleteOrder(ctx context.Context, postID int64) error {
	return s.mr.Delete(ctx, postID, models.MetaQueueOrder)
}

// GetOrder returns the stored order of postID. An order of 0 is a valid
// position; a value that is not a number counts as no order.
func (s *queueService) GetOrder(ctx context.Context, postID int64) (int, bool, error) {
	raw, ok, err := s.mr.Get(ctx, postID, models.MetaQueueOrder)
	if err != nil || !ok {
		return 0, false, err
	}
	order, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring malformed queue order", "post_id", postID, "value", raw)
		return 0, false, nil
	}
	return order, true, nil
}

// OnSave runs after every post save.
func (s *queueService) OnSave(ctx context.Context, post *models.Post) error {
	if err := s.AddQueueOrder(ctx, post); err != nil {
		return err
	}
	return s.DeleteQueuedExistence(ctx)
}

// OnTrash runs after a post is moved to the trash.
func (s *queueService) OnTrash(ctx context.Context, postID int64) error {
	if err := s.DeleteOrder(ctx, postID); err != nil {
		return err
	}
	return s.DeleteQueuedExistence(ctx)
}
