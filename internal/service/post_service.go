package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

// Toggle actions.
const (
	ToggleQueue   = "queue"
	ToggleUnqueue = "unqueue"
)

type PostService interface {
	Save(ctx context.Context, user *models.User, ps *transfer.PostSave) (*models.Post, error)
	Get(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, postType, status string) ([]*models.Post, error)
	Trash(ctx context.Context, user *models.User, postID int64) error
	ToggleQueue(ctx context.Context, user *models.User, postID int64, do string) (*models.Post, error)
	Reorder(ctx context.Context, user *models.User, ids []int64) error
}

type postService struct {
	pr    repository.PostRepository
	q     QueueService
	hooks *hooks.Registry
	now   func() time.Time
}

func NewPostService(pr repository.PostRepository, q QueueService, h *hooks.Registry) PostService {
	return &postService{
		pr:    pr,
		q:     q,
		hooks: h,
		now:   time.Now,
	}
}

func (s *postService) Get(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, postType, status string) ([]*models.Post, error) {
	return s.pr.List(ctx, postType, status)
}

// Save creates or updates a post. Publishing with Queue set diverts the post
// into the queue instead; publishing without it takes a queued post out of
// the queue.
func (s *postService) Save(ctx context.Context, user *models.User, ps *transfer.PostSave) (*models.Post, error) {
	if !user.Can(models.CapEditPosts) {
		return nil, ErrForbidden
	}

	post := &models.Post{AuthorID: user.ID, PostType: "post", Status: models.PostStatusDraft}
	if ps.ID != 0 {
		existing, err := s.Get(ctx, ps.ID)
		if err != nil {
			return nil, err
		}
		post = existing
	}
	prevStatus := post.Status

	if ps.PostType != "" {
		post.PostType = ps.PostType
	}
	post.Title = ps.Title
	post.Content = ps.Content
	if ps.Status != "" {
		post.Status = ps.Status
	}

	if (post.Status == models.PostStatusPublish || post.Status == s.q.Status()) && !user.Can(models.CapPublishPosts) {
		return nil, ErrForbidden
	}

	queued, err := s.publishBox(ctx, post, prevStatus, ps.Queue)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusPublish && post.PostDate.IsZero() {
		post.PostDate = s.now()
	}

	if post.ID == 0 {
		id, err := s.pr.Create(ctx, post)
		if err != nil {
			return nil, err
		}
		post.ID = id
	} else if err := s.pr.Update(ctx, post); err != nil {
		return nil, err
	}

	if err := s.q.OnSave(ctx, post); err != nil {
		return nil, err
	}
	if queued || (s.q.IsQueued(post) && prevStatus != post.Status) {
		if err := s.q.ScheduleMaybeSchedule(ctx, post.PostType); err != nil {
			slog.Error("failed to schedule queue event", "post_type", post.PostType, "error", err)
		}
	}
	return post, nil
}

// publishBox applies the "add to queue" checkbox to a post being published
// and reports whether the post was moved into the queue.
func (s *postService) publishBox(ctx context.Context, post *models.Post, prevStatus string, queue bool) (bool, error) {
	if !s.q.CanTypeBeQueued(post.PostType) || post.Status != models.PostStatusPublish {
		return false, nil
	}

	if !queue {
		if post.ID != 0 && prevStatus == s.q.Status() {
			if err := s.q.DeleteOrder(ctx, post.ID); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	// The checkbox is not offered once a post is out or scheduled.
	if prevStatus == models.PostStatusPublish || prevStatus == models.PostStatusFuture {
		return false, nil
	}

	post.Status = s.q.Status()
	return true, nil
}

func (s *postService) Trash(ctx context.Context, user *models.User, postID int64) error {
	if !user.Can(models.CapEditPosts) {
		return ErrForbidden
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.pr.UpdatePostStatus(ctx, models.PostStatusTrash, post.ID); err != nil {
		return err
	}
	return s.q.OnTrash(ctx, post.ID)
}

// ToggleQueue moves a post into the queue or back to the unqueued status.
func (s *postService) ToggleQueue(ctx context.Context, user *models.User, postID int64, do string) (*models.Post, error) {
	if do != ToggleQueue && do != ToggleUnqueue {
		return nil, fmt.Errorf("unknown action %q", do)
	}
	if !user.Can(models.CapPublishPosts) {
		return nil, ErrForbidden
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !s.q.CanTypeBeQueued(post.PostType) ||
		post.Status == models.PostStatusPublish ||
		post.Status == models.PostStatusFuture ||
		post.Status == models.PostStatusTrash {
		return nil, ErrNotQueueable
	}

	s.hooks.Emit(ctx, hooks.BeforeToggle, hooks.Payload{PostType: post.PostType, Post: post})

	status := s.q.UnqueuedStatus()
	if do == ToggleQueue {
		status = s.q.Status()
	}
	post.Status = status
	if err := s.pr.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.q.OnSave(ctx, post); err != nil {
		return nil, err
	}

	if err := s.q.MaybeScheduleEvent(ctx, post.PostType); err != nil {
		slog.Error("failed to schedule queue event", "post_type", post.PostType, "error", err)
	}

	if status != s.q.Status() {
		if err := s.q.DeleteOrder(ctx, post.ID); err != nil {
			return nil, err
		}
	}

	s.hooks.Emit(ctx, hooks.AfterToggle, hooks.Payload{PostType: post.PostType, Post: post})
	return post, nil
}

// Reorder rewrites the queue order of ids to their position in the list.
func (s *postService) Reorder(ctx context.Context, user *models.User, ids []int64) error {
	if !user.Can(models.CapPublishPosts) {
		return ErrForbidden
	}

	s.hooks.Emit(ctx, hooks.BeforeReorder, hooks.Payload{PostIDs: ids})

	for i, id := range ids {
		if err := s.q.AddOrder(ctx, id, i); err != nil {
			return fmt.Errorf("reorder post %d: %w", id, err)
		}
	}
	if err := s.q.DeleteQueuedExistence(ctx); err != nil {
		slog.Warn("failed to invalidate queued existence", "error", err)
	}

	s.hooks.Emit(ctx, hooks.AfterReorder, hooks.Payload{PostIDs: ids})
	return nil
}
