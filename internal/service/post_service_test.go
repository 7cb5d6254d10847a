package service

import (
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

func TestSavePublishBox(t *testing.T) {
	env := newTestEnv(t, wednesday)

	queued, err := env.postSvc.Save(env.ctx, author, &transfer.PostSave{PostType: "post", Title: "A", Status: models.PostStatusPublish, Queue: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if queued.Status != "queue" || !queued.PostDate.IsZero() {
		t.Fatalf("queued post = %+v", queued)
	}
	if got, ok := env.order(queued.ID); !ok || got != 0 {
		t.Fatalf("order = %d, %v", got, ok)
	}
	if len(env.dispatcher.maybe) != 1 || env.dispatcher.maybe[0] != "post" {
		t.Fatalf("maybe schedule events = %v", env.dispatcher.maybe)
	}

	// Publishing without the checkbox takes it out of the queue.
	published, err := env.postSvc.Save(env.ctx, author, &transfer.PostSave{ID: queued.ID, Title: "A", Status: models.PostStatusPublish})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if published.Status != models.PostStatusPublish || !published.PostDate.Equal(wednesday) {
		t.Fatalf("published post = %+v", published)
	}
	if _, ok := env.order(queued.ID); ok {
		t.Fatal("order kept after publishing directly")
	}

	// An already published post is never diverted into the queue.
	again, err := env.postSvc.Save(env.ctx, author, &transfer.PostSave{ID: queued.ID, Title: "A2", Status: models.PostStatusPublish, Queue: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if again.Status != models.PostStatusPublish || !again.PostDate.Equal(wednesday) {
		t.Fatalf("republished post = %+v", again)
	}
}

func TestSaveNonQueueableTypePublishes(t *testing.T) {
	env := newTestEnv(t, wednesday)
	post, err := env.postSvc.Save(env.ctx, admin, &transfer.PostSave{PostType: "attachment", Status: models.PostStatusPublish, Queue: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if post.Status != models.PostStatusPublish {
		t.Fatalf("status = %q", post.Status)
	}
}

func TestSaveQueueStatusDirectly(t *testing.T) {
	env := newTestEnv(t, wednesday)
	post, err := env.postSvc.Save(env.ctx, admin, &transfer.PostSave{PostType: "page", Status: "queue"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := env.order(post.ID); !ok {
		t.Fatal("queued post has no order")
	}
	if len(env.dispatcher.maybe) != 1 || env.dispatcher.maybe[0] != "page" {
		t.Fatalf("maybe schedule events = %v", env.dispatcher.maybe)
	}
}

func TestSavePermissions(t *testing.T) {
	env := newTestEnv(t, wednesday)
	for _, tc := range []struct {
		name string
		user *models.User
		ps   *transfer.PostSave
		want error
	}{
		{"subscriber draft", subscriber, &transfer.PostSave{Status: models.PostStatusDraft}, ErrForbidden},
		{"anonymous", nil, &transfer.PostSave{}, ErrForbidden},
		{"missing post", admin, &transfer.PostSave{ID: 404}, ErrPostNotFound},
		{"author draft", author, &transfer.PostSave{Status: models.PostStatusDraft}, nil},
	} {
		_, err := env.postSvc.Save(env.ctx, tc.user, tc.ps)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestTrashDeletesOrder(t *testing.T) {
	env := newTestEnv(t, wednesday)
	a := env.queuePost("post", "A")

	if err := env.postSvc.Trash(env.ctx, admin, a.ID); err != nil {
		t.Fatalf("Trash: %v", err)
	}
	if env.post(a.ID).Status != models.PostStatusTrash {
		t.Fatal("post not trashed")
	}
	if _, ok := env.order(a.ID); ok {
		t.Fatal("trashed post kept its order")
	}
	if err := env.postSvc.Trash(env.ctx, admin, 404); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("Trash(missing) = %v", err)
	}
}

func TestToggleQueueFailures(t *testing.T) {
	env := newTestEnv(t, wednesday)
	draft := &models.Post{PostType: "post", Status: models.PostStatusDraft}
	draft.ID, _ = env.posts.Create(env.ctx, draft)
	published := &models.Post{PostType: "post", Status: models.PostStatusPublish, PostDate: wednesday}
	published.ID, _ = env.posts.Create(env.ctx, published)
	other := &models.Post{PostType: "attachment", Status: models.PostStatusDraft}
	other.ID, _ = env.posts.Create(env.ctx, other)

	for _, tc := range []struct {
		name   string
		user   *models.User
		postID int64
		do     string
		want   error
	}{
		{"subscriber", subscriber, draft.ID, ToggleQueue, ErrForbidden},
		{"missing", admin, 404, ToggleQueue, ErrPostNotFound},
		{"published", admin, published.ID, ToggleQueue, ErrNotQueueable},
		{"other type", admin, other.ID, ToggleQueue, ErrNotQueueable},
	} {
		if _, err := env.postSvc.ToggleQueue(env.ctx, tc.user, tc.postID, tc.do); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	if _, err := env.postSvc.ToggleQueue(env.ctx, admin, draft.ID, "publish"); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestToggleQueueSchedules(t *testing.T) {
	env := newTestEnv(t, wednesday)
	draft := &models.Post{PostType: "post", Status: models.PostStatusDraft}
	draft.ID, _ = env.posts.Create(env.ctx, draft)

	post, err := env.postSvc.ToggleQueue(env.ctx, admin, draft.ID, ToggleQueue)
	if err != nil {
		t.Fatalf("ToggleQueue: %v", err)
	}
	if post.Status != "queue" {
		t.Fatalf("status = %q", post.Status)
	}
	if !env.timers.Has(EventName("post")) {
		t.Fatal("queueing did not schedule the post type")
	}
	if next, _ := env.queue.NextScheduled("post"); next.After(wednesday.Add(time.Second)) {
		t.Fatalf("first run %v, want due now", next)
	}
}

func TestReorderRequiresPublishCapability(t *testing.T) {
	env := newTestEnv(t, wednesday)
	if err := env.postSvc.Reorder(env.ctx, subscriber, []int64{1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Reorder = %v", err)
	}
}
