package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	_ "modernc.org/sqlite"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/cache"
	"github.com/maheshrc27/postqueue/internal/hooks"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
)

type fakeTimer struct {
	first time.Time
	every time.Duration
	fn    func()
}

type fakeTimers struct {
	mu      sync.Mutex
	entries map[string]fakeTimer
	cleared []string
}

func newFakeTimers() *fakeTimers { return &fakeTimers{entries: map[string]fakeTimer{}} }

func (f *fakeTimers) Schedule(name string, first time.Time, every time.Duration, fn func()) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = fakeTimer{first: first, every: every, fn: fn}
	return first
}

func (f *fakeTimers) Clear(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[name]
	delete(f.entries, name)
	f.cleared = append(f.cleared, name)
	return ok
}

func (f *fakeTimers) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = map[string]fakeTimer{}
}

func (f *fakeTimers) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[name]
	return ok
}

func (f *fakeTimers) Next(name string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[name]
	return e.first, ok
}

func (f *fakeTimers) get(name string) (fakeTimer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[name]
	return e, ok
}

type fakeDispatcher struct {
	mu          sync.Mutex
	reschedules int
	maybe       []string
}

func (f *fakeDispatcher) EnqueueReschedule(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reschedules++
	return nil
}

func (f *fakeDispatcher) EnqueueMaybeSchedule(_ context.Context, postType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybe = append(f.maybe, postType)
	return nil
}

type testEnv struct {
	t          *testing.T
	ctx        context.Context
	now        time.Time
	db         *repository.DB
	posts      repository.PostRepository
	meta       repository.PostMetaRepository
	options    repository.OptionRepository
	history    repository.PostingHistoryRepository
	existence  *cache.MemoryExistenceStore
	timers     *fakeTimers
	dispatcher *fakeDispatcher
	hooks      *hooks.Registry
	queue      QueueService
	postSvc    PostService
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	db, err := repository.Open(repository.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	env := &testEnv{
		t:          t,
		ctx:        context.Background(),
		now:        now,
		db:         db,
		posts:      repository.NewPostRepository(db),
		meta:       repository.NewPostMetaRepository(db),
		options:    repository.NewOptionRepository(db),
		history:    repository.NewPostingHistoryRepository(db),
		timers:     newFakeTimers(),
		dispatcher: &fakeDispatcher{},
		hooks:      hooks.New(),
	}
	env.existence = cache.NewMemoryExistenceStore(env.clock)
	env.queue = NewQueueService(QueueDeps{
		Config: config.Queue{
			Status:         "queue",
			PostTypes:      []string{"post", "page"},
			UnqueuedStatus: models.PostStatusDraft,
			ExistenceTTL:   time.Hour,
			Timezone:       "UTC",
		},
		Posts:      env.posts,
		Meta:       env.meta,
		Options:    env.options,
		History:    env.history,
		Existence:  env.existence,
		Timers:     env.timers,
		Dispatcher: env.dispatcher,
		Hooks:      env.hooks,
		Now:        env.clock,
	})
	ps := NewPostService(env.posts, env.queue, env.hooks).(*postService)
	ps.now = env.clock
	env.postSvc = ps
	return env
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) setOption(name, value string) {
	e.t.Helper()
	if err := e.options.Set(e.ctx, name, []byte(value)); err != nil {
		e.t.Fatalf("Set option %s: %v", name, err)
	}
}

// queuePost stores a queued post and runs the save handling.
func (e *testEnv) queuePost(postType, title string) *models.Post {
	e.t.Helper()
	post := &models.Post{PostType: postType, Title: title, Status: "queue"}
	id, err := e.posts.Create(e.ctx, post)
	if err != nil {
		e.t.Fatalf("Create: %v", err)
	}
	post.ID = id
	if err := e.queue.OnSave(e.ctx, post); err != nil {
		e.t.Fatalf("OnSave: %v", err)
	}
	return post
}

func (e *testEnv) publishedAt(postType string, at time.Time) {
	e.t.Helper()
	if _, err := e.posts.Create(e.ctx, &models.Post{PostType: postType, Status: models.PostStatusPublish, PostDate: at}); err != nil {
		e.t.Fatalf("Create: %v", err)
	}
}

func (e *testEnv) order(postID int64) (int, bool) {
	e.t.Helper()
	order, ok, err := e.queue.GetOrder(e.ctx, postID)
	if err != nil {
		e.t.Fatalf("GetOrder: %v", err)
	}
	return order, ok
}

func (e *testEnv) post(postID int64) *models.Post {
	e.t.Helper()
	post, err := e.posts.GetByID(e.ctx, postID)
	if err != nil || post == nil {
		e.t.Fatalf("GetByID(%d) = %v, %v", postID, post, err)
	}
	return post
}

func recordEvents(r *hooks.Registry) func() []hooks.Event {
	var (
		mu     sync.Mutex
		events []hooks.Event
	)
	r.OnAny(func(_ context.Context, e hooks.Event, _ hooks.Payload) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	return func() []hooks.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]hooks.Event(nil), events...)
	}
}

func hasEvent(events []hooks.Event, e hooks.Event) bool {
	for _, got := range events {
		if got == e {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	admin      = &models.User{ID: 1, Role: models.RoleAdministrator}
	author     = &models.User{ID: 2, Role: models.RoleAuthor}
	subscriber = &models.User{ID: 3, Role: models.RoleSubscriber}
)
