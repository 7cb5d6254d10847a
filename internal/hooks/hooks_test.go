package hooks

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestEmitOrder(t *testing.T) {
	t.Parallel()
	r := New()
	var got []string
	r.On(AfterPublish, func(ctx context.Context, e Event, p Payload) { got = append(got, "first:"+p.PostType) })
	r.On(AfterPublish, func(ctx context.Context, e Event, p Payload) { got = append(got, "second") })
	r.On(BeforePublish, func(ctx context.Context, e Event, p Payload) { got = append(got, "wrong event") })
	r.OnAny(func(ctx context.Context, e Event, p Payload) { got = append(got, "any:"+string(e)) })

	r.Emit(context.Background(), AfterPublish, Payload{PostType: "post"})

	want := []string{"first:post", "second", "any:after_publish"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNilRegistry(t *testing.T) {
	t.Parallel()
	var r *Registry
	r.Emit(context.Background(), AfterPublish, Payload{})
	if !r.ApplyTimeFrame(context.Background(), "post", time.Now(), true) {
		t.Fatal("nil registry must keep the decision")
	}
	if r.ApplyInterval(time.Hour) != time.Hour {
		t.Fatal("nil registry must keep the interval")
	}
}

func TestApplyTimeFrame(t *testing.T) {
	t.Parallel()
	r := New()
	r.FilterTimeFrame(func(ctx context.Context, postType string, now time.Time, inFrame bool) bool {
		if postType == "page" {
			return false
		}
		return inFrame
	})
	r.FilterTimeFrame(func(ctx context.Context, postType string, now time.Time, inFrame bool) bool {
		return inFrame || postType == "news"
	})

	ctx := context.Background()
	now := time.Now()
	if r.ApplyTimeFrame(ctx, "page", now, true) {
		t.Fatal("page should be forced out of the frame")
	}
	if !r.ApplyTimeFrame(ctx, "news", now, false) {
		t.Fatal("news should be forced into the frame")
	}
	if !r.ApplyTimeFrame(ctx, "post", now, true) {
		t.Fatal("post should keep its decision")
	}
}

func TestApplyInterval(t *testing.T) {
	t.Parallel()
	r := New()
	r.FilterInterval(func(d time.Duration) time.Duration { return d / 2 })
	r.FilterInterval(func(d time.Duration) time.Duration { return -1 })

	if got := r.ApplyInterval(2 * time.Hour); got != time.Hour {
		t.Fatalf("ApplyInterval = %v, want 1h", got)
	}
}
