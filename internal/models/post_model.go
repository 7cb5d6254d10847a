package models

import "time"

type Post struct {
	ID        int64     `db:"id" json:"id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	PostType  string    `db:"post_type" json:"post_type"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Status    string    `db:"status" json:"status"`
	PostDate  time.Time `db:"post_date" json:"post_date"` // zero until published or explicitly dated
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// QueuedPost is a queued post together with its position in the queue.
type QueuedPost struct {
	Post
	Order int `json:"order"`
}

const (
	PostStatusDraft   = "draft"
	PostStatusPublish = "publish"
	PostStatusFuture  = "future"
	PostStatusTrash   = "trash"
)

const MetaQueueOrder = "_queue_order"
