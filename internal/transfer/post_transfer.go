package transfer

import "time"

// PostSave is the body of a post create or update. Queue mirrors the
// "add to queue" checkbox of the publish box.
type PostSave struct {
	ID       int64  `json:"-"`
	PostType string `json:"post_type" validate:"omitempty,max=20"`
	Title    string `json:"title" validate:"max=255"`
	Content  string `json:"content"`
	Status   string `json:"status" validate:"omitempty,max=20"`
	Queue    bool   `json:"queue"`
}

// QueueToggle is read from the query string of the toggle action.
type QueueToggle struct {
	Do     string `query:"do" validate:"required,oneof=queue unqueue"`
	PostID int64  `query:"post_id" validate:"required,gt=0"`
	Nonce  string `query:"_wpnonce" validate:"required"`
}

// QueueReorder carries the new order as a JSON array of post IDs.
type QueueReorder struct {
	Order string `json:"order" form:"order" validate:"required"`
	Nonce string `json:"nonce" form:"nonce" validate:"required"`
}

type QueueListing struct {
	PostType string        `json:"post_type"`
	Posts    []QueuedEntry `json:"posts"`
	NextRun  *time.Time    `json:"next_run,omitempty"`
}

type QueuedEntry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}
