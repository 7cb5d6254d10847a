package models

import "time"

type PostingHistory struct {
	ID          int64     `db:"id" json:"id"`
	PostID      int64     `db:"post_id" json:"post_id"`
	PostType    string    `db:"post_type" json:"post_type"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}
