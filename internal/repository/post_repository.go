package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	UpdatePostStatus(ctx context.Context, status string, postID int64) error
	List(ctx context.Context, postType, status string) ([]*models.Post, error)
	GetOneQueued(ctx context.Context, postType, status string, desc bool) (*models.QueuedPost, error)
	ListQueued(ctx context.Context, postType, status string) ([]*models.QueuedPost, error)
	GetLastPublished(ctx context.Context, postType string) (*models.Post, error)
}

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `p.id, p.author_id, p.post_type, p.title, p.content, p.status, p.post_date, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, extra ...any) (*models.Post, error) {
	var post models.Post
	var postDate, createdAt, updatedAt int64
	dest := []any{&post.ID, &post.AuthorID, &post.PostType, &post.Title, &post.Content, &post.Status, &postDate, &createdAt, &updatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	post.PostDate = fromUnix(postDate)
	post.CreatedAt = fromUnix(createdAt)
	post.UpdatedAt = fromUnix(updatedAt)
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (author_id, post_type, title, content, status, post_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now().Unix()
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.q(query),
		post.AuthorID, post.PostType, post.Title, post.Content, post.Status, toUnix(post.PostDate), now, now,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, r.db.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET author_id = $1,
			post_type = $2,
			title = $3,
			content = $4,
			status = $5,
			post_date = $6,
			updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, r.db.q(query),
		post.AuthorID, post.PostType, post.Title, post.Content, post.Status, toUnix(post.PostDate), time.Now().Unix(), post.ID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, r.db.q(query), status, time.Now().Unix(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// List returns posts filtered by type and status; empty filters match all.
func (r *postRepository) List(ctx context.Context, postType, status string) ([]*models.Post, error) {
	var (
		where []string
		args  []any
	)
	if postType != "" {
		args = append(args, postType)
		where = append(where, "p.post_type = $1")
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			where = append(where, "p.status = $1")
		} else {
			where = append(where, "p.status = $2")
		}
	}

	query := `SELECT ` + postColumns + ` FROM posts p`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, r.db.q(query), args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func queuedQuery(desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return `
		SELECT ` + postColumns + `, CAST(m.meta_value AS INTEGER)
		FROM posts p
		JOIN post_meta m ON m.post_id = p.id AND m.meta_key = $1
		WHERE p.post_type = $2 AND p.status = $3
		ORDER BY CAST(m.meta_value AS INTEGER) ` + dir + `, p.id ` + dir
}

// GetOneQueued returns the first queued post of postType in queue order, or
// the last one when desc is set. Posts without an order are not considered.
func (r *postRepository) GetOneQueued(ctx context.Context, postType, status string, desc bool) (*models.QueuedPost, error) {
	query := queuedQuery(desc) + ` LIMIT 1`

	var order int
	post, err := scanPost(r.db.QueryRowContext(ctx, r.db.q(query), models.MetaQueueOrder, postType, status), &order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &models.QueuedPost{Post: *post, Order: order}, nil
}

func (r *postRepository) ListQueued(ctx context.Context, postType, status string) ([]*models.QueuedPost, error) {
	rows, err := r.db.QueryContext(ctx, r.db.q(queuedQuery(false)), models.MetaQueueOrder, postType, status)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.QueuedPost
	for rows.Next() {
		var order int
		post, err := scanPost(rows, &order)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &models.QueuedPost{Post: *post, Order: order})
	}
	return posts, rows.Err()
}

// GetLastPublished returns the most recently dated published post of postType.
func (r *postRepository) GetLastPublished(ctx context.Context, postType string) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.post_type = $1 AND p.status = $2
		ORDER BY p.post_date DESC, p.id DESC
		LIMIT 1
	`

	post, err := scanPost(r.db.QueryRowContext(ctx, r.db.q(query), postType, models.PostStatusPublish))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}
