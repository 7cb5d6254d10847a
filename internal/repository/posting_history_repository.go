package repository

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postqueue/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	ListByPostType(ctx context.Context, postType string, limit int) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *DB
}

func NewPostingHistoryRepository(db *DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (post_id, post_type, published_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, r.db.q(query), ph.PostID, ph.PostType, toUnix(ph.PublishedAt)).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postingHistoryRepository) ListByPostType(ctx context.Context, postType string, limit int) ([]*models.PostingHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, post_id, post_type, published_at
		FROM posting_history
		WHERE post_type = $1
		ORDER BY published_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, r.db.q(query), postType, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var phs []*models.PostingHistory
	for rows.Next() {
		var ph models.PostingHistory
		var publishedAt int64
		if err := rows.Scan(&ph.ID, &ph.PostID, &ph.PostType, &publishedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ph.PublishedAt = fromUnix(publishedAt)
		phs = append(phs, &ph)
	}
	return phs, rows.Err()
}
