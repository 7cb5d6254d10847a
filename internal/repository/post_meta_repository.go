package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

type PostMetaRepository interface {
	Get(ctx context.Context, postID int64, key string) (string, bool, error)
	Set(ctx context.Context, postID int64, key, value string) error
	Delete(ctx context.Context, postID int64, key string) error
}

type postMetaRepository struct {
	db *DB
}

func NewPostMetaRepository(db *DB) PostMetaRepository {
	return &postMetaRepository{db: db}
}

func (r *postMetaRepository) Get(ctx context.Context, postID int64, key string) (string, bool, error) {
	query := `SELECT meta_value FROM post_meta WHERE post_id = $1 AND meta_key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, r.db.q(query), postID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return value, true, nil
}

func (r *postMetaRepository) Set(ctx context.Context, postID int64, key, value string) error {
	query := `
		INSERT INTO post_meta (post_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
	`
	_, err := r.db.ExecContext(ctx, r.db.q(query), postID, key, value)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postMetaRepository) Delete(ctx context.Context, postID int64, key string) error {
	query := `DELETE FROM post_meta WHERE post_id = $1 AND meta_key = $2`
	_, err := r.db.ExecContext(ctx, r.db.q(query), postID, key)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
