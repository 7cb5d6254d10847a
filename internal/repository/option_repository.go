package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// OptionRepository stores named site options as opaque values.
type OptionRepository interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Set(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
}

type optionRepository struct {
	db *DB
}

func NewOptionRepository(db *DB) OptionRepository {
	return &optionRepository{db: db}
}

func (r *optionRepository) Get(ctx context.Context, name string) ([]byte, bool, error) {
	query := `SELECT value FROM options WHERE name = $1`

	var value string
	err := r.db.QueryRowContext(ctx, r.db.q(query), name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *optionRepository) Set(ctx context.Context, name string, value []byte) error {
	query := `
		INSERT INTO options (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, r.db.q(query), name, string(value), time.Now().Unix())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *optionRepository) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM options WHERE name = $1`
	_, err := r.db.ExecContext(ctx, r.db.q(query), name)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
