package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const createRepostsTable = `
CREATE TABLE IF NOT EXISTS reposts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (user_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_reposts_post ON reposts(post_id);
`

type RepostRepository struct {
	db *sql.DB
}

func NewRepostRepository(db *sql.DB) repository.RepostRepository {
	return &RepostRepository{db: db}
}

func (r *RepostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRepostsTable); err != nil {
		return fmt.Errorf("create reposts table: %w", translateErr(err))
	}
	return nil
}

func (r *RepostRepository) Add(ctx context.Context, userID, postID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin repost: %w", translateErr(err))
	}
	defer tx.Rollback()

	if err := rowExists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return err
	}
	if err := rowExists(ctx, tx, `SELECT 1 FROM posts WHERE id = ?`, postID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("post %d: %w", postID, domain.ErrNotFound)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO reposts (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		userID, postID, nowUTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d post %d: %w", userID, postID, domain.ErrAlreadyReposted)
		}
		return fmt.Errorf("insert repost: %w", translateErr(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repost: %w", translateErr(err))
	}
	return nil
}

func (r *RepostRepository) Remove(ctx context.Context, userID, postID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM reposts WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	)
	if err != nil {
		return fmt.Errorf("delete repost: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete repost rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d post %d: %w", userID, postID, domain.ErrNotReposted)
	}
	return nil
}

func (r *RepostRepository) CountForPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reposts WHERE post_id = ?`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reposts: %w", translateErr(err))
	}
	return n, nil
}
