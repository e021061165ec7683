package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const createFavoritesTable = `
CREATE TABLE IF NOT EXISTS favorites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (user_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_favorites_post ON favorites(post_id);
`

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) repository.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFavoritesTable); err != nil {
		return fmt.Errorf("create favorites table: %w", translateErr(err))
	}
	return nil
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, postID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin favorite: %w", translateErr(err))
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
INSERT INTO favorites (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		userID, postID, nowUTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d post %d: %w", userID, postID, domain.ErrAlreadyFavorited)
		}
		return fmt.Errorf("insert favorite: %w", translateErr(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit favorite: %w", translateErr(err))
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, postID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM favorites WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d post %d: %w", userID, postID, domain.ErrNotFavorited)
	}
	return nil
}

func (r *FavoriteRepository) ListPosts(ctx context.Context, userID int64, before *domain.Cursor, limit int) ([]domain.FavoritedPost, error) {
	query := `
SELECT f.id, f.created_at, p.id, p.author_id, p.body, p.parent_post_id, p.created_at
FROM favorites f
JOIN posts p ON p.id = f.post_id
WHERE f.user_id = ?`
	args := []any{userID}
	query, args = appendKeyset(query, args, "f.", before)
	query += `
ORDER BY f.created_at DESC, f.id DESC
LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", translateErr(err))
	}
	defer rows.Close()

	var favorites []domain.FavoritedPost
	for rows.Next() {
		var fav domain.FavoritedPost
		var parent sql.NullInt64
		if err := rows.Scan(
			&fav.FavoriteID,
			&fav.FavoritedAt,
			&fav.Post.ID,
			&fav.Post.AuthorID,
			&fav.Post.Body,
			&parent,
			&fav.Post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		if parent.Valid {
			fav.Post.ParentPostID = &parent.Int64
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", translateErr(err))
	}
	return favorites, nil
}

func (r *FavoriteRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID)
}

func (r *FavoriteRepository) CountForPost(ctx context.Context, postID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM favorites WHERE post_id = ?`, postID)
}

func (r *FavoriteRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count favorites: %w", translateErr(err))
	}
	return n, nil
}
