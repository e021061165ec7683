package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const createFollowsTable = `
CREATE TABLE IF NOT EXISTS follows (
	follower_id INTEGER NOT NULL REFERENCES users(id),
	followee_id INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	PRIMARY KEY (follower_id, followee_id),
	CHECK (follower_id <> followee_id)
);
CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id);
`

type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) repository.FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFollowsTable); err != nil {
		return fmt.Errorf("create follows table: %w", translateErr(err))
	}
	return nil
}

func (r *FollowRepository) Add(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return fmt.Errorf("user %d: %w", followerID, domain.ErrSelfFollow)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin follow: %w", translateErr(err))
	}
	defer tx.Rollback()

	for _, id := range []int64{followerID, followeeID} {
		if err := rowExists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
			}
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		followerID, followeeID, nowUTC(),
	); err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%d -> %d: %w", followerID, followeeID, domain.ErrAlreadyFollowing)
		case isCheckViolation(err):
			return fmt.Errorf("user %d: %w", followerID, domain.ErrSelfFollow)
		default:
			return fmt.Errorf("insert follow: %w", translateErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit follow: %w", translateErr(err))
	}
	return nil
}

func (r *FollowRepository) Remove(ctx context.Context, followerID, followeeID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("delete follow: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete follow rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%d -> %d: %w", followerID, followeeID, domain.ErrNotFollowing)
	}
	return nil
}

func (r *FollowRepository) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.handle, u.display_name, u.password_hash, u.avatar_key, u.created_at, u.updated_at
FROM follows f
JOIN users u ON u.id = f.follower_id
WHERE f.followee_id = ?
ORDER BY f.created_at DESC, u.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", translateErr(err))
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Handle,
			&user.DisplayName,
			&user.PasswordHash,
			&user.AvatarKey,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followers: %w", translateErr(err))
	}
	return users, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE followee_id = ?`, userID)
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID)
}

func (r *FollowRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count follows: %w", translateErr(err))
	}
	return n, nil
}
