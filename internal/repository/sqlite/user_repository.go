package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	handle TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	avatar_key TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", translateErr(err))
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := nowUTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (handle, display_name, password_hash, avatar_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Handle,
		user.DisplayName,
		user.PasswordHash,
		user.AvatarKey,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("handle %q: %w", user.Handle, domain.ErrDuplicateHandle)
		}
		return 0, fmt.Errorf("insert user: %w", translateErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, handle, display_name, password_hash, avatar_key, created_at, updated_at
FROM users
WHERE handle = ?`,
		handle,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, handle, display_name, password_hash, avatar_key, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatarKey string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET avatar_key = ?, updated_at = ? WHERE id = ?`,
		avatarKey, nowUTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update avatar: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update avatar rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	q := strings.ToLower(query)
	pattern := "%" + escapeLike(q) + "%"
	prefix := escapeLike(q) + "%"

	rows, err := r.db.QueryContext(ctx, `
SELECT id, handle, display_name, password_hash, avatar_key, created_at, updated_at
FROM users
WHERE LOWER(handle) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\'
ORDER BY
	CASE
		WHEN LOWER(handle) = ? THEN 0
		WHEN LOWER(handle) LIKE ? ESCAPE '\' THEN 1
		ELSE 2
	END,
	handle ASC
LIMIT ?`,
		pattern, pattern, q, prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", translateErr(err))
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
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", translateErr(err))
	}
	return users, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Handle,
		&user.DisplayName,
		&user.PasswordHash,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", translateErr(err))
	}
	return &user, nil
}
