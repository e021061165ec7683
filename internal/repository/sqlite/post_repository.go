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

const createPostsTables = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id INTEGER NOT NULL REFERENCES users(id),
	body TEXT NOT NULL,
	parent_post_id INTEGER REFERENCES posts(id) ON DELETE SET NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id, id);
CREATE TABLE IF NOT EXISTS hashtag_mentions (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	term TEXT NOT NULL,
	PRIMARY KEY (post_id, term)
);
`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTables); err != nil {
		return fmt.Errorf("create posts tables: %w", translateErr(err))
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create post: %w", translateErr(err))
	}
	defer tx.Rollback()

	if err := rowExists(ctx, tx, `SELECT 1 FROM users WHERE id = ?`, post.AuthorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("author %d: %w", post.AuthorID, domain.ErrNotFound)
		}
		return 0, err
	}
	if post.ParentPostID != nil {
		if err := rowExists(ctx, tx, `SELECT 1 FROM posts WHERE id = ?`, *post.ParentPostID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return 0, fmt.Errorf("parent post %d: %w", *post.ParentPostID, domain.ErrNotFound)
			}
			return 0, err
		}
	}

	post.CreatedAt = nowUTC()
	res, err := tx.ExecContext(ctx, `
INSERT INTO posts (author_id, body, parent_post_id, created_at)
VALUES (?, ?, ?, ?)`,
		post.AuthorID,
		post.Body,
		nullableID(post.ParentPostID),
		post.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", translateErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}

	for _, term := range domain.Hashtags(post.Body) {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO hashtag_mentions (post_id, term) VALUES (?, ?)`, id, term); err != nil {
			return 0, fmt.Errorf("insert hashtag mention %q: %w", term, translateErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create post: %w", translateErr(err))
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, author_id, body, parent_post_id, created_at
FROM posts
WHERE id = ?`,
		id,
	)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id, authorID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM posts WHERE id = ? AND author_id = ?`,
		id, authorID,
	)
	if err != nil {
		return fmt.Errorf("delete post: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d for author %d: %w", id, authorID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64, before *domain.Cursor, limit int) ([]domain.Post, error) {
	query := `
SELECT id, author_id, body, parent_post_id, created_at
FROM posts
WHERE author_id = ?`
	args := []any{authorID}
	query, args = appendKeyset(query, args, "", before)
	query += `
ORDER BY created_at DESC, id DESC
LIMIT ?`
	args = append(args, limit)

	return r.queryPosts(ctx, query, args...)
}

func (r *PostRepository) ListTimeline(ctx context.Context, userID int64, includeSelf bool, before *domain.Cursor, limit int) ([]domain.Post, error) {
	query := `
SELECT id, author_id, body, parent_post_id, created_at
FROM posts
WHERE (author_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)
	OR (author_id = ? AND ? <> 0))`
	self := 0
	if includeSelf {
		self = 1
	}
	args := []any{userID, userID, self}
	query, args = appendKeyset(query, args, "", before)
	query += `
ORDER BY created_at DESC, id DESC
LIMIT ?`
	args = append(args, limit)

	return r.queryPosts(ctx, query, args...)
}

func (r *PostRepository) SearchBody(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.queryPosts(ctx, `
SELECT id, author_id, body, parent_post_id, created_at
FROM posts
WHERE LOWER(body) LIKE ? ESCAPE '\'
ORDER BY created_at DESC, id DESC
LIMIT ?`,
		pattern, limit,
	)
}

func (r *PostRepository) SearchHashtag(ctx context.Context, term string, limit int) ([]domain.Post, error) {
	return r.queryPosts(ctx, `
SELECT p.id, p.author_id, p.body, p.parent_post_id, p.created_at
FROM posts p
JOIN hashtag_mentions m ON m.post_id = p.id
WHERE m.term = ?
ORDER BY p.created_at DESC, p.id DESC
LIMIT ?`,
		strings.ToLower(term), limit,
	)
}

func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = ?`, authorID)
}

func (r *PostRepository) CountReplies(ctx context.Context, postID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE parent_post_id = ?`, postID)
}

func (r *PostRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", translateErr(err))
	}
	return n, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", translateErr(err))
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", translateErr(err))
	}
	return posts, nil
}

// appendKeyset extends query with a (created_at, id) < (cursor) predicate.
// prefix qualifies the column names, e.g. "p." for aliased tables.
func appendKeyset(query string, args []any, prefix string, before *domain.Cursor) (string, []any) {
	if before == nil {
		return query, args
	}
	query += fmt.Sprintf(`
AND (%[1]screated_at < ? OR (%[1]screated_at = ? AND %[1]sid < ?))`, prefix)
	args = append(args, before.CreatedAt, before.CreatedAt, before.ID)
	return query, args
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	var one int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("existence check: %w", translateErr(err))
	}
	return nil
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	var parent sql.NullInt64
	if err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Body,
		&parent,
		&post.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", translateErr(err))
	}
	if parent.Valid {
		post.ParentPostID = &parent.Int64
	}
	return &post, nil
}
