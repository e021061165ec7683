package domain

import (
	"regexp"
	"strings"
	"time"
)

// MaxPostLength bounds the post body in runes.
const MaxPostLength = 280

// Post is a short text entry, optionally a reply to another post.
// Body and CreatedAt are immutable once created.
type Post struct {
	ID           int64
	AuthorID     int64
	Body         string
	ParentPostID *int64
	CreatedAt    time.Time
}

// FavoritedPost pairs a post with the favorite edge that selected it,
// so favorites pages can paginate on the edge rather than the post.
type FavoritedPost struct {
	Post
	FavoriteID  int64
	FavoritedAt time.Time
}

// PostStats carries the per-post counters shown next to a post.
type PostStats struct {
	Replies   int64
	Favorites int64
	Reposts   int64
}

// Cursor is a keyset position in a (created_at DESC, id DESC) ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// Hashtags extracts the distinct lowercased hashtag terms mentioned in body,
// in order of first appearance.
func Hashtags(body string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, m := range hashtagPattern.FindAllStringSubmatch(body, -1) {
		term := strings.ToLower(m[1])
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}
