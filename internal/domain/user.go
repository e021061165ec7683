package domain

import "time"

// User represents a registered account. Handle is unique and immutable,
// display name and avatar are mutable profile fields.
type User struct {
	ID           int64
	Handle       string
	DisplayName  string
	PasswordHash string
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionToken is the result of a successful login.
type SessionToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Profile aggregates the display-ready view of a user.
type Profile struct {
	User           *User
	Posts          []Post
	PostsCount     int64
	FavoritesCount int64
	FollowersCount int64
	FollowingCount int64
	AvatarURL      string
}
