package http

import (
	"time"

	"chirp/internal/domain"
)

type UserResponse struct {
	ID          int64     `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PostResponse struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"author_id"`
	Body         string    `json:"body"`
	ParentPostID *int64    `json:"parent_post_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostStatsResponse struct {
	Replies   int64 `json:"replies"`
	Favorites int64 `json:"favorites"`
	Reposts   int64 `json:"reposts"`
}

type TimelineResponse struct {
	Posts      []PostResponse `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type FavoritedPostResponse struct {
	PostResponse
	FavoritedAt time.Time `json:"favorited_at"`
}

type FavoritesPageResponse struct {
	Posts      []FavoritedPostResponse `json:"posts"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

type ProfileResponse struct {
	User           UserResponse   `json:"user"`
	Posts          []PostResponse `json:"posts"`
	PostsCount     int64          `json:"posts_count"`
	FavoritesCount int64          `json:"favorites_count"`
	FollowersCount int64          `json:"followers_count"`
	FollowingCount int64          `json:"following_count"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Handle:      user.Handle,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func sessionToResponse(session domain.SessionToken) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		Body:         post.Body,
		ParentPostID: post.ParentPostID,
		CreatedAt:    post.CreatedAt,
	}
}

func profileToResponse(profile *domain.Profile) ProfileResponse {
	resp := ProfileResponse{
		User:           userToResponse(*profile.User),
		Posts:          make([]PostResponse, len(profile.Posts)),
		PostsCount:     profile.PostsCount,
		FavoritesCount: profile.FavoritesCount,
		FollowersCount: profile.FollowersCount,
		FollowingCount: profile.FollowingCount,
		AvatarURL:      profile.AvatarURL,
	}
	for i := range profile.Posts {
		resp.Posts[i] = postToResponse(profile.Posts[i])
	}
	return resp
}
