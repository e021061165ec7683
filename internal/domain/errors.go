package domain

import "errors"

// Domain failure taxonomy. Repositories and services return these wrapped
// with context; callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateHandle    = errors.New("handle already taken")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrAlreadyFollowing   = errors.New("already following")
	ErrNotFollowing       = errors.New("not following")
	ErrAlreadyFavorited   = errors.New("already favorited")
	ErrNotFavorited       = errors.New("not favorited")
	ErrAlreadyReposted    = errors.New("already reposted")
	ErrNotReposted        = errors.New("not reposted")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable marks transient backing-store failures. It is the
	// only retryable condition in the taxonomy.
	ErrStoreUnavailable = errors.New("store unavailable")
)
