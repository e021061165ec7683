package storage

import (
	"context"
	"io"
	"time"
)

// Service stores user-uploaded media objects (avatars).
type Service interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// URL returns a read URL for the object, valid for at least expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
