package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chirp/internal/domain"
)

// Cursors are opaque to callers: base64 of "<created-at-micros>:<id>".
// A malformed token is the caller's fault and maps to ErrInvalidInput.

func encodeCursor(c domain.Cursor) string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (*domain.Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("cursor: %w", domain.ErrInvalidInput)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("cursor: %w", domain.ErrInvalidInput)
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cursor: %w", domain.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cursor: %w", domain.ErrInvalidInput)
	}
	return &domain.Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}
