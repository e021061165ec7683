package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chirp/internal/domain"
	"chirp/internal/repository"
)

const tokenIssuer = "chirp"

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

// dummyHash keeps login latency independent of whether the handle exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("chirp-no-such-user"), bcrypt.DefaultCost)

// AuthService handles account lifecycle and session tokens.
type AuthService interface {
	Signup(ctx context.Context, handle, displayName, password string) (*domain.User, error)
	Login(ctx context.Context, handle, password string) (*domain.SessionToken, error)
	ParseToken(token string) (int64, error)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Handle string `json:"handle"`
}

type authService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, handle, displayName, password string) (*domain.User, error) {
	handle = strings.TrimSpace(handle)
	displayName = strings.TrimSpace(displayName)

	if !handlePattern.MatchString(handle) {
		return nil, fmt.Errorf("handle must be 1-32 word characters: %w", domain.ErrInvalidInput)
	}
	if displayName == "" {
		return nil, fmt.Errorf("display name is required: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(displayName) > 64 {
		return nil, fmt.Errorf("display name too long: %w", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Handle:       handle,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, handle, password string) (*domain.SessionToken, error) {
	handle = strings.TrimSpace(handle)

	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		// compare against a dummy hash so unknown handles cost the same
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: user.ID,
		Handle: user.Handle,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &domain.SessionToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) ParseToken(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, domain.ErrInvalidCredentials
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.UserID == 0 {
		return 0, domain.ErrInvalidCredentials
	}
	return claims.UserID, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
