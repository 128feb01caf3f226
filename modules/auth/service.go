package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domain "github.com/example/chat-hub/domain/chat"
)

const (
	minPasswordLength = 8
	// bcrypt truncates input beyond 72 bytes.
	maxPasswordLength = 72
	maxUsernameLength = 50
)

var (
	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername = errors.New("username must be 1-50 valid characters")
	// ErrWeakPassword is returned when a password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when a password exceeds bcrypt's limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// Service handles registration, login, and credential validation.
type Service struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewService creates a Service.
func NewService(repo *UserRepository, hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new account and returns the user with a fresh token.
func (s *Service) Register(_ context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || len(username) > maxUsernameLength || !utf8.ValidString(username) {
		return nil, "", ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return nil, "", ErrPasswordTooLong
	}

	exists, err := s.repo.UsernameExists(username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns a fresh token.
func (s *Service) Login(_ context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Generate(user.ID, user.Username)
}

// Authenticate validates a bearer credential and yields the session's user
// identity. Called once at connection admission, before any hub state is
// touched.
func (s *Service) Authenticate(_ context.Context, credential string) (*Claims, error) {
	return s.tokens.Validate(credential)
}
