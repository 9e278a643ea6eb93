package auth

import (
	"context"
	"errors"
	"strings"

	"expense-api/internal/apperr"
	"expense-api/internal/models"
	"expense-api/internal/storage"
)

// UserStore is the credential storage the Service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service registers users, logs them in and authorizes bearer tokens.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewService creates a new Service.
func NewService(users UserStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a user with a hashed password. It does not log the user in.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.NewValidation("Username and password are required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, apperr.NewValidation("Password must be at most 72 bytes")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperr.NewConflict("Username already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Wrap(err, "lookup user")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, apperr.NewConflict("Username already exists")
		}
		return nil, apperr.Wrap(err, "create user")
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", apperr.NewValidation("Username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.NewAuthentication("Invalid credentials")
		}
		return "", apperr.Wrap(err, "lookup user")
	}
	if !CheckPassword(password, user.PasswordHash) {
		return "", apperr.NewAuthentication("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", apperr.Wrap(err, "sign token")
	}
	return token, nil
}

// Authorize validates a bearer token and returns the username it was issued for.
func (s *Service) Authorize(token string) (string, error) {
	if token == "" {
		return "", apperr.NewAuthentication("Missing authorization token")
	}
	username, err := s.tokens.Parse(token)
	if err != nil {
		return "", apperr.NewAuthentication("Invalid token")
	}
	return username, nil
}
