package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/news-notes-api/internal/auth"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// authService is the concrete implementation of AuthService
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    zerolog.Logger
}

func newAuthService(users repository.UserRepository, tokens *auth.TokenManager, log zerolog.Logger) *authService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Signup registers a new user
func (s *authService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newFormError("username", "Обязательное поле.")
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return nil, newFormError("username", fmt.Sprintf("Убедитесь, что это значение содержит не более %d символов.", models.MaxUsernameLength))
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, newFormError("password", fmt.Sprintf("Пароль должен содержать как минимум %d символов.", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, newFormError("username", "Пользователь с таким именем уже существует.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("username", username).Msg("User registered")
	return user, nil
}

// Login checks credentials and issues a session token
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("Login failed")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("User logged in")
	return token, user, nil
}

// Authenticate resolves a session token to a still existing user
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// SessionTTL returns the lifetime of issued session tokens
func (s *authService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}
