package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, p auth.Principal) (*models.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    logrus.FieldLogger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, log logrus.FieldLogger) AuthService {
	return &authService{users: users, tokens: tokens, log: log}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if len(in.Password) < auth.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:               strings.TrimSpace(in.Name),
		Email:              email,
		PasswordHash:       hash,
		Role:               models.RoleUser,
		VerificationStatus: models.VerificationPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account, or promotes and re-keys an existing user
// with the same email.
func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		user.VerificationStatus = models.VerificationVerified
		user.PasswordHash = hash
		if name != "" {
			user.Name = name
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update admin: %w", err)
		}
	case repository.IsNotFound(err):
		if name == "" {
			name = "Administrator"
		}
		user = &models.User{
			ID:                 uuid.New(),
			Name:               name,
			Email:              email,
			PasswordHash:       hash,
			Role:               models.RoleAdmin,
			VerificationStatus: models.VerificationVerified,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
	default:
		return nil, fmt.Errorf("find admin: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("admin account ensured")
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
