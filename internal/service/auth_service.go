package service

import (
	"context"
	"strings"

	"github.com/spec-kit/movie-catalog/internal/auth"
	"github.com/spec-kit/movie-catalog/internal/config"
	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/repository"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	hasher   *auth.PasswordHasher
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		hasher:   auth.NewPasswordHasher(cfg.Auth.BcryptCost),
	}
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	RoleID   int
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	User  *domain.User
	Token domain.AccessToken
}

// Register creates an active account with the requested role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	role, ok := domain.RoleByID(input.RoleID)
	if !ok {
		return nil, apperrors.NewInvalidRole(input.RoleID)
	}

	email := strings.TrimSpace(input.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAlreadyExists("user", "A user with email "+email+" already exists in the system")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewUnclassified(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	matches, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewUnclassified(err)
	}
	if !matches {
		return nil, apperrors.NewInvalidCredentials()
	}
	if !user.Active {
		return nil, apperrors.NewUserNotActive()
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
