package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// PrincipalStore resolves the identity embedded in a token.
type PrincipalStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate runs authenticate, authorize and execute in that order. It keeps no
// state between calls.
type Gate struct {
	tokens *TokenManager
	users  PrincipalStore
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, users PrincipalStore) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate turns an Authorization header value into a resolved principal.
func (g *Gate) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, apperrors.NewTokenNotProvided()
	}

	claims, err := g.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, apperrors.NewInvalidToken()
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	if user == nil {
		return nil, apperrors.NewInvalidToken()
	}
	return user, nil
}

// Guard authenticates, authorizes against roles and then runs fn with the principal.
func (g *Gate) Guard(ctx context.Context, header string, roles []string, fn func(ctx context.Context, user *domain.User) error) error {
	user, err := g.Authenticate(ctx, header)
	if err != nil {
		return err
	}
	if err := Authorize(user, roles...); err != nil {
		return err
	}
	return fn(ctx, user)
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
