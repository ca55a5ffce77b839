package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// UserRepository defines persistence access for principals.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool dbtx
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool PgxPool) UserRepository {
	return &userRepository{pool: pool}
}

const userSelect = `
        SELECT u.id, u.name, u.email, u.password_hash, u.is_active, r.id, r.name, u.created_at, u.updated_at
        FROM users u JOIN roles r ON r.id = u.role_id`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, is_active, role_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.Role.ID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return storageError(err, func() *apperrors.Failure {
		return apperrors.NewAlreadyExists("user", fmt.Sprintf("A user with email %s already exists in the system", user.Email))
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+` WHERE u.id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, userSelect+` WHERE u.email=$1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.Role.ID,
		&user.Role.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	return &user, nil
}
