package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "is_active", "role_id", "role_name", "created_at", "updated_at"}

func TestGetByEmailJoinsRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email=\\$1").
		WithArgs("leia@rebellion.org").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("u-1", "Leia", "leia@rebellion.org", "hash", true, 1, "Admin", now, now))

	user, err := NewUserRepository(mock).GetByEmail(context.Background(), "leia@rebellion.org")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Role != domain.RoleAdmin || !user.Active {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("WHERE u.id=\\$1").WithArgs("u-x").WillReturnRows(pgxmock.NewRows(userRowColumns))

	user, err := NewUserRepository(mock).GetByID(context.Background(), "u-x")
	if err != nil || user != nil {
		t.Fatalf("expected nil, nil; got %v, %v", user, err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Han", "han@falcon.io", "hash", true, 2).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = NewUserRepository(mock).Create(context.Background(), &domain.User{
		Name: "Han", Email: "han@falcon.io", PasswordHash: "hash", Active: true, Role: domain.RoleUser,
	})
	f, ok := apperrors.AsFailure(err)
	if !ok || f.Code != "USER_ALREADY_EXISTS" {
		t.Fatalf("expected USER_ALREADY_EXISTS, got %v", err)
	}
	if f.Detail != "A user with email han@falcon.io already exists in the system" {
		t.Fatalf("unexpected detail %q", f.Detail)
	}
}
