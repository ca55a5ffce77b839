package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-catalog/internal/api/dto"
	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/service"
)

// Accounts is the registration and login surface the handler depends on.
type Accounts interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	accounts Accounts
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts Accounts) *UsersHandler {
	return &UsersHandler{accounts: accounts}
}

// Register handles POST /api/users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     result.Token.Value,
		ExpiresAt: result.Token.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
	}})
}
