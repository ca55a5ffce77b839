package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-catalog/internal/api/dto"
	"github.com/spec-kit/movie-catalog/internal/auth"
	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/service"
	"github.com/spec-kit/movie-catalog/internal/validation"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// MovieCatalog is the CRUD surface the handler depends on.
type MovieCatalog interface {
	Create(ctx context.Context, actor *domain.User, input service.MovieCreateInput) (*domain.Movie, error)
	List(ctx context.Context) ([]*domain.Movie, error)
	Get(ctx context.Context, id string) (*domain.Movie, error)
	Update(ctx context.Context, actor *domain.User, id string, patch domain.MoviePatch) (*domain.Movie, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

// CatalogSynchronizer runs and reports reconciliation.
type CatalogSynchronizer interface {
	Synchronize(ctx context.Context) (*service.SyncResult, error)
	LastStatus(ctx context.Context) (*domain.SyncStatus, error)
}

// MoviesHandler serves the catalog endpoints.
type MoviesHandler struct {
	movies MovieCatalog
	sync   CatalogSynchronizer
}

// NewMoviesHandler constructs handler.
func NewMoviesHandler(movies MovieCatalog, sync CatalogSynchronizer) *MoviesHandler {
	return &MoviesHandler{movies: movies, sync: sync}
}

// Create POST /api/movies.
func (h *MoviesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMovieRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	attrs, err := req.Attributes()
	if err != nil {
		return err
	}
	actor, _ := auth.PrincipalFromContext(c)
	movie, err := h.movies.Create(c.UserContext(), actor, service.MovieCreateInput{MovieAttributes: attrs})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMovieResponse(movie)})
}

// List GET /api/movies.
func (h *MoviesHandler) List(c *fiber.Ctx) error {
	movies, err := h.movies.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMovieList(movies)})
}

// Get GET /api/movies/:id.
func (h *MoviesHandler) Get(c *fiber.Ctx) error {
	movie, err := h.movies.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMovieResponse(movie)})
}

// Update PATCH /api/movies/:id.
func (h *MoviesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateMovieRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patch, err := req.Patch()
	if err != nil {
		return err
	}
	if patch.Empty() {
		return apperrors.NewValidation("At least one field must be provided", nil)
	}
	actor, _ := auth.PrincipalFromContext(c)
	movie, err := h.movies.Update(c.UserContext(), actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMovieResponse(movie)})
}

// Delete DELETE /api/movies/:id.
func (h *MoviesHandler) Delete(c *fiber.Ctx) error {
	actor, _ := auth.PrincipalFromContext(c)
	if err := h.movies.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Sync POST /api/movies/sync.
func (h *MoviesHandler) Sync(c *fiber.Ctx) error {
	result, err := h.sync.Synchronize(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SyncResponse{
		Success:  true,
		RunID:    result.RunID,
		Count:    result.Count,
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Movies:   dto.NewMovieList(result.Movies),
	}})
}

// SyncStatus GET /api/movies/sync/status.
func (h *MoviesHandler) SyncStatus(c *fiber.Ctx) error {
	status, err := h.sync.LastStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SyncStatusResponse{
		RunID:       status.RunID,
		Count:       status.Count,
		Inserted:    status.Inserted,
		Updated:     status.Updated,
		DurationMS:  status.DurationMS,
		CompletedAt: status.CompletedAt,
	}})
}

// parseBody decodes and validates a JSON body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidation("Request body must be valid JSON", nil)
	}
	return validation.Struct(out)
}
