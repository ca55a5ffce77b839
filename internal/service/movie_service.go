package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/events"
	"github.com/spec-kit/movie-catalog/internal/repository"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// MovieService exposes direct catalog operations.
type MovieService struct {
	movies     repository.MovieStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewMovieService builds the service.
func NewMovieService(movies repository.MovieStore, dispatcher events.Dispatcher, logger *zap.Logger) *MovieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieService{movies: movies, dispatcher: dispatcher, logger: logger}
}

// MovieCreateInput describes a direct creation. ExternalID is normally absent.
type MovieCreateInput struct {
	domain.MovieAttributes
	ExternalID *string
}

// Create inserts one record, rejecting an external id already held by a live record.
func (s *MovieService) Create(ctx context.Context, actor *domain.User, input MovieCreateInput) (*domain.Movie, error) {
	movie := &domain.Movie{MovieAttributes: input.MovieAttributes}
	if input.ExternalID != nil && *input.ExternalID != "" {
		existing, err := s.movies.FindByExternalID(ctx, *input.ExternalID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewAlreadyExists("movie", fmt.Sprintf("A movie with external id %s already exists", *input.ExternalID))
		}
		externalID := *input.ExternalID
		movie.ExternalID = &externalID
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventMovieCreated,
		MovieID: movie.ID,
		Actor:   userActor(actor),
		Payload: movieChanged(movie),
	})
	return movie, nil
}

// List returns every live record.
func (s *MovieService) List(ctx context.Context) ([]*domain.Movie, error) {
	return s.movies.FindAll(ctx)
}

// Get returns one live record.
func (s *MovieService) Get(ctx context.Context, id string) (*domain.Movie, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("movie", id)
	}
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, apperrors.NewNotFound("movie", id)
	}
	return movie, nil
}

// Update overwrites the fields present in patch.
func (s *MovieService) Update(ctx context.Context, actor *domain.User, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("movie", id)
	}
	movie, err := s.movies.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, apperrors.NewNotFound("movie", id)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventMovieUpdated,
		MovieID: movie.ID,
		Actor:   userActor(actor),
		Payload: movieChanged(movie),
	})
	return movie, nil
}

// Delete soft-deletes a live record.
func (s *MovieService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !validID(id) {
		return apperrors.NewNotFound("movie", id)
	}
	deleted, err := s.movies.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("movie", id)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventMovieDeleted,
		MovieID: id,
		Actor:   userActor(actor),
	})
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
