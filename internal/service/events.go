package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/events"
)

// publishEvent stamps and dispatches an event. Handler failures are logged and
// never reach the caller of the originating operation.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event delivery incomplete", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role.Name}
}

func movieChanged(movie *domain.Movie) events.MovieChangedPayload {
	return events.MovieChangedPayload{
		Title:      movie.Title,
		EpisodeID:  movie.EpisodeID,
		ExternalID: movie.ExternalID,
	}
}
