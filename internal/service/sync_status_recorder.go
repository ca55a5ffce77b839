package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/events"
	"github.com/spec-kit/movie-catalog/internal/repository"
)

// SyncStatusRecorder persists the summary of each committed synchronization.
type SyncStatusRecorder struct {
	dispatcher events.Dispatcher
	statuses   repository.SyncStatusRepository
	logger     *zap.Logger
}

// NewSyncStatusRecorder creates the recorder.
func NewSyncStatusRecorder(dispatcher events.Dispatcher, statuses repository.SyncStatusRepository, logger *zap.Logger) *SyncStatusRecorder {
	return &SyncStatusRecorder{dispatcher: dispatcher, statuses: statuses, logger: logger}
}

// RegisterHandlers subscribes to sync events.
func (r *SyncStatusRecorder) RegisterHandlers() {
	if r.dispatcher == nil || r.statuses == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventMoviesSynchronized, r.record)
}

func (r *SyncStatusRecorder) record(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MoviesSynchronizedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	status := domain.SyncStatus{
		RunID:       payload.RunID,
		Count:       payload.Count,
		Inserted:    payload.Inserted,
		Updated:     payload.Updated,
		CompletedAt: payload.CompletedAt,
		DurationMS:  payload.DurationMS,
	}
	if err := r.statuses.Save(ctx, status); err != nil {
		return err
	}
	r.logger.Debug("sync status recorded", zap.String("run_id", status.RunID))
	return nil
}
