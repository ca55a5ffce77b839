package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/events"
	"github.com/spec-kit/movie-catalog/internal/observability"
	"github.com/spec-kit/movie-catalog/internal/repository"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

const (
	syncFetchFailure = "Failed to fetch films from SWAPI"
	syncFailure      = "Failed to sync movies from SWAPI"
)

// MovieSource yields the authoritative film set.
type MovieSource interface {
	FetchAll(ctx context.Context) ([]domain.ExternalMovie, error)
}

// SyncResult is the outcome of one reconciliation run. Movies follow the order
// in which the source returned them.
type SyncResult struct {
	RunID    string
	Movies   []*domain.Movie
	Count    int
	Inserted int
	Updated  int
}

// SyncService reconciles the authoritative film set into the catalog.
type SyncService struct {
	source     MovieSource
	movies     repository.MovieRepository
	statuses   repository.SyncStatusRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	txTimeout  time.Duration
}

// SyncDependencies bundles collaborators for the sync service.
type SyncDependencies struct {
	Source     MovieSource
	MovieRepo  repository.MovieRepository
	StatusRepo repository.SyncStatusRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	TxTimeout  time.Duration
}

// NewSyncService builds the service.
func NewSyncService(deps SyncDependencies) *SyncService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.TxTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SyncService{
		source:     deps.Source,
		movies:     deps.MovieRepo,
		statuses:   deps.StatusRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		txTimeout:  timeout,
	}
}

// Synchronize fetches the full authoritative set, then inserts or updates every
// record inside one transaction. Nothing is written when any step fails.
func (s *SyncService) Synchronize(ctx context.Context) (*SyncResult, error) {
	started := time.Now()
	result := &SyncResult{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	films, err := s.source.FetchAll(ctx)
	if err != nil {
		s.metrics.RecordSync("fetch_failed", 0, 0, time.Since(started))
		logger.Error("sync fetch failed", zap.Error(err))
		return nil, apperrors.WrapExternal(err, syncFetchFailure)
	}
	logger.Info("sync started", zap.Int("authoritative", len(films)))

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err = s.movies.WithinTx(txCtx, func(ctx context.Context, store repository.MovieStore) error {
		movies := make([]*domain.Movie, 0, len(films))
		inserted, updated := 0, 0
		for _, film := range films {
			movie, created, err := reconcile(ctx, store, film)
			if err != nil {
				return err
			}
			if created {
				inserted++
			} else {
				updated++
			}
			movies = append(movies, movie)
		}
		result.Movies, result.Inserted, result.Updated = movies, inserted, updated
		return nil
	})
	if err != nil {
		s.metrics.RecordSync("failed", 0, 0, time.Since(started))
		logger.Error("sync rolled back", zap.Error(err))
		return nil, apperrors.WrapExternal(err, syncFailure)
	}

	result.Count = len(result.Movies)
	elapsed := time.Since(started)
	s.metrics.RecordSync("success", result.Inserted, result.Updated, elapsed)
	logger.Info("sync committed",
		zap.Int("count", result.Count),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Duration("duration", elapsed))

	publishEvent(ctx, s.dispatcher, logger, events.Event{
		Type: events.EventMoviesSynchronized,
		Payload: events.MoviesSynchronizedPayload{
			RunID:       result.RunID,
			Count:       result.Count,
			Inserted:    result.Inserted,
			Updated:     result.Updated,
			DurationMS:  elapsed.Milliseconds(),
			CompletedAt: time.Now(),
		},
	})
	return result, nil
}

// LastStatus returns the summary of the most recent committed run.
func (s *SyncService) LastStatus(ctx context.Context) (*domain.SyncStatus, error) {
	if s.statuses == nil {
		return nil, apperrors.NewNotFound("sync status", "last")
	}
	status, err := s.statuses.Last(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperrors.NewNotFound("sync status", "last")
	}
	return status, nil
}

// reconcile updates the live record holding the film's external id, or
// creates one. Films without an external id are always created.
func reconcile(ctx context.Context, store repository.MovieStore, film domain.ExternalMovie) (*domain.Movie, bool, error) {
	if film.ExternalID != "" {
		existing, err := store.FindByExternalID(ctx, film.ExternalID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			movie, err := store.Update(ctx, existing.ID, domain.PatchFromAttributes(film.MovieAttributes))
			if err != nil {
				return nil, false, err
			}
			if movie == nil {
				return nil, false, apperrors.NewNotFound("movie", existing.ID)
			}
			return movie, false, nil
		}
	}

	movie := &domain.Movie{MovieAttributes: film.MovieAttributes}
	if film.ExternalID != "" {
		externalID := film.ExternalID
		movie.ExternalID = &externalID
	}
	if err := store.Create(ctx, movie); err != nil {
		return nil, false, err
	}
	return movie, true, nil
}
