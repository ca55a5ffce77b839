package repository

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// SyncStatusRepository keeps the summary of the latest synchronization run.
type SyncStatusRepository interface {
	Save(ctx context.Context, status domain.SyncStatus) error
	Last(ctx context.Context) (*domain.SyncStatus, error)
}

type syncStatusRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSyncStatusRepository returns a Redis-backed implementation.
func NewSyncStatusRepository(client *redis.Client, key string) SyncStatusRepository {
	return &syncStatusRepository{client: client, key: key, ttl: 30 * 24 * time.Hour}
}

func (r *syncStatusRepository) Save(ctx context.Context, status domain.SyncStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return apperrors.NewUnclassified(err)
	}
	if err := r.client.Set(ctx, r.key, payload, r.ttl).Err(); err != nil {
		return apperrors.WrapStorage(err)
	}
	return nil
}

func (r *syncStatusRepository) Last(ctx context.Context) (*domain.SyncStatus, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	var status domain.SyncStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	return &status, nil
}
