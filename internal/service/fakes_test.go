package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/repository"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// memMovies is an in-memory MovieRepository. WithinTx works on a copy that
// replaces the committed rows only when fn succeeds.
type memMovies struct {
	mu        sync.Mutex
	rows      map[string]*domain.Movie
	failOn    int
	failWith  error
	rawErr    error
	creates   int
	txCount   int
	committed int
}

func newMemMovies() *memMovies {
	return &memMovies{rows: map[string]*domain.Movie{}}
}

type memStore struct {
	owner *memMovies
	rows  map[string]*domain.Movie
}

func (m *memMovies) store() *memStore {
	return &memStore{owner: m, rows: m.rows}
}

func (m *memMovies) FindByExternalID(ctx context.Context, externalID string) (*domain.Movie, error) {
	return m.store().FindByExternalID(ctx, externalID)
}

func (m *memMovies) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	return m.store().FindByID(ctx, id)
}

func (m *memMovies) FindAll(ctx context.Context) ([]*domain.Movie, error) {
	return m.store().FindAll(ctx)
}

func (m *memMovies) Create(ctx context.Context, movie *domain.Movie) error {
	return m.store().Create(ctx, movie)
}

func (m *memMovies) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	return m.store().Update(ctx, id, patch)
}

func (m *memMovies) SoftDelete(ctx context.Context, id string) (bool, error) {
	return m.store().SoftDelete(ctx, id)
}

func (m *memMovies) WithinTx(ctx context.Context, fn func(ctx context.Context, store repository.MovieStore) error) error {
	m.mu.Lock()
	m.txCount++
	working := make(map[string]*domain.Movie, len(m.rows))
	for id, movie := range m.rows {
		clone := *movie
		working[id] = &clone
	}
	m.mu.Unlock()

	if err := fn(ctx, &memStore{owner: m, rows: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewStorage(err)
	}

	m.mu.Lock()
	m.rows = working
	m.committed++
	m.mu.Unlock()
	return nil
}

// live returns committed, non-deleted rows.
func (m *memMovies) live() []*domain.Movie {
	movies, _ := m.FindAll(context.Background())
	return movies
}

func (s *memStore) FindByExternalID(_ context.Context, externalID string) (*domain.Movie, error) {
	if s.owner.rawErr != nil {
		return nil, s.owner.rawErr
	}
	for _, movie := range s.rows {
		if movie.DeletedAt == nil && movie.ExternalID != nil && *movie.ExternalID == externalID {
			clone := *movie
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*domain.Movie, error) {
	movie, ok := s.rows[id]
	if !ok || movie.DeletedAt != nil {
		return nil, nil
	}
	clone := *movie
	return &clone, nil
}

func (s *memStore) FindAll(context.Context) ([]*domain.Movie, error) {
	movies := make([]*domain.Movie, 0, len(s.rows))
	for _, movie := range s.rows {
		if movie.DeletedAt == nil {
			clone := *movie
			movies = append(movies, &clone)
		}
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].CreatedAt.Before(movies[j].CreatedAt) })
	return movies, nil
}

func (s *memStore) Create(ctx context.Context, movie *domain.Movie) error {
	s.owner.creates++
	if s.owner.failOn > 0 && s.owner.creates == s.owner.failOn {
		if s.owner.failWith != nil {
			return s.owner.failWith
		}
		return apperrors.NewStorage(errors.New("insert failed"))
	}
	if movie.HasExternalID() {
		if existing, _ := s.FindByExternalID(ctx, *movie.ExternalID); existing != nil {
			return apperrors.NewAlreadyExists("movie", "duplicate external id")
		}
	}
	now := time.Now().Add(time.Duration(len(s.rows)) * time.Microsecond)
	movie.ID = uuid.NewString()
	movie.CreatedAt, movie.UpdatedAt = now, now
	clone := *movie
	s.rows[movie.ID] = &clone
	return nil
}

func (s *memStore) Update(_ context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	movie, ok := s.rows[id]
	if !ok || movie.DeletedAt != nil {
		return nil, nil
	}
	patch.Apply(movie)
	movie.UpdatedAt = time.Now()
	clone := *movie
	return &clone, nil
}

func (s *memStore) SoftDelete(_ context.Context, id string) (bool, error) {
	movie, ok := s.rows[id]
	if !ok || movie.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	movie.DeletedAt = &now
	return true, nil
}

type stubSource struct {
	films []domain.ExternalMovie
	err   error
	calls int
}

func (s *stubSource) FetchAll(context.Context) ([]domain.ExternalMovie, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.ExternalMovie, len(s.films))
	copy(out, s.films)
	return out, nil
}

type memStatuses struct {
	last *domain.SyncStatus
}

func (m *memStatuses) Save(_ context.Context, status domain.SyncStatus) error {
	m.last = &status
	return nil
}

func (m *memStatuses) Last(context.Context) (*domain.SyncStatus, error) {
	return m.last, nil
}

type memUsers struct {
	byEmail map[string]*domain.User
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	clone := *user
	m.byEmail[user.Email] = &clone
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func film(externalID, title string) domain.ExternalMovie {
	return domain.ExternalMovie{
		MovieAttributes: domain.MovieAttributes{
			Title:        title,
			EpisodeID:    4,
			OpeningCrawl: "It is a period of civil war.",
			Director:     "George Lucas",
			Producer:     "Gary Kurtz",
			ReleaseDate:  time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
			URL:          "https://swapi.py4e.com/api/films/" + externalID + "/",
		},
		ExternalID: externalID,
	}
}
