package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// MovieStore is the catalog record store. Lookups ignore soft-deleted rows and
// return nil without error when nothing matches.
type MovieStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.Movie, error)
	FindByID(ctx context.Context, id string) (*domain.Movie, error)
	FindAll(ctx context.Context) ([]*domain.Movie, error)
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

// MovieRepository adds a unit of work on top of MovieStore.
type MovieRepository interface {
	MovieStore
	// WithinTx runs fn in one read-committed transaction. The store handed to fn is
	// bound to that transaction; any error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, store MovieStore) error) error
}

const movieColumns = `id, title, episode_id, opening_crawl, director, producer, release_date, url,
        external_id, created_at, updated_at, deleted_at`

type movieStore struct {
	q dbtx
}

type movieRepository struct {
	*movieStore
	pool PgxPool
}

// NewMovieRepository returns a Postgres-backed implementation.
func NewMovieRepository(pool PgxPool) MovieRepository {
	return &movieRepository{movieStore: &movieStore{q: pool}, pool: pool}
}

func (r *movieRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, store MovieStore) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.WrapStorage(err)
	}
	// Rollback runs on a fresh context so a cancelled request still releases the transaction.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
	}()

	if err := fn(ctx, &movieStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return apperrors.WrapStorage(errors.Join(err, rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.WrapStorage(err)
	}
	return nil
}

func (s *movieStore) FindByExternalID(ctx context.Context, externalID string) (*domain.Movie, error) {
	const query = `
        SELECT ` + movieColumns + `
        FROM movies WHERE external_id=$1 AND deleted_at IS NULL`

	return s.queryOne(ctx, query, externalID)
}

func (s *movieStore) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	const query = `
        SELECT ` + movieColumns + `
        FROM movies WHERE id=$1 AND deleted_at IS NULL`

	return s.queryOne(ctx, query, id)
}

func (s *movieStore) FindAll(ctx context.Context) ([]*domain.Movie, error) {
	const query = `
        SELECT ` + movieColumns + `
        FROM movies WHERE deleted_at IS NULL
        ORDER BY episode_id, created_at`

	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	defer rows.Close()

	movies := make([]*domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, apperrors.WrapStorage(err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	return movies, nil
}

func (s *movieStore) Create(ctx context.Context, movie *domain.Movie) error {
	const query = `
        INSERT INTO movies (title, episode_id, opening_crawl, director, producer, release_date, url, external_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	err := s.q.QueryRow(ctx, query,
		movie.Title,
		movie.EpisodeID,
		movie.OpeningCrawl,
		movie.Director,
		movie.Producer,
		movie.ReleaseDate,
		movie.URL,
		nullableString(movie.ExternalID),
	).Scan(&movie.ID, &movie.CreatedAt, &movie.UpdatedAt)
	if err != nil {
		return storageError(err, func() *apperrors.Failure {
			return apperrors.NewAlreadyExists("movie", fmt.Sprintf("A movie with external id %s already exists", derefString(movie.ExternalID)))
		})
	}
	if movie.ExternalID != nil && *movie.ExternalID == "" {
		movie.ExternalID = nil
	}
	return nil
}

// Update overwrites the fields set in patch and returns the stored row. The
// external id is never part of an update.
func (s *movieStore) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	if patch.Empty() {
		return s.FindByID(ctx, id)
	}

	sets, args := patchAssignments(patch)
	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE movies SET %s, updated_at=NOW()
        WHERE id=$%d AND deleted_at IS NULL
        RETURNING %s`, strings.Join(sets, ", "), len(args), movieColumns)

	return s.queryOne(ctx, query, args...)
}

func (s *movieStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE movies SET deleted_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND deleted_at IS NULL`

	tag, err := s.q.Exec(ctx, query, id)
	if err != nil {
		return false, apperrors.WrapStorage(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *movieStore) queryOne(ctx context.Context, query string, args ...any) (*domain.Movie, error) {
	movie, err := scanMovie(s.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorage(err)
	}
	return movie, nil
}

func patchAssignments(patch domain.MoviePatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.EpisodeID != nil {
		add("episode_id", *patch.EpisodeID)
	}
	if patch.OpeningCrawl != nil {
		add("opening_crawl", *patch.OpeningCrawl)
	}
	if patch.Director != nil {
		add("director", *patch.Director)
	}
	if patch.Producer != nil {
		add("producer", *patch.Producer)
	}
	if patch.ReleaseDate != nil {
		add("release_date", *patch.ReleaseDate)
	}
	if patch.URL != nil {
		add("url", *patch.URL)
	}
	return sets, args
}

func scanMovie(row pgx.Row) (*domain.Movie, error) {
	var (
		movie      domain.Movie
		externalID pgtype.Text
		deletedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.EpisodeID,
		&movie.OpeningCrawl,
		&movie.Director,
		&movie.Producer,
		&movie.ReleaseDate,
		&movie.URL,
		&externalID,
		&movie.CreatedAt,
		&movie.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}
	if externalID.Valid {
		movie.ExternalID = &externalID.String
	}
	if deletedAt.Valid {
		movie.DeletedAt = &deletedAt.Time
	}
	return &movie, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
