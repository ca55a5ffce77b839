package dto

import (
	"time"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

// CreateMovieRequest payload.
type CreateMovieRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	EpisodeID    *int   `json:"episode_id" validate:"required,gte=0"`
	OpeningCrawl string `json:"opening_crawl" validate:"required"`
	Director     string `json:"director" validate:"required,max=255"`
	Producer     string `json:"producer" validate:"required,max=255"`
	ReleaseDate  string `json:"release_date" validate:"required,datetime=2006-01-02"`
	URL          string `json:"url" validate:"required,url"`
}

// UpdateMovieRequest payload. Absent fields are left untouched.
type UpdateMovieRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	EpisodeID    *int    `json:"episode_id" validate:"omitempty,gte=0"`
	OpeningCrawl *string `json:"opening_crawl" validate:"omitempty,min=1"`
	Director     *string `json:"director" validate:"omitempty,min=1,max=255"`
	Producer     *string `json:"producer" validate:"omitempty,min=1,max=255"`
	ReleaseDate  *string `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	URL          *string `json:"url" validate:"omitempty,url"`
}

// MovieResponse is the outward projection of a catalog record.
type MovieResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  string    `json:"release_date"`
	URL          string    `json:"url"`
	ExternalID   *string   `json:"external_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SyncResponse reports a reconciliation run.
type SyncResponse struct {
	Success  bool            `json:"success"`
	RunID    string          `json:"run_id"`
	Count    int             `json:"count"`
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Movies   []MovieResponse `json:"movies"`
}

// SyncStatusResponse reports the latest recorded run.
type SyncStatusResponse struct {
	RunID       string    `json:"run_id"`
	Count       int       `json:"count"`
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Attributes converts a validated create request.
func (r CreateMovieRequest) Attributes() (domain.MovieAttributes, error) {
	released, err := parseReleaseDate(r.ReleaseDate)
	if err != nil {
		return domain.MovieAttributes{}, err
	}
	episode := 0
	if r.EpisodeID != nil {
		episode = *r.EpisodeID
	}
	return domain.MovieAttributes{
		Title:        r.Title,
		EpisodeID:    episode,
		OpeningCrawl: r.OpeningCrawl,
		Director:     r.Director,
		Producer:     r.Producer,
		ReleaseDate:  released,
		URL:          r.URL,
	}, nil
}

// Patch converts a validated update request.
func (r UpdateMovieRequest) Patch() (domain.MoviePatch, error) {
	patch := domain.MoviePatch{
		Title:        r.Title,
		EpisodeID:    r.EpisodeID,
		OpeningCrawl: r.OpeningCrawl,
		Director:     r.Director,
		Producer:     r.Producer,
		URL:          r.URL,
	}
	if r.ReleaseDate != nil {
		released, err := parseReleaseDate(*r.ReleaseDate)
		if err != nil {
			return domain.MoviePatch{}, err
		}
		patch.ReleaseDate = &released
	}
	return patch, nil
}

// NewMovieResponse maps a domain record.
func NewMovieResponse(m *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:           m.ID,
		Title:        m.Title,
		EpisodeID:    m.EpisodeID,
		OpeningCrawl: m.OpeningCrawl,
		Director:     m.Director,
		Producer:     m.Producer,
		ReleaseDate:  m.ReleaseDate.Format(domain.ReleaseDateLayout),
		URL:          m.URL,
		ExternalID:   m.ExternalID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// NewMovieList maps a slice of domain records.
func NewMovieList(movies []*domain.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, NewMovieResponse(m))
	}
	return out
}

func parseReleaseDate(value string) (time.Time, error) {
	released, err := time.Parse(domain.ReleaseDateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("release_date must be a date in the format 2006-01-02", nil)
	}
	return released, nil
}
