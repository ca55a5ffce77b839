// Package swapi fetches the authoritative film set from the Star Wars API.
package swapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/movie-catalog/internal/config"
	"github.com/spec-kit/movie-catalog/internal/domain"
	"github.com/spec-kit/movie-catalog/internal/observability"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

const (
	breakerName      = "swapi-films"
	fetchFailure     = "Failed to fetch films from SWAPI"
	maxErrorBodySize = 64 * 1024
)

// Client reads films from SWAPI behind a rate limiter and a circuit breaker.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]domain.ExternalMovie]
	logger  *zap.Logger
}

// NewClient builds a client from configuration. metrics may be nil.
func NewClient(cfg config.SwapiConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	threshold := uint32(cfg.BreakerFailureThreshold)
	if threshold == 0 {
		threshold = 5
	}
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}

	metrics.SetBreakerState(breakerName, stateToFloat(gobreaker.StateClosed))
	breaker := gobreaker.NewCircuitBreaker[[]domain.ExternalMovie](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout(),
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout(),
		http:    &http.Client{Timeout: cfg.Timeout()},
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  logger,
	}
}

// FetchAll returns every film exposed by the source. Any failure, including a
// timeout or an open breaker, is reported as an external service failure.
func (c *Client) FetchAll(ctx context.Context) ([]domain.ExternalMovie, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewExternalService(fetchFailure, err)
	}

	films, err := c.breaker.Execute(func() ([]domain.ExternalMovie, error) {
		return c.fetchFilms(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("swapi request rejected by circuit breaker", zap.Error(err))
		}
		return nil, apperrors.WrapExternal(err, fetchFailure)
	}

	c.logger.Debug("fetched films from swapi", zap.Int("count", len(films)))
	return films, nil
}

func (c *Client) fetchFilms(ctx context.Context) ([]domain.ExternalMovie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/films/", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request films: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var payload filmsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode films: %w", err)
	}

	films := make([]domain.ExternalMovie, 0, len(payload.Results))
	for _, f := range payload.Results {
		movie, err := f.toExternal()
		if err != nil {
			return nil, err
		}
		films = append(films, movie)
	}
	return films, nil
}

type filmsResponse struct {
	Count   int    `json:"count"`
	Results []film `json:"results"`
}

type film struct {
	Title        string `json:"title"`
	EpisodeID    int    `json:"episode_id"`
	OpeningCrawl string `json:"opening_crawl"`
	Director     string `json:"director"`
	Producer     string `json:"producer"`
	ReleaseDate  string `json:"release_date"`
	URL          string `json:"url"`
}

func (f film) toExternal() (domain.ExternalMovie, error) {
	released, err := time.Parse(domain.ReleaseDateLayout, f.ReleaseDate)
	if err != nil {
		return domain.ExternalMovie{}, fmt.Errorf("film %q: invalid release_date %q: %w", f.Title, f.ReleaseDate, err)
	}
	return domain.ExternalMovie{
		MovieAttributes: domain.MovieAttributes{
			Title:        f.Title,
			EpisodeID:    f.EpisodeID,
			OpeningCrawl: f.OpeningCrawl,
			Director:     f.Director,
			Producer:     f.Producer,
			ReleaseDate:  released,
			URL:          f.URL,
		},
		ExternalID: ExternalIDFromURL(f.URL),
	}, nil
}

// ExternalIDFromURL extracts the identity segment of a resource url, so
// "https://swapi.py4e.com/api/films/4/" yields "4". Empty when nothing usable remains.
func ExternalIDFromURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
