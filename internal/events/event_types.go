package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMovieCreated       EventType = "movie_created"
	EventMovieUpdated       EventType = "movie_updated"
	EventMovieDeleted       EventType = "movie_deleted"
	EventMoviesSynchronized EventType = "movies_synchronized"
)

// Actor identifies who triggered an event. Empty for system-initiated work.
type Actor struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	MovieID   string      `json:"movie_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MovieChangedPayload accompanies create, update and delete events.
type MovieChangedPayload struct {
	Title      string  `json:"title"`
	EpisodeID  int     `json:"episode_id"`
	ExternalID *string `json:"external_id,omitempty"`
}

// MoviesSynchronizedPayload summarizes a committed reconciliation.
type MoviesSynchronizedPayload struct {
	RunID       string    `json:"run_id"`
	Count       int       `json:"count"`
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}
