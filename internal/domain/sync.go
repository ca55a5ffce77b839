package domain

import "time"

// SyncStatus summarizes the most recent synchronization run.
type SyncStatus struct {
	RunID       string    `json:"run_id"`
	Count       int       `json:"count"`
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
}
