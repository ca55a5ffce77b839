package domain

import "time"

// AccessToken is the metadata of an issued bearer credential.
type AccessToken struct {
	Value     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
