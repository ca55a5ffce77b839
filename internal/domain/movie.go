package domain

import "time"

// ReleaseDateLayout is the wire layout for release dates.
const ReleaseDateLayout = "2006-01-02"

// MovieAttributes are the core catalog attributes replaced on synchronization.
type MovieAttributes struct {
	Title        string
	EpisodeID    int
	OpeningCrawl string
	Director     string
	Producer     string
	ReleaseDate  time.Time
	URL          string
}

// Movie is the catalog record aggregate.
type Movie struct {
	ID string
	MovieAttributes
	ExternalID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Deleted reports whether the record has been soft-deleted.
func (m *Movie) Deleted() bool {
	return m != nil && m.DeletedAt != nil
}

// HasExternalID reports whether the record carries a correlation key.
func (m *Movie) HasExternalID() bool {
	return m != nil && m.ExternalID != nil && *m.ExternalID != ""
}

// ExternalMovie is a record from the authoritative source.
type ExternalMovie struct {
	MovieAttributes
	ExternalID string
}

// MoviePatch lists the attributes a partial update may overwrite. Nil fields are left alone.
type MoviePatch struct {
	Title        *string
	EpisodeID    *int
	OpeningCrawl *string
	Director     *string
	Producer     *string
	ReleaseDate  *time.Time
	URL          *string
}

// Empty reports whether the patch touches no field.
func (p MoviePatch) Empty() bool {
	return p.Title == nil && p.EpisodeID == nil && p.OpeningCrawl == nil &&
		p.Director == nil && p.Producer == nil && p.ReleaseDate == nil && p.URL == nil
}

// PatchFromAttributes builds a full replacement patch.
func PatchFromAttributes(a MovieAttributes) MoviePatch {
	return MoviePatch{
		Title:        &a.Title,
		EpisodeID:    &a.EpisodeID,
		OpeningCrawl: &a.OpeningCrawl,
		Director:     &a.Director,
		Producer:     &a.Producer,
		ReleaseDate:  &a.ReleaseDate,
		URL:          &a.URL,
	}
}

// Apply overwrites the attributes named by the patch.
func (p MoviePatch) Apply(m *Movie) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.EpisodeID != nil {
		m.EpisodeID = *p.EpisodeID
	}
	if p.OpeningCrawl != nil {
		m.OpeningCrawl = *p.OpeningCrawl
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
	if p.Producer != nil {
		m.Producer = *p.Producer
	}
	if p.ReleaseDate != nil {
		m.ReleaseDate = *p.ReleaseDate
	}
	if p.URL != nil {
		m.URL = *p.URL
	}
}
