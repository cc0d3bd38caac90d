package model

import "time"

// Work is an abstract musical composition, independent of any particular
// performance or recording.
type Work struct {
	ID              WorkID
	Title           string
	Composer        string
	MusicBrainzID   string
	CatalogNumber   string
	Key             string
	ComposedYear    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewWork returns a Work with a fresh identity and the given title.
func NewWork(title string) Work {
	now := time.Now()
	return Work{
		ID:        NewWorkID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
