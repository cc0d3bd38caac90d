package model

import "time"

// Expression is a specific recorded performance of a Work.
type Expression struct {
	ID            ExpressionID
	WorkID        WorkID
	Title         string
	MusicBrainzID string
	PerformerIDs  []ArtistID
	ConductorID   *ArtistID
	RecordedYear  int
	DurationSecs  float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewExpression returns an Expression with a fresh identity, owned by workID.
func NewExpression(workID WorkID) Expression {
	now := time.Now()
	return Expression{
		ID:        NewExpressionID(),
		WorkID:    workID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
