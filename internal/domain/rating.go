package domain

import "time"

// Score bounds for a rating.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating represents a single user's rating for a store.
type Rating struct {
	ID        string
	UserID    string
	StoreID   string
	Score     int
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingWithStore is a rating joined with the rated store, used for "my ratings".
type RatingWithStore struct {
	Rating
	Store StoreSummary
}

// RatingWithRater is a rating joined with the rater, used for the owner review feed.
type RatingWithRater struct {
	Rating
	Rater UserSummary
}

// StoreScore is the minimal (store, score) pair fed to the aggregator.
type StoreScore struct {
	StoreID   string
	Score     int
	CreatedAt time.Time
}
