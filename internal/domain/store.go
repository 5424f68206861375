package domain

import "time"

// Store is a rateable business. Each store owner owns at most one store.
type Store struct {
	ID          string
	Name        string
	Description *string
	Address     *string
	Phone       *string
	Category    *string
	OwnerID     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreWithOwner is a store joined with its owner's identity.
type StoreWithOwner struct {
	Store
	Owner UserSummary
}

// StoreSummary is the store identity embedded in a rater's rating list.
type StoreSummary struct {
	ID          string
	Name        string
	Description *string
}
