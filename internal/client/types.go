package client

import (
	"time"

	"github.com/Clark-Hu/store-rating/internal/browse"
)

// User is an account as returned by the API.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   *string   `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields adapts a user for the browse pipeline.
func (u User) Fields() browse.UserFields {
	return browse.UserFields{Name: u.Name, Email: u.Email, Address: deref(u.Address), Role: u.Role}
}

// Person is the owner or rater attached to a store or rating.
type Person struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address *string `json:"address"`
}

// Store is a store listing, with its aggregate when the endpoint provides one.
type Store struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	Phone         *string   `json:"phone"`
	Category      *string   `json:"category"`
	OwnerID       string    `json:"ownerId"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Owner         *Person   `json:"owner"`
	AverageRating float64   `json:"averageRating"`
	TotalRatings  int       `json:"totalRatings"`
}

// Fields adapts a store for the browse pipeline.
func (s Store) Fields() browse.StoreFields {
	f := browse.StoreFields{
		Name:     s.Name,
		Address:  deref(s.Address),
		Category: deref(s.Category),
		Active:   s.IsActive,
		Average:  s.AverageRating,
	}
	if s.Owner != nil {
		f.OwnerName = s.Owner.Name
		f.OwnerEmail = s.Owner.Email
	}
	return f
}

// Rating is a ledger entry, with the rated store or the rater attached
// depending on the endpoint.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	StoreID   string    `json:"storeId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Store     *Store    `json:"store"`
	User      *Person   `json:"user"`
}

// Statistics is a store's rating aggregate.
type Statistics struct {
	TotalRatings       int            `json:"totalRatings"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

// OwnerDashboard is the store owner's overview.
type OwnerDashboard struct {
	HasStore    bool        `json:"hasStore"`
	Message     string      `json:"message"`
	Store       *Store      `json:"store"`
	Statistics  *Statistics `json:"statistics"`
	UserRatings []Rating    `json:"userRatings"`
}

// MonthTrend is one month of the owner analytics.
type MonthTrend struct {
	Month         time.Time `json:"month"`
	AverageRating float64   `json:"averageRating"`
	TotalRatings  int       `json:"totalRatings"`
}

// OwnerAnalytics is the monthly rating trend of the owner's store.
type OwnerAnalytics struct {
	MonthlyTrends []MonthTrend `json:"monthlyTrends"`
	TotalRatings  int          `json:"totalRatings"`
	AverageRating float64      `json:"averageRating"`
}

// AdminDashboard is the platform overview.
type AdminDashboard struct {
	TotalUsers   int            `json:"totalUsers"`
	TotalStores  int            `json:"totalStores"`
	TotalRatings int            `json:"totalRatings"`
	UsersByRole  map[string]int `json:"usersByRole"`
	RecentUsers  []User         `json:"recentUsers"`
	RecentStores []Store        `json:"recentStores"`
}

// UserDetail is a user with the store they own, if any.
type UserDetail struct {
	User
	OwnedStore *Store `json:"ownedStore"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address,omitempty"`
	Role     string  `json:"role,omitempty"`
}

// StoreRequest creates or updates a store. On update, empty fields are left unchanged.
type StoreRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Category    string `json:"category,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
