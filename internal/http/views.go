package httpserver

import (
	"time"

	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/service"
	"github.com/Clark-Hu/store-rating/internal/stats"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   *string   `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type personResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type storeResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Address     *string         `json:"address"`
	Phone       *string         `json:"phone"`
	Category    *string         `json:"category"`
	OwnerID     string          `json:"ownerId"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Owner       *personResponse `json:"owner,omitempty"`
}

type ratedStoreResponse struct {
	storeResponse
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

type ratingResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"userId"`
	StoreID   string                `json:"storeId"`
	Rating    int                   `json:"rating"`
	Comment   *string               `json:"comment"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
	Store     *storeSummaryResponse `json:"store,omitempty"`
	User      *personResponse       `json:"user,omitempty"`
}

type storeSummaryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type statisticsResponse struct {
	TotalRatings       int                `json:"totalRatings"`
	AverageRating      float64            `json:"averageRating"`
	RatingDistribution stats.Distribution `json:"ratingDistribution"`
}

type monthTrendResponse struct {
	Month         time.Time `json:"month"`
	AverageRating float64   `json:"averageRating"`
	TotalRatings  int       `json:"totalRatings"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// toPersonResponse renders a joined user; public views omit contact details.
func toPersonResponse(u domain.UserSummary, public bool) *personResponse {
	p := &personResponse{ID: u.ID, Name: u.Name}
	if !public {
		p.Email = u.Email
		p.Address = u.Address
	}
	return p
}

func toStoreResponse(st domain.Store) storeResponse {
	return storeResponse{
		ID:          st.ID,
		Name:        st.Name,
		Description: st.Description,
		Address:     st.Address,
		Phone:       st.Phone,
		Category:    st.Category,
		OwnerID:     st.OwnerID,
		IsActive:    st.IsActive,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}

func toStoreWithOwnerResponse(st domain.StoreWithOwner, public bool) storeResponse {
	resp := toStoreResponse(st.Store)
	resp.Owner = toPersonResponse(st.Owner, public)
	return resp
}

func toRatedStoreResponse(v service.StoreView, public bool) ratedStoreResponse {
	return ratedStoreResponse{
		storeResponse: toStoreWithOwnerResponse(v.StoreWithOwner, public),
		AverageRating: v.Stats.Average,
		TotalRatings:  v.Stats.Count,
	}
}

func toRatingResponse(r domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Rating:    r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toStatistics(s stats.Summary) statisticsResponse {
	return statisticsResponse{
		TotalRatings:       s.Count,
		AverageRating:      s.Average,
		RatingDistribution: s.Distribution,
	}
}
