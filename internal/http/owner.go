package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/service"
)

type ownerDashboardResponse struct {
	HasStore    bool               `json:"hasStore"`
	Store       storeResponse      `json:"store"`
	Statistics  statisticsResponse `json:"statistics"`
	UserRatings []ratingResponse   `json:"userRatings"`
}

type ownerNoStoreResponse struct {
	HasStore bool   `json:"hasStore"`
	Message  string `json:"message"`
}

type ownerAnalyticsResponse struct {
	MonthlyTrends []monthTrendResponse `json:"monthlyTrends"`
	TotalRatings  int                  `json:"totalRatings"`
	AverageRating float64              `json:"averageRating"`
}

func (s *Server) handleOwnerDashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	dash, err := s.svc.OwnerDashboard(r.Context(), id.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !dash.HasStore {
		s.respondSuccess(w, http.StatusOK, "Dashboard data retrieved successfully", ownerNoStoreResponse{
			HasStore: false,
			Message:  "No store found. Please create a store first.",
		})
		return
	}

	s.respondSuccess(w, http.StatusOK, "Dashboard data retrieved successfully", ownerDashboardResponse{
		HasStore:    true,
		Store:       toStoreResponse(dash.Store),
		Statistics:  toStatistics(dash.Stats),
		UserRatings: toRaterResponses(dash.Ratings),
	})
}

func toRaterResponses(ratings []domain.RatingWithRater) []ratingResponse {
	out := make([]ratingResponse, 0, len(ratings))
	for _, rt := range ratings {
		resp := toRatingResponse(rt.Rating)
		resp.User = &personResponse{ID: rt.Rater.ID, Name: rt.Rater.Name, Email: rt.Rater.Email}
		out = append(out, resp)
	}
	return out
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req service.StoreInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	id, _ := identityFrom(r.Context())
	st, err := s.svc.CreateStore(r.Context(), id.ID, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusCreated, "Store created successfully", map[string]interface{}{
		"store": toStoreResponse(st),
	})
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	var req service.StoreUpdateInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	id, _ := identityFrom(r.Context())
	st, err := s.svc.UpdateStore(r.Context(), id.ID, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Store updated successfully", map[string]interface{}{
		"store": toStoreResponse(st),
	})
}

func (s *Server) handleOwnerAnalytics(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	analytics, err := s.svc.OwnerAnalytics(r.Context(), id.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	trends := make([]monthTrendResponse, 0, len(analytics.Monthly))
	for _, m := range analytics.Monthly {
		trends = append(trends, monthTrendResponse{
			Month:         m.Month,
			AverageRating: m.Summary.Average,
			TotalRatings:  m.Summary.Count,
		})
	}
	s.respondSuccess(w, http.StatusOK, "Analytics retrieved successfully", ownerAnalyticsResponse{
		MonthlyTrends: trends,
		TotalRatings:  analytics.Summary.Count,
		AverageRating: analytics.Summary.Average,
	})
}
