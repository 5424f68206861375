package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/browse"
	"github.com/Clark-Hu/store-rating/internal/service"
)

func storeViewFields(v service.StoreView) browse.StoreFields {
	f := browse.StoreFields{
		Name:       v.Name,
		OwnerName:  v.Owner.Name,
		OwnerEmail: v.Owner.Email,
		Active:     v.IsActive,
		Average:    v.Stats.Average,
	}
	if v.Address != nil {
		f.Address = *v.Address
	}
	if v.Category != nil {
		f.Category = *v.Category
	}
	return f
}

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	query, err := browse.StoreQueryFromValues(r.URL.Query())
	if err != nil {
		s.respondError(w, r, apperr.Invalid(err.Error()))
		return
	}
	// Owner e-mail is not part of the public view, so it cannot be filtered on.
	query.Email = ""

	views, err := s.svc.ListStores(r.Context(), true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	views = browse.Stores(views, query, func(v service.StoreView) browse.StoreFields {
		f := storeViewFields(v)
		f.OwnerEmail = ""
		return f
	})

	stores := make([]ratedStoreResponse, 0, len(views))
	for _, v := range views {
		stores = append(stores, toRatedStoreResponse(v, true))
	}
	s.respondSuccess(w, http.StatusOK, "Stores retrieved successfully", map[string]interface{}{
		"stores": stores,
	})
}

func (s *Server) handleRateStore(w http.ResponseWriter, r *http.Request) {
	var req service.RatingInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	id, _ := identityFrom(r.Context())
	rating, created, err := s.svc.SubmitRating(r.Context(), id.ID, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.metrics.RatingSubmitted(created)

	status, message := http.StatusOK, "Rating updated successfully"
	if created {
		status, message = http.StatusCreated, "Rating submitted successfully"
	}
	s.respondSuccess(w, status, message, map[string]interface{}{
		"rating": toRatingResponse(rating),
	})
}

func (s *Server) handleMyRatings(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	ratings, err := s.svc.RatingsByUser(r.Context(), id.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]ratingResponse, 0, len(ratings))
	for _, rt := range ratings {
		resp := toRatingResponse(rt.Rating)
		resp.Store = &storeSummaryResponse{ID: rt.Store.ID, Name: rt.Store.Name, Description: rt.Store.Description}
		out = append(out, resp)
	}
	s.respondSuccess(w, http.StatusOK, "User ratings retrieved successfully", map[string]interface{}{
		"ratings": out,
	})
}
