package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/browse"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/service"
)

type adminDashboardResponse struct {
	TotalUsers   int             `json:"totalUsers"`
	TotalStores  int             `json:"totalStores"`
	TotalRatings int             `json:"totalRatings"`
	UsersByRole  map[string]int  `json:"usersByRole"`
	RecentUsers  []userResponse  `json:"recentUsers"`
	RecentStores []storeResponse `json:"recentStores"`
}

type userDetailResponse struct {
	userResponse
	OwnedStore *ratedStoreResponse `json:"ownedStore"`
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.AdminDashboard(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	byRole := make(map[string]int, len(dash.UsersByRole))
	for role, n := range dash.UsersByRole {
		byRole[role.String()] = n
	}
	stores := make([]storeResponse, 0, len(dash.RecentStores))
	for _, st := range dash.RecentStores {
		stores = append(stores, toStoreWithOwnerResponse(st, false))
	}
	s.respondSuccess(w, http.StatusOK, "Dashboard stats retrieved successfully", adminDashboardResponse{
		TotalUsers:   dash.Counts.Users,
		TotalStores:  dash.Counts.Stores,
		TotalRatings: dash.Counts.Ratings,
		UsersByRole:  byRole,
		RecentUsers:  toUserResponses(dash.RecentUsers),
		RecentStores: stores,
	})
}

func userFields(u domain.User) browse.UserFields {
	f := browse.UserFields{Name: u.Name, Email: u.Email, Role: u.Role.String()}
	if u.Address != nil {
		f.Address = *u.Address
	}
	return f
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	query := browse.UserQueryFromValues(r.URL.Query())
	if query.Role != "" && query.Role != "all" {
		if _, err := domain.ParseRole(query.Role); err != nil {
			s.respondError(w, r, apperr.Invalid("Invalid role. Must be admin, user, or store_owner"))
			return
		}
	}

	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	users = browse.Users(users, query, userFields)
	s.respondSuccess(w, http.StatusOK, "Users retrieved successfully", map[string]interface{}{
		"users": toUserResponses(users),
		"count": len(users),
	})
}

func (s *Server) handleAdminGetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.UserDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := userDetailResponse{userResponse: toUserResponse(detail.User)}
	if detail.OwnedStore != nil {
		owned := toRatedStoreResponse(*detail.OwnedStore, false)
		owned.Owner = nil
		resp.OwnedStore = &owned
	}
	s.respondSuccess(w, http.StatusOK, "User retrieved successfully", map[string]interface{}{
		"user": resp,
	})
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	user, err := s.svc.CreateUser(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusCreated, "User created successfully", map[string]interface{}{
		"user": toUserResponse(user),
	})
}

func (s *Server) handleAdminListStores(w http.ResponseWriter, r *http.Request) {
	query, err := browse.StoreQueryFromValues(r.URL.Query())
	if err != nil {
		s.respondError(w, r, apperr.Invalid(err.Error()))
		return
	}

	views, err := s.svc.ListStores(r.Context(), false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	views = browse.Stores(views, query, storeViewFields)

	stores := make([]ratedStoreResponse, 0, len(views))
	for _, v := range views {
		stores = append(stores, toRatedStoreResponse(v, false))
	}
	s.respondSuccess(w, http.StatusOK, "Stores retrieved successfully", map[string]interface{}{
		"stores": stores,
		"count":  len(stores),
	})
}

func (s *Server) handleAdminCreateStore(w http.ResponseWriter, r *http.Request) {
	var req service.AdminStoreInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	st, err := s.svc.AdminCreateStore(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusCreated, "Store created successfully", map[string]interface{}{
		"store": toStoreWithOwnerResponse(st, false),
	})
}

func (s *Server) handleAdminStoreRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.svc.RatingsByStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Store ratings retrieved successfully", map[string]interface{}{
		"ratings": toRaterResponses(ratings),
		"count":   len(ratings),
	})
}

func (s *Server) handleAdminStoreOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.svc.AvailableStoreOwners(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, "Store owners retrieved successfully", map[string]interface{}{
		"storeOwners": toUserResponses(owners),
	})
}
