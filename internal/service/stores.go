package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/repository"
	"github.com/Clark-Hu/store-rating/internal/stats"
)

// StoreInput is the payload for creating a store.
type StoreInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Address     *string `json:"address" validate:"omitempty,max=400"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

// AdminStoreInput is the admin payload; the owner is chosen explicitly.
type AdminStoreInput struct {
	StoreInput
	OwnerID string `json:"ownerId"`
}

// StoreUpdateInput is a partial update. Absent or blank fields are left unchanged.
type StoreUpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Address     *string `json:"address" validate:"omitempty,max=400"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

// StoreView is a store with its owner and rating aggregate.
type StoreView struct {
	domain.StoreWithOwner
	Stats stats.Summary
}

// OwnerDashboard is what a store owner sees for their store.
type OwnerDashboard struct {
	HasStore bool
	Store    domain.Store
	Stats    stats.Summary
	Ratings  []domain.RatingWithRater
}

// OwnerAnalytics is the monthly trend for an owner's store.
type OwnerAnalytics struct {
	Store   domain.Store
	Summary stats.Summary
	Monthly []stats.MonthTrend
}

func (in *StoreInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimmed(in.Description)
	in.Address = trimmed(in.Address)
	in.Phone = trimmed(in.Phone)
	in.Category = trimmed(in.Category)
}

func (in StoreInput) params(ownerID string) repository.StoreCreateParams {
	return repository.StoreCreateParams{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Phone:       in.Phone,
		Category:    in.Category,
		OwnerID:     ownerID,
	}
}

// CreateStore creates the caller's own store.
func (s *Service) CreateStore(ctx context.Context, ownerID string, in StoreInput) (domain.Store, error) {
	const conflict = "You already have a store. Each user can only own one store."

	in.normalize()
	if err := s.check(in); err != nil {
		return domain.Store{}, err
	}
	if _, err := s.repo.Stores.GetByOwner(ctx, ownerID); err == nil {
		return domain.Store{}, apperr.Conflict(conflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Store{}, apperr.Internal("Failed to create store", err)
	}

	st, err := s.repo.Stores.Create(ctx, in.params(ownerID))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return domain.Store{}, apperr.Conflict(conflict)
		case errors.Is(err, repository.ErrNotFound):
			return domain.Store{}, apperr.NotFound("User not found")
		}
		return domain.Store{}, apperr.Internal("Failed to create store", err)
	}
	s.logger.WithFields(logrus.Fields{"store_id": st.ID, "owner_id": ownerID}).Info("store created")
	return st, nil
}

// AdminCreateStore creates a store on behalf of a store owner.
func (s *Service) AdminCreateStore(ctx context.Context, in AdminStoreInput) (domain.StoreWithOwner, error) {
	const conflict = "This store owner already has a store"

	in.normalize()
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	if in.Name == "" || in.OwnerID == "" {
		return domain.StoreWithOwner{}, apperr.Invalid("Store name and owner ID are required")
	}
	if err := s.check(in.StoreInput); err != nil {
		return domain.StoreWithOwner{}, err
	}

	if !validID(in.OwnerID) {
		return domain.StoreWithOwner{}, apperr.NotFound("Owner not found")
	}
	owner, err := s.repo.Users.GetByID(ctx, in.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.StoreWithOwner{}, apperr.NotFound("Owner not found")
		}
		return domain.StoreWithOwner{}, apperr.Internal("Failed to create store", err)
	}
	if owner.Role != domain.RoleStoreOwner {
		return domain.StoreWithOwner{}, apperr.Invalid("Selected user is not a store owner")
	}

	st, err := s.repo.Stores.Create(ctx, in.params(owner.ID))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.StoreWithOwner{}, apperr.Conflict(conflict)
		}
		return domain.StoreWithOwner{}, apperr.Internal("Failed to create store", err)
	}
	s.logger.WithFields(logrus.Fields{"store_id": st.ID, "owner_id": owner.ID}).Info("store created by admin")
	return domain.StoreWithOwner{Store: st, Owner: owner.Summary()}, nil
}

// UpdateStore applies a partial update to the caller's store.
func (s *Service) UpdateStore(ctx context.Context, ownerID string, in StoreUpdateInput) (domain.Store, error) {
	in.Name = trimmed(in.Name)
	in.Description = trimmed(in.Description)
	in.Address = trimmed(in.Address)
	in.Phone = trimmed(in.Phone)
	in.Category = trimmed(in.Category)
	if err := s.check(in); err != nil {
		return domain.Store{}, err
	}

	st, err := s.repo.Stores.UpdateByOwner(ctx, ownerID, repository.StoreUpdateParams{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Phone:       in.Phone,
		Category:    in.Category,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Store{}, apperr.NotFound("Store not found")
		}
		return domain.Store{}, apperr.Internal("Failed to update store", err)
	}
	return st, nil
}

// ListStores returns stores with their aggregates, newest first. Public
// callers pass activeOnly.
func (s *Service) ListStores(ctx context.Context, activeOnly bool) ([]StoreView, error) {
	stores, err := s.repo.Stores.List(ctx, repository.StoreListFilters{ActiveOnly: activeOnly})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch stores", err)
	}
	return s.withStats(ctx, stores)
}

func (s *Service) withStats(ctx context.Context, stores []domain.StoreWithOwner) ([]StoreView, error) {
	ids := make([]string, 0, len(stores))
	for _, st := range stores {
		ids = append(ids, st.ID)
	}
	scores, err := s.repo.Ratings.Scores(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("Failed to aggregate ratings", err)
	}
	summaries := stats.ByStore(scores)

	views := make([]StoreView, 0, len(stores))
	for _, st := range stores {
		summary, ok := summaries[st.ID]
		if !ok {
			summary = stats.Aggregate(nil)
		}
		views = append(views, StoreView{StoreWithOwner: st, Stats: summary})
	}
	return views, nil
}

// OwnerDashboard returns the caller's store, its aggregate and its reviews.
// HasStore is false when the caller has not created a store yet.
func (s *Service) OwnerDashboard(ctx context.Context, ownerID string) (OwnerDashboard, error) {
	st, err := s.repo.Stores.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OwnerDashboard{HasStore: false}, nil
		}
		return OwnerDashboard{}, apperr.Internal("Failed to fetch dashboard", err)
	}

	ratings, err := s.repo.Ratings.ListByStore(ctx, st.ID)
	if err != nil {
		return OwnerDashboard{}, apperr.Internal("Failed to fetch dashboard", err)
	}
	scores := make([]int, 0, len(ratings))
	for _, r := range ratings {
		scores = append(scores, r.Score)
	}
	return OwnerDashboard{
		HasStore: true,
		Store:    st,
		Stats:    stats.Aggregate(scores),
		Ratings:  ratings,
	}, nil
}

// OwnerAnalytics returns the monthly rating trend of the caller's store.
func (s *Service) OwnerAnalytics(ctx context.Context, ownerID string) (OwnerAnalytics, error) {
	st, err := s.repo.Stores.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OwnerAnalytics{}, apperr.NotFound("Store not found")
		}
		return OwnerAnalytics{}, apperr.Internal("Failed to fetch analytics", err)
	}
	scores, err := s.repo.Ratings.Scores(ctx, []string{st.ID})
	if err != nil {
		return OwnerAnalytics{}, apperr.Internal("Failed to fetch analytics", err)
	}
	values := make([]int, 0, len(scores))
	for _, sc := range scores {
		values = append(values, sc.Score)
	}
	return OwnerAnalytics{
		Store:   st,
		Summary: stats.Aggregate(values),
		Monthly: stats.Monthly(scores),
	}, nil
}
