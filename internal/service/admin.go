package service

import (
	"context"
	"errors"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/repository"
	"github.com/Clark-Hu/store-rating/internal/stats"
)

// recentLimit is the number of recent users and stores on the admin dashboard.
const recentLimit = 5

// AdminDashboard summarizes the platform.
type AdminDashboard struct {
	Counts       repository.PlatformCounts
	UsersByRole  map[domain.Role]int
	RecentUsers  []domain.User
	RecentStores []domain.StoreWithOwner
}

// UserDetail is a user with the store they own, if any.
type UserDetail struct {
	User       domain.User
	OwnedStore *StoreView
}

// AdminDashboard returns platform totals and the most recent activity.
func (s *Service) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return AdminDashboard{}, apperr.Internal("Failed to fetch dashboard statistics", err)
	}
	byRole, err := s.repo.Users.CountByRole(ctx)
	if err != nil {
		return AdminDashboard{}, apperr.Internal("Failed to fetch dashboard statistics", err)
	}
	users, err := s.repo.Users.Recent(ctx, recentLimit)
	if err != nil {
		return AdminDashboard{}, apperr.Internal("Failed to fetch dashboard statistics", err)
	}
	stores, err := s.repo.Stores.List(ctx, repository.StoreListFilters{Limit: recentLimit})
	if err != nil {
		return AdminDashboard{}, apperr.Internal("Failed to fetch dashboard statistics", err)
	}
	return AdminDashboard{
		Counts:       counts,
		UsersByRole:  stats.RoleTally(byRole),
		RecentUsers:  users,
		RecentStores: stores,
	}, nil
}

// ListUsers returns every user, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.Users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	return users, nil
}

// UserDetail returns a user and, for store owners, their store with its aggregate.
func (s *Service) UserDetail(ctx context.Context, userID string) (UserDetail, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return UserDetail{}, err
	}
	detail := UserDetail{User: user}

	st, err := s.repo.Stores.GetByOwner(ctx, user.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return detail, nil
	case err != nil:
		return UserDetail{}, apperr.Internal("Failed to fetch user", err)
	}
	views, err := s.withStats(ctx, []domain.StoreWithOwner{{Store: st, Owner: user.Summary()}})
	if err != nil {
		return UserDetail{}, err
	}
	detail.OwnedStore = &views[0]
	return detail, nil
}

// AvailableStoreOwners lists store owners without a store, by name.
func (s *Service) AvailableStoreOwners(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.Users.ListAvailableStoreOwners(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch store owners", err)
	}
	return users, nil
}

// EnsureAdmin creates an admin account unless one with the email already
// exists. created reports whether a new account was written.
func (s *Service) EnsureAdmin(ctx context.Context, in CreateUserInput) (user domain.User, created bool, err error) {
	in.Role = domain.RoleAdmin.String()
	existing, err := s.repo.Users.GetByEmail(ctx, in.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, false, apperr.Internal("Failed to look up admin", err)
	}
	user, err = s.CreateUser(ctx, in)
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}
