package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/repository"
)

// MaxCommentLength bounds the optional rating comment.
const MaxCommentLength = 1000

// RatingInput is a rating submission.
type RatingInput struct {
	StoreID string  `json:"storeId"`
	Score   int     `json:"rating"`
	Comment *string `json:"comment"`
}

// SubmitRating records or replaces the rater's rating of a store. created is
// true when no earlier rating by this rater existed for the store.
func (s *Service) SubmitRating(ctx context.Context, raterID string, in RatingInput) (rating domain.Rating, created bool, err error) {
	if in.Score < domain.MinScore || in.Score > domain.MaxScore {
		return domain.Rating{}, false, apperr.Invalid("Rating must be between 1 and 5")
	}
	in.StoreID = strings.TrimSpace(in.StoreID)
	if in.StoreID == "" {
		return domain.Rating{}, false, apperr.Invalid("Store ID is required")
	}
	in.Comment = trimmed(in.Comment)
	if in.Comment != nil && len([]rune(*in.Comment)) > MaxCommentLength {
		return domain.Rating{}, false, apperr.Invalid("comment must be at most 1000 characters long")
	}

	if !validID(in.StoreID) {
		return domain.Rating{}, false, apperr.NotFound("Store not found")
	}
	st, err := s.repo.Stores.GetByID(ctx, in.StoreID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Rating{}, false, apperr.NotFound("Store not found")
		}
		return domain.Rating{}, false, apperr.Internal("Failed to submit rating", err)
	}
	if st.OwnerID == raterID {
		return domain.Rating{}, false, apperr.Forbidden("You cannot rate your own store")
	}

	rating, created, err = s.repo.Ratings.Upsert(ctx, repository.RatingUpsertParams{
		UserID:  raterID,
		StoreID: st.ID,
		Score:   in.Score,
		Comment: in.Comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Rating{}, false, apperr.NotFound("Store not found")
		}
		return domain.Rating{}, false, apperr.Internal("Failed to submit rating", err)
	}

	s.logger.WithFields(logrus.Fields{
		"store_id": st.ID,
		"user_id":  raterID,
		"rating":   rating.Score,
		"created":  created,
	}).Info("rating submitted")
	return rating, created, nil
}

// RatingsByUser lists the caller's ratings, newest first.
func (s *Service) RatingsByUser(ctx context.Context, userID string) ([]domain.RatingWithStore, error) {
	ratings, err := s.repo.Ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch ratings", err)
	}
	return ratings, nil
}

// RatingsByStore lists every rating of a store, newest first.
func (s *Service) RatingsByStore(ctx context.Context, storeID string) ([]domain.RatingWithRater, error) {
	if !validID(storeID) {
		return nil, apperr.NotFound("Store not found")
	}
	if _, err := s.repo.Stores.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Store not found")
		}
		return nil, apperr.Internal("Failed to fetch ratings", err)
	}
	ratings, err := s.repo.Ratings.ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch ratings", err)
	}
	return ratings, nil
}
