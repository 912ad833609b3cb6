package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/repository"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

// ReviewUpdate carries the optional fields of a partial review update. A nil
// field keeps the stored value; a present field overwrites it, zero or not.
type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

type ReviewService interface {
	Update(ctx context.Context, id int64, userID string, upd ReviewUpdate) (*models.Review, error)
	Delete(ctx context.Context, id int64, userID string) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo}
}

// Update looks the review up by id and owner together, so a non-owner gets the
// same not-found as a missing review.
func (s *reviewService) Update(ctx context.Context, id int64, userID string, upd ReviewUpdate) (*models.Review, error) {
	if upd.Rating != nil && (*upd.Rating < 1 || *upd.Rating > 5) {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("load review %d: %w", id, err)
	}

	if upd.Rating != nil {
		review.Rating = *upd.Rating
	}
	if upd.Comment != nil {
		review.Comment = *upd.Comment
	}

	if err := s.reviewRepo.Save(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, id int64, userID string) error {
	deleted, err := s.reviewRepo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReviewNotFound
	}
	return nil
}
