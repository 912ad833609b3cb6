package dto

import (
	"time"

	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/service"
)

// CreateReviewDTO for POST /api/books/:id/reviews
type CreateReviewDTO struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// UpdateReviewDTO for PUT /api/reviews/:id. Pointer fields so "absent" and
// "present but zero" stay distinguishable.
type UpdateReviewDTO struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

func (d UpdateReviewDTO) ToUpdate() service.ReviewUpdate {
	return service.ReviewUpdate{
		Rating:  d.Rating,
		Comment: d.Comment,
	}
}

// ReviewResponse for returning review information with the reviewer joined in
type ReviewResponse struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModelToReviewResponse(review *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		BookID:    review.BookID,
		Username:  review.User.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
