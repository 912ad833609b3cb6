package repository

import (
	"context"
	"errors"
	"fmt"

	"bookreview/internal/httpapi/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateReview is returned when the (book, user) unique index rejects an insert.
var ErrDuplicateReview = errors.New("review already exists for this book and user")

const uniqueViolationCode = "23505"

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ExistsByBookAndUser(ctx context.Context, bookID int64, userID string) (bool, error)
	// FindByIDAndUser filters by both id and owner, so a non-owner lookup
	// behaves exactly like a missing review.
	FindByIDAndUser(ctx context.Context, id int64, userID string) (*models.Review, error)
	Save(ctx context.Context, review *models.Review) error
	DeleteByIDAndUser(ctx context.Context, id int64, userID string) (bool, error)
	GetByBook(ctx context.Context, bookID int64, page, limit int) ([]models.Review, error)
	AverageRating(ctx context.Context, bookID int64) (float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateReview
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ExistsByBookAndUser(ctx context.Context, bookID int64, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) FindByIDAndUser(ctx context.Context, id int64, userID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

// DeleteByIDAndUser removes the review in one conditional statement and reports
// whether a row actually matched.
func (r *reviewRepository) DeleteByIDAndUser(ctx context.Context, id int64, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Review{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByBook retrieves one page of reviews for a book with the reviewer joined in.
func (r *reviewRepository) GetByBook(ctx context.Context, bookID int64, page, limit int) ([]models.Review, error) {
	var reviews []models.Review
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRating calculates the mean rating over every review of the book,
// independent of any pagination window. Returns 0 when no reviews exist.
func (r *reviewRepository) AverageRating(ctx context.Context, bookID int64) (float64, error) {
	var avg struct {
		Average float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as average").
		Where("book_id = ?", bookID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}

	return avg.Average, nil
}
