package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/repository"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrNotOwner        = errors.New("not the uploader of this book")
	ErrAlreadyReviewed = errors.New("book already reviewed by this user")
)

// BookDetails is the composite result of a single-book fetch: the book itself,
// the mean rating over all of its reviews, and one page of those reviews.
type BookDetails struct {
	Book      models.Book
	AvgRating float64
	Reviews   []models.Review
}

// BookUpdate carries the optional fields of a partial book update. A nil field
// keeps the stored value; a present field overwrites it.
type BookUpdate struct {
	Title       *string
	Author      *string
	Genre       *string
	Description *string
}

type BookService interface {
	Add(ctx context.Context, userID string, book *models.Book) error
	List(ctx context.Context, filter repository.BookFilter) ([]models.Book, error)
	GetDetails(ctx context.Context, id int64, reviewPage, reviewLimit int) (*BookDetails, error)
	Update(ctx context.Context, id int64, userID string, upd BookUpdate) (*models.Book, error)
	SoftDelete(ctx context.Context, id int64, userID string) error
	AddReview(ctx context.Context, bookID int64, userID string, rating int, comment string) (*models.Review, error)
	Search(ctx context.Context, query string) ([]models.Book, error)
}

type bookService struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
}

func NewBookService(bookRepo repository.BookRepository, reviewRepo repository.ReviewRepository) BookService {
	return &bookService{bookRepo: bookRepo, reviewRepo: reviewRepo}
}

func (s *bookService) Add(ctx context.Context, userID string, book *models.Book) error {
	book.UploadedBy = userID
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	book.Genre = strings.TrimSpace(book.Genre)
	book.Description = strings.TrimSpace(book.Description)
	return s.bookRepo.Create(ctx, book)
}

func (s *bookService) List(ctx context.Context, filter repository.BookFilter) ([]models.Book, error) {
	return s.bookRepo.List(ctx, filter)
}

func (s *bookService) GetDetails(ctx context.Context, id int64, reviewPage, reviewLimit int) (*BookDetails, error) {
	book, err := s.bookRepo.FindVisibleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}

	reviews, err := s.reviewRepo.GetByBook(ctx, id, reviewPage, reviewLimit)
	if err != nil {
		return nil, err
	}

	// Mean over every review of the book, not just the returned page
	avg, err := s.reviewRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}

	return &BookDetails{Book: *book, AvgRating: avg, Reviews: reviews}, nil
}

// ownedBook is the single ownership policy for book mutations: fetch, hide
// soft-deleted rows behind not-found, then compare the uploader. Only a
// missing row maps to not-found; storage failures propagate as-is.
func (s *bookService) ownedBook(ctx context.Context, id int64, userID string) (*models.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}
	if book.IsDeleted {
		return nil, ErrBookNotFound
	}
	if book.UploadedBy != userID {
		return nil, ErrNotOwner
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, id int64, userID string, upd BookUpdate) (*models.Book, error) {
	existing, err := s.ownedBook(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	// Field-level overwrite; absent fields keep their stored value
	if upd.Title != nil {
		existing.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Author != nil {
		existing.Author = strings.TrimSpace(*upd.Author)
	}
	if upd.Genre != nil {
		existing.Genre = strings.TrimSpace(*upd.Genre)
	}
	if upd.Description != nil {
		existing.Description = strings.TrimSpace(*upd.Description)
	}

	if err := s.bookRepo.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *bookService) SoftDelete(ctx context.Context, id int64, userID string) error {
	book, err := s.ownedBook(ctx, id, userID)
	if err != nil {
		return err
	}

	book.IsDeleted = true
	return s.bookRepo.Save(ctx, book)
}

func (s *bookService) AddReview(ctx context.Context, bookID int64, userID string, rating int, comment string) (*models.Review, error) {
	if _, err := s.bookRepo.FindVisibleByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("load book %d: %w", bookID, err)
	}

	// Friendly pre-check; the unique (book_id, user_id) index is the backstop
	// for two concurrent inserts racing past it.
	exists, err := s.reviewRepo.ExistsByBookAndUser(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	return review, nil
}

func (s *bookService) Search(ctx context.Context, query string) ([]models.Book, error) {
	return s.bookRepo.Search(ctx, query)
}
