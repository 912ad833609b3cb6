package repository

import (
	"context"
	"fmt"
	"strings"

	"bookreview/internal/httpapi/models"

	"gorm.io/gorm"
)

// BookFilter carries the optional listing filters and the pagination window.
type BookFilter struct {
	Author string
	Genre  string
	Page   int
	Limit  int
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	// FindByID returns the book regardless of the soft-delete flag, for ownership checks.
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	// FindVisibleByID returns the book with its uploader only while is_deleted = false.
	FindVisibleByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	Save(ctx context.Context, book *models.Book) error
	Search(ctx context.Context, query string) ([]models.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	// GORM populates book.ID and book.CreatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindVisibleByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	var list []models.Book

	db := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if filter.Author != "" {
		db = db.Where("author ILIKE ?", "%"+escapeLike(filter.Author)+"%")
	}
	if filter.Genre != "" {
		db = db.Where("genre ILIKE ?", "%"+escapeLike(filter.Genre)+"%")
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Uploader").
		Order("created_at desc").
		Limit(filter.Limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return list, nil
}

func (r *bookRepository) Save(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

// Search performs case-insensitive substring match on title or author.
// Soft-deleted books are included on purpose; the listing endpoint hides them
// but search never did.
func (r *bookRepository) Search(ctx context.Context, query string) ([]models.Book, error) {
	var list []models.Book
	p := "%" + escapeLike(query) + "%"
	if err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR author ILIKE ?", p, p).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return list, nil
}

// escapeLike neutralizes LIKE metacharacters so user input stays a plain substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
