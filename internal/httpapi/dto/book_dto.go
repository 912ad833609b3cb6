package dto

import (
	"time"

	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/service"
)

// CreateBookDTO used for POST /api/books
type CreateBookDTO struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Genre       string `json:"genre" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (d CreateBookDTO) ToModel() models.Book {
	return models.Book{
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		Description: d.Description,
	}
}

// UpdateBookDTO used for PUT /api/books/:id. Pointer fields so absent and
// present-but-empty stay distinguishable all the way into the service.
type UpdateBookDTO struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (d UpdateBookDTO) ToUpdate() service.BookUpdate {
	return service.BookUpdate{
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		Description: d.Description,
	}
}

// UploaderResponse: the joined uploader, stripped down to username and email
type UploaderResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// BookResponse DTO for responses
type BookResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	Genre       string            `json:"genre"`
	Description string            `json:"description"`
	Uploader    *UploaderResponse `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func FromModelToBookResponse(b models.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Uploader.Username != "" {
		resp.Uploader = &UploaderResponse{
			Username: b.Uploader.Username,
			Email:    b.Uploader.Email,
		}
	}
	return resp
}
