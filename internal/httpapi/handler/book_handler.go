package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bookreview/internal/httpapi/dto"
	"bookreview/internal/httpapi/repository"
	"bookreview/internal/httpapi/service"
)

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// RegisterRoutes registers book routes; the group is already behind the auth gate.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/reviews", h.AddReview)
}

// Create handles POST /api/books
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book := req.ToModel()
	if err := h.bookService.Add(ctx, c.GetString("userID"), &book); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book added successfully",
		"book":    dto.FromModelToBookResponse(book),
	})
}

// List handles GET /api/books?page=&limit=&author=&genre=
func (h *BookHandler) List(c *gin.Context) {
	filter := repository.BookFilter{
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
		Page:   parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		Limit:  parsePositiveInt(c.DefaultQuery("limit", "10"), 10),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.bookService.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	books := make([]dto.BookResponse, 0, len(list))
	for _, b := range list {
		books = append(books, dto.FromModelToBookResponse(b))
	}

	c.JSON(http.StatusOK, gin.H{
		"books":   books,
		"message": "Books fetched successfully",
	})
}

// Get handles GET /api/books/:id?page=&limit= (pagination applies to reviews)
func (h *BookHandler) Get(c *gin.Context) {
	// Malformed ids are indistinguishable from missing books
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	limit := parsePositiveInt(c.DefaultQuery("limit", "5"), 5)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	details, err := h.bookService.GetDetails(ctx, id, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reviews := make([]dto.ReviewResponse, 0, len(details.Reviews))
	for i := range details.Reviews {
		reviews = append(reviews, dto.FromModelToReviewResponse(&details.Reviews[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"book":      dto.FromModelToBookResponse(details.Book),
		"avgRating": details.AvgRating,
		"reviews":   reviews,
	})
}

// Update handles PUT /api/books/:id (owner only, partial merge)
func (h *BookHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	var req dto.UpdateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.bookService.Update(ctx, id, c.GetString("userID"), req.ToUpdate())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this book"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Book updated successfully",
		"updatedBook": dto.FromModelToBookResponse(*updated),
	})
}

// Delete handles DELETE /api/books/:id (owner only, soft delete)
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.bookService.SoftDelete(ctx, id, c.GetString("userID")); err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this book"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// AddReview handles POST /api/books/:id/reviews
func (h *BookHandler) AddReview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	review, err := h.bookService.AddReview(ctx, id, c.GetString("userID"), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyReviewed):
			c.JSON(http.StatusBadRequest, gin.H{"message": "You have already reviewed this book"})
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review added successfully",
		"review":  dto.FromModelToReviewResponse(review),
	})
}

// parsePositiveInt falls back to def on anything that is not a positive integer.
func parsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
