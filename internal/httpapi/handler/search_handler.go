package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookreview/internal/httpapi/dto"
	"bookreview/internal/httpapi/service"
)

type SearchHandler struct {
	bookService service.BookService
}

func NewSearchHandler(bookService service.BookService) *SearchHandler {
	return &SearchHandler{bookService: bookService}
}

func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
}

// Search handles GET /api/search?q= with a case-insensitive substring match on
// title or author. Soft-deleted books are included, unlike the listing
// endpoint, and there is no pagination.
func (h *SearchHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.bookService.Search(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	books := make([]dto.BookResponse, 0, len(list))
	for _, b := range list {
		books = append(books, dto.FromModelToBookResponse(b))
	}

	c.JSON(http.StatusOK, books)
}
