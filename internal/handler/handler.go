// Package handler wires the HTTP surface: submission and tracking, auth,
// moderation, the public corpus, and the purchase/export flow.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
)

// respondError translates the store error taxonomy into HTTP statuses.
// Unexpected failures are logged with context and surfaced without internal
// detail.
func respondError(c *gin.Context, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case errors.Is(err, store.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "download link has expired"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "service temporarily unavailable"})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
