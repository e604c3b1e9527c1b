package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	store *store.Store
}

func NewPublicHandler(st *store.Store) *PublicHandler {
	return &PublicHandler{store: st}
}

// Reports pages through the verified corpus with optional category and
// inclusive date filters.
func (h *PublicHandler) Reports(c *gin.Context) {
	filters, err := store.ParseFilters(store.RawFilters{
		Category:  c.Query("category"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	result, err := h.store.ListVerified(filters, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	reports := make([]gin.H, 0, len(result.Reports))
	for i := range result.Reports {
		reports = append(reports, reportSummary(&result.Reports[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"pagination": gin.H{
			"total":        result.Total,
			"pages":        result.TotalPages,
			"current_page": result.Page,
			"per_page":     result.PerPage,
		},
	})
}

// Categories returns the fixed category enum.
func (h *PublicHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": model.Categories})
}

// Health probes the database.
func (h *PublicHandler) Health(c *gin.Context) {
	if err := h.store.DB().Exec("SELECT 1").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
