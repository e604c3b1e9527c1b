package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/cache"
	"github.com/dzuokumor/Civic-voice/internal/middleware"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
)

const statsCacheKey = "stats:dashboard"
const statsCacheTTL = 5 * time.Minute

type ModerationHandler struct {
	store *store.Store
	cache *cache.RedisCache
}

func NewModerationHandler(st *store.Store, c *cache.RedisCache) *ModerationHandler {
	return &ModerationHandler{store: st, cache: c}
}

// List pages through the moderation queue, defaulting to pending reports.
func (h *ModerationHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", model.StatusPending)
	category := c.Query("category")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page",
		strconv.FormatInt(h.store.GetSettingInt(store.SettingReportsPerPage, 10), 10)))

	result, err := h.store.ListByStatus(status, category, page, perPage)
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

type decideRequest struct {
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes"`
}

// Decide applies a moderation decision. The route is guarded by
// RequireRole(moderator); a second decision on the same report gets 409.
func (h *ModerationHandler) Decide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be verified or rejected"})
		return
	}

	report, err := h.store.Decide(c.Param("id"), middleware.ActorID(c), req.Action, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RecordModerationDecision(req.Action)
	h.invalidateStats(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Report " + req.Action + " successfully",
		"report": gin.H{
			"id":         report.ID,
			"status":     report.Status,
			"updated_at": report.UpdatedAt,
		},
	})
}

// Stats serves the dashboard summary, cached for a few minutes.
func (h *ModerationHandler) Stats(c *gin.Context) {
	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), statsCacheKey); err == nil {
			var stats store.DashboardStats
			if json.Unmarshal(cached, &stats) == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
		}
	}

	stats, err := h.store.Stats()
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = h.cache.Set(c.Request.Context(), statsCacheKey, data, statsCacheTTL)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ModerationHandler) invalidateStats(c *gin.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Request.Context(), statsCacheKey)
	}
}
