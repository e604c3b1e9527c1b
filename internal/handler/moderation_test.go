package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dzuokumor/Civic-voice/internal/handler"
	"github.com/dzuokumor/Civic-voice/internal/middleware"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moderationRouter(t *testing.T, st *store.Store) *gin.Engine {
	t.Helper()
	h := handler.NewModerationHandler(st, nil)
	r := gin.New()
	mod := r.Group("/api/moderator", asUser("mod-1", model.RoleModerator))
	mod.GET("/reports", h.List)
	mod.POST("/reports/:id/verify", h.Decide)
	mod.GET("/stats", h.Stats)
	return r
}

func TestModerationList(t *testing.T) {
	st := newTestStore(t)
	router := moderationRouter(t, st)

	for i := 0; i < 3; i++ {
		_, err := st.CreateReport(store.NewReport{
			Title:     "Broken streetlight on Main St",
			Category:  "infrastructure",
			Latitude:  45.4215,
			Longitude: -75.6972,
		}, nil)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/moderator/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Len(t, body["reports"], 3)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])

	// The queue never leaks credentials.
	first := body["reports"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, first, "reference_code")
	assert.NotContains(t, first, "passphrase")
}

func TestModerationDecide(t *testing.T) {
	st := newTestStore(t)
	router := moderationRouter(t, st)

	report, err := st.CreateReport(store.NewReport{
		Title:     "Broken streetlight on Main St",
		Category:  "infrastructure",
		Latitude:  45.4215,
		Longitude: -75.6972,
	}, nil)
	require.NoError(t, err)

	w := postJSON(t, router, "/api/moderator/reports/"+report.ID+"/verify", gin.H{
		"action": "verified",
		"notes":  "confirmed on site",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Report verified successfully", body["message"])

	// A second decision on the same report conflicts.
	w = postJSON(t, router, "/api/moderator/reports/"+report.ID+"/verify", gin.H{
		"action": "rejected",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, router, "/api/moderator/reports/no-such-id/verify", gin.H{
		"action": "verified",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, router, "/api/moderator/reports/"+report.ID+"/verify", gin.H{
		"action": "escalated",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModerationStats(t *testing.T) {
	st := newTestStore(t)
	router := moderationRouter(t, st)

	report, err := st.CreateReport(store.NewReport{
		Title:     "Broken streetlight on Main St",
		Category:  "infrastructure",
		Latitude:  45.4215,
		Longitude: -75.6972,
	}, nil)
	require.NoError(t, err)
	_, err = st.Decide(report.ID, "mod-1", model.ActionVerified, "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/moderator/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["totalReports"])
	assert.Equal(t, float64(1), body["verifiedReports"])
	assert.Equal(t, float64(0), body["pendingReports"])
}

func TestRequireRole(t *testing.T) {
	st := newTestStore(t)
	h := handler.NewModerationHandler(st, nil)
	r := gin.New()
	r.GET("/api/moderator/reports",
		asUser("researcher-1", model.RoleResearcher),
		middleware.RequireRole(model.RoleModerator), h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/moderator/reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
