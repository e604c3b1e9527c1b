package handler_test

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/handler"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/payment"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseRouter(t *testing.T, st *store.Store, proc *fakeProcessor, actorID string) *gin.Engine {
	t.Helper()
	h := handler.NewPurchaseHandler(st, proc, nil)
	r := gin.New()
	data := r.Group("/api/data", asUser(actorID, model.RoleResearcher))
	data.POST("/purchase", h.Purchase)
	data.POST("/confirm-purchase", h.Confirm)
	data.GET("/download/:token", h.Download)
	return r
}

func seedVerified(t *testing.T, st *store.Store, category string) *model.Report {
	t.Helper()
	report, err := st.CreateReport(store.NewReport{
		Title:       "Broken streetlight on Main St",
		Category:    category,
		Description: "The light has been out for two weeks.",
		Latitude:    45.4215,
		Longitude:   -75.6972,
	}, nil)
	require.NoError(t, err)
	decided, err := st.Decide(report.ID, "mod-1", model.ActionVerified, "")
	require.NoError(t, err)
	return decided
}

func TestPurchaseFlow(t *testing.T) {
	st := newTestStore(t)
	proc := newFakeProcessor()
	router := purchaseRouter(t, st, proc, "researcher-1")

	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "public_safety")

	// Quote and open a payment intent for the filtered corpus.
	w := postJSON(t, router, "/api/data/purchase", gin.H{
		"filters": gin.H{"category": "infrastructure"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["report_count"])
	assert.Equal(t, float64(100), body["amount_cents"])
	intentID := body["payment_intent_id"].(string)
	require.NotEmpty(t, intentID)

	// Confirming before the charge succeeds is rejected.
	w = postJSON(t, router, "/api/data/confirm-purchase", gin.H{"payment_intent_id": intentID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	proc.succeed(intentID)
	w = postJSON(t, router, "/api/data/confirm-purchase", gin.H{"payment_intent_id": intentID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decodeBody(t, w)
	token := body["download_token"].(string)
	require.NotEmpty(t, token)

	// Confirming again conflicts instead of minting a second token.
	w = postJSON(t, router, "/api/data/confirm-purchase", gin.H{"payment_intent_id": intentID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Download the CSV export.
	req := httptest.NewRequest(http.MethodGet, "/api/data/download/"+token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "civic_reports_")

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the two purchased reports")
	assert.Equal(t, []string{
		"report_id", "title", "category", "description",
		"latitude", "longitude", "language", "created_at",
	}, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "infrastructure", row[2])
		assert.Equal(t, "45.4215", row[4])
		assert.Equal(t, "-75.6972", row[5])
	}
}

func TestPurchase_EmptyMatch(t *testing.T) {
	st := newTestStore(t)
	router := purchaseRouter(t, st, newFakeProcessor(), "researcher-1")

	w := postJSON(t, router, "/api/data/purchase", gin.H{
		"filters": gin.H{"category": "infrastructure"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchase_InvalidDateFilter(t *testing.T) {
	st := newTestStore(t)
	router := purchaseRouter(t, st, newFakeProcessor(), "researcher-1")

	w := postJSON(t, router, "/api/data/purchase", gin.H{
		"filters": gin.H{"start_date": "01/01/2026"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "start_date", body["field"])
}

func TestConfirm_MissingQuoteMetadata(t *testing.T) {
	st := newTestStore(t)
	proc := newFakeProcessor()
	router := purchaseRouter(t, st, proc, "researcher-1")

	// A succeeded intent that did not come from Purchase carries no quote
	// metadata; confirming it must not mint a zero-count token.
	proc.intents["pi_external"] = &payment.Intent{
		ID:       "pi_external",
		Status:   "succeeded",
		Amount:   100,
		Metadata: map[string]string{payment.MetaUserID: "researcher-1"},
	}

	w := postJSON(t, router, "/api/data/confirm-purchase", gin.H{"payment_intent_id": "pi_external"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var count int64
	require.NoError(t, st.DB().Model(&model.DataPurchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConfirm_OwnerMismatch(t *testing.T) {
	st := newTestStore(t)
	proc := newFakeProcessor()

	seedVerified(t, st, "infrastructure")

	buyer := purchaseRouter(t, st, proc, "researcher-1")
	w := postJSON(t, buyer, "/api/data/purchase", gin.H{"filters": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	intentID := decodeBody(t, w)["payment_intent_id"].(string)
	proc.succeed(intentID)

	// A different researcher cannot claim the intent.
	other := purchaseRouter(t, st, proc, "researcher-2")
	w = postJSON(t, other, "/api/data/confirm-purchase", gin.H{"payment_intent_id": intentID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownload_WrongOwnerAndExpiry(t *testing.T) {
	st := newTestStore(t)
	proc := newFakeProcessor()
	router := purchaseRouter(t, st, proc, "researcher-1")

	seedVerified(t, st, "infrastructure")

	w := postJSON(t, router, "/api/data/purchase", gin.H{"filters": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	intentID := decodeBody(t, w)["payment_intent_id"].(string)
	proc.succeed(intentID)

	w = postJSON(t, router, "/api/data/confirm-purchase", gin.H{"payment_intent_id": intentID})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["download_token"].(string)

	// Another researcher's request looks like a missing token.
	other := purchaseRouter(t, st, proc, "researcher-2")
	req := httptest.NewRequest(http.MethodGet, "/api/data/download/"+token, nil)
	rec := httptest.NewRecorder()
	other.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// An expired token is 410, distinct from 404.
	require.NoError(t, st.DB().Model(&model.DataPurchase{}).
		Where("id = ?", token).
		Update("expires_at", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).Error)
	req = httptest.NewRequest(http.MethodGet, "/api/data/download/"+token, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGone, rec.Code)
}
