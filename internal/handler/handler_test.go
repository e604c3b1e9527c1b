package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dzuokumor/Civic-voice/internal/database"
	"github.com/dzuokumor/Civic-voice/internal/payment"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return store.NewStore(db)
}

// asUser stands in for AuthMiddleware: the handlers only read the context
// keys it sets.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("userRole", role)
		c.Next()
	}
}

// fakeProcessor is an in-memory payment.Processor. Tests flip an intent to
// "succeeded" to simulate the submitter completing payment out of band.
type fakeProcessor struct {
	intents map[string]*payment.Intent
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{intents: make(map[string]*payment.Intent)}
}

func (f *fakeProcessor) CreateIntent(_ context.Context, amountCents int64, metadata map[string]string) (*payment.Intent, error) {
	id := fmt.Sprintf("pi_fake_%d", len(f.intents)+1)
	intent := &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amountCents,
		Metadata:     metadata,
	}
	f.intents[id] = intent
	return intent, nil
}

func (f *fakeProcessor) RetrieveIntent(_ context.Context, id string) (*payment.Intent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent %q", id)
	}
	return intent, nil
}

func (f *fakeProcessor) succeed(id string) {
	f.intents[id].Status = "succeeded"
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// submitForm posts a multipart submission with the given fields.
func submitForm(t *testing.T, router *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validSubmission() map[string]string {
	return map[string]string{
		"title":       "Broken streetlight on Main St",
		"category":    "infrastructure",
		"description": "The light has been out for two weeks.",
		"latitude":    "45.4215",
		"longitude":   "-75.6972",
		"language":    "en",
	}
}
