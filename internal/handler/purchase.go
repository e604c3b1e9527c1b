package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/middleware"
	"github.com/dzuokumor/Civic-voice/internal/notify"
	"github.com/dzuokumor/Civic-voice/internal/payment"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	store     *store.Store
	processor payment.Processor
	notifier  *notify.Publisher
}

func NewPurchaseHandler(st *store.Store, proc payment.Processor, notifier *notify.Publisher) *PurchaseHandler {
	return &PurchaseHandler{store: st, processor: proc, notifier: notifier}
}

type purchaseRequest struct {
	Filters store.RawFilters `json:"filters"`
}

// Purchase quotes a filtered export and opens a payment intent carrying the
// quote's metadata. Nothing is persisted here; the token is only issued once
// the processor confirms the charge.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	filters, err := store.ParseFilters(req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	price := h.store.GetSettingInt(store.SettingDataPriceCents, 50)
	count, amountCents, err := h.store.Quote(filters, price)
	if err != nil {
		respondError(c, err)
		return
	}

	snapshot, err := json.Marshal(req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	intent, err := h.processor.CreateIntent(c.Request.Context(), amountCents, map[string]string{
		payment.MetaUserID:      middleware.ActorID(c),
		payment.MetaReportCount: strconv.FormatInt(count, 10),
		payment.MetaFilters:     string(snapshot),
	})
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", store.ErrUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
		"report_count":      count,
		"amount_cents":      amountCents,
	})
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// Confirm verifies the payment with the processor and issues the download
// token. Confirming the same payment twice yields 409, not a second token.
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment intent ID is required"})
		return
	}

	intent, err := h.processor.RetrieveIntent(c.Request.Context(), req.PaymentIntentID)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", store.ErrUnavailable, err))
		return
	}

	// An intent without the quote metadata was not opened by Purchase;
	// never mint a zero-count token from it.
	reportCount, err := strconv.ParseInt(intent.Metadata[payment.MetaReportCount], 10, 64)
	if err != nil || reportCount <= 0 {
		respondError(c, &store.ValidationError{Field: "payment_intent_id", Message: "payment metadata is incomplete"})
		return
	}
	actorID := middleware.ActorID(c)

	purchase, err := h.store.ConfirmPurchase(store.PaymentConfirmation{
		IntentID:     intent.ID,
		Status:       intent.Status,
		AmountCents:  intent.Amount,
		ResearcherID: intent.Metadata[payment.MetaUserID],
		ReportCount:  reportCount,
		Filters:      []byte(intent.Metadata[payment.MetaFilters]),
	}, actorID, h.store.DownloadValidity())
	if err != nil {
		respondError(c, err)
		return
	}

	if user, err := h.store.FindUserByID(actorID); err == nil {
		h.notifier.Send(c.Request.Context(),
			notify.PurchaseReceipt(user.Email, purchase.ReportCount, purchase.AmountCents, purchase.ExpiresAt))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Purchase confirmed successfully",
		"download_token": purchase.ID,
		"expires_at":     purchase.ExpiresAt,
	})
}

var exportColumns = []string{
	"report_id", "title", "category", "description",
	"latitude", "longitude", "language", "created_at",
}

// Download resolves a token into the CSV export of every verified report
// matching its frozen criteria. Whole corpus, no pagination.
func (h *PurchaseHandler) Download(c *gin.Context) {
	_, reports, err := h.store.ResolvePurchase(c.Param("token"), middleware.ActorID(c), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write(exportColumns)
	for _, r := range reports {
		writer.Write([]string{
			r.ID,
			r.Title,
			r.Category,
			r.Description,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			r.Language,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()

	middleware.RecordDataExport()

	filename := fmt.Sprintf("civic_reports_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
