package handler

import (
	"net/http"
	"strconv"

	"github.com/dzuokumor/Civic-voice/internal/files"
	"github.com/dzuokumor/Civic-voice/internal/middleware"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	store *store.Store
	files *files.Storage
}

func NewReportHandler(st *store.Store, fs *files.Storage) *ReportHandler {
	return &ReportHandler{store: st, files: fs}
}

// Submit accepts an anonymous report as a multipart form with an optional
// "attachment" file and returns the credential pair the submitter will use
// to track it. The credentials appear in this response and nowhere else.
func (h *ReportHandler) Submit(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		respondError(c, &store.ValidationError{Field: "latitude", Message: "invalid coordinate format"})
		return
	}
	lng, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		respondError(c, &store.ValidationError{Field: "longitude", Message: "invalid coordinate format"})
		return
	}

	in := store.NewReport{
		Title:       c.PostForm("title"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		Latitude:    lat,
		Longitude:   lng,
		Language:    c.PostForm("language"),
	}

	// Validate the upload before persisting anything so a bad file aborts
	// the whole submission.
	var att *store.NewAttachment
	reportID := uuid.New().String()
	fh, err := c.FormFile("attachment")
	if err == nil && fh != nil {
		result := h.files.Validate(fh)
		if !result.Valid {
			respondError(c, &store.ValidationError{Field: "attachment", Message: result.Error})
			return
		}
		path, err := h.files.Save(fh, reportID)
		if err != nil {
			respondError(c, err)
			return
		}
		att = &store.NewAttachment{
			Filename:    fh.Filename,
			FilePath:    path,
			FileSize:    result.Size,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}

	report, err := h.store.CreateReportWithID(reportID, in, att)
	if err != nil {
		if att != nil {
			_ = h.files.Delete(att.FilePath)
		}
		respondError(c, err)
		return
	}

	middleware.RecordReportSubmitted(report.Category, report.Language)

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Report submitted successfully",
		"report_id":      report.ID,
		"reference_code": report.ReferenceCode,
		"passphrase":     report.Passphrase,
	})
}

type trackRequest struct {
	ReferenceCode string `json:"reference_code" binding:"required"`
	Passphrase    string `json:"passphrase" binding:"required"`
}

// Track returns a report's summary and its full decision history to the
// holder of both credential halves. Any mismatch is the same NotFound;
// moderator identities are never included.
func (h *ReportHandler) Track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference code and passphrase are required"})
		return
	}

	report, err := h.store.FindByCredentials(req.ReferenceCode, req.Passphrase)
	if err != nil {
		respondError(c, err)
		return
	}

	logs, err := h.store.LogHistory(report.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]gin.H, 0, len(logs))
	for _, entry := range logs {
		history = append(history, gin.H{
			"action":    entry.Action,
			"notes":     entry.Notes,
			"timestamp": entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"report": gin.H{
			"id":           report.ID,
			"title":        report.Title,
			"category":     report.Category,
			"status":       report.Status,
			"submitted_at": report.CreatedAt,
			"last_updated": report.UpdatedAt,
		},
		"status_history": history,
	})
}

// reportSummary is the public projection of a report; credentials stay out.
func reportSummary(r *model.Report) gin.H {
	return gin.H{
		"id":             r.ID,
		"title":          r.Title,
		"category":       r.Category,
		"description":    r.Description,
		"latitude":       r.Latitude,
		"longitude":      r.Longitude,
		"language":       r.Language,
		"created_at":     r.CreatedAt,
		"has_attachment": len(r.Attachments) > 0,
	}
}
