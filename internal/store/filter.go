package store

import (
	"encoding/json"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"gorm.io/gorm"
)

// RawFilters is the wire shape of a filter request: optional exact-match
// category and inclusive ISO-8601 date bounds on creation time. It is also
// the shape frozen into a purchase token at confirmation.
type RawFilters struct {
	Category  string `json:"category,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// ReportFilters is the validated form of RawFilters.
type ReportFilters struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ParseFilters validates raw filter input. Invalid dates fail with a
// Validation error naming the offending field; an empty filter is valid.
func ParseFilters(raw RawFilters) (ReportFilters, error) {
	f := ReportFilters{Category: raw.Category}

	if raw.StartDate != "" {
		t, err := parseDate(raw.StartDate)
		if err != nil {
			return ReportFilters{}, validationErr("start_date", "invalid date format")
		}
		f.StartDate = &t
	}
	if raw.EndDate != "" {
		t, err := parseDate(raw.EndDate)
		if err != nil {
			return ReportFilters{}, validationErr("end_date", "invalid date format")
		}
		f.EndDate = &t
	}
	return f, nil
}

// ParseFilterSnapshot decodes the filter criteria frozen into a purchase
// token and re-validates them the same way as live input.
func ParseFilterSnapshot(snapshot []byte) (ReportFilters, error) {
	var raw RawFilters
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &raw); err != nil {
			return ReportFilters{}, validationErr("filters", "invalid filter snapshot")
		}
	}
	return ParseFilters(raw)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// scopeVerified narrows a query to verified reports matching f. The same
// scope backs interactive browsing, quoting and export so that the purchased
// count and the exported row count always agree.
func scopeVerified(f ReportFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q := db.Where("status = ?", model.StatusVerified)
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.StartDate != nil {
			q = q.Where("created_at >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("created_at <= ?", *f.EndDate)
		}
		return q
	}
}
