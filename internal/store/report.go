package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dzuokumor/Civic-voice/internal/credentials"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize caps caller-supplied page sizes on every listing.
const MaxPageSize = 100

// How many fresh reference codes to try when the unique index reports a
// collision before giving up.
const codeRetries = 5

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// NewReport carries the submitter-supplied fields of a report.
type NewReport struct {
	Title       string
	Category    string
	Description string
	Latitude    float64
	Longitude   float64
	Language    string
}

// NewAttachment carries an already-validated, already-saved upload.
type NewAttachment struct {
	Filename    string
	FilePath    string
	FileSize    int64
	ContentType string
}

// Page is one page of a report listing.
type Page struct {
	Reports    []model.Report
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// CreateReport validates the submission, issues credentials and persists the
// report together with its optional attachment in one transaction. The title
// is silently truncated to 200 characters; everything else out of range is
// rejected.
func (s *Store) CreateReport(in NewReport, att *NewAttachment) (*model.Report, error) {
	return s.CreateReportWithID(uuid.New().String(), in, att)
}

// CreateReportWithID is CreateReport with a caller-chosen id, so an
// attachment can be staged on disk under the report's directory before the
// row exists.
func (s *Store) CreateReportWithID(id string, in NewReport, att *NewAttachment) (*model.Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationErr("title", "required")
	}
	if in.Category == "" {
		return nil, validationErr("category", "required")
	}
	if !model.ValidCategory(in.Category) {
		return nil, validationErr("category", "unknown category")
	}
	if utf8.RuneCountInString(in.Description) > model.MaxDescriptionLength {
		return nil, validationErr("description", "exceeds 2000 characters")
	}
	if in.Language == "" {
		in.Language = "en"
	}
	if !model.ValidLanguage(in.Language) {
		return nil, validationErr("language", "must be en or fr")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, validationErr("latitude", "must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, validationErr("longitude", "must be between -180 and 180")
	}

	// Limits count characters, not bytes, so multibyte text in either
	// language gets the full allowance.
	title := in.Title
	if runes := []rune(title); len(runes) > model.MaxTitleLength {
		title = string(runes[:model.MaxTitleLength])
	}

	passphrase, err := credentials.GeneratePassphrase()
	if err != nil {
		return nil, err
	}

	// The unique index on reference_code closes the race between concurrent
	// submissions; on a collision we retry with a fresh code.
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := credentials.GenerateReferenceCode()
		if err != nil {
			return nil, err
		}

		report := &model.Report{
			ID:            id,
			Title:         title,
			Category:      in.Category,
			Description:   in.Description,
			Latitude:      in.Latitude,
			Longitude:     in.Longitude,
			Status:        model.StatusPending,
			Language:      in.Language,
			ReferenceCode: code,
			Passphrase:    passphrase,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(report).Error; err != nil {
				return err
			}
			if att != nil {
				attachment := &model.ReportAttachment{
					ID:          uuid.New().String(),
					ReportID:    report.ID,
					Filename:    att.Filename,
					FilePath:    att.FilePath,
					FileSize:    att.FileSize,
					ContentType: att.ContentType,
				}
				if err := tx.Create(attachment).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create report: %w", err)
		}
		return report, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique reference code after %d attempts", codeRetries)
}

// FindByCredentials looks a report up by both halves of its anonymous
// credential. Any mismatch yields the same NotFound; the response never
// reveals which half was wrong.
func (s *Store) FindByCredentials(referenceCode, passphrase string) (*model.Report, error) {
	var report model.Report
	err := s.db.Where("reference_code = ? AND passphrase = ?", referenceCode, passphrase).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Store) FindReportByID(id string) (*model.Report, error) {
	var report model.Report
	err := s.db.Preload("Attachments").First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// LogHistory returns a report's verification log, newest first.
func (s *Store) LogHistory(reportID string) ([]model.VerificationLog, error) {
	var logs []model.VerificationLog
	err := s.db.Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ListByStatus pages through reports in a given status, optionally narrowed
// to one category, newest first. Used by the moderation queue.
func (s *Store) ListByStatus(status, category string, page, perPage int) (*Page, error) {
	q := s.db.Model(&model.Report{}).Where("status = ?", status)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return s.paginate(q, page, perPage)
}

// ListVerified pages through the verified corpus using the shared filter
// scope, newest first.
func (s *Store) ListVerified(f ReportFilters, page, perPage int) (*Page, error) {
	q := s.db.Model(&model.Report{}).Scopes(scopeVerified(f))
	return s.paginate(q, page, perPage)
}

func (s *Store) paginate(q *gorm.DB, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var reports []model.Report
	err := q.Preload("Attachments").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page{
		Reports:    reports,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}
