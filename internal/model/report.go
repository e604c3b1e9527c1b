package model

import "time"

type Report struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"not null;size:200" json:"title"`
	Category      string    `gorm:"not null;size:50;index" json:"category"`
	Description   string    `gorm:"type:text" json:"description"`
	Latitude      float64   `gorm:"not null" json:"latitude"`
	Longitude     float64   `gorm:"not null" json:"longitude"`
	Status        string    `gorm:"not null;default:'pending';size:20;index" json:"status"`
	Language      string    `gorm:"not null;default:'en';size:2" json:"language"`
	ReferenceCode string    `gorm:"not null;size:20;uniqueIndex" json:"-"`
	Passphrase    string    `gorm:"not null;size:50" json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Attachments      []ReportAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	VerificationLogs []VerificationLog  `json:"-"`
}

func (Report) TableName() string {
	return "reports"
}

// Status constants
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Moderation actions mirror the two terminal statuses.
const (
	ActionVerified = StatusVerified
	ActionRejected = StatusRejected
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

var Categories = []string{
	"corruption",
	"infrastructure",
	"healthcare",
	"education",
	"environment",
	"public_safety",
	"transportation",
	"housing",
	"employment",
	"other",
}

var SupportedLanguages = []string{"en", "fr"}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidLanguage(language string) bool {
	for _, l := range SupportedLanguages {
		if l == language {
			return true
		}
	}
	return false
}
