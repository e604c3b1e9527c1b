package model

import "time"

// VerificationLog is an append-only audit record of a moderation decision.
// Rows are created inside the same transaction as the status transition and
// are never updated or deleted.
type VerificationLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ReportID  string    `gorm:"not null;size:36;index" json:"reportId"`
	UserID    string    `gorm:"not null;size:36" json:"userId"`
	Action    string    `gorm:"not null;size:20" json:"action"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (VerificationLog) TableName() string {
	return "verification_logs"
}
