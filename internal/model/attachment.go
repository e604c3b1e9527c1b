package model

import "time"

type ReportAttachment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ReportID    string    `gorm:"not null;size:36;index" json:"reportId"`
	Filename    string    `gorm:"not null;size:255" json:"filename"`
	FilePath    string    `gorm:"not null;size:500" json:"-"`
	FileSize    int64     `gorm:"not null" json:"fileSize"`
	ContentType string    `gorm:"not null;size:100" json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (ReportAttachment) TableName() string {
	return "report_attachments"
}
