package model

import (
	"time"

	"gorm.io/datatypes"
)

// DataPurchase is a paid, time-limited export grant. Its ID doubles as the
// bearer download token. Filters holds the criteria frozen at confirmation
// time; re-resolution re-runs the same criteria against current data.
type DataPurchase struct {
	ID              string         `gorm:"primaryKey;size:36" json:"-"`
	UserID          string         `gorm:"not null;size:36;index" json:"-"`
	PaymentIntentID string         `gorm:"not null;size:100;uniqueIndex" json:"-"`
	AmountCents     int64          `gorm:"not null" json:"amountCents"`
	ReportCount     int64          `gorm:"not null" json:"reportCount"`
	Filters         datatypes.JSON `json:"filters"`
	Status          string         `gorm:"not null;default:'completed';size:20" json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	ExpiresAt       time.Time      `gorm:"not null;index" json:"expiresAt"`
}

func (DataPurchase) TableName() string {
	return "data_purchases"
}

const PurchaseStatusCompleted = "completed"

func (p *DataPurchase) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
