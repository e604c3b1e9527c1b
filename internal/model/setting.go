package model

import "time"

type SystemSetting struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Key         string    `gorm:"not null;size:100;uniqueIndex" json:"key"`
	Value       string    `gorm:"not null;type:text" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
