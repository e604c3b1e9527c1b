package model

import "time"

type User struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Email         string     `gorm:"not null;size:120;uniqueIndex" json:"email"`
	PasswordHash  string     `gorm:"size:128" json:"-"`
	Role          string     `gorm:"not null;size:20;index" json:"role"`
	Organization  string     `gorm:"size:200" json:"organization,omitempty"`
	EmailVerified bool       `gorm:"default:false" json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleModerator  = "moderator"
	RoleResearcher = "researcher"
)
