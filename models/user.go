package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	RealName     string    `gorm:"size:150" json:"real_name"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	AvatarURL    string    `gorm:"size:255" json:"avatar_url,omitempty"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	IsActive     bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
