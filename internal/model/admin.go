package model

import (
	"time"
)

// Admin is materialized lazily when an allow-listed id first contacts
// the bot. It exists for display only; authorization is always the
// configured id list.
type Admin struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TelegramID int64  `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   string `gorm:"size:255" json:"username"`
	FullName   string `gorm:"size:255" json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for Admin
func (Admin) TableName() string {
	return "admins"
}
