package model

import (
	"time"
)

// User represents a bot user, created on first contact
type User struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	TelegramID            int64  `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username              string `gorm:"size:255" json:"username"`
	FullName              string `gorm:"size:255" json:"full_name"`
	PhotoURL              string `gorm:"type:text" json:"photo_url"`
	IsSubscribed          bool   `gorm:"default:false" json:"is_subscribed"`
	IsBanned              bool   `gorm:"default:false" json:"is_banned"`
	LastSubscriptionCheck *time.Time `json:"last_subscription_check"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
