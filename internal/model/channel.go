package model

import (
	"time"
)

// Channel is a mandatory-subscription requirement: users must be a
// member of every active channel before movie content is served.
type Channel struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ChannelID       string `gorm:"uniqueIndex;size:255;not null" json:"channel_id"`
	ChannelUsername string `gorm:"size:255" json:"channel_username"`
	ChannelTitle    string `gorm:"size:255" json:"channel_title"`
	InviteLink      string `gorm:"type:text" json:"invite_link"`
	PhotoURL        string `gorm:"type:text" json:"photo_url"`
	IsActive        bool   `gorm:"default:true;index" json:"is_active"`
	BotUsersCount   int64  `gorm:"default:0" json:"bot_users_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the table name for Channel
func (Channel) TableName() string {
	return "required_channels"
}

// JoinURL returns the best link to present to a user who still has to
// join the channel.
func (c *Channel) JoinURL() string {
	if c.InviteLink != "" {
		return c.InviteLink
	}
	if c.ChannelUsername != "" {
		return "https://t.me/" + c.ChannelUsername
	}
	return ""
}

// DisplayTitle returns a human label for keyboards and listings.
func (c *Channel) DisplayTitle() string {
	if c.ChannelTitle != "" {
		return c.ChannelTitle
	}
	if c.ChannelUsername != "" {
		return "@" + c.ChannelUsername
	}
	return c.ChannelID
}
