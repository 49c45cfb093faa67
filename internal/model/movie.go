package model

import (
	"strings"
	"time"
)

// Movie represents an uploaded movie addressable by its short code.
// Code is always stored upper-cased; NormalizeCode is the single place
// that rule lives.
type Movie struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Code            string `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Title           string `gorm:"size:500;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	FileID          string `gorm:"size:500;not null" json:"file_id"`
	FileType        string `gorm:"size:20;default:video" json:"file_type"`
	ThumbnailFileID string `gorm:"size:500" json:"thumbnail_file_id"`
	Duration        int    `json:"duration"`
	FileSize        int64  `json:"file_size"`
	IsPremiere      bool   `gorm:"default:false;index" json:"is_premiere"`
	PremiereOrder   int    `gorm:"default:0" json:"premiere_order"`
	ViewsCount      int64  `gorm:"default:0" json:"views_count"`
	UploadedBy      int64  `json:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// NormalizeCode upper-cases a movie code and trims surrounding space.
// Lookups and inserts both go through this, so matching is
// case-insensitive by construction.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
