package model

import (
	"time"
)

// UserView records that a user has watched a movie. At most one row
// exists per (user, movie) pair; the row's existence is what guards the
// denormalized Movie.ViewsCount against double counting.
type UserView struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	UserID   int64 `gorm:"uniqueIndex:idx_user_movie;not null" json:"user_id"`
	MovieID  uint  `gorm:"uniqueIndex:idx_user_movie;index;not null" json:"movie_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// TableName returns the table name for UserView
func (UserView) TableName() string {
	return "user_views"
}
