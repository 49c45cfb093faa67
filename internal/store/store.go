package store

import (
	"context"
	"time"

	"github.com/user/kino-bot-go/internal/model"
)

// MovieUpdate carries the optional fields of a movie update; nil means
// leave the column alone.
type MovieUpdate struct {
	Code            *string
	Title           *string
	Description     *string
	FileID          *string
	ThumbnailFileID *string
	IsPremiere      *bool
	PremiereOrder   *int
}

// ChannelUpdate carries the optional fields of a channel update.
type ChannelUpdate struct {
	ChannelUsername *string
	ChannelTitle    *string
	InviteLink      *string
	PhotoURL        *string
	IsActive        *bool
}

// DayCount is one bucket of a per-day aggregate.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers      int64 `json:"totalUsers"`
	SubscribedUsers int64 `json:"subscribedUsers"`
	TotalMovies     int64 `json:"totalMovies"`
	PremiereMovies  int64 `json:"premiereMovies"`
	TotalViews      int64 `json:"totalViews"`
	TodayNewUsers   int64 `json:"todayNewUsers"`
}

// MovieStats is the per-movie statistics view.
type MovieStats struct {
	ID            uint       `json:"id"`
	Code          string     `json:"code"`
	Title         string     `json:"title"`
	TotalViews    int64      `json:"totalViews"`
	UniqueViewers int64      `json:"uniqueViewers"`
	TodayViews    int64      `json:"todayViews"`
	WeeklyViews   int64      `json:"weeklyViews"`
	LastViewedAt  *time.Time `json:"lastViewedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// UserViewDetail is a view row joined with its movie for the admin
// per-user history listing.
type UserViewDetail struct {
	MovieID    uint      `json:"movie_id"`
	MovieCode  string    `json:"movie_code"`
	MovieTitle string    `json:"movie_title"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// User list filters accepted by ListUsers.
const (
	UserFilterAll          = "all"
	UserFilterSubscribed   = "subscribed"
	UserFilterUnsubscribed = "unsubscribed"
)

// Store defines the interface for data persistence operations
type Store interface {
	// User operations
	UpsertUser(ctx context.Context, user *model.User) (created bool, err error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int, filter, search string) ([]*model.User, int64, error)
	SetUserBanned(ctx context.Context, id uint, banned bool) error
	SetUserSubscription(ctx context.Context, telegramID int64, subscribed bool, checkedAt time.Time) error
	CountUsers(ctx context.Context) (int64, error)
	CountSubscribedUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	UserActivity(ctx context.Context, since time.Time) ([]DayCount, error)
	UserViews(ctx context.Context, telegramID int64) ([]UserViewDetail, error)
	UserStats(ctx context.Context, telegramID int64) (views int64, lastView *time.Time, err error)

	// Movie operations
	CreateMovie(ctx context.Context, movie *model.Movie) error
	GetMovieByID(ctx context.Context, id uint) (*model.Movie, error)
	GetMovieByCode(ctx context.Context, code string) (*model.Movie, error)
	MovieExistsByCode(ctx context.Context, code string) (bool, error)
	ListMovies(ctx context.Context, page, limit int) ([]*model.Movie, int64, error)
	ListPremiere(ctx context.Context) ([]*model.Movie, error)
	UpdateMovie(ctx context.Context, id uint, update MovieUpdate) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint) error
	SetPremiere(ctx context.Context, id uint, isPremiere bool, order *int) error
	SwapPremiereOrder(ctx context.Context, id uint, up bool) error
	RecordView(ctx context.Context, movieID uint, userID int64) error
	TopMovies(ctx context.Context, limit int) ([]*model.Movie, error)
	CountMovies(ctx context.Context) (int64, error)
	CountPremiereMovies(ctx context.Context) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	WeeklyViews(ctx context.Context, since time.Time) ([]DayCount, error)
	MovieStats(ctx context.Context, id uint) (*MovieStats, error)

	// Channel operations
	CreateChannel(ctx context.Context, channel *model.Channel) error
	ListChannels(ctx context.Context) ([]*model.Channel, error)
	ListActiveChannels(ctx context.Context) ([]*model.Channel, error)
	GetChannelByID(ctx context.Context, id uint) (*model.Channel, error)
	GetChannelByExternalID(ctx context.Context, channelID string) (*model.Channel, error)
	UpdateChannel(ctx context.Context, id uint, update ChannelUpdate) (*model.Channel, error)
	DeleteChannel(ctx context.Context, id uint) error
	IncrementChannelBotUsers(ctx context.Context, channelID string) error
	SetChannelBotUsersCount(ctx context.Context, id uint, count int64) error

	// Admin operations
	UpsertAdmin(ctx context.Context, admin *model.Admin) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
