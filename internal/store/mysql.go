package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/kino-bot-go/internal/config"
	"github.com/user/kino-bot-go/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLStore implements Store interface using MySQL database
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates a new MySQL store instance
func NewMySQLStore(cfg *config.DBConfig) (*MySQLStore, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &MySQLStore{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Movie{},
		&model.Channel{},
		&model.UserView{},
		&model.Admin{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// UpsertUser creates the user on first contact or refreshes the mutable
// profile fields on every later one.
func (s *MySQLStore) UpsertUser(ctx context.Context, user *model.User) (bool, error) {
	var existing model.User
	result := s.db.WithContext(ctx).Where("telegram_id = ?", user.TelegramID).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("failed to look up user: %w", result.Error)
		}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			return false, fmt.Errorf("failed to create user: %w", err)
		}
		return true, nil
	}

	updates := map[string]interface{}{
		"username":  user.Username,
		"full_name": user.FullName,
	}
	if user.PhotoURL != "" {
		updates["photo_url"] = user.PhotoURL
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	*user = existing
	return false, nil
}

// GetUserByTelegramID retrieves a user by Telegram id
func (s *MySQLStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// GetUserByID retrieves a user by primary key
func (s *MySQLStore) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// ListUsers returns a page of users, optionally filtered by subscription
// state and a case-insensitive search over username, full name and id.
func (s *MySQLStore) ListUsers(ctx context.Context, page, limit int, filter, search string) ([]*model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&model.User{})

	switch filter {
	case UserFilterSubscribed:
		query = query.Where("is_subscribed = ?", true)
	case UserFilterUnsubscribed:
		query = query.Where("is_subscribed = ?", false)
	}

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(username) LIKE LOWER(?) OR LOWER(full_name) LIKE LOWER(?) OR telegram_id LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*model.User
	result := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", result.Error)
	}
	return users, total, nil
}

// SetUserBanned toggles the ban flag on a user
func (s *MySQLStore) SetUserBanned(ctx context.Context, id uint, banned bool) error {
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_banned", banned)
	if result.Error != nil {
		return fmt.Errorf("failed to set ban flag: %w", result.Error)
	}
	return nil
}

// SetUserSubscription persists the cached result of the last gate check
func (s *MySQLStore) SetUserSubscription(ctx context.Context, telegramID int64, subscribed bool, checkedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"is_subscribed":           subscribed,
			"last_subscription_check": checkedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	return nil
}

// CountUsers returns the total count of users
func (s *MySQLStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.User{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count users: %w", result.Error)
	}
	return count, nil
}

// CountSubscribedUsers returns the count of users whose last gate check passed
func (s *MySQLStore) CountSubscribedUsers(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.User{}).Where("is_subscribed = ?", true).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count subscribed users: %w", result.Error)
	}
	return count, nil
}

// CountUsersSince returns the count of users created at or after since
func (s *MySQLStore) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.User{}).Where("created_at >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count new users: %w", result.Error)
	}
	return count, nil
}

// UserActivity returns per-day new user counts since the given time
func (s *MySQLStore) UserActivity(ctx context.Context, since time.Time) ([]DayCount, error) {
	var buckets []DayCount
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&buckets)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to aggregate user activity: %w", result.Error)
	}
	return buckets, nil
}

// UserViews returns a user's watch history joined with movie details,
// newest first.
func (s *MySQLStore) UserViews(ctx context.Context, telegramID int64) ([]UserViewDetail, error) {
	var views []UserViewDetail
	result := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Select("user_views.movie_id AS movie_id, movies.code AS movie_code, movies.title AS movie_title, user_views.viewed_at AS viewed_at").
		Joins("JOIN movies ON movies.id = user_views.movie_id").
		Where("user_views.user_id = ?", telegramID).
		Order("user_views.viewed_at DESC").
		Scan(&views)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get user views: %w", result.Error)
	}
	return views, nil
}

// UserStats returns how many movies the user has watched and when the
// last watch happened.
func (s *MySQLStore) UserStats(ctx context.Context, telegramID int64) (int64, *time.Time, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Where("user_id = ?", telegramID).
		Count(&count).Error; err != nil {
		return 0, nil, fmt.Errorf("failed to count user views: %w", err)
	}

	if count == 0 {
		return 0, nil, nil
	}

	var last model.UserView
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", telegramID).
		Order("viewed_at DESC").
		First(&last).Error; err != nil {
		return count, nil, fmt.Errorf("failed to get last view: %w", err)
	}
	return count, &last.ViewedAt, nil
}

// CreateMovie saves a new movie. The code is normalized to upper case
// before insert.
func (s *MySQLStore) CreateMovie(ctx context.Context, movie *model.Movie) error {
	movie.Code = model.NormalizeCode(movie.Code)
	if movie.FileType == "" {
		movie.FileType = "video"
	}
	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// GetMovieByID retrieves a movie by primary key
func (s *MySQLStore) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	result := s.db.WithContext(ctx).First(&movie, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get movie: %w", result.Error)
	}
	return &movie, nil
}

// GetMovieByCode retrieves a movie by its code, normalizing case first
func (s *MySQLStore) GetMovieByCode(ctx context.Context, code string) (*model.Movie, error) {
	var movie model.Movie
	result := s.db.WithContext(ctx).Where("code = ?", model.NormalizeCode(code)).First(&movie)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get movie by code: %w", result.Error)
	}
	return &movie, nil
}

// MovieExistsByCode checks if a movie with the given code exists
func (s *MySQLStore) MovieExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("code = ?", model.NormalizeCode(code)).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", result.Error)
	}
	return count > 0, nil
}

// ListMovies returns a page of movies, newest first
func (s *MySQLStore) ListMovies(ctx context.Context, page, limit int) ([]*model.Movie, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	var movies []*model.Movie
	result := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&movies)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", result.Error)
	}
	return movies, total, nil
}

// ListPremiere returns the premiere carousel in its admin-defined order
func (s *MySQLStore) ListPremiere(ctx context.Context) ([]*model.Movie, error) {
	var movies []*model.Movie
	result := s.db.WithContext(ctx).
		Where("is_premiere = ?", true).
		Order("premiere_order ASC").
		Find(&movies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list premiere movies: %w", result.Error)
	}
	return movies, nil
}

// UpdateMovie applies the non-nil fields of update and returns the
// refreshed row.
func (s *MySQLStore) UpdateMovie(ctx context.Context, id uint, update MovieUpdate) (*model.Movie, error) {
	updates := map[string]interface{}{}
	if update.Code != nil {
		updates["code"] = model.NormalizeCode(*update.Code)
	}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.FileID != nil {
		updates["file_id"] = *update.FileID
	}
	if update.ThumbnailFileID != nil {
		updates["thumbnail_file_id"] = *update.ThumbnailFileID
	}
	if update.IsPremiere != nil {
		updates["is_premiere"] = *update.IsPremiere
	}
	if update.PremiereOrder != nil {
		updates["premiere_order"] = *update.PremiereOrder
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update movie: %w", result.Error)
		}
	}
	return s.GetMovieByID(ctx, id)
}

// DeleteMovie removes a movie together with all its view rows so no
// orphaned views survive.
func (s *MySQLStore) DeleteMovie(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&model.UserView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Movie{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

// SetPremiere toggles the premiere flag. When turning premiere on
// without an explicit order, the movie is appended at the end of the
// carousel (order = current premiere count).
func (s *MySQLStore) SetPremiere(ctx context.Context, id uint, isPremiere bool, order *int) error {
	updates := map[string]interface{}{"is_premiere": isPremiere}
	if order != nil {
		updates["premiere_order"] = *order
	} else if isPremiere {
		count, err := s.CountPremiereMovies(ctx)
		if err != nil {
			return err
		}
		updates["premiere_order"] = int(count)
	}

	result := s.db.WithContext(ctx).Model(&model.Movie{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set premiere: %w", result.Error)
	}
	return nil
}

// SwapPremiereOrder moves a movie one slot up or down in the carousel by
// swapping orders with its neighbour. No-op at either end.
func (s *MySQLStore) SwapPremiereOrder(ctx context.Context, id uint, up bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movie model.Movie
		if err := tx.First(&movie, id).Error; err != nil {
			return err
		}
		if !movie.IsPremiere {
			return nil
		}

		var neighbour model.Movie
		query := tx.Where("is_premiere = ? AND id <> ?", true, movie.ID)
		if up {
			query = query.Where("premiere_order < ?", movie.PremiereOrder).Order("premiere_order DESC")
		} else {
			query = query.Where("premiere_order > ?", movie.PremiereOrder).Order("premiere_order ASC")
		}
		if err := query.First(&neighbour).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&model.Movie{}).Where("id = ?", movie.ID).
			Update("premiere_order", neighbour.PremiereOrder).Error; err != nil {
			return err
		}
		return tx.Model(&model.Movie{}).Where("id = ?", neighbour.ID).
			Update("premiere_order", movie.PremiereOrder).Error
	})
	if err != nil {
		return fmt.Errorf("failed to reorder premiere: %w", err)
	}
	return nil
}

// RecordView is idempotent: the (user, movie) pair is inserted only if
// absent, and the denormalized counter moves exactly once per pair. The
// insert and the increment run in one transaction.
func (s *MySQLStore) RecordView(ctx context.Context, movieID uint, userID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.UserView{}).
			Where("user_id = ? AND movie_id = ?", userID, movieID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		view := &model.UserView{
			UserID:   userID,
			MovieID:  movieID,
			ViewedAt: time.Now(),
		}
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		return tx.Model(&model.Movie{}).
			Where("id = ?", movieID).
			UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// TopMovies returns the most-watched movies
func (s *MySQLStore) TopMovies(ctx context.Context, limit int) ([]*model.Movie, error) {
	var movies []*model.Movie
	result := s.db.WithContext(ctx).
		Order("views_count DESC").
		Limit(limit).
		Find(&movies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get top movies: %w", result.Error)
	}
	return movies, nil
}

// CountMovies returns the total count of movies
func (s *MySQLStore) CountMovies(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count movies: %w", result.Error)
	}
	return count, nil
}

// CountPremiereMovies returns the count of movies in the carousel
func (s *MySQLStore) CountPremiereMovies(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Where("is_premiere = ?", true).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count premiere movies: %w", result.Error)
	}
	return count, nil
}

// SumViews returns the sum of the denormalized view counters
func (s *MySQLStore) SumViews(ctx context.Context) (int64, error) {
	var total int64
	result := s.db.WithContext(ctx).
		Model(&model.Movie{}).
		Select("COALESCE(SUM(views_count), 0)").
		Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sum views: %w", result.Error)
	}
	return total, nil
}

// WeeklyViews returns per-day view counts since the given time
func (s *MySQLStore) WeeklyViews(ctx context.Context, since time.Time) ([]DayCount, error) {
	var buckets []DayCount
	result := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Select("DATE(viewed_at) AS date, COUNT(*) AS count").
		Where("viewed_at >= ?", since).
		Group("DATE(viewed_at)").
		Order("date ASC").
		Scan(&buckets)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to aggregate weekly views: %w", result.Error)
	}
	return buckets, nil
}

// MovieStats builds the per-movie statistics view, nil if the movie
// does not exist.
func (s *MySQLStore) MovieStats(ctx context.Context, id uint) (*MovieStats, error) {
	movie, err := s.GetMovieByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, nil
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := today.AddDate(0, 0, -7)

	stats := &MovieStats{
		ID:         movie.ID,
		Code:       movie.Code,
		Title:      movie.Title,
		TotalViews: movie.ViewsCount,
		CreatedAt:  movie.CreatedAt,
	}

	if err := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Where("movie_id = ?", id).
		Distinct("user_id").
		Count(&stats.UniqueViewers).Error; err != nil {
		return nil, fmt.Errorf("failed to count unique viewers: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Where("movie_id = ? AND viewed_at >= ?", id, today).
		Count(&stats.TodayViews).Error; err != nil {
		return nil, fmt.Errorf("failed to count today views: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.UserView{}).
		Where("movie_id = ? AND viewed_at >= ?", id, weekAgo).
		Count(&stats.WeeklyViews).Error; err != nil {
		return nil, fmt.Errorf("failed to count weekly views: %w", err)
	}

	var last model.UserView
	err = s.db.WithContext(ctx).
		Where("movie_id = ?", id).
		Order("viewed_at DESC").
		First(&last).Error
	if err == nil {
		stats.LastViewedAt = &last.ViewedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get last view: %w", err)
	}

	return stats, nil
}

// CreateChannel saves a new required channel. The is_active column is
// selected explicitly: it carries a database default, and gorm would
// otherwise drop a zero-valued false from the insert.
func (s *MySQLStore) CreateChannel(ctx context.Context, channel *model.Channel) error {
	err := s.db.WithContext(ctx).
		Select("ChannelID", "ChannelUsername", "ChannelTitle", "InviteLink",
			"PhotoURL", "IsActive", "BotUsersCount", "CreatedAt").
		Create(channel).Error
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// ListChannels returns all channels, newest first
func (s *MySQLStore) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	var channels []*model.Channel
	result := s.db.WithContext(ctx).Order("created_at DESC").Find(&channels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list channels: %w", result.Error)
	}
	return channels, nil
}

// ListActiveChannels returns only the channels consulted by the
// subscription gate.
func (s *MySQLStore) ListActiveChannels(ctx context.Context) ([]*model.Channel, error) {
	var channels []*model.Channel
	result := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&channels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active channels: %w", result.Error)
	}
	return channels, nil
}

// GetChannelByID retrieves a channel by primary key
func (s *MySQLStore) GetChannelByID(ctx context.Context, id uint) (*model.Channel, error) {
	var channel model.Channel
	result := s.db.WithContext(ctx).First(&channel, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get channel: %w", result.Error)
	}
	return &channel, nil
}

// GetChannelByExternalID retrieves a channel by its Telegram id
func (s *MySQLStore) GetChannelByExternalID(ctx context.Context, channelID string) (*model.Channel, error) {
	var channel model.Channel
	result := s.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&channel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get channel: %w", result.Error)
	}
	return &channel, nil
}

// UpdateChannel applies the non-nil fields of update and returns the
// refreshed row.
func (s *MySQLStore) UpdateChannel(ctx context.Context, id uint, update ChannelUpdate) (*model.Channel, error) {
	updates := map[string]interface{}{}
	if update.ChannelUsername != nil {
		updates["channel_username"] = *update.ChannelUsername
	}
	if update.ChannelTitle != nil {
		updates["channel_title"] = *update.ChannelTitle
	}
	if update.InviteLink != nil {
		updates["invite_link"] = *update.InviteLink
	}
	if update.PhotoURL != nil {
		updates["photo_url"] = *update.PhotoURL
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&model.Channel{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update channel: %w", result.Error)
		}
	}
	return s.GetChannelByID(ctx, id)
}

// DeleteChannel removes a channel
func (s *MySQLStore) DeleteChannel(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Channel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete channel: %w", result.Error)
	}
	return nil
}

// IncrementChannelBotUsers bumps the denormalized per-channel user
// counter atomically at the SQL level.
func (s *MySQLStore) IncrementChannelBotUsers(ctx context.Context, channelID string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Channel{}).
		Where("channel_id = ?", channelID).
		UpdateColumn("bot_users_count", gorm.Expr("bot_users_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment channel users: %w", result.Error)
	}
	return nil
}

// SetChannelBotUsersCount overwrites the denormalized counter
func (s *MySQLStore) SetChannelBotUsersCount(ctx context.Context, id uint, count int64) error {
	result := s.db.WithContext(ctx).
		Model(&model.Channel{}).
		Where("id = ?", id).
		Update("bot_users_count", count)
	if result.Error != nil {
		return fmt.Errorf("failed to set channel users count: %w", result.Error)
	}
	return nil
}

// UpsertAdmin materializes an admin row on first contact; later
// contacts are no-ops.
func (s *MySQLStore) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	var existing model.Admin
	result := s.db.WithContext(ctx).Where("telegram_id = ?", admin.TelegramID).First(&existing)
	if result.Error == nil {
		*admin = existing
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin: %w", result.Error)
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm.DB instance (for testing purposes)
func (s *MySQLStore) DB() *gorm.DB {
	return s.db
}
