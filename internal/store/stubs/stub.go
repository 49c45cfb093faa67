// Package stubs provides an in-memory Store implementation for tests.
package stubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
)

type viewKey struct {
	UserID  int64
	MovieID uint
}

// StubStore is an in-memory implementation of store.Store for testing
type StubStore struct {
	mu       sync.RWMutex
	nextID   uint
	users    map[int64]*model.User
	movies   map[uint]*model.Movie
	channels map[uint]*model.Channel
	views    map[viewKey]time.Time
	admins   map[int64]*model.Admin
}

// New creates an empty stub store
func New() *StubStore {
	return &StubStore{
		nextID:   1,
		users:    make(map[int64]*model.User),
		movies:   make(map[uint]*model.Movie),
		channels: make(map[uint]*model.Channel),
		views:    make(map[viewKey]time.Time),
		admins:   make(map[int64]*model.Admin),
	}
}

func (s *StubStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *StubStore) UpsertUser(ctx context.Context, user *model.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.TelegramID]; ok {
		existing.Username = user.Username
		existing.FullName = user.FullName
		if user.PhotoURL != "" {
			existing.PhotoURL = user.PhotoURL
		}
		existing.UpdatedAt = time.Now()
		*user = *existing
		return false, nil
	}

	user.ID = s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.TelegramID] = &clone
	return true, nil
}

func (s *StubStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[telegramID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, nil
}

func (s *StubStore) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *StubStore) ListUsers(ctx context.Context, page, limit int, filter, search string) ([]*model.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.User
	for _, user := range s.users {
		switch filter {
		case store.UserFilterSubscribed:
			if !user.IsSubscribed {
				continue
			}
		case store.UserFilterUnsubscribed:
			if user.IsSubscribed {
				continue
			}
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(user.Username), needle) &&
				!strings.Contains(strings.ToLower(user.FullName), needle) {
				continue
			}
		}
		clone := *user
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *StubStore) SetUserBanned(ctx context.Context, id uint, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			user.IsBanned = banned
			return nil
		}
	}
	return nil
}

func (s *StubStore) SetUserSubscription(ctx context.Context, telegramID int64, subscribed bool, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[telegramID]; ok {
		user.IsSubscribed = subscribed
		user.LastSubscriptionCheck = &checkedAt
	}
	return nil
}

func (s *StubStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *StubStore) CountSubscribedUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, user := range s.users {
		if user.IsSubscribed {
			count++
		}
	}
	return count, nil
}

func (s *StubStore) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, user := range s.users {
		if !user.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *StubStore) UserActivity(ctx context.Context, since time.Time) ([]store.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := map[string]int64{}
	for _, user := range s.users {
		if !user.CreatedAt.Before(since) {
			buckets[user.CreatedAt.Format("2006-01-02")]++
		}
	}
	return sortedBuckets(buckets), nil
}

func (s *StubStore) UserViews(ctx context.Context, telegramID int64) ([]store.UserViewDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var details []store.UserViewDetail
	for key, at := range s.views {
		if key.UserID != telegramID {
			continue
		}
		detail := store.UserViewDetail{MovieID: key.MovieID, ViewedAt: at}
		if movie, ok := s.movies[key.MovieID]; ok {
			detail.MovieCode = movie.Code
			detail.MovieTitle = movie.Title
		}
		details = append(details, detail)
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].ViewedAt.After(details[j].ViewedAt)
	})
	return details, nil
}

func (s *StubStore) UserStats(ctx context.Context, telegramID int64) (int64, *time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	var last *time.Time
	for key, at := range s.views {
		if key.UserID != telegramID {
			continue
		}
		count++
		if last == nil || at.After(*last) {
			atCopy := at
			last = &atCopy
		}
	}
	return count, last, nil
}

func (s *StubStore) CreateMovie(ctx context.Context, movie *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movie.Code = model.NormalizeCode(movie.Code)
	if movie.FileType == "" {
		movie.FileType = "video"
	}
	movie.ID = s.id()
	movie.CreatedAt = time.Now()
	movie.UpdatedAt = movie.CreatedAt
	clone := *movie
	s.movies[movie.ID] = &clone
	return nil
}

func (s *StubStore) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if movie, ok := s.movies[id]; ok {
		clone := *movie
		return &clone, nil
	}
	return nil, nil
}

func (s *StubStore) GetMovieByCode(ctx context.Context, code string) (*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	normalized := model.NormalizeCode(code)
	for _, movie := range s.movies {
		if movie.Code == normalized {
			clone := *movie
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *StubStore) MovieExistsByCode(ctx context.Context, code string) (bool, error) {
	movie, err := s.GetMovieByCode(ctx, code)
	return movie != nil, err
}

func (s *StubStore) ListMovies(ctx context.Context, page, limit int) ([]*model.Movie, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var movies []*model.Movie
	for _, movie := range s.movies {
		clone := *movie
		movies = append(movies, &clone)
	}
	sort.Slice(movies, func(i, j int) bool {
		if movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
			return movies[i].ID > movies[j].ID
		}
		return movies[i].CreatedAt.After(movies[j].CreatedAt)
	})

	total := int64(len(movies))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(movies) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(movies) {
		end = len(movies)
	}
	return movies[start:end], total, nil
}

func (s *StubStore) ListPremiere(ctx context.Context) ([]*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var movies []*model.Movie
	for _, movie := range s.movies {
		if movie.IsPremiere {
			clone := *movie
			movies = append(movies, &clone)
		}
	}
	sort.Slice(movies, func(i, j int) bool {
		return movies[i].PremiereOrder < movies[j].PremiereOrder
	})
	return movies, nil
}

func (s *StubStore) UpdateMovie(ctx context.Context, id uint, update store.MovieUpdate) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	movie, ok := s.movies[id]
	if !ok {
		return nil, nil
	}
	if update.Code != nil {
		movie.Code = model.NormalizeCode(*update.Code)
	}
	if update.Title != nil {
		movie.Title = *update.Title
	}
	if update.Description != nil {
		movie.Description = *update.Description
	}
	if update.FileID != nil {
		movie.FileID = *update.FileID
	}
	if update.ThumbnailFileID != nil {
		movie.ThumbnailFileID = *update.ThumbnailFileID
	}
	if update.IsPremiere != nil {
		movie.IsPremiere = *update.IsPremiere
	}
	if update.PremiereOrder != nil {
		movie.PremiereOrder = *update.PremiereOrder
	}
	movie.UpdatedAt = time.Now()
	clone := *movie
	return &clone, nil
}

func (s *StubStore) DeleteMovie(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.movies, id)
	for key := range s.views {
		if key.MovieID == id {
			delete(s.views, key)
		}
	}
	return nil
}

func (s *StubStore) SetPremiere(ctx context.Context, id uint, isPremiere bool, order *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	movie, ok := s.movies[id]
	if !ok {
		return nil
	}
	if order != nil {
		movie.PremiereOrder = *order
	} else if isPremiere {
		var count int
		for _, m := range s.movies {
			if m.IsPremiere {
				count++
			}
		}
		movie.PremiereOrder = count
	}
	movie.IsPremiere = isPremiere
	return nil
}

func (s *StubStore) SwapPremiereOrder(ctx context.Context, id uint, up bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	movie, ok := s.movies[id]
	if !ok || !movie.IsPremiere {
		return nil
	}
	var neighbour *model.Movie
	for _, m := range s.movies {
		if !m.IsPremiere || m.ID == movie.ID {
			continue
		}
		if up && m.PremiereOrder < movie.PremiereOrder {
			if neighbour == nil || m.PremiereOrder > neighbour.PremiereOrder {
				neighbour = m
			}
		}
		if !up && m.PremiereOrder > movie.PremiereOrder {
			if neighbour == nil || m.PremiereOrder < neighbour.PremiereOrder {
				neighbour = m
			}
		}
	}
	if neighbour != nil {
		movie.PremiereOrder, neighbour.PremiereOrder = neighbour.PremiereOrder, movie.PremiereOrder
	}
	return nil
}

func (s *StubStore) RecordView(ctx context.Context, movieID uint, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := viewKey{UserID: userID, MovieID: movieID}
	if _, ok := s.views[key]; ok {
		return nil
	}
	s.views[key] = time.Now()
	if movie, ok := s.movies[movieID]; ok {
		movie.ViewsCount++
	}
	return nil
}

func (s *StubStore) TopMovies(ctx context.Context, limit int) ([]*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var movies []*model.Movie
	for _, movie := range s.movies {
		clone := *movie
		movies = append(movies, &clone)
	}
	sort.Slice(movies, func(i, j int) bool {
		return movies[i].ViewsCount > movies[j].ViewsCount
	})
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

func (s *StubStore) CountMovies(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.movies)), nil
}

func (s *StubStore) CountPremiereMovies(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, movie := range s.movies {
		if movie.IsPremiere {
			count++
		}
	}
	return count, nil
}

func (s *StubStore) SumViews(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, movie := range s.movies {
		total += movie.ViewsCount
	}
	return total, nil
}

func (s *StubStore) WeeklyViews(ctx context.Context, since time.Time) ([]store.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := map[string]int64{}
	for _, at := range s.views {
		if !at.Before(since) {
			buckets[at.Format("2006-01-02")]++
		}
	}
	return sortedBuckets(buckets), nil
}

func (s *StubStore) MovieStats(ctx context.Context, id uint) (*store.MovieStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movie, ok := s.movies[id]
	if !ok {
		return nil, nil
	}
	stats := &store.MovieStats{
		ID:         movie.ID,
		Code:       movie.Code,
		Title:      movie.Title,
		TotalViews: movie.ViewsCount,
		CreatedAt:  movie.CreatedAt,
	}
	for key, at := range s.views {
		if key.MovieID != id {
			continue
		}
		stats.UniqueViewers++
		if stats.LastViewedAt == nil || at.After(*stats.LastViewedAt) {
			atCopy := at
			stats.LastViewedAt = &atCopy
		}
	}
	return stats, nil
}

func (s *StubStore) CreateChannel(ctx context.Context, channel *model.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel.ID = s.id()
	channel.CreatedAt = time.Now()
	clone := *channel
	s.channels[channel.ID] = &clone
	return nil
}

func (s *StubStore) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var channels []*model.Channel
	for _, channel := range s.channels {
		clone := *channel
		channels = append(channels, &clone)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].ID < channels[j].ID
	})
	return channels, nil
}

func (s *StubStore) ListActiveChannels(ctx context.Context) ([]*model.Channel, error) {
	all, _ := s.ListChannels(ctx)
	var active []*model.Channel
	for _, channel := range all {
		if channel.IsActive {
			active = append(active, channel)
		}
	}
	return active, nil
}

func (s *StubStore) GetChannelByID(ctx context.Context, id uint) (*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if channel, ok := s.channels[id]; ok {
		clone := *channel
		return &clone, nil
	}
	return nil, nil
}

func (s *StubStore) GetChannelByExternalID(ctx context.Context, channelID string) (*model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, channel := range s.channels {
		if channel.ChannelID == channelID {
			clone := *channel
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *StubStore) UpdateChannel(ctx context.Context, id uint, update store.ChannelUpdate) (*model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.channels[id]
	if !ok {
		return nil, nil
	}
	if update.ChannelUsername != nil {
		channel.ChannelUsername = *update.ChannelUsername
	}
	if update.ChannelTitle != nil {
		channel.ChannelTitle = *update.ChannelTitle
	}
	if update.InviteLink != nil {
		channel.InviteLink = *update.InviteLink
	}
	if update.PhotoURL != nil {
		channel.PhotoURL = *update.PhotoURL
	}
	if update.IsActive != nil {
		channel.IsActive = *update.IsActive
	}
	clone := *channel
	return &clone, nil
}

func (s *StubStore) DeleteChannel(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
	return nil
}

func (s *StubStore) IncrementChannelBotUsers(ctx context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, channel := range s.channels {
		if channel.ChannelID == channelID {
			channel.BotUsersCount++
		}
	}
	return nil
}

func (s *StubStore) SetChannelBotUsersCount(ctx context.Context, id uint, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel, ok := s.channels[id]; ok {
		channel.BotUsersCount = count
	}
	return nil
}

func (s *StubStore) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.admins[admin.TelegramID]; ok {
		*admin = *existing
		return nil
	}
	admin.ID = s.id()
	admin.CreatedAt = time.Now()
	clone := *admin
	s.admins[admin.TelegramID] = &clone
	return nil
}

func (s *StubStore) Ping(ctx context.Context) error { return nil }

func (s *StubStore) Close() error { return nil }

func sortedBuckets(buckets map[string]int64) []store.DayCount {
	var days []store.DayCount
	for date, count := range buckets {
		days = append(days, store.DayCount{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}
