package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
)

// CreateMovieRequest is the admin movie-creation payload.
type CreateMovieRequest struct {
	Code            string `json:"code"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	FileID          string `json:"file_id"`
	FileType        string `json:"file_type"`
	ThumbnailFileID string `json:"thumbnail_file_id"`
	Duration        int    `json:"duration"`
	FileSize        int64  `json:"file_size"`
	IsPremiere      bool   `json:"is_premiere"`
}

// UpdateMovieRequest carries optional movie fields; absent fields are
// left unchanged.
type UpdateMovieRequest struct {
	Code            *string `json:"code"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	FileID          *string `json:"file_id"`
	ThumbnailFileID *string `json:"thumbnail_file_id"`
	IsPremiere      *bool   `json:"is_premiere"`
	PremiereOrder   *int    `json:"premiere_order"`
}

// SetPremiereRequest is the premiere toggle payload.
type SetPremiereRequest struct {
	IsPremiere bool `json:"is_premiere"`
	Order      *int `json:"order"`
}

// CreateChannelRequest is the admin channel-creation payload.
type CreateChannelRequest struct {
	ChannelID       string `json:"channel_id"`
	ChannelUsername string `json:"channel_username"`
	ChannelTitle    string `json:"channel_title"`
	InviteLink      string `json:"invite_link"`
}

// UpdateChannelRequest carries optional channel fields.
type UpdateChannelRequest struct {
	ChannelUsername *string `json:"channel_username"`
	ChannelTitle    *string `json:"channel_title"`
	InviteLink      *string `json:"invite_link"`
	IsActive        *bool   `json:"is_active"`
}

// BanRequest is the ban toggle payload.
type BanRequest struct {
	IsBanned bool `json:"isBanned"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboardStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load dashboard stats")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	s.writeData(w, r, stats)
}

func (s *Server) dashboardStats(ctx context.Context) (*store.DashboardStats, error) {
	stats := &store.DashboardStats{}
	var err error
	if stats.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.SubscribedUsers, err = s.store.CountSubscribedUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMovies, err = s.store.CountMovies(ctx); err != nil {
		return nil, err
	}
	if stats.PremiereMovies, err = s.store.CountPremiereMovies(ctx); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = s.store.SumViews(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.TodayNewUsers, err = s.store.CountUsersSince(ctx, today); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Server) handleMovieStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	top, err := s.store.TopMovies(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load top movies")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	weekly, err := s.store.WeeklyViews(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load weekly views")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	s.writeData(w, r, map[string]interface{}{
		"topMovies":   top,
		"weeklyViews": weekly,
	})
}

func (s *Server) handleUserActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.store.UserActivity(r.Context(), time.Now().AddDate(0, 0, -7))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load user activity")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	s.writeData(w, r, activity)
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	movies, total, err := s.store.ListMovies(r.Context(), page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list movies")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to list movies")
		return
	}

	s.writeData(w, r, map[string]interface{}{
		"movies": movies,
		"total":  total,
		"pages":  (total + int64(limit) - 1) / int64(limit),
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	movie, err := s.store.GetMovieByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Uint("movieID", id).Msg("Failed to load movie")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load movie")
		return
	}
	if movie == nil {
		s.writeError(w, r, http.StatusNotFound, "Movie not found")
		return
	}
	s.writeData(w, r, movie)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" || req.Title == "" || req.FileID == "" {
		s.writeError(w, r, http.StatusBadRequest, "code, title and file_id are required")
		return
	}

	uploadedBy, _ := strconv.ParseInt(r.Header.Get("x-telegram-id"), 10, 64)
	fileType := req.FileType
	if fileType == "" {
		fileType = "video"
	}

	movie := &model.Movie{
		Code:            model.NormalizeCode(req.Code),
		Title:           req.Title,
		Description:     req.Description,
		FileID:          req.FileID,
		FileType:        fileType,
		ThumbnailFileID: req.ThumbnailFileID,
		Duration:        req.Duration,
		FileSize:        req.FileSize,
		IsPremiere:      req.IsPremiere,
		UploadedBy:      uploadedBy,
	}
	if err := s.store.CreateMovie(r.Context(), movie); err != nil {
		log.Error().Err(err).Str("code", movie.Code).Msg("Failed to create movie")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to create movie")
		return
	}
	s.writeData(w, r, movie)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := store.MovieUpdate{
		Title:           req.Title,
		Description:     req.Description,
		FileID:          req.FileID,
		ThumbnailFileID: req.ThumbnailFileID,
		IsPremiere:      req.IsPremiere,
		PremiereOrder:   req.PremiereOrder,
	}
	if req.Code != nil {
		code := model.NormalizeCode(*req.Code)
		update.Code = &code
	}

	movie, err := s.store.UpdateMovie(r.Context(), id, update)
	if err != nil {
		log.Error().Err(err).Uint("movieID", id).Msg("Failed to update movie")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to update movie")
		return
	}
	if movie == nil {
		s.writeError(w, r, http.StatusNotFound, "Movie not found")
		return
	}
	s.writeData(w, r, movie)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteMovie(r.Context(), id); err != nil {
		log.Error().Err(err).Uint("movieID", id).Msg("Failed to delete movie")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to delete movie")
		return
	}
	s.writeOK(w, r)
}

func (s *Server) handleSetPremiere(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req SetPremiereRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.SetPremiere(r.Context(), id, req.IsPremiere, req.Order); err != nil {
		log.Error().Err(err).Uint("movieID", id).Msg("Failed to set premiere")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to set premiere")
		return
	}
	s.writeOK(w, r)
}

// handleListChannels returns all channels enriched with live photo and
// title details. Enrichment failures are logged and skipped so a dead
// channel cannot break the listing.
func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list channels")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to list channels")
		return
	}

	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count users")
		totalUsers = 0
	}

	for _, channel := range channels {
		title, photoFileID, err := s.telegram.ChannelInfo(channel.ChannelID)
		if err != nil {
			log.Warn().Err(err).Str("channel", channel.ChannelID).Msg("Failed to enrich channel details")
		} else {
			if title != "" {
				channel.ChannelTitle = title
			}
			if photoFileID != "" {
				channel.PhotoURL = "/photo/channel/" + channel.ChannelID
			}
		}

		// A fresh channel has never counted its audience; report the
		// current user total instead of zero.
		if channel.BotUsersCount == 0 && totalUsers > 0 {
			channel.BotUsersCount = totalUsers
			if err := s.store.SetChannelBotUsersCount(ctx, channel.ID, totalUsers); err != nil {
				log.Error().Err(err).Uint("channelID", channel.ID).Msg("Failed to persist channel user count")
			}
		}
	}

	s.writeData(w, r, channels)
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChannelID == "" {
		s.writeError(w, r, http.StatusBadRequest, "channel_id is required")
		return
	}

	channel := &model.Channel{
		ChannelID:       req.ChannelID,
		ChannelUsername: req.ChannelUsername,
		ChannelTitle:    req.ChannelTitle,
		InviteLink:      req.InviteLink,
		IsActive:        true,
	}
	if err := s.store.CreateChannel(r.Context(), channel); err != nil {
		log.Error().Err(err).Str("channel", req.ChannelID).Msg("Failed to create channel")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to create channel")
		return
	}
	s.writeData(w, r, channel)
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	channel, err := s.store.UpdateChannel(r.Context(), id, store.ChannelUpdate{
		ChannelUsername: req.ChannelUsername,
		ChannelTitle:    req.ChannelTitle,
		InviteLink:      req.InviteLink,
		IsActive:        req.IsActive,
	})
	if err != nil {
		log.Error().Err(err).Uint("channelID", id).Msg("Failed to update channel")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to update channel")
		return
	}
	if channel == nil {
		s.writeError(w, r, http.StatusNotFound, "Channel not found")
		return
	}
	s.writeData(w, r, channel)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteChannel(r.Context(), id); err != nil {
		log.Error().Err(err).Uint("channelID", id).Msg("Failed to delete channel")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to delete channel")
		return
	}
	s.writeOK(w, r)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = store.UserFilterAll
	}
	search := r.URL.Query().Get("search")

	users, total, err := s.store.ListUsers(r.Context(), page, limit, filter, search)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}

	s.writeData(w, r, map[string]interface{}{
		"users": users,
		"total": total,
		"pages": (total + int64(limit) - 1) / int64(limit),
	})
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.SetUserBanned(r.Context(), id, req.IsBanned); err != nil {
		log.Error().Err(err).Uint("userID", id).Msg("Failed to set ban flag")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to update user")
		return
	}
	s.writeOK(w, r)
}

func (s *Server) handleUserViews(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.PathValue("telegramId"), 10, 64)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid telegramId")
		return
	}

	views, err := s.store.UserViews(r.Context(), telegramID)
	if err != nil {
		log.Error().Err(err).Int64("telegramID", telegramID).Msg("Failed to load user views")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to load views")
		return
	}
	s.writeData(w, r, views)
}
