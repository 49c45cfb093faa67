package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/webapp"
)

// ValidateRequest is the mini-app init-data validation payload.
type ValidateRequest struct {
	InitData string `json:"initData"`
}

// PremiereMovie is the public premiere listing entry exposed to the
// mini app. File identifiers stay server-side; thumbnails are served
// through the photo proxy instead.
type PremiereMovie struct {
	ID              uint    `json:"id"`
	Code            string  `json:"code"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ThumbnailFileID *string `json:"thumbnailFileId"`
	ViewsCount      int64   `json:"viewsCount"`
	Duration        int     `json:"duration"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	data, err := s.validator.Validate(req.InitData)
	if err != nil {
		if errors.Is(err, webapp.ErrInvalidInitData) {
			s.writeError(w, r, http.StatusUnauthorized, "Invalid init data")
			return
		}
		log.Error().Err(err).Msg("Failed to validate init data")
		s.writeError(w, r, http.StatusInternalServerError, "Validation failed")
		return
	}
	s.writeData(w, r, data)
}

func (s *Server) handleWebAppPremiere(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.ListPremiere(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list premiere movies")
		s.writeError(w, r, http.StatusInternalServerError, "Failed to list movies")
		return
	}

	out := make([]PremiereMovie, 0, len(movies))
	for _, movie := range movies {
		entry := PremiereMovie{
			ID:          movie.ID,
			Code:        movie.Code,
			Title:       movie.Title,
			Description: movie.Description,
			ViewsCount:  movie.ViewsCount,
			Duration:    movie.Duration,
		}
		if movie.ThumbnailFileID != "" {
			url := "/photo/thumbnail/" + movie.ThumbnailFileID
			entry.ThumbnailFileID = &url
		}
		out = append(out, entry)
	}
	s.writeData(w, r, out)
}

func (s *Server) handleUserPhoto(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.PathValue("telegramId"), 10, 64)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid telegramId")
		return
	}

	fileID, err := s.telegram.UserProfilePhotoFileID(telegramID)
	if err != nil {
		log.Warn().Err(err).Int64("telegramID", telegramID).Msg("Failed to load profile photo")
		s.writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}
	if fileID == "" {
		s.writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}

	s.servePhoto(w, r, fileID, 3600)
}

func (s *Server) handleChannelPhoto(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelId")
	if channelID == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid channelId")
		return
	}
	// Usernames need the @ prefix but numeric -100... ids do not.
	if !strings.HasPrefix(channelID, "@") && !strings.HasPrefix(channelID, "-") {
		channelID = "@" + channelID
	}

	_, photoFileID, err := s.telegram.ChannelInfo(channelID)
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("Failed to load channel photo")
		s.writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}
	if photoFileID == "" {
		s.writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}

	s.servePhoto(w, r, photoFileID, 3600)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileId")
	if fileID == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid fileId")
		return
	}
	s.servePhoto(w, r, fileID, 86400)
}

// servePhoto downloads a Telegram file and streams it with the given
// cache lifetime in seconds.
func (s *Server) servePhoto(w http.ResponseWriter, r *http.Request, fileID string, maxAge int) {
	data, contentType, err := s.telegram.DownloadFile(r.Context(), fileID)
	if err != nil {
		log.Warn().Err(err).Str("fileID", fileID).Msg("Failed to download file")
		s.writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}

	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write photo response")
	}
}
