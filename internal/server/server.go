// Package server exposes the admin REST API, the mini-app endpoints
// and the photo proxy over plain net/http.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/config"
	"github.com/user/kino-bot-go/internal/metrics"
	"github.com/user/kino-bot-go/internal/store"
	"github.com/user/kino-bot-go/internal/webapp"
)

// Telegram is the subset of the bot client the HTTP surface needs:
// live photo lookups for the proxy and channel detail enrichment.
type Telegram interface {
	UserProfilePhotoFileID(userID int64) (string, error)
	ChannelInfo(channelID string) (title, photoFileID string, err error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

// Response is the JSON envelope every endpoint replies with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Server handles HTTP requests
type Server struct {
	store     store.Store
	telegram  Telegram
	validator *webapp.Validator
	cfg       *config.Config
	router    *http.ServeMux
	server    *http.Server
	startTime time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(s store.Store, telegram Telegram, validator *webapp.Validator, cfg *config.Config) *Server {
	srv := &Server{
		store:     s,
		telegram:  telegram,
		validator: validator,
		cfg:       cfg,
		router:    http.NewServeMux(),
		startTime: time.Now(),
	}
	srv.setupRoutes()
	return srv
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /metrics", promhttp.Handler())

	// Admin API, gated by the x-telegram-id allow-list.
	s.router.HandleFunc("GET /admin/stats/dashboard", s.adminOnly(s.handleDashboard))
	s.router.HandleFunc("GET /admin/stats/movies", s.adminOnly(s.handleMovieStats))
	s.router.HandleFunc("GET /admin/stats/activity", s.adminOnly(s.handleUserActivity))

	s.router.HandleFunc("GET /admin/movies", s.adminOnly(s.handleListMovies))
	s.router.HandleFunc("POST /admin/movies", s.adminOnly(s.handleCreateMovie))
	s.router.HandleFunc("GET /admin/movies/{id}", s.adminOnly(s.handleGetMovie))
	s.router.HandleFunc("PUT /admin/movies/{id}", s.adminOnly(s.handleUpdateMovie))
	s.router.HandleFunc("DELETE /admin/movies/{id}", s.adminOnly(s.handleDeleteMovie))
	s.router.HandleFunc("PATCH /admin/movies/{id}/premiere", s.adminOnly(s.handleSetPremiere))

	s.router.HandleFunc("GET /admin/channels", s.adminOnly(s.handleListChannels))
	s.router.HandleFunc("POST /admin/channels", s.adminOnly(s.handleCreateChannel))
	s.router.HandleFunc("PUT /admin/channels/{id}", s.adminOnly(s.handleUpdateChannel))
	s.router.HandleFunc("PATCH /admin/channels/{id}", s.adminOnly(s.handleUpdateChannel))
	s.router.HandleFunc("DELETE /admin/channels/{id}", s.adminOnly(s.handleDeleteChannel))

	s.router.HandleFunc("GET /admin/users", s.adminOnly(s.handleListUsers))
	s.router.HandleFunc("PATCH /admin/users/{id}/ban", s.adminOnly(s.handleBanUser))
	s.router.HandleFunc("GET /admin/users/{telegramId}/views", s.adminOnly(s.handleUserViews))

	// Mini-app endpoints.
	s.router.HandleFunc("POST /webapp/validate", s.handleValidate)
	s.router.HandleFunc("GET /webapp/premiere", s.handleWebAppPremiere)

	// Photo proxy.
	s.router.HandleFunc("GET /photo/user/{telegramId}", s.handleUserPhoto)
	s.router.HandleFunc("GET /photo/channel/{channelId}", s.handleChannelPhoto)
	s.router.HandleFunc("GET /photo/thumbnail/{fileId}", s.handleThumbnail)
}

// Start begins listening on the configured port
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", s.cfg.Server.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// adminOnly rejects requests whose x-telegram-id header is missing or
// not on the configured allow-list.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("x-telegram-id")
		telegramID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || !s.cfg.Bot.IsAdmin(telegramID) {
			s.writeError(w, r, http.StatusUnauthorized, "Admin access required")
			return
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	metrics.RecordHTTPRequest(r.URL.Path, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
	}
}

func (s *Server) writeData(w http.ResponseWriter, r *http.Request, data interface{}) {
	s.writeJSON(w, r, http.StatusOK, Response{Success: true, Data: data})
}

func (s *Server) writeOK(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, Response{Success: true})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, r, status, Response{Success: false, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		dbStatus = fmt.Sprintf("unhealthy: %v", err)
	}

	status := "healthy"
	code := http.StatusOK
	if dbStatus != "healthy" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:   status,
		Database: dbStatus,
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// pathID parses a numeric {id} path segment.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
