package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/config"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
	"github.com/user/kino-bot-go/internal/subscription"
)

const moviesPageSize = 5

// Sender defines the interface for the outbound Telegram operations
// the handler needs
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, markup interface{}) error
	SendPhoto(chatID int64, fileID string, caption string, markup interface{}) error
	SendVideo(chatID int64, fileID string, caption string) error
	EditMessageText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error
	EditMessageCaption(chatID int64, messageID int, caption string, markup *tgbotapi.InlineKeyboardMarkup) error
	EditMessageMedia(chatID int64, messageID int, photoFileID string, caption string, markup *tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID string, text string) error
	DeleteMessage(chatID int64, messageID int) error
	UserProfilePhotoFileID(userID int64) (string, error)
}

// Handler routes incoming Telegram updates
type Handler struct {
	store    store.Store
	gate     *subscription.Gate
	telegram Sender
	sessions *Sessions
	cfg      *config.Config
}

// NewHandler creates a new update handler
func NewHandler(s store.Store, gate *subscription.Gate, telegram Sender, cfg *config.Config) *Handler {
	return &Handler{
		store:    s,
		gate:     gate,
		telegram: telegram,
		sessions: NewSessions(),
		cfg:      cfg,
	}
}

// HandleUpdate processes an incoming Telegram update. Updates from
// banned users are dropped without a reply.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	}
	if from == nil {
		return
	}

	user, err := h.store.GetUserByTelegramID(ctx, from.ID)
	if err != nil {
		log.Error().Err(err).Int64("userID", from.ID).Msg("Failed to load user")
	}
	if user != nil && user.IsBanned {
		return
	}

	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	switch {
	case msg.IsCommand():
		h.handleCommand(ctx, msg)
	case msg.Video != nil:
		h.handleVideo(ctx, msg)
	case len(msg.Photo) > 0:
		h.handlePhoto(ctx, msg)
	case msg.Text != "":
		h.handleText(ctx, msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	command := msg.Command()

	log.Info().
		Int64("chatID", chatID).
		Str("command", command).
		Msg("Received command")

	switch command {
	case "start", "help":
		h.handleStart(ctx, msg)
	case "admin":
		h.handleAdminCommand(ctx, msg)
	}
}

// handleStart registers or refreshes the user, materializes the admin
// row for allow-listed users, then either shows the main menu or the
// join-required prompt.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	chatID := msg.Chat.ID
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)

	user := &model.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FullName:   fullName,
	}
	if fileID, err := h.telegram.UserProfilePhotoFileID(from.ID); err != nil {
		log.Warn().Err(err).Int64("userID", from.ID).Msg("Failed to fetch profile photo")
	} else if fileID != "" {
		user.PhotoURL = fmt.Sprintf("/photo/user/%d", from.ID)
	}

	created, err := h.store.UpsertUser(ctx, user)
	if err != nil {
		log.Error().Err(err).Int64("userID", from.ID).Msg("Failed to upsert user")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if created {
		log.Info().Int64("userID", from.ID).Str("username", from.UserName).Msg("New user registered")
		h.countNewUserForChannels(ctx)
	}

	if h.cfg.Bot.IsAdmin(from.ID) {
		admin := &model.Admin{TelegramID: from.ID, Username: from.UserName, FullName: fullName}
		if err := h.store.UpsertAdmin(ctx, admin); err != nil {
			log.Error().Err(err).Int64("userID", from.ID).Msg("Failed to upsert admin")
		}
	}

	result, err := h.gate.Check(ctx, from.ID)
	if err != nil {
		log.Error().Err(err).Int64("userID", from.ID).Msg("Subscription check failed")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}

	if !result.Subscribed && len(result.MissingChannels) > 0 {
		greeting := "👋 Assalomu alaykum!\n\n" +
			"🎬 Kino botimizga xush kelibsiz!\n\n" +
			"⚠️ Botdan foydalanish uchun quyidagi kanallarga obuna bo'ling:"
		if err := h.telegram.SendMessageWithKeyboard(chatID, greeting, SubscriptionKeyboard(result.MissingChannels)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send subscription prompt")
		}
		return
	}

	h.showMainMenu(chatID, from.ID)
}

// countNewUserForChannels bumps every active channel's audience
// counter when a brand-new user registers.
func (h *Handler) countNewUserForChannels(ctx context.Context) {
	channels, err := h.store.ListActiveChannels(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active channels")
		return
	}
	for _, channel := range channels {
		if err := h.store.IncrementChannelBotUsers(ctx, channel.ChannelID); err != nil {
			log.Error().Err(err).Str("channel", channel.ChannelID).Msg("Failed to increment channel users")
		}
	}
}

func (h *Handler) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.cfg.Bot.IsAdmin(msg.From.ID) {
		h.sendError(chatID, "Sizda admin huquqi yo'q!")
		return
	}

	text := "👑 Admin Panel\n\nQuyidagi tugmalardan birini tanlang:"
	if err := h.telegram.SendMessageWithKeyboard(chatID, text, AdminMenuKeyboard()); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send admin menu")
	}
}

func (h *Handler) showMainMenu(chatID int64, userID int64) {
	text := "🎬 Asosiy Menyu\n\nQuyidagi tugmalardan birini tanlang:"
	if h.cfg.Bot.IsAdmin(userID) {
		text += "\n\n👑 Siz adminsiz! /admin buyrug'i orqali admin panelga o'ting."
	}
	if err := h.telegram.SendMessageWithKeyboard(chatID, text, MainMenuKeyboard()); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send main menu")
	}
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID
	isAdmin := h.cfg.Bot.IsAdmin(userID)

	// Cancel aborts any scene.
	if text == LabelCancel {
		h.sessions.Clear(userID)
		if isAdmin {
			if err := h.telegram.SendMessageWithKeyboard(chatID, "❌ Bekor qilindi.", AdminMenuKeyboard()); err != nil {
				log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send cancel reply")
			}
		} else {
			h.showMainMenu(chatID, userID)
		}
		return
	}

	if text == LabelUserMode {
		h.sessions.Clear(userID)
		h.showMainMenu(chatID, userID)
		return
	}

	sess := h.sessions.Get(userID)
	switch sess.Scene {
	case SceneSearchByCode:
		h.handleSearchInput(ctx, chatID, userID, text)
		return
	case SceneUploadMovie:
		if isAdmin {
			h.handleUploadText(ctx, chatID, userID, sess, text)
		}
		return
	case SceneEditTitle, SceneEditDescription, SceneEditCode:
		if isAdmin {
			h.handleEditInput(ctx, chatID, userID, sess, text)
		}
		return
	}

	switch text {
	case LabelPremiere:
		h.handlePremiere(ctx, chatID)
	case LabelSearchByCode:
		h.sessions.Set(userID, Session{Scene: SceneSearchByCode})
		prompt := "🔍 Kino kodini kiriting:\n\nMasalan: KN001, FILM123"
		markup := BackKeyboard()
		if err := h.telegram.SendMessageWithKeyboard(chatID, prompt, markup); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send search prompt")
		}
	case LabelMyStats:
		h.handleUserStats(ctx, chatID, userID)
	case LabelHelp:
		h.handleHelp(chatID)
	case LabelUploadMovie:
		if isAdmin {
			h.startUpload(chatID, userID)
		}
	case LabelMovieList:
		if isAdmin {
			h.showMoviesList(ctx, chatID, 1)
		}
	case LabelPremiereSetup:
		if isAdmin {
			h.handlePremiereSetup(ctx, chatID)
		}
	case LabelChannels:
		if isAdmin {
			text := "📢 Kanallar Boshqaruvi\n\nWeb App orqali kanallarni boshqaring:"
			markup := WebAppKeyboard("📢 Kanallar Boshqaruvi", h.cfg.WebApp.AdminURL)
			if err := h.telegram.SendMessageWithKeyboard(chatID, text, markup); err != nil {
				log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send channels menu")
			}
		}
	case LabelUserStats:
		if isAdmin {
			text := "👥 Userlar Statistikasi\n\nWeb App orqali userlarni ko'ring:"
			markup := WebAppKeyboard("👥 Userlar Ro'yxati", h.cfg.WebApp.AdminURL)
			if err := h.telegram.SendMessageWithKeyboard(chatID, text, markup); err != nil {
				log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send users menu")
			}
		}
	case LabelDashboard:
		if isAdmin {
			h.handleDashboard(ctx, chatID)
		}
	default:
		h.handleCodeLookup(ctx, chatID, userID, text)
	}
}

// handleCodeLookup treats idle free text as a movie code. Unknown
// codes are ignored silently.
func (h *Handler) handleCodeLookup(ctx context.Context, chatID, userID int64, text string) {
	movie, err := h.store.GetMovieByCode(ctx, text)
	if err != nil {
		log.Error().Err(err).Str("code", text).Msg("Failed to look up movie by code")
		return
	}
	if movie == nil {
		return
	}

	result, err := h.gate.Check(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("Subscription check failed")
		return
	}
	if !result.Subscribed {
		warn := "⚠️ Kinoni ko'rish uchun barcha kanallarga obuna bo'ling:"
		if err := h.telegram.SendMessageWithKeyboard(chatID, warn, SubscriptionKeyboard(result.MissingChannels)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send subscription prompt")
		}
		return
	}

	h.sendMovieCard(chatID, movie)
}

// handleSearchInput handles text while in the code-search scene. A
// miss re-prompts and keeps the scene; a hit clears it.
func (h *Handler) handleSearchInput(ctx context.Context, chatID, userID int64, text string) {
	movie, err := h.store.GetMovieByCode(ctx, text)
	if err != nil {
		log.Error().Err(err).Str("code", text).Msg("Failed to look up movie by code")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if movie == nil {
		if err := h.telegram.SendMessage(chatID, "❌ Bu kod bilan kino topilmadi. Qayta urinib ko'ring:"); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send miss reply")
		}
		return
	}

	h.sessions.Clear(userID)
	h.sendMovieCard(chatID, movie)
}

func (h *Handler) sendMovieCard(chatID int64, movie *model.Movie) {
	caption := movieCaption(movie)
	markup := WatchKeyboard(movie.Code)

	var err error
	if movie.ThumbnailFileID != "" {
		err = h.telegram.SendPhoto(chatID, movie.ThumbnailFileID, caption, markup)
	} else {
		err = h.telegram.SendMessageWithKeyboard(chatID, caption, markup)
	}
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Str("code", movie.Code).Msg("Failed to send movie card")
	}
}

func (h *Handler) handlePremiere(ctx context.Context, chatID int64) {
	movies, err := h.store.ListPremiere(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list premiere movies")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if len(movies) == 0 {
		if err := h.telegram.SendMessage(chatID, "😔 Hozircha premyera kinolar yo'q."); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send empty premiere reply")
		}
		return
	}
	h.showPremiere(chatID, 0, movies, 0, false)
}

// showPremiere renders the carousel card at index. With edit=true the
// existing message is updated in place.
func (h *Handler) showPremiere(chatID int64, messageID int, movies []*model.Movie, index int, edit bool) {
	movie := movies[index]
	caption := premiereCaption(movie)
	markup := CarouselKeyboard(movie.ID, index, len(movies), h.cfg.WebApp.UserURL+"/premiere")

	var err error
	switch {
	case edit && movie.ThumbnailFileID != "":
		err = h.telegram.EditMessageMedia(chatID, messageID, movie.ThumbnailFileID, caption, &markup)
	case edit:
		err = h.telegram.EditMessageCaption(chatID, messageID, caption, &markup)
	case movie.ThumbnailFileID != "":
		err = h.telegram.SendPhoto(chatID, movie.ThumbnailFileID, caption, markup)
	default:
		err = h.telegram.SendMessageWithKeyboard(chatID, caption, markup)
	}
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Uint("movieID", movie.ID).Msg("Failed to show premiere movie")
	}
}

func (h *Handler) handleUserStats(ctx context.Context, chatID, userID int64) {
	views, lastView, err := h.store.UserStats(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("Failed to load user stats")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if err := h.telegram.SendMessage(chatID, userStatsText(views, lastView)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send user stats")
	}
}

func (h *Handler) handleHelp(chatID int64) {
	text := "ℹ️ Yordam\n\n" +
		"🎬 Premyera Kinolar - Eng yangi kinolarni ko'ring\n" +
		"🔍 Kod orqali ko'rish - Kino kodini kiritib, kinoni toping\n" +
		"📊 Mening statistikam - O'z statistikangizni ko'ring"
	if err := h.telegram.SendMessage(chatID, text); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send help")
	}
}

func (h *Handler) handleDashboard(ctx context.Context, chatID int64) {
	stats, err := h.dashboardStats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load dashboard stats")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	top, err := h.store.TopMovies(ctx, 5)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load top movies")
	}
	if err := h.telegram.SendMessage(chatID, dashboardText(stats, top)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send dashboard")
	}
}

func (h *Handler) dashboardStats(ctx context.Context) (*store.DashboardStats, error) {
	stats := &store.DashboardStats{}
	var err error
	if stats.TotalUsers, err = h.store.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.SubscribedUsers, err = h.store.CountSubscribedUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMovies, err = h.store.CountMovies(ctx); err != nil {
		return nil, err
	}
	if stats.PremiereMovies, err = h.store.CountPremiereMovies(ctx); err != nil {
		return nil, err
	}
	if stats.TotalViews, err = h.store.SumViews(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.TodayNewUsers, err = h.store.CountUsersSince(ctx, today); err != nil {
		return nil, err
	}
	return stats, nil
}

func (h *Handler) showMoviesList(ctx context.Context, chatID int64, page int) {
	movies, total, err := h.store.ListMovies(ctx, page, moviesPageSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list movies")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if len(movies) == 0 {
		if err := h.telegram.SendMessage(chatID, "📋 Hozircha kinolar yo'q."); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send empty list reply")
		}
		return
	}

	totalPages := int((total + moviesPageSize - 1) / moviesPageSize)
	text := movieListText(movies, page, totalPages)

	if markup, ok := PaginationKeyboard(page, totalPages); ok {
		err = h.telegram.SendMessageWithKeyboard(chatID, text, markup)
	} else {
		err = h.telegram.SendMessage(chatID, text)
	}
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send movie list")
	}

	for _, movie := range movies {
		row := movie.Code + ": " + movie.Title
		if err := h.telegram.SendMessageWithKeyboard(chatID, row, MovieActionsKeyboard(movie.ID)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Uint("movieID", movie.ID).Msg("Failed to send movie actions")
		}
	}
}

func (h *Handler) handlePremiereSetup(ctx context.Context, chatID int64) {
	movies, err := h.store.ListPremiere(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list premiere movies")
		h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
		return
	}
	if len(movies) == 0 {
		text := "⭐ Premyera Kinolar\n\n" +
			"Hozircha premyera kinolar yo'q.\n" +
			"Kinolar ro'yxatidan kinoni premyera qilishingiz mumkin."
		if err := h.telegram.SendMessage(chatID, text); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send empty premiere reply")
		}
		return
	}

	if err := h.telegram.SendMessage(chatID, "⭐ Premyera Kinolar tartibini o'zgartiring:"); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send premiere header")
	}
	for _, movie := range movies {
		text := fmt.Sprintf("%d. %s - %s", movie.PremiereOrder+1, movie.Code, movie.Title)
		if err := h.telegram.SendMessageWithKeyboard(chatID, text, PremiereActionsKeyboard(movie.ID)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Uint("movieID", movie.ID).Msg("Failed to send premiere row")
		}
	}
}

func (h *Handler) sendError(chatID int64, message string) {
	if err := h.telegram.SendMessage(chatID, "❌ "+message); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send error message")
	}
}
