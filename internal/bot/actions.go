package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/model"
)

// handleCallback dispatches a decoded inline-keyboard action.
func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}

	cb, ok := ParseCallback(query.Data)
	if !ok {
		log.Warn().Str("data", query.Data).Msg("Unknown callback data")
		h.answer(query.ID, "")
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	isAdmin := h.cfg.Bot.IsAdmin(userID)

	switch cb.Action {
	case ActionNoop:
		h.answer(query.ID, "")

	case ActionCheckSubscription:
		h.recheckSubscription(ctx, query)

	case ActionBackToMenu:
		h.sessions.Clear(userID)
		h.deleteMessage(chatID, messageID)
		h.showMainMenu(chatID, userID)

	case ActionPremierePrev, ActionPremiereNext:
		h.answer(query.ID, "")
		h.moveCarousel(ctx, chatID, messageID, cb)

	case ActionWatchPremiere:
		h.watchPremiere(ctx, query, cb.ID)

	case ActionWatch:
		h.watchByCode(ctx, query, cb.Code)

	case ActionMoviesPage:
		if !isAdmin {
			return
		}
		h.answer(query.ID, "")
		h.deleteMessage(chatID, messageID)
		h.showMoviesList(ctx, chatID, int(cb.ID))

	case ActionDeleteMovie:
		if !isAdmin {
			return
		}
		markup := ConfirmDeleteKeyboard(cb.ID)
		if err := h.telegram.EditMessageText(chatID, messageID, "⚠️ Rostdan ham bu kinoni o'chirmoqchimisiz?", &markup); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to ask delete confirmation")
		}

	case ActionConfirmDelete:
		if !isAdmin {
			return
		}
		if err := h.store.DeleteMovie(ctx, cb.ID); err != nil {
			log.Error().Err(err).Uint("movieID", cb.ID).Msg("Failed to delete movie")
			h.answer(query.ID, "❌ O'chirishda xatolik!")
			return
		}
		h.answer(query.ID, "✅ Kino o'chirildi!")
		h.deleteMessage(chatID, messageID)

	case ActionCancelDelete:
		h.answer(query.ID, "❌ Bekor qilindi")
		h.deleteMessage(chatID, messageID)

	case ActionEditMovie:
		if !isAdmin {
			return
		}
		h.openEditMenu(ctx, query, cb.ID)

	case ActionEditTitle:
		if !isAdmin {
			return
		}
		h.enterEditScene(query, SceneEditTitle, cb.ID, "✏️ Yangi nomni kiriting:")

	case ActionEditDescription:
		if !isAdmin {
			return
		}
		h.enterEditScene(query, SceneEditDescription, cb.ID, "✏️ Yangi tavsifni kiriting:")

	case ActionEditCode:
		if !isAdmin {
			return
		}
		h.enterEditScene(query, SceneEditCode, cb.ID, "✏️ Yangi kodni kiriting:")

	case ActionEditCancel, ActionCancelEdit:
		h.sessions.Clear(userID)
		h.answer(query.ID, "❌ Bekor qilindi")
		h.deleteMessage(chatID, messageID)

	case ActionStatsMovie:
		if !isAdmin {
			return
		}
		h.showMovieStats(ctx, query, cb.ID)

	case ActionPremiereMovie:
		if !isAdmin {
			return
		}
		h.togglePremiere(ctx, query, cb.ID)

	case ActionPremiereUp:
		if !isAdmin {
			return
		}
		if err := h.store.SwapPremiereOrder(ctx, cb.ID, true); err != nil {
			log.Error().Err(err).Uint("movieID", cb.ID).Msg("Failed to move premiere up")
			h.answer(query.ID, "❌ Xatolik yuz berdi")
			return
		}
		h.answer(query.ID, "⬆️ Yuqoriga ko'tarildi")

	case ActionPremiereDown:
		if !isAdmin {
			return
		}
		if err := h.store.SwapPremiereOrder(ctx, cb.ID, false); err != nil {
			log.Error().Err(err).Uint("movieID", cb.ID).Msg("Failed to move premiere down")
			h.answer(query.ID, "❌ Xatolik yuz berdi")
			return
		}
		h.answer(query.ID, "⬇️ Pastga tushirildi")

	case ActionPremiereRemove:
		if !isAdmin {
			return
		}
		if err := h.store.SetPremiere(ctx, cb.ID, false, nil); err != nil {
			log.Error().Err(err).Uint("movieID", cb.ID).Msg("Failed to remove premiere")
			h.answer(query.ID, "❌ Xatolik yuz berdi")
			return
		}
		h.answer(query.ID, "❌ Premyeradan olib tashlandi")
		h.deleteMessage(chatID, messageID)
	}
}

// recheckSubscription re-runs the gate when the user taps the check
// button under the join prompt.
func (h *Handler) recheckSubscription(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	result, err := h.gate.Check(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("Subscription check failed")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}

	if result.Subscribed {
		h.answer(query.ID, "✅ Barcha kanallarga obuna bo'lgansiz!")
		h.deleteMessage(chatID, messageID)
		h.showMainMenu(chatID, userID)
		return
	}

	h.answer(query.ID, "❌ Hali barcha kanallarga obuna bo'lmadingiz!")
	markup := SubscriptionKeyboard(result.MissingChannels)
	if err := h.telegram.EditMessageText(chatID, messageID, "⚠️ Iltimos, barcha kanallarga obuna bo'ling:", &markup); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to update subscription prompt")
	}
}

// moveCarousel shifts the premiere carousel one position. The carousel
// index rides in the callback payload.
func (h *Handler) moveCarousel(ctx context.Context, chatID int64, messageID int, cb Callback) {
	movies, err := h.store.ListPremiere(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list premiere movies")
		return
	}

	index := int(cb.ID)
	if cb.Action == ActionPremierePrev {
		index--
	} else {
		index++
	}
	if index < 0 || index >= len(movies) {
		return
	}
	h.showPremiere(chatID, messageID, movies, index, true)
}

func (h *Handler) watchPremiere(ctx context.Context, query *tgbotapi.CallbackQuery, movieID uint) {
	chatID := query.Message.Chat.ID

	movie, err := h.store.GetMovieByID(ctx, movieID)
	if err != nil {
		log.Error().Err(err).Uint("movieID", movieID).Msg("Failed to load movie")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if movie == nil {
		h.answer(query.ID, "❌ Kino topilmadi!")
		return
	}

	h.answer(query.ID, "📥 Kino yuklanmoqda...")
	h.deliverMovie(ctx, chatID, query.From.ID, movie)
}

// watchByCode delivers a movie found by code, but only to subscribed
// users.
func (h *Handler) watchByCode(ctx context.Context, query *tgbotapi.CallbackQuery, code string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	result, err := h.gate.Check(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("Subscription check failed")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if !result.Subscribed {
		h.answer(query.ID, "⚠️ Avval kanallarga obuna bo'ling!")
		warn := "⚠️ Kinoni ko'rish uchun barcha kanallarga obuna bo'ling:"
		if err := h.telegram.SendMessageWithKeyboard(chatID, warn, SubscriptionKeyboard(result.MissingChannels)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send subscription prompt")
		}
		return
	}

	movie, err := h.store.GetMovieByCode(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to load movie")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if movie == nil {
		h.answer(query.ID, "❌ Kino topilmadi!")
		return
	}

	h.answer(query.ID, "🎬 Kino yuklanmoqda...")
	h.deliverMovie(ctx, chatID, userID, movie)
}

// deliverMovie sends the video and records the view. The view record
// is idempotent per user, so re-watching does not inflate the counter.
func (h *Handler) deliverMovie(ctx context.Context, chatID, userID int64, movie *model.Movie) {
	if err := h.telegram.SendVideo(chatID, movie.FileID, videoCaption(movie)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Str("code", movie.Code).Msg("Failed to send video")
		h.sendError(chatID, "Video yuborishda xatolik yuz berdi.")
		return
	}

	if err := h.store.RecordView(ctx, movie.ID, userID); err != nil {
		log.Error().Err(err).Uint("movieID", movie.ID).Int64("userID", userID).Msg("Failed to record view")
	}
}

func (h *Handler) openEditMenu(ctx context.Context, query *tgbotapi.CallbackQuery, movieID uint) {
	chatID := query.Message.Chat.ID

	movie, err := h.store.GetMovieByID(ctx, movieID)
	if err != nil {
		log.Error().Err(err).Uint("movieID", movieID).Msg("Failed to load movie")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if movie == nil {
		h.answer(query.ID, "❌ Kino topilmadi!")
		return
	}

	h.answer(query.ID, "✏️ Tahrirlash")
	if err := h.telegram.SendMessageWithKeyboard(chatID, editOverviewText(movie), EditMovieKeyboard(movieID)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send edit menu")
	}
}

// enterEditScene arms a single-field edit scene for the movie.
func (h *Handler) enterEditScene(query *tgbotapi.CallbackQuery, scene Scene, movieID uint, prompt string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	h.sessions.Set(userID, Session{Scene: scene, EditMovieID: movieID})
	h.answer(query.ID, "")
	markup := CancelEditKeyboard()
	if err := h.telegram.EditMessageText(chatID, messageID, prompt, &markup); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send edit prompt")
	}
}

func (h *Handler) showMovieStats(ctx context.Context, query *tgbotapi.CallbackQuery, movieID uint) {
	chatID := query.Message.Chat.ID

	stats, err := h.store.MovieStats(ctx, movieID)
	if err != nil {
		log.Error().Err(err).Uint("movieID", movieID).Msg("Failed to load movie stats")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if stats == nil {
		h.answer(query.ID, "❌ Kino topilmadi!")
		return
	}

	h.answer(query.ID, "📊 Statistika")
	if err := h.telegram.SendMessage(chatID, movieStatsText(stats)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send movie stats")
	}
}

// togglePremiere flips a movie's premiere flag. A newly added premiere
// goes to the end of the carousel.
func (h *Handler) togglePremiere(ctx context.Context, query *tgbotapi.CallbackQuery, movieID uint) {
	movie, err := h.store.GetMovieByID(ctx, movieID)
	if err != nil {
		log.Error().Err(err).Uint("movieID", movieID).Msg("Failed to load movie")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}
	if movie == nil {
		h.answer(query.ID, "❌ Kino topilmadi!")
		return
	}

	if err := h.store.SetPremiere(ctx, movieID, !movie.IsPremiere, nil); err != nil {
		log.Error().Err(err).Uint("movieID", movieID).Msg("Failed to toggle premiere")
		h.answer(query.ID, "❌ Xatolik yuz berdi")
		return
	}

	if movie.IsPremiere {
		h.answer(query.ID, "❌ Premyeradan olib tashlandi")
	} else {
		h.answer(query.ID, "⭐ Premyera qilindi")
	}
}

func (h *Handler) answer(callbackID, text string) {
	if err := h.telegram.AnswerCallback(callbackID, text); err != nil {
		log.Error().Err(err).Msg("Failed to answer callback")
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if err := h.telegram.DeleteMessage(chatID, messageID); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to delete message")
	}
}
