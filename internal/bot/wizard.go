package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
)

// startUpload enters the upload wizard at the code step.
func (h *Handler) startUpload(chatID, userID int64) {
	h.sessions.Set(userID, Session{
		Scene: SceneUploadMovie,
		Step:  StepCode,
		Draft: &MovieDraft{},
	})
	prompt := "📤 Kino Yuklash\n\n1️⃣ Kino kodini kiriting (masalan: KN001):"
	if err := h.telegram.SendMessageWithKeyboard(chatID, prompt, CancelKeyboard()); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send upload prompt")
	}
}

// handleUploadText advances the upload wizard on a text answer.
func (h *Handler) handleUploadText(ctx context.Context, chatID, userID int64, sess Session, text string) {
	if sess.Draft == nil {
		sess.Draft = &MovieDraft{}
	}

	switch sess.Step {
	case StepCode:
		code := model.NormalizeCode(text)
		exists, err := h.store.MovieExistsByCode(ctx, code)
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("Failed to check movie code")
			h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
			return
		}
		if exists {
			// Stay on the code step until a free code comes in.
			if err := h.telegram.SendMessage(chatID, "❌ Bu kod bilan kino mavjud! Boshqa kod kiriting:"); err != nil {
				log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send duplicate code reply")
			}
			return
		}
		sess.Draft.Code = code
		sess.Step = StepTitle
		h.sessions.Set(userID, sess)
		h.promptStep(chatID, "2️⃣ Kino nomini kiriting:", CancelKeyboard())

	case StepTitle:
		sess.Draft.Title = text
		sess.Step = StepDescription
		h.sessions.Set(userID, sess)
		h.promptStep(chatID, "3️⃣ Kino tavsifini kiriting:", SkipOrCancelKeyboard())

	case StepDescription:
		if text != LabelSkip {
			sess.Draft.Description = text
		}
		sess.Step = StepVideo
		h.sessions.Set(userID, sess)
		h.promptStep(chatID, "4️⃣ Video faylni yuboring:", CancelKeyboard())

	case StepThumbnail:
		if text != LabelSkip {
			return
		}
		// No custom thumbnail: fall back to the one Telegram extracted
		// from the video.
		if sess.Draft.AutoThumbnailFileID != "" {
			sess.Draft.ThumbnailFileID = sess.Draft.AutoThumbnailFileID
		}
		sess.Step = StepPremiere
		h.sessions.Set(userID, sess)
		h.promptStep(chatID, "6️⃣ Bu kino premyera bo'lsinmi?", YesNoKeyboard())

	case StepPremiere:
		h.finishUpload(ctx, chatID, userID, sess, text)
	}
}

// handleVideo captures the movie file at the video step.
func (h *Handler) handleVideo(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !h.cfg.Bot.IsAdmin(userID) {
		return
	}

	sess := h.sessions.Get(userID)
	if sess.Scene != SceneUploadMovie || sess.Step != StepVideo || sess.Draft == nil {
		return
	}

	video := msg.Video
	sess.Draft.FileID = video.FileID
	sess.Draft.FileType = "video"
	sess.Draft.Duration = video.Duration
	sess.Draft.FileSize = int64(video.FileSize)
	if video.Thumbnail != nil {
		sess.Draft.AutoThumbnailFileID = video.Thumbnail.FileID
	}
	sess.Step = StepThumbnail
	h.sessions.Set(userID, sess)

	prompt := "5️⃣ Thumbnail rasm yuboring (ixtiyoriy - video dan avtomatik olinadi agar yubormasangiz):"
	h.promptStep(msg.Chat.ID, prompt, SkipOrCancelKeyboard())
}

// handlePhoto captures a custom thumbnail at the thumbnail step.
func (h *Handler) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !h.cfg.Bot.IsAdmin(userID) {
		return
	}

	sess := h.sessions.Get(userID)
	if sess.Scene != SceneUploadMovie || sess.Step != StepThumbnail || sess.Draft == nil {
		return
	}

	largest := msg.Photo[len(msg.Photo)-1]
	sess.Draft.ThumbnailFileID = largest.FileID
	sess.Step = StepPremiere
	h.sessions.Set(userID, sess)

	h.promptStep(msg.Chat.ID, "6️⃣ Bu kino premyera bo'lsinmi?", YesNoKeyboard())
}

// finishUpload reads the premiere answer, persists the movie and ends
// the wizard. Anything other than an explicit yes counts as no.
func (h *Handler) finishUpload(ctx context.Context, chatID, userID int64, sess Session, text string) {
	movie := &model.Movie{
		Code:            sess.Draft.Code,
		Title:           sess.Draft.Title,
		Description:     sess.Draft.Description,
		FileID:          sess.Draft.FileID,
		FileType:        sess.Draft.FileType,
		ThumbnailFileID: sess.Draft.ThumbnailFileID,
		Duration:        sess.Draft.Duration,
		FileSize:        sess.Draft.FileSize,
		UploadedBy:      userID,
	}

	if text == LabelYes {
		count, err := h.store.CountPremiereMovies(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to count premiere movies")
			h.sendError(chatID, "Xatolik yuz berdi. Qayta urinib ko'ring.")
			return
		}
		movie.IsPremiere = true
		movie.PremiereOrder = int(count)
	}

	if err := h.store.CreateMovie(ctx, movie); err != nil {
		log.Error().Err(err).Str("code", movie.Code).Msg("Failed to create movie")
		h.sendError(chatID, "Kino saqlashda xatolik yuz berdi.")
		return
	}

	h.sessions.Clear(userID)
	log.Info().
		Str("code", movie.Code).
		Int64("uploadedBy", userID).
		Bool("premiere", movie.IsPremiere).
		Msg("Movie uploaded")

	if err := h.telegram.SendMessageWithKeyboard(chatID, uploadDoneText(movie), AdminMenuKeyboard()); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send upload confirmation")
	}
}

// handleEditInput applies a single-field edit and leaves the scene.
func (h *Handler) handleEditInput(ctx context.Context, chatID, userID int64, sess Session, text string) {
	var update store.MovieUpdate
	var done string

	switch sess.Scene {
	case SceneEditTitle:
		update.Title = &text
		done = "✅ Kino nomi yangilandi!"
	case SceneEditDescription:
		update.Description = &text
		done = "✅ Kino tavsifi yangilandi!"
	case SceneEditCode:
		code := model.NormalizeCode(text)
		update.Code = &code
		done = "✅ Kino kodi yangilandi!"
	default:
		return
	}

	if _, err := h.store.UpdateMovie(ctx, sess.EditMovieID, update); err != nil {
		log.Error().Err(err).Uint("movieID", sess.EditMovieID).Msg("Failed to update movie")
		h.sendError(chatID, "Kino yangilashda xatolik yuz berdi.")
		return
	}

	h.sessions.Clear(userID)
	if err := h.telegram.SendMessageWithKeyboard(chatID, done, AdminMenuKeyboard()); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send edit confirmation")
	}
}

func (h *Handler) promptStep(chatID int64, text string, markup interface{}) {
	if err := h.telegram.SendMessageWithKeyboard(chatID, text, markup); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send wizard prompt")
	}
}
