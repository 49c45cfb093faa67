package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/user/kino-bot-go/internal/model"
)

// Reply-keyboard labels. The router matches incoming text against
// these, so keyboards and routing must agree.
const (
	LabelPremiere     = "🎬 Premyera Kinolar"
	LabelSearchByCode = "🔍 Kod orqali ko'rish"
	LabelMyStats      = "📊 Mening statistikam"
	LabelHelp         = "ℹ️ Yordam"

	LabelUploadMovie   = "📤 Kino Yuklash"
	LabelMovieList     = "📋 Kinolar Ro'yxati"
	LabelPremiereSetup = "⭐ Premyera Sozlash"
	LabelChannels      = "📢 Kanallar Boshqaruvi"
	LabelUserStats     = "👥 Userlar Statistikasi"
	LabelDashboard     = "📊 Umumiy Statistika"
	LabelUserMode      = "⬅️ User Rejimiga"

	LabelCancel = "❌ Bekor qilish"
	LabelSkip   = "⏭ O'tkazib yuborish"
	LabelYes    = "✅ Ha"
	LabelNo     = "❌ Yo'q"
)

func callbackButton(text string, cb Callback) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, cb.Encode())
}

func urlButton(text, url string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonURL(text, url)
}

// MainMenuKeyboard is the user reply keyboard. The premiere entry opens
// the in-bot carousel; the mini-app pages are reached through inline
// URL buttons instead.
func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelPremiere),
			tgbotapi.NewKeyboardButton(LabelSearchByCode),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelMyStats),
			tgbotapi.NewKeyboardButton(LabelHelp),
		),
	)
}

// AdminMenuKeyboard is the admin reply keyboard.
func AdminMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelUploadMovie),
			tgbotapi.NewKeyboardButton(LabelMovieList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelPremiereSetup),
			tgbotapi.NewKeyboardButton(LabelChannels),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelUserStats),
			tgbotapi.NewKeyboardButton(LabelDashboard),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(LabelUserMode)),
	)
}

// CancelKeyboard shows only the cancel button.
func CancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(LabelCancel)),
	)
}

// SkipOrCancelKeyboard shows skip and cancel buttons.
func SkipOrCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(LabelSkip)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(LabelCancel)),
	)
}

// YesNoKeyboard shows yes/no plus cancel.
func YesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(LabelYes),
			tgbotapi.NewKeyboardButton(LabelNo),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(LabelCancel)),
	)
}

// SubscriptionKeyboard lists join links for the missing channels plus
// a re-check button.
func SubscriptionKeyboard(channels []*model.Channel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, channel := range channels {
		url := channel.JoinURL()
		if url == "" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 "+channel.DisplayTitle(), url),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		callbackButton("✅ Tekshirish", Callback{Action: ActionCheckSubscription}),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// WatchKeyboard offers the watch button for a movie found by code.
func WatchKeyboard(code string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("▶️ Ko'rish", Callback{Action: ActionWatch, Code: code}),
		),
	)
}

// BackKeyboard offers a single back-to-menu button.
func BackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("⬅️ Orqaga", Callback{Action: ActionBackToMenu}),
		),
	)
}

// CarouselKeyboard renders premiere navigation for position index out
// of total, with a watch button for the shown movie. With a non-empty
// webAppURL a link to the mini-app premiere page is appended.
func CarouselKeyboard(movieID uint, index, total int, webAppURL string) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if index > 0 {
		nav = append(nav, callbackButton("◀️", Callback{Action: ActionPremierePrev, ID: uint(index)}))
	}
	nav = append(nav, callbackButton(fmt.Sprintf("%d/%d", index+1, total), Callback{Action: ActionNoop}))
	if index < total-1 {
		nav = append(nav, callbackButton("▶️", Callback{Action: ActionPremiereNext, ID: uint(index)}))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		nav,
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("▶️ Ko'rish", Callback{Action: ActionWatchPremiere, ID: movieID}),
		),
	}
	if webAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			urlButton("🌐 Web App'da ochish", webAppURL),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// MovieActionsKeyboard shows the admin actions for one movie row.
func MovieActionsKeyboard(movieID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("✏️ Tahrirlash", Callback{Action: ActionEditMovie, ID: movieID}),
			callbackButton("🗑 O'chirish", Callback{Action: ActionDeleteMovie, ID: movieID}),
		),
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("📊 Statistika", Callback{Action: ActionStatsMovie, ID: movieID}),
			callbackButton("⭐ Premyera", Callback{Action: ActionPremiereMovie, ID: movieID}),
		),
	)
}

// PaginationKeyboard renders prev/next page buttons for the admin
// movie list; returns ok=false when there is only one page.
func PaginationKeyboard(page, totalPages int) (tgbotapi.InlineKeyboardMarkup, bool) {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, callbackButton("⬅️ Oldingi", Callback{Action: ActionMoviesPage, ID: uint(page - 1)}))
	}
	if page < totalPages {
		row = append(row, callbackButton("Keyingi ➡️", Callback{Action: ActionMoviesPage, ID: uint(page + 1)}))
	}
	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

// PremiereActionsKeyboard shows reorder/remove controls for one
// premiere row.
func PremiereActionsKeyboard(movieID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("⬆️", Callback{Action: ActionPremiereUp, ID: movieID}),
			callbackButton("⬇️", Callback{Action: ActionPremiereDown, ID: movieID}),
			callbackButton("❌", Callback{Action: ActionPremiereRemove, ID: movieID}),
		),
	)
}

// ConfirmDeleteKeyboard asks for delete confirmation.
func ConfirmDeleteKeyboard(movieID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("✅ Ha, o'chirish", Callback{Action: ActionConfirmDelete, ID: movieID}),
			callbackButton("❌ Yo'q", Callback{Action: ActionCancelDelete}),
		),
	)
}

// EditMovieKeyboard lists the editable fields of a movie.
func EditMovieKeyboard(movieID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("🎬 Nomni o'zgartirish", Callback{Action: ActionEditTitle, ID: movieID}),
		),
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("📝 Tavsifni o'zgartirish", Callback{Action: ActionEditDescription, ID: movieID}),
		),
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("📋 Kodni o'zgartirish", Callback{Action: ActionEditCode, ID: movieID}),
		),
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("❌ Bekor qilish", Callback{Action: ActionEditCancel, ID: movieID}),
		),
	)
}

// CancelEditKeyboard shows a single inline cancel button for the edit
// scenes.
func CancelEditKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			callbackButton("❌ Bekor qilish", Callback{Action: ActionCancelEdit}),
		),
	)
}

// WebAppKeyboard opens a mini-app page via one inline URL button.
func WebAppKeyboard(text, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(urlButton(text, url)),
	)
}
