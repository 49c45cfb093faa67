package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
)

const dateLayout = "02.01.2006"

// formatRuntime renders a duration in seconds as h:mm:ss or m:ss.
func formatRuntime(seconds int) string {
	if seconds <= 0 {
		return "Noma'lum"
	}
	d := time.Duration(seconds) * time.Second
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// movieCaption is the card shown when a movie is found by code.
func movieCaption(movie *model.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s\n\n", movie.Title)
	if movie.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n\n", movie.Description)
	}
	fmt.Fprintf(&b, "👁 Ko'rishlar: %d\n", movie.ViewsCount)
	fmt.Fprintf(&b, "📅 Qo'shilgan: %s", movie.CreatedAt.Format(dateLayout))
	return b.String()
}

// premiereCaption is the carousel card for one premiere movie.
func premiereCaption(movie *model.Movie) string {
	description := movie.Description
	if description == "" {
		description = "Tavsif yo'q"
	}
	return fmt.Sprintf(
		"🎬 %s\n\n%s\n\n📊 Ko'rishlar: %d\n⏱ Davomiyligi: %s",
		movie.Title, description, movie.ViewsCount, formatRuntime(movie.Duration),
	)
}

// videoCaption is the caption attached to the delivered video itself.
func videoCaption(movie *model.Movie) string {
	if movie.Description == "" {
		return fmt.Sprintf("🎬 %s", movie.Title)
	}
	return fmt.Sprintf("🎬 %s\n\n%s", movie.Title, movie.Description)
}

// dashboardText renders the admin summary with the top movies ranked
// by view count.
func dashboardText(stats *store.DashboardStats, top []*model.Movie) string {
	var b strings.Builder
	b.WriteString("📊 Umumiy Statistika\n\n")
	fmt.Fprintf(&b, "👥 Jami userlar: %d\n", stats.TotalUsers)
	fmt.Fprintf(&b, "✅ Obuna bo'lgan: %d\n", stats.SubscribedUsers)
	fmt.Fprintf(&b, "🎬 Jami kinolar: %d\n", stats.TotalMovies)
	fmt.Fprintf(&b, "⭐ Premyera kinolar: %d\n", stats.PremiereMovies)
	fmt.Fprintf(&b, "👁 Jami ko'rishlar: %d\n", stats.TotalViews)
	fmt.Fprintf(&b, "📈 Bugungi yangi userlar: %d\n", stats.TodayNewUsers)

	if len(top) > 0 {
		b.WriteString("\n🏆 Top 5 Kino:\n")
		for i, movie := range top {
			fmt.Fprintf(&b, "%d. %s - %d ko'rish\n", i+1, movie.Title, movie.ViewsCount)
		}
	}
	return b.String()
}

// movieStatsText renders the per-movie statistics reply.
func movieStatsText(stats *store.MovieStats) string {
	lastViewed := "Hali ko'rilmagan"
	if stats.LastViewedAt != nil {
		lastViewed = stats.LastViewedAt.Format(dateLayout + " 15:04")
	}
	return fmt.Sprintf(
		"📊 Kino Statistikasi\n\n"+
			"🎬 %s\n"+
			"📋 Kod: %s\n\n"+
			"👁 Jami ko'rishlar: %d\n"+
			"👥 Noyob ko'ruvchilar: %d\n"+
			"📅 Bugungi ko'rishlar: %d\n"+
			"📈 Haftalik ko'rishlar: %d\n\n"+
			"🕐 Oxirgi ko'rish: %s\n"+
			"📆 Qo'shilgan: %s",
		stats.Title, stats.Code,
		stats.TotalViews, stats.UniqueViewers, stats.TodayViews, stats.WeeklyViews,
		lastViewed, stats.CreatedAt.Format(dateLayout),
	)
}

// userStatsText renders the "my statistics" reply.
func userStatsText(views int64, lastView *time.Time) string {
	last := "Hali ko'rmadingiz"
	if lastView != nil {
		last = lastView.Format(dateLayout)
	}
	return fmt.Sprintf(
		"📊 Sizning statistikangiz:\n\n👁 Ko'rilgan kinolar: %d\n📅 Oxirgi faollik: %s",
		views, last,
	)
}

// movieListText renders one page of the admin movie list.
func movieListText(movies []*model.Movie, page, totalPages int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Kinolar Ro'yxati (%d/%d)\n\n", page, totalPages)
	for _, movie := range movies {
		fmt.Fprintf(&b, "🎬 %s - %s\n", movie.Code, movie.Title)
		fmt.Fprintf(&b, "👁 Ko'rishlar: %d | ", movie.ViewsCount)
		if movie.IsPremiere {
			b.WriteString("⭐ Premyera\n\n")
		} else {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// editOverviewText shows a movie's current fields before editing.
func editOverviewText(movie *model.Movie) string {
	description := movie.Description
	if description == "" {
		description = "Yo'q"
	}
	premiere := "Yo'q"
	if movie.IsPremiere {
		premiere = "Ha"
	}
	return fmt.Sprintf(
		"✏️ Kino Tahrirlash: %s\n\n"+
			"Hozirgi ma'lumotlar:\n"+
			"📋 Kod: %s\n"+
			"🎬 Nom: %s\n"+
			"📝 Tavsif: %s\n"+
			"⭐ Premyera: %s\n\n"+
			"Nimani o'zgartirmoqchisiz?",
		movie.Title, movie.Code, movie.Title, description, premiere,
	)
}

// uploadDoneText confirms a finished upload.
func uploadDoneText(movie *model.Movie) string {
	premiere := "Yo'q"
	if movie.IsPremiere {
		premiere = "Ha"
	}
	return fmt.Sprintf(
		"✅ Kino muvaffaqiyatli yuklandi!\n\n📝 Kod: %s\n🎬 Nom: %s\n⭐ Premyera: %s",
		movie.Code, movie.Title, premiere,
	)
}
