package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/kino-bot-go/internal/config"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store/stubs"
	"github.com/user/kino-bot-go/internal/webapp"
)

const testBotToken = "12345:test-token"

type fakeTelegram struct {
	profilePhotos map[int64]string
	channelTitles map[string]string
	channelPhotos map[string]string
	files         map[string][]byte
	lastChannelID string
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		profilePhotos: map[int64]string{},
		channelTitles: map[string]string{},
		channelPhotos: map[string]string{},
		files:         map[string][]byte{},
	}
}

func (f *fakeTelegram) UserProfilePhotoFileID(telegramID int64) (string, error) {
	return f.profilePhotos[telegramID], nil
}

func (f *fakeTelegram) ChannelInfo(channelID string) (string, string, error) {
	f.lastChannelID = channelID
	title, ok := f.channelTitles[channelID]
	if !ok {
		return "", "", errors.New("chat not found")
	}
	return title, f.channelPhotos[channelID], nil
}

func (f *fakeTelegram) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	data, ok := f.files[fileID]
	if !ok {
		return nil, "", errors.New("file not found")
	}
	return data, "image/jpeg", nil
}

func newTestServer(t *testing.T) (*Server, *stubs.StubStore, *fakeTelegram) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Bot.Token = testBotToken
	cfg.Bot.AdminIDs = []int64{100}
	cfg.Server.Port = 8080

	st := stubs.New()
	tg := newFakeTelegram()
	srv := NewServer(st, tg, webapp.NewValidator(testBotToken), cfg)
	return srv, st, tg
}

func doRequest(t *testing.T, srv *Server, method, path, adminID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if adminID != "" {
		req.Header.Set("x-telegram-id", adminID)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "expected object data, got %T", resp.Data)
	return m
}

func signInitData(token string, values url.Values) string {
	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(token))
	secret := secretMac.Sum(nil)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, values.Get(key)))
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestAdminRoutesRequireAdminHeader(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/admin/movies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Admin access required", resp.Message)

	rec = doRequest(t, srv, http.MethodGet, "/admin/movies", "200", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/admin/movies", "not-a-number", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Database)
}

func TestListMoviesEnvelope(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		require.NoError(t, st.CreateMovie(ctx, &model.Movie{
			Code:   fmt.Sprintf("KN%03d", i),
			Title:  fmt.Sprintf("Movie %d", i),
			FileID: "file",
		}))
	}

	rec := doRequest(t, srv, http.MethodGet, "/admin/movies?page=2&limit=10", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	data := dataMap(t, resp)
	assert.EqualValues(t, 12, data["total"])
	assert.EqualValues(t, 2, data["pages"])
	movies, ok := data["movies"].([]interface{})
	require.True(t, ok)
	assert.Len(t, movies, 2)
}

func TestCreateMovie(t *testing.T) {
	srv, st, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/admin/movies", "100", CreateMovieRequest{
		Code:   " kn001 ",
		Title:  "Test Movie",
		FileID: "file-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	movie, err := st.GetMovieByCode(context.Background(), "KN001")
	require.NoError(t, err)
	require.NotNil(t, movie)
	assert.Equal(t, "Test Movie", movie.Title)
	assert.Equal(t, "video", movie.FileType)
	assert.EqualValues(t, 100, movie.UploadedBy)
}

func TestCreateMovieRejectsMissingFields(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/admin/movies", "100", CreateMovieRequest{Code: "KN001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMovieNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/admin/movies/42", "100", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Movie not found", resp.Message)
}

func TestUpdateMovieNormalizesCode(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	movie := &model.Movie{Code: "KN001", Title: "Old", FileID: "file"}
	require.NoError(t, st.CreateMovie(ctx, movie))

	code := "kn777"
	title := "New Title"
	rec := doRequest(t, srv, http.MethodPut, fmt.Sprintf("/admin/movies/%d", movie.ID), "100", UpdateMovieRequest{
		Code:  &code,
		Title: &title,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := st.GetMovieByID(ctx, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "KN777", updated.Code)
	assert.Equal(t, "New Title", updated.Title)
}

func TestSetPremiere(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	movie := &model.Movie{Code: "KN001", Title: "Movie", FileID: "file"}
	require.NoError(t, st.CreateMovie(ctx, movie))

	order := 3
	rec := doRequest(t, srv, http.MethodPatch, fmt.Sprintf("/admin/movies/%d/premiere", movie.ID), "100", SetPremiereRequest{
		IsPremiere: true,
		Order:      &order,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := st.GetMovieByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPremiere)
	assert.Equal(t, 3, updated.PremiereOrder)
}

func TestListUsersEnvelope(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := st.UpsertUser(ctx, &model.User{
			TelegramID: int64(1000 + i),
			Username:   fmt.Sprintf("user%d", i),
			FullName:   fmt.Sprintf("User %d", i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, st.SetUserSubscription(ctx, 1000, true, time.Now()))

	rec := doRequest(t, srv, http.MethodGet, "/admin/users?filter=subscribed", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeResponse(t, rec))
	assert.EqualValues(t, 1, data["total"])
	assert.EqualValues(t, 1, data["pages"])
	users, ok := data["users"].([]interface{})
	require.True(t, ok)
	assert.Len(t, users, 1)
}

func TestBanUser(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	user := &model.User{TelegramID: 1000, Username: "target"}
	_, err := st.UpsertUser(ctx, user)
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPatch, fmt.Sprintf("/admin/users/%d/ban", user.ID), "100", BanRequest{IsBanned: true})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBanned)
}

func TestUserViews(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	movie := &model.Movie{Code: "KN001", Title: "Movie", FileID: "file"}
	require.NoError(t, st.CreateMovie(ctx, movie))
	require.NoError(t, st.RecordView(ctx, movie.ID, 1000))

	rec := doRequest(t, srv, http.MethodGet, "/admin/users/1000/views", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
	view := views[0].(map[string]interface{})
	assert.Equal(t, "KN001", view["movie_code"])
}

func TestListChannelsEnrichment(t *testing.T) {
	srv, st, tg := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := st.UpsertUser(ctx, &model.User{TelegramID: int64(1000 + i)})
		require.NoError(t, err)
	}
	channel := &model.Channel{ChannelID: "@kino_channel", ChannelTitle: "Stale Title", IsActive: true}
	require.NoError(t, st.CreateChannel(ctx, channel))
	tg.channelTitles["@kino_channel"] = "Fresh Title"
	tg.channelPhotos["@kino_channel"] = "photo-file-1"

	rec := doRequest(t, srv, http.MethodGet, "/admin/channels", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	channels, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, channels, 1)
	got := channels[0].(map[string]interface{})
	assert.Equal(t, "Fresh Title", got["channel_title"])
	assert.Equal(t, "/photo/channel/@kino_channel", got["photo_url"])
	assert.EqualValues(t, 5, got["bot_users_count"])

	// The fallback count is persisted so the next listing is stable.
	stored, err := st.GetChannelByID(ctx, channel.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stored.BotUsersCount)
}

func TestListChannelsSurvivesEnrichmentFailure(t *testing.T) {
	srv, st, _ := newTestServer(t)
	channel := &model.Channel{ChannelID: "@dead_channel", ChannelTitle: "Stored Title", BotUsersCount: 7, IsActive: true}
	require.NoError(t, st.CreateChannel(context.Background(), channel))

	rec := doRequest(t, srv, http.MethodGet, "/admin/channels", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	channels, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, channels, 1)
	got := channels[0].(map[string]interface{})
	assert.Equal(t, "Stored Title", got["channel_title"])
	assert.EqualValues(t, 7, got["bot_users_count"])
}

func TestCreateAndDeleteChannel(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()

	rec := doRequest(t, srv, http.MethodPost, "/admin/channels", "100", CreateChannelRequest{
		ChannelID:    "@new_channel",
		ChannelTitle: "New Channel",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	created, err := st.GetChannelByExternalID(ctx, "@new_channel")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.IsActive)

	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/admin/channels/%d", created.ID), "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gone, err := st.GetChannelByExternalID(ctx, "@new_channel")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDashboardStats(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	_, err := st.UpsertUser(ctx, &model.User{TelegramID: 1000})
	require.NoError(t, err)
	movie := &model.Movie{Code: "KN001", Title: "Movie", FileID: "file", IsPremiere: true}
	require.NoError(t, st.CreateMovie(ctx, movie))
	require.NoError(t, st.RecordView(ctx, movie.ID, 1000))

	rec := doRequest(t, srv, http.MethodGet, "/admin/stats/dashboard", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeResponse(t, rec))
	assert.EqualValues(t, 1, data["totalUsers"])
	assert.EqualValues(t, 1, data["totalMovies"])
	assert.EqualValues(t, 1, data["premiereMovies"])
	assert.EqualValues(t, 1, data["totalViews"])
	assert.EqualValues(t, 1, data["todayNewUsers"])
}

func TestMovieStatsPayload(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	movie := &model.Movie{Code: "KN001", Title: "Movie", FileID: "file"}
	require.NoError(t, st.CreateMovie(ctx, movie))
	require.NoError(t, st.RecordView(ctx, movie.ID, 1000))

	rec := doRequest(t, srv, http.MethodGet, "/admin/stats/movies", "100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeResponse(t, rec))
	top, ok := data["topMovies"].([]interface{})
	require.True(t, ok)
	assert.Len(t, top, 1)
	_, ok = data["weeklyViews"].([]interface{})
	assert.True(t, ok)
}

func TestValidateInitData(t *testing.T) {
	srv, _, _ := newTestServer(t)

	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("query_id", "QID1")
	values.Set("user", `{"id":1000,"first_name":"Ali","username":"ali"}`)
	initData := signInitData(testBotToken, values)

	rec := doRequest(t, srv, http.MethodPost, "/webapp/validate", "", ValidateRequest{InitData: initData})
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataMap(t, decodeResponse(t, rec))
	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1000, user["id"])
	assert.Equal(t, "ali", user["username"])
}

func TestValidateInitDataRejectsTampering(t *testing.T) {
	srv, _, _ := newTestServer(t)

	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("user", `{"id":1000,"first_name":"Ali"}`)
	initData := signInitData(testBotToken, values)
	tampered := strings.Replace(initData, "1700000000", "1700000001", 1)

	rec := doRequest(t, srv, http.MethodPost, "/webapp/validate", "", ValidateRequest{InitData: tampered})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestWebAppPremiereRewritesThumbnails(t *testing.T) {
	srv, st, _ := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, st.CreateMovie(ctx, &model.Movie{
		Code: "KN001", Title: "With Thumb", FileID: "file-1",
		ThumbnailFileID: "thumb-1", IsPremiere: true, PremiereOrder: 0,
	}))
	require.NoError(t, st.CreateMovie(ctx, &model.Movie{
		Code: "KN002", Title: "No Thumb", FileID: "file-2",
		IsPremiere: true, PremiereOrder: 1,
	}))

	rec := doRequest(t, srv, http.MethodGet, "/webapp/premiere", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	movies, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, movies, 2)

	first := movies[0].(map[string]interface{})
	assert.Equal(t, "/photo/thumbnail/thumb-1", first["thumbnailFileId"])
	assert.NotContains(t, first, "file_id")

	second := movies[1].(map[string]interface{})
	assert.Nil(t, second["thumbnailFileId"])
}

func TestUserPhotoProxy(t *testing.T) {
	srv, _, tg := newTestServer(t)
	tg.profilePhotos[1000] = "profile-1"
	tg.files["profile-1"] = []byte("jpeg-bytes")

	rec := doRequest(t, srv, http.MethodGet, "/photo/user/1000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestUserPhotoNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/photo/user/1000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Photo not found", resp.Message)
}

func TestChannelPhotoAddsUsernamePrefix(t *testing.T) {
	srv, _, tg := newTestServer(t)
	tg.channelTitles["@kino_channel"] = "Kino"
	tg.channelPhotos["@kino_channel"] = "chan-photo"
	tg.files["chan-photo"] = []byte("chan-bytes")

	rec := doRequest(t, srv, http.MethodGet, "/photo/channel/kino_channel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "@kino_channel", tg.lastChannelID)
	assert.Equal(t, "chan-bytes", rec.Body.String())
}

func TestChannelPhotoKeepsNumericID(t *testing.T) {
	srv, _, tg := newTestServer(t)
	tg.channelTitles["-1001234"] = "Kino"
	tg.channelPhotos["-1001234"] = "chan-photo"
	tg.files["chan-photo"] = []byte("chan-bytes")

	rec := doRequest(t, srv, http.MethodGet, "/photo/channel/-1001234", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-1001234", tg.lastChannelID)
}

func TestThumbnailCacheLifetime(t *testing.T) {
	srv, _, tg := newTestServer(t)
	tg.files["thumb-1"] = []byte("thumb-bytes")

	rec := doRequest(t, srv, http.MethodGet, "/photo/thumbnail/thumb-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
}
