package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Client wraps the Telegram Bot API. All sends go through a shared
// limiter to stay under the 30 msg/sec global rate limit.
type Client struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient creates a new Telegram client with the given bot token
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(30), 1),
		http:    http.DefaultClient,
	}, nil
}

// GetAPI returns the underlying bot API for advanced operations
func (c *Client) GetAPI() *tgbotapi.BotAPI {
	return c.api
}

// Username returns the bot's own username as reported by Telegram.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// GetUpdates returns a channel for receiving updates from Telegram
func (c *Client) GetUpdates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return c.api.GetUpdatesChan(u)
}

// StopReceivingUpdates stops the update channel
func (c *Client) StopReceivingUpdates() {
	c.api.StopReceivingUpdates()
}

func (c *Client) send(msg tgbotapi.Chattable) error {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	_, err := c.api.Send(msg)
	return err
}

// SendMessage sends a plain text message to a chat
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := c.send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMessageWithKeyboard sends a text message with a reply or inline
// keyboard attached.
func (c *Client) SendMessageWithKeyboard(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if err := c.send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto sends a photo by file_id with caption and optional markup.
func (c *Client) SendPhoto(chatID int64, fileID string, caption string, markup interface{}) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ReplyMarkup = markup
	if err := c.send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// SendVideo sends a video by file_id with a caption.
func (c *Client) SendVideo(chatID int64, fileID string, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	video.Caption = caption
	if err := c.send(video); err != nil {
		return fmt.Errorf("failed to send video: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of an existing message.
func (c *Client) EditMessageText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var edit tgbotapi.EditMessageTextConfig
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if err := c.send(edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// EditMessageCaption replaces the caption of an existing media message.
func (c *Client) EditMessageCaption(chatID int64, messageID int, caption string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	edit.ReplyMarkup = markup
	if err := c.send(edit); err != nil {
		return fmt.Errorf("failed to edit caption: %w", err)
	}
	return nil
}

// EditMessageMedia swaps the photo and caption of an existing media
// message, used by the premiere carousel.
func (c *Client) EditMessageMedia(chatID int64, messageID int, photoFileID string, caption string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: markup,
		},
		Media: tgbotapi.InputMediaPhoto{
			BaseInputMedia: tgbotapi.BaseInputMedia{
				Type:    "photo",
				Media:   tgbotapi.FileID(photoFileID),
				Caption: caption,
			},
		},
	}
	if err := c.send(edit); err != nil {
		return fmt.Errorf("failed to edit media: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query with an optional toast.
func (c *Client) AnswerCallback(callbackID string, text string) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := c.api.Request(cb); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// DeleteMessage removes a message from a chat.
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := c.api.Request(del); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// parseChatRef splits a stored channel reference into the numeric id
// or @username form the API expects.
func parseChatRef(ref string) (int64, string) {
	if strings.HasPrefix(ref, "@") {
		return 0, ref
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, ""
	}
	return 0, "@" + ref
}

// ChatMemberStatus returns the user's membership status in a channel.
// The channel reference may be a numeric chat id or a username.
func (c *Client) ChatMemberStatus(ctx context.Context, channelID string, userID int64) (string, error) {
	chatID, username := parseChatRef(channelID)
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             chatID,
			SuperGroupUsername: username,
			UserID:             userID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member: %w", err)
	}
	return member.Status, nil
}

// UserProfilePhotoFileID returns the file id of the user's current
// profile photo, or empty if they have none.
func (c *Client) UserProfilePhotoFileID(userID int64) (string, error) {
	photos, err := c.api.GetUserProfilePhotos(tgbotapi.NewUserProfilePhotos(userID))
	if err != nil {
		return "", fmt.Errorf("failed to get profile photos: %w", err)
	}
	if photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}
	sizes := photos.Photos[0]
	return sizes[len(sizes)-1].FileID, nil
}

// ChannelInfo returns a channel's current title and photo file id.
// Either may be empty when the channel has none.
func (c *Client) ChannelInfo(channelID string) (title, photoFileID string, err error) {
	chatID, username := parseChatRef(channelID)
	chat, err := c.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{
			ChatID:             chatID,
			SuperGroupUsername: username,
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to get chat: %w", err)
	}
	if chat.Photo != nil {
		photoFileID = chat.Photo.BigFileID
	}
	return chat.Title, photoFileID, nil
}

// DownloadFile fetches the raw bytes of a Telegram file by file id.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(c.api.Token), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build file request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
