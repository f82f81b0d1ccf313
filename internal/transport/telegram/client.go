// Package telegram is the concrete chat transport: a thin Bot API
// client implementing chat.Sender plus a long-polling update source.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/transport/chat"
)

const defaultBaseURL = "https://api.telegram.org"

// Client calls Bot API methods. Messages go out with HTML parse mode,
// matching what the renderer produces.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the given bot token.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.With("adapter", "telegram"),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, params url.Values, result any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return c.decode(method, resp.Body, result)
}

func (c *Client) decode(method string, body io.Reader, result any) error {
	var api apiResponse
	if err := json.NewDecoder(body).Decode(&api); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("%s: %w", method, apiError(api))
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// apiError maps the transport's well-known failures onto the chat
// sentinels so handlers can branch on them.
func apiError(api apiResponse) error {
	desc := strings.ToLower(api.Description)
	switch {
	case strings.Contains(desc, "message is not modified"):
		return chat.ErrNotModified
	case strings.Contains(desc, "query is too old"),
		strings.Contains(desc, "query id is invalid"):
		return chat.ErrStaleCallback
	}
	return fmt.Errorf("api error %d: %s", api.ErrorCode, api.Description)
}

type messageResult struct {
	MessageID int64 `json:"message_id"`
	Audio     *struct {
		FileID string `json:"file_id"`
	} `json:"audio"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *chat.Keyboard) (int64, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "HTML")
	setKeyboard(params, kb)

	var msg messageResult
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, audioID, caption string, kb *chat.Keyboard) (int64, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("audio", audioID)
	params.Set("caption", caption)
	params.Set("parse_mode", "HTML")
	setKeyboard(params, kb)

	var msg messageResult
	if err := c.call(ctx, "sendAudio", params, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, kb *chat.Keyboard) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "HTML")
	setKeyboard(params, kb)
	return c.call(ctx, "editMessageText", params, nil)
}

func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, kb *chat.Keyboard) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("caption", caption)
	params.Set("parse_mode", "HTML")
	setKeyboard(params, kb)
	return c.call(ctx, "editMessageCaption", params, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	return c.call(ctx, "deleteMessage", params, nil)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)
	if text != "" {
		params.Set("text", text)
	}
	return c.call(ctx, "answerCallbackQuery", params, nil)
}

// UploadAudio posts a local file and returns its reusable file id.
func (c *Client) UploadAudio(ctx context.Context, chatID int64, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	part, err := form.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendAudio", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	defer resp.Body.Close()

	var msg messageResult
	if err := c.decode("sendAudio", resp.Body, &msg); err != nil {
		return "", err
	}
	if msg.Audio == nil {
		return "", fmt.Errorf("upload audio: no audio in response")
	}
	return msg.Audio.FileID, nil
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func setKeyboard(params url.Values, kb *chat.Keyboard) {
	if kb == nil || len(kb.Rows) == 0 {
		return
	}
	markup := inlineMarkup{InlineKeyboard: make([][]inlineButton, 0, len(kb.Rows))}
	for _, row := range kb.Rows {
		buttons := make([]inlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineButton{Text: b.Text, CallbackData: b.Data})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	data, err := json.Marshal(markup)
	if err != nil {
		return
	}
	params.Set("reply_markup", string(data))
}
