package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0xfern/chatsnipe/internal/model"
)

// Config holds Telegram notifier settings.
type Config struct {
	Token  string
	ChatID int64
}

// Option customizes the Telegram notifier.
type Option func(*options)

type options struct {
	endpoint string
	client   *http.Client
}

// WithEndpoint overrides the Telegram API endpoint (tests point this at a
// local server).
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// Telegram sends one message per completed execution sequence.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegram connects to the Telegram bot API and returns a notifier.
func NewTelegram(cfg Config, logger *slog.Logger, opts ...Option) (*Telegram, error) {
	if logger == nil {
		logger = slog.Default()
	}

	o := options{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, o.endpoint, o.client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger = logger.With("component", "notify")
	logger.Info("telegram notifier connected", "username", api.Self.UserName)

	return &Telegram{
		api:    api,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

// ExecutionResult announces one execution outcome. The send happens on its
// own goroutine so the pipeline never waits on Telegram.
func (t *Telegram) ExecutionResult(exec model.Execution) {
	text := formatResult(exec)
	go t.send(text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Warn("telegram send failed", "error", err)
	}
}

func formatResult(exec model.Execution) string {
	if exec.Succeeded {
		return fmt.Sprintf("🟢 *buy filled*\n`%s`\nattempts: %d, amount: %s",
			exec.Address, exec.Attempts, exec.BuyAmount.String())
	}
	return fmt.Sprintf("🔴 *buy failed*\n`%s`\nattempts: %d\nerror: %s",
		exec.Address, exec.Attempts, escapeMarkdown(exec.Error))
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
