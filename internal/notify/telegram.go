package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramSink struct {
	token    string
	chatID   int64
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramSink(token string, chatID int64) *TelegramSink {
	return &TelegramSink{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the sink at another Bot API host; the format follows
// tgbotapi.APIEndpoint ("<base>/bot%s/%s").
func (s *TelegramSink) WithEndpoint(endpoint string) *TelegramSink {
	s.endpoint = endpoint
	return s
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

// botAPI connects lazily so a bad token only fails the alert, never startup.
func (s *TelegramSink) botAPI() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bot != nil {
		return s.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(s.token, s.endpoint, s.client)
	if err != nil {
		return nil, err
	}
	s.bot = bot
	return bot, nil
}

func (s *TelegramSink) Send(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := s.botAPI()
	if err != nil {
		return fmt.Errorf("telegram: connect bot: %w", err)
	}

	msg := tgbotapi.NewMessage(s.chatID, alert.Message())
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}
