package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/outagewatch/internal/config"
)

var (
	ErrTelegramSend = errors.New("failed to send telegram message")
	// ErrTelegramAuth means Telegram rejected the bot token. Retrying cannot
	// fix it.
	ErrTelegramAuth = errors.New("telegram rejected the bot token")
)

// TelegramNotifier posts messages to a single chat through a Telegram bot.
type TelegramNotifier struct {
	token    string
	endpoint string
	client   *http.Client
	chatID   int64
	// channel is set instead of chatID for @channel recipients
	channel string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier resolves the recipient and authenticates the bot.
// A rejected token or a malformed chat id is an error. When Telegram cannot
// be reached the failure is logged and authentication is retried on every
// Send until it succeeds. A nil client uses http.DefaultClient.
func NewTelegramNotifier(cfg config.TelegramConfig, client *http.Client, logger *logrus.Logger) (*TelegramNotifier, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTelegramAuth)
	}

	n := &TelegramNotifier{
		token:    cfg.BotToken,
		endpoint: cfg.APIEndpoint,
		client:   client,
	}
	if n.endpoint == "" {
		n.endpoint = tgbotapi.APIEndpoint
	}

	chat := strings.TrimSpace(cfg.ChatID)
	switch {
	case strings.HasPrefix(chat, "@") && len(chat) > 1:
		n.channel = chat
	default:
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
		}
		n.chatID = id
	}

	if _, err := n.authenticate(); err != nil {
		if rejected(err) {
			return nil, fmt.Errorf("%w: %v", ErrTelegramAuth, err)
		}
		logger.WithError(err).Warn("Telegram unreachable at startup, will retry on the first notification")
	}

	return n, nil
}

// authenticate returns the bot, calling getMe if that has not yet succeeded.
func (n *TelegramNotifier) authenticate() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.token, n.endpoint, n.client)
	if err != nil {
		return nil, err
	}
	n.bot = bot
	return bot, nil
}

// rejected reports whether Telegram answered with a client error other than
// rate limiting, which only a configuration change can fix.
func rejected(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
}

// Send delivers message to the configured chat. The bot library has no
// context support, so ctx is only checked before sending.
func (n *TelegramNotifier) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTelegramSend, err)
	}

	bot, err := n.authenticate()
	if err != nil {
		return fmt.Errorf("%w: authenticate: %v", ErrTelegramSend, err)
	}

	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, message)
	} else {
		msg = tgbotapi.NewMessage(n.chatID, message)
	}

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrTelegramSend, err)
	}
	return nil
}
