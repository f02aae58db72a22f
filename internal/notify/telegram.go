// Package notify pushes powder alerts to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

// Sender is the part of *tele.Bot the notifier uses.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram posts each resort's alert at most once per calendar day.
type Telegram struct {
	sender Sender
	chat   tele.Recipient
	logger *zap.SugaredLogger
	now    func() time.Time

	mu   sync.Mutex
	sent map[string]string // resort -> day last notified
}

// NewTelegram creates a send-only bot for chatID. No updates are polled.
func NewTelegram(token string, chatID int64, logger *zap.SugaredLogger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram token and chat id are required")
	}
	bot, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewTelegramWithSender(bot, chatID, logger, time.Now), nil
}

func NewTelegramWithSender(sender Sender, chatID int64, logger *zap.SugaredLogger, now func() time.Time) *Telegram {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &Telegram{
		sender: sender,
		chat:   tele.ChatID(chatID),
		logger: logger,
		now:    now,
		sent:   make(map[string]string),
	}
}

// NotifyAlerts sends one message listing the alerts not yet sent today.
func (t *Telegram) NotifyAlerts(ctx context.Context, alerts []weather.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	today := t.now().Format("2006-01-02")

	t.mu.Lock()
	var fresh []weather.Alert
	for _, a := range alerts {
		if t.sent[a.Resort] != today {
			fresh = append(fresh, a)
		}
	}
	t.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}
	if _, err := t.sender.Send(t.chat, Format(fresh)); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}

	t.mu.Lock()
	for _, a := range fresh {
		t.sent[a.Resort] = today
	}
	t.mu.Unlock()
	t.logger.Infow("powder alert sent", "resorts", len(fresh))
	return nil
}

// Format renders alerts as a plain text message.
func Format(alerts []weather.Alert) string {
	var b strings.Builder
	b.WriteString("❄️ Powder alert\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n%s\n%.0f°F, %s", a.Message, a.TemperatureF, a.Conditions)
	}
	return b.String()
}
