// Package notify forwards critical dashboard alerts to a Telegram channel.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pulseboard/pulseboard/internal/models"
)

// Client handles Telegram notifications with a per-alert cooldown so a
// re-polled alert is not re-sent every cycle. Safe for concurrent use: poll
// cycles and the live push feed both forward alerts.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	cooldown       time.Duration

	mu     sync.Mutex
	sentAt map[string]time.Time
}

// NewClient creates a Telegram notifier.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase, cooldown time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	if cooldown <= 0 {
		cooldown = time.Hour
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		cooldown:       cooldown,
		sentAt:         map[string]time.Time{},
	}, nil
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendAlerts forwards the critical alerts that are not in cooldown. Alerts
// already forwarded within the cooldown window are skipped silently. The lock
// spans the send so concurrent callers cannot double-send the same alert.
func (c *Client) SendAlerts(alerts []models.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	due := c.filterDue(alerts, time.Now())
	if len(due) == 0 {
		return nil
	}
	if err := c.sendMarkdownV2(formatAlerts(due)); err != nil {
		return err
	}
	now := time.Now()
	for _, a := range due {
		c.sentAt[a.ID] = now
	}
	return nil
}

// filterDue keeps critical alerts whose cooldown has elapsed. Callers hold
// c.mu.
func (c *Client) filterDue(alerts []models.Alert, now time.Time) []models.Alert {
	var due []models.Alert
	for _, a := range alerts {
		if a.Severity != models.SeverityCritical {
			continue
		}
		if sent, ok := c.sentAt[a.ID]; ok && now.Sub(sent) < c.cooldown {
			continue
		}
		due = append(due, a)
	}
	return due
}

// SendError sends a refresh error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Dashboard refresh error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Dashboard refresh recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// formatAlerts formats critical alerts into a Telegram MarkdownV2 message.
func formatAlerts(alerts []models.Alert) string {
	message := "🚨 *Critical Business Alerts*\n\n"

	for i, a := range alerts {
		message += fmt.Sprintf("%d\\. *%s*\n", i+1, escapeMarkdownV2(a.Title))
		if a.Description != "" && a.Description != a.Title {
			message += fmt.Sprintf("   %s\n", escapeMarkdownV2(a.Description))
		}
		for _, m := range a.Metrics {
			trendEmoji := ""
			switch m.Trend {
			case models.TrendUp:
				trendEmoji = " 📈"
			case models.TrendDown:
				trendEmoji = " 📉"
			}
			message += fmt.Sprintf("   %s: *%s*%s\n",
				escapeMarkdownV2(m.Label), escapeMarkdownV2(m.Value), trendEmoji)
		}
		if a.Category != "" {
			message += fmt.Sprintf("   \\#%s\n", escapeMarkdownV2(a.Category))
		}
		message += "\n"
	}

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
