package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TelegramBot implements BotAdapter interface for Telegram using long polling
type TelegramBot struct {
	mu             sync.RWMutex
	token          string
	bot            *tgbotapi.BotAPI
	messageHandler func(BotMessage)
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		token: token,
	}
}

// Start establishes long polling connection to Telegram and begins listening for messages
func (t *TelegramBot) Start(messageHandler func(BotMessage)) error {
	t.SetMessageHandler(messageHandler)
	t.ctx, t.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"token": maskSecret(t.token),
	}).Info("starting-telegram-bot-with-long-polling")

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	t.mu.Lock()
	t.bot = bot
	t.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": bot.Self.UserName,
		"bot_id":       bot.Self.ID,
	}).Info("telegram-bot-initialized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(constants.DefaultPollTimeout.Seconds())
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-t.ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.Info("telegram-updates-channel-closed")
					return
				}
				if update.Message != nil {
					t.handleMessage(update.Message)
				}
			}
		}
	}()

	return nil
}

// handleMessage converts a Telegram message and hands it to the handler
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	if message == nil || message.Text == "" {
		return
	}

	msg := toTelegramBotMessage(message)

	logger.WithFields(logrus.Fields{
		"platform":   "telegram",
		"user_id":    msg.UserID,
		"author":     msg.AuthorTag,
		"chat_id":    msg.Channel,
		"message_id": message.MessageID,
		"direct":     msg.IsDirect,
	}).Debug("received-telegram-message")

	if handler := t.GetMessageHandler(); handler != nil {
		handler(msg)
	}
}

func toTelegramBotMessage(message *tgbotapi.Message) BotMessage {
	msg := BotMessage{
		Platform:  "telegram",
		Content:   message.Text,
		Timestamp: message.Time(),
	}
	if message.From != nil {
		msg.UserID = strconv.FormatInt(message.From.ID, 10)
		msg.AuthorTag = message.From.UserName
		if msg.AuthorTag == "" {
			msg.AuthorTag = message.From.FirstName
		}
		msg.IsBot = message.From.IsBot
	}
	if message.Chat != nil {
		msg.Channel = strconv.FormatInt(message.Chat.ID, 10)
		msg.ChannelName = message.Chat.Title
		msg.IsDirect = message.Chat.IsPrivate()
	}
	if msg.ChannelName == "" {
		msg.ChannelName = msg.Channel
	}
	if message.Date == 0 {
		msg.Timestamp = time.Now()
	}
	return msg
}

// SendMessage sends a plain text message to a Telegram chat
func (t *TelegramBot) SendMessage(chatID, message string) error {
	return t.send(chatID, message, "")
}

// SendCard sends a card rendered as Telegram HTML
func (t *TelegramBot) SendCard(chatID string, c *card.Card) error {
	text, parseMode := telegramCardText(c)
	return t.send(chatID, text, parseMode)
}

// telegramCardText renders c as HTML, or as plain text when the HTML would
// be cut mid-tag by the length limit.
func telegramCardText(c *card.Card) (text, parseMode string) {
	text = telegramHTML(c)
	if _, cut := truncate(text, constants.MaxTelegramMessageLength); cut {
		return c.PlainText(), ""
	}
	return text, tgbotapi.ModeHTML
}

// telegramHTML renders a card with the small tag set Telegram accepts
func telegramHTML(c *card.Card) string {
	var b strings.Builder
	title := "<b>" + html.EscapeString(c.Title) + "</b>"
	if c.URL != "" {
		title = `<a href="` + html.EscapeString(c.URL) + `">` + title + "</a>"
	}
	b.WriteString(title)
	if c.Description != "" {
		b.WriteString("\n" + html.EscapeString(c.Description))
	}
	for _, f := range c.Fields {
		b.WriteString("\n<b>" + html.EscapeString(f.Name) + "</b>: " + html.EscapeString(f.Value))
	}
	if c.Image != "" {
		b.WriteString("\n" + html.EscapeString(c.Image))
	}
	if c.Footer != "" {
		b.WriteString("\n<i>" + html.EscapeString(c.Footer) + "</i>")
	}
	return b.String()
}

func (t *TelegramBot) send(chatID, text, parseMode string) error {
	t.mu.RLock()
	bot := t.bot
	t.mu.RUnlock()

	if bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	if chatID == "" {
		return fmt.Errorf("chat ID is required for Telegram")
	}

	if truncated, cut := truncate(text, constants.MaxTelegramMessageLength); cut {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      constants.MaxTelegramMessageLength,
		}).Info("truncating-message-for-telegram-limit")
		text = truncated
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID format: %w", err)
	}

	msg := tgbotapi.NewMessage(chatIDInt, text)
	msg.ParseMode = parseMode

	if _, err := bot.Send(msg); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-telegram")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	logger.WithField("chat_id", chatID).Info("message-sent-to-telegram")
	return nil
}

// Stop closes the Telegram long polling connection and cleans up resources
func (t *TelegramBot) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}

	t.mu.Lock()
	bot := t.bot
	t.bot = nil
	t.mu.Unlock()

	if bot != nil {
		bot.StopReceivingUpdates()
	}

	logger.Info("telegram-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (t *TelegramBot) SetMessageHandler(handler func(BotMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (t *TelegramBot) GetMessageHandler() func(BotMessage) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.messageHandler
}
