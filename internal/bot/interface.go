// Package bot provides adapters for the chat platforms heliumbot listens on.
//
// Each adapter connects to one platform, converts inbound platform events
// into BotMessage values and sends replies back, either as plain text or as
// a display card rendered the way the platform supports best.
//
// # Supported Platforms
//
//   - Discord: gateway websocket, cards sent as embeds
//   - Telegram: long polling, cards sent as HTML
//   - Feishu/Lark: websocket long connection, cards sent as interactive cards
//   - DingTalk: stream connection, cards sent as markdown via session webhook
//
// # Usage
//
//	discordBot := bot.NewDiscordBot(token, "")
//	err := discordBot.Start(func(msg bot.BotMessage) {
//	    fmt.Printf("%s: %s\n", msg.AuthorTag, msg.Content)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	discordBot.SendCard(channelID, card.New("Hello"))
//	discordBot.Stop()
//
// # Thread Safety
//
// Adapters guard their session with a mutex. The message handler may be
// called from the platform client's goroutines.
package bot

import (
	"time"

	"github.com/keepmind9/heliumbot/internal/card"
)

// BotAdapter defines the interface for bot adapters
type BotAdapter interface {
	// Start connects and begins delivering inbound messages to messageHandler
	Start(messageHandler func(BotMessage)) error

	// SendMessage sends plain text, truncated to the platform limit
	SendMessage(channel, message string) error

	// SendCard sends a display card
	SendCard(channel string, c *card.Card) error

	// Stop disconnects and releases resources
	Stop() error
}

// BotMessage is an inbound message normalized across platforms
type BotMessage struct {
	Platform    string // discord/telegram/feishu/dingtalk
	UserID      string // Unique user identifier (for permission control)
	Channel     string // Channel ID replies are sent to
	ChannelName string // Human readable channel name, falls back to Channel
	AuthorTag   string // Display tag of the author, e.g. name#1234
	Content     string
	IsBot       bool // Author is a bot account
	IsDirect    bool // Delivered through a direct/private conversation
	Timestamp   time.Time
}
