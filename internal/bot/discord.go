package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// DiscordSessionInterface defines the interface we need from discordgo.Session
// This allows us to mock it in tests without depending on concrete types
type DiscordSessionInterface interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordBot implements BotAdapter interface for Discord
type DiscordBot struct {
	mu             sync.RWMutex
	token          string
	channelID      string
	session        DiscordSessionInterface
	messageHandler func(BotMessage)

	// newSession is replaced in tests
	newSession func(token string) (DiscordSessionInterface, error)
}

// NewDiscordBot creates a new Discord bot instance. channelID is the
// fallback target when a reply has no channel.
func NewDiscordBot(token, channelID string) *DiscordBot {
	return &DiscordBot{
		token:      token,
		channelID:  channelID,
		newSession: newDiscordSession,
	}
}

func newDiscordSession(token string) (DiscordSessionInterface, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	return s, nil
}

// Start establishes connection to Discord and begins listening for messages
func (d *DiscordBot) Start(messageHandler func(BotMessage)) error {
	d.SetMessageHandler(messageHandler)

	logger.WithFields(logrus.Fields{
		"token":   maskSecret(d.token),
		"channel": d.channelID,
	}).Info("starting-discord-bot")

	session, err := d.newSession(d.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()

	session.AddHandler(d.onMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	logger.Info("discord-gateway-connected")
	return nil
}

func (d *DiscordBot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}

	msg := BotMessage{
		Platform:    "discord",
		UserID:      m.Author.ID,
		Channel:     m.ChannelID,
		ChannelName: discordChannelName(s, m.ChannelID),
		AuthorTag:   discordTag(m.Author),
		Content:     m.Content,
		IsBot:       m.Author.Bot,
		IsDirect:    m.GuildID == "",
		Timestamp:   m.Timestamp,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	logger.WithFields(logrus.Fields{
		"platform": "discord",
		"user_id":  msg.UserID,
		"author":   msg.AuthorTag,
		"channel":  msg.Channel,
		"bot":      msg.IsBot,
		"direct":   msg.IsDirect,
	}).Debug("received-discord-message")

	if handler := d.GetMessageHandler(); handler != nil {
		handler(msg)
	}
}

// discordChannelName resolves a channel name from the session state cache
func discordChannelName(s *discordgo.Session, channelID string) string {
	if s != nil && s.State != nil {
		if ch, err := s.State.Channel(channelID); err == nil && ch != nil && ch.Name != "" {
			return ch.Name
		}
	}
	return channelID
}

// discordTag renders name#discriminator, or just the name for accounts
// migrated to unique usernames
func discordTag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func (d *DiscordBot) target(channel string) (DiscordSessionInterface, string, error) {
	d.mu.RLock()
	session := d.session
	channelID := d.channelID
	d.mu.RUnlock()

	if session == nil {
		return nil, "", fmt.Errorf("discord session not initialized")
	}
	if channel == "" {
		channel = channelID
	}
	if channel == "" {
		return nil, "", fmt.Errorf("channel ID is required for Discord")
	}
	return session, channel, nil
}

// SendMessage sends a message to a Discord channel
func (d *DiscordBot) SendMessage(channel, message string) error {
	session, targetChannel, err := d.target(channel)
	if err != nil {
		return err
	}

	if truncated, cut := truncate(message, constants.MaxDiscordMessageLength); cut {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxDiscordMessageLength,
		}).Info("truncating-message-for-discord-limit")
		message = truncated
	}

	if _, err := session.ChannelMessageSend(targetChannel, message); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": targetChannel,
			"error":   err,
		}).Error("failed-to-send-message-to-discord")
		return fmt.Errorf("failed to send message to channel %s: %w", targetChannel, err)
	}

	logger.WithField("channel", targetChannel).Info("message-sent-to-discord")
	return nil
}

// SendCard sends a card as a Discord embed
func (d *DiscordBot) SendCard(channel string, c *card.Card) error {
	session, targetChannel, err := d.target(channel)
	if err != nil {
		return err
	}

	if _, err := session.ChannelMessageSendEmbed(targetChannel, toEmbed(c)); err != nil {
		logger.WithFields(logrus.Fields{
			"channel": targetChannel,
			"title":   c.Title,
			"error":   err,
		}).Error("failed-to-send-embed-to-discord")
		return fmt.Errorf("failed to send embed to channel %s: %w", targetChannel, err)
	}

	logger.WithFields(logrus.Fields{
		"channel": targetChannel,
		"fields":  len(c.Fields),
	}).Info("embed-sent-to-discord")
	return nil
}

func toEmbed(c *card.Card) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       c.Title,
		URL:         c.URL,
		Description: c.Description,
		Color:       c.Color,
	}
	for _, f := range c.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   orPlaceholder(f.Name),
			Value:  orPlaceholder(f.Value),
			Inline: f.Inline,
		})
	}
	if c.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: c.Footer}
	}
	if c.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: c.Thumbnail}
	}
	if c.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: c.Image}
	}
	return embed
}

// Discord rejects embed fields with a blank name or value.
func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}

// Stop closes the Discord connection and cleans up resources
func (d *DiscordBot) Stop() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return nil
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}

	logger.Info("discord-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (d *DiscordBot) SetMessageHandler(handler func(BotMessage)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (d *DiscordBot) GetMessageHandler() func(BotMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messageHandler
}
