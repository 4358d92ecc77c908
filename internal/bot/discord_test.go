package bot

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDiscordSession is a mock implementation of DiscordSessionInterface for testing
type MockDiscordSession struct {
	mu               sync.Mutex
	shouldFailOnOpen bool
	shouldFailOnSend bool
	openCalled       bool
	closed           bool
	sentMessages     []SentMessage
	sentEmbeds       []*discordgo.MessageEmbed
	handler          interface{}
}

type SentMessage struct {
	Channel string
	Message string
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	m.handler = handler
	return func() {}
}

func (m *MockDiscordSession) Open() error {
	m.openCalled = true
	if m.shouldFailOnOpen {
		return errors.New("failed to open discord connection")
	}
	return nil
}

func (m *MockDiscordSession) Close() error {
	m.closed = true
	return nil
}

func (m *MockDiscordSession) ChannelMessageSend(channel, message string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.shouldFailOnSend {
		return nil, errors.New("failed to send message")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessages = append(m.sentMessages, SentMessage{Channel: channel, Message: message})
	return &discordgo.Message{ID: "msg-id"}, nil
}

func (m *MockDiscordSession) ChannelMessageSendEmbed(channel string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.shouldFailOnSend {
		return nil, errors.New("failed to send embed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentEmbeds = append(m.sentEmbeds, embed)
	return &discordgo.Message{ID: "msg-id"}, nil
}

// SimulateMessage delivers a message through the registered handler
func (m *MockDiscordSession) SimulateMessage(s *discordgo.Session, msg *discordgo.MessageCreate) {
	handlerFunc, ok := m.handler.(func(*discordgo.Session, *discordgo.MessageCreate))
	if !ok {
		return
	}
	handlerFunc(s, msg)
}

func newTestDiscordBot(mock *MockDiscordSession, channel string) *DiscordBot {
	b := NewDiscordBot("test-token-123456", channel)
	b.newSession = func(string) (DiscordSessionInterface, error) { return mock, nil }
	return b
}

func TestDiscordBot_Start_DeliversMessages(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newTestDiscordBot(mock, "")

	var got []BotMessage
	require.NoError(t, b.Start(func(msg BotMessage) { got = append(got, msg) }))
	assert.True(t, mock.openCalled)

	ts := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.SimulateMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   "!hm stats",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1", Username: "alice", Discriminator: "1234"},
	}})
	mock.SimulateMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "dm-1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "b1", Username: "otherbot", Discriminator: "0", Bot: true},
	}})

	require.Len(t, got, 2)
	assert.Equal(t, BotMessage{
		Platform:    "discord",
		UserID:      "u1",
		Channel:     "chan-1",
		ChannelName: "chan-1",
		AuthorTag:   "alice#1234",
		Content:     "!hm stats",
		Timestamp:   ts,
	}, got[0])

	assert.True(t, got[1].IsBot)
	assert.True(t, got[1].IsDirect)
	assert.Equal(t, "otherbot", got[1].AuthorTag)
	assert.False(t, got[1].Timestamp.IsZero())
}

func TestDiscordBot_Start_OpenFails(t *testing.T) {
	mock := &MockDiscordSession{shouldFailOnOpen: true}
	b := newTestDiscordBot(mock, "")

	err := b.Start(func(BotMessage) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open discord connection")
}

func TestDiscordBot_SendMessage(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newTestDiscordBot(mock, "default-channel")
	require.NoError(t, b.Start(func(BotMessage) {}))

	require.NoError(t, b.SendMessage("", "to default"))
	require.NoError(t, b.SendMessage("custom", strings.Repeat("x", 2500)))

	require.Len(t, mock.sentMessages, 2)
	assert.Equal(t, SentMessage{Channel: "default-channel", Message: "to default"}, mock.sentMessages[0])
	assert.Equal(t, "custom", mock.sentMessages[1].Channel)
	assert.Len(t, mock.sentMessages[1].Message, 2000)
	assert.True(t, strings.HasSuffix(mock.sentMessages[1].Message, "..."))
}

func TestDiscordBot_SendMessage_Errors(t *testing.T) {
	b := NewDiscordBot("test-token", "")
	err := b.SendMessage("c", "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	mock := &MockDiscordSession{}
	b = newTestDiscordBot(mock, "")
	require.NoError(t, b.Start(func(BotMessage) {}))
	err = b.SendMessage("", "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel ID is required")

	mock.shouldFailOnSend = true
	err = b.SendMessage("c", "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send message to channel c")
}

func TestDiscordBot_SendCard(t *testing.T) {
	mock := &MockDiscordSession{}
	b := newTestDiscordBot(mock, "")
	require.NoError(t, b.Start(func(BotMessage) {}))

	c := card.New("Blockchain Stats").AddField("Hotspots", "100", true)
	c.Footer = "api.helium.io"
	require.NoError(t, b.SendCard("chan", c))

	require.Len(t, mock.sentEmbeds, 1)
	embed := mock.sentEmbeds[0]
	assert.Equal(t, "Blockchain Stats", embed.Title)
	assert.Equal(t, card.ColorInfo, embed.Color)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, &discordgo.MessageEmbedField{Name: "Hotspots", Value: "100", Inline: true}, embed.Fields[0])
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "api.helium.io", embed.Footer.Text)
}

func TestToEmbed_OptionalParts(t *testing.T) {
	embed := toEmbed(&card.Card{Title: "t"})
	assert.Nil(t, embed.Footer)
	assert.Nil(t, embed.Thumbnail)
	assert.Nil(t, embed.Image)
	assert.Empty(t, embed.Fields)

	embed = toEmbed(&card.Card{Title: "t", URL: "https://x", Thumbnail: "https://thumb", Image: "https://img"})
	assert.Equal(t, "https://x", embed.URL)
	assert.Equal(t, "https://thumb", embed.Thumbnail.URL)
	assert.Equal(t, "https://img", embed.Image.URL)
}

func TestToEmbed_BlankFields(t *testing.T) {
	c := card.New("Transactions").
		AddField("", "rewards_v2", false).
		AddField("Online", " ", true).
		AddField("Block", "42", true)

	embed := toEmbed(c)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "n/a", embed.Fields[0].Name)
	assert.Equal(t, "rewards_v2", embed.Fields[0].Value)
	assert.Equal(t, "n/a", embed.Fields[1].Value)
	assert.True(t, embed.Fields[1].Inline)
	assert.Equal(t, "42", embed.Fields[2].Value)
}

func TestDiscordBot_Stop(t *testing.T) {
	b := NewDiscordBot("test-token", "")
	assert.NoError(t, b.Stop())

	mock := &MockDiscordSession{}
	b = newTestDiscordBot(mock, "")
	require.NoError(t, b.Start(func(BotMessage) {}))
	assert.NoError(t, b.Stop())
	assert.True(t, mock.closed)

	err := b.SendMessage("c", "after stop")
	assert.Error(t, err)
}

func TestDiscordTag(t *testing.T) {
	tests := []struct {
		name string
		user discordgo.User
		want string
	}{
		{"legacy discriminator", discordgo.User{Username: "bob", Discriminator: "0420"}, "bob#0420"},
		{"migrated username", discordgo.User{Username: "bob", Discriminator: "0"}, "bob"},
		{"no discriminator", discordgo.User{Username: "bob"}, "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, discordTag(&tt.user))
		})
	}
}
