package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/chatbot"
	"github.com/open-dingtalk/dingtalk-stream-sdk-go/client"
	"github.com/sirupsen/logrus"
)

// dingTalkReplier is the part of chatbot.ChatbotReplier the adapter uses
type dingTalkReplier interface {
	SimpleReplyText(ctx context.Context, sessionWebhook string, content []byte) error
	SimpleReplyMarkdown(ctx context.Context, sessionWebhook string, title, content []byte) error
}

// DingTalkBot implements BotAdapter interface for DingTalk using a stream connection.
// DingTalk bots can only answer through the session webhook of the latest
// inbound message, so webhooks are remembered per conversation.
type DingTalkBot struct {
	mu             sync.RWMutex
	clientID       string
	clientSecret   string
	streamClient   *client.StreamClient
	replier        dingTalkReplier
	webhooks       map[string]string
	messageHandler func(BotMessage)
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewDingTalkBot creates a new DingTalk bot instance
func NewDingTalkBot(clientID, clientSecret string) *DingTalkBot {
	return &DingTalkBot{
		clientID:     clientID,
		clientSecret: clientSecret,
		replier:      chatbot.NewChatbotReplier(),
		webhooks:     make(map[string]string),
		ctx:          context.Background(),
	}
}

// Start establishes the stream connection to DingTalk and begins listening for messages
func (d *DingTalkBot) Start(messageHandler func(BotMessage)) error {
	d.SetMessageHandler(messageHandler)
	d.ctx, d.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"client_id": maskSecret(d.clientID),
	}).Info("starting-dingtalk-bot-with-stream-connection")

	credential := client.NewAppCredentialConfig(d.clientID, d.clientSecret)

	d.mu.Lock()
	d.streamClient = client.NewStreamClient(client.WithAppCredential(credential))
	streamClient := d.streamClient
	d.mu.Unlock()

	streamClient.RegisterChatBotCallbackRouter(d.handleMessageReceive)

	go func() {
		if err := streamClient.Start(d.ctx); err != nil {
			logger.WithFields(logrus.Fields{
				"client_id": maskSecret(d.clientID),
				"error":     err,
			}).Error("dingtalk-stream-connection-failed")
		}
	}()

	time.Sleep(constants.DefaultConnectDelay)

	logger.Info("dingtalk-stream-connection-started")
	return nil
}

// handleMessageReceive handles incoming chatbot callbacks from DingTalk
func (d *DingTalkBot) handleMessageReceive(ctx context.Context, data *chatbot.BotCallbackDataModel) ([]byte, error) {
	if data == nil {
		return []byte(""), nil
	}

	if data.SessionWebhook != "" {
		d.mu.Lock()
		d.webhooks[data.ConversationId] = data.SessionWebhook
		d.mu.Unlock()
	}

	if data.Msgtype != "text" {
		return []byte(""), nil
	}

	msg := toDingTalkBotMessage(data)

	logger.WithFields(logrus.Fields{
		"platform":        "dingtalk",
		"conversation_id": msg.Channel,
		"user_id":         msg.UserID,
		"author":          msg.AuthorTag,
		"direct":          msg.IsDirect,
		"msg_id":          data.MsgId,
	}).Debug("received-dingtalk-message")

	if handler := d.GetMessageHandler(); handler != nil {
		handler(msg)
	}
	return []byte(""), nil
}

func toDingTalkBotMessage(data *chatbot.BotCallbackDataModel) BotMessage {
	msg := BotMessage{
		Platform:    "dingtalk",
		UserID:      data.SenderStaffId,
		Channel:     data.ConversationId,
		ChannelName: data.ConversationTitle,
		AuthorTag:   data.SenderNick,
		Content:     strings.TrimSpace(data.Text.Content),
		IsDirect:    data.ConversationType == "1",
		Timestamp:   time.Now(),
	}
	if msg.UserID == "" {
		msg.UserID = data.SenderId
	}
	if msg.ChannelName == "" {
		msg.ChannelName = msg.Channel
	}
	if data.CreateAt > 0 {
		msg.Timestamp = time.UnixMilli(data.CreateAt)
	}
	return msg
}

func (d *DingTalkBot) webhook(conversationID string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("conversation ID is required for DingTalk")
	}
	d.mu.RLock()
	hook, ok := d.webhooks[conversationID]
	d.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no session webhook for conversation %s", conversationID)
	}
	return hook, nil
}

// SendMessage replies with plain text through the conversation's session webhook
func (d *DingTalkBot) SendMessage(conversationID, message string) error {
	hook, err := d.webhook(conversationID)
	if err != nil {
		return err
	}

	if truncated, cut := truncate(message, constants.MaxDingTalkMessageLength); cut {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxDingTalkMessageLength,
		}).Info("truncating-message-for-dingtalk-limit")
		message = truncated
	}

	if err := d.replier.SimpleReplyText(d.ctx, hook, []byte(message)); err != nil {
		logger.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"error":           err,
		}).Error("failed-to-send-message-to-dingtalk")
		return fmt.Errorf("failed to send message to conversation %s: %w", conversationID, err)
	}

	logger.WithField("conversation_id", conversationID).Info("message-sent-to-dingtalk")
	return nil
}

// SendCard replies with the card rendered as DingTalk markdown
func (d *DingTalkBot) SendCard(conversationID string, c *card.Card) error {
	hook, err := d.webhook(conversationID)
	if err != nil {
		return err
	}

	content, _ := truncate(c.Markdown(), constants.MaxDingTalkMessageLength)
	if err := d.replier.SimpleReplyMarkdown(d.ctx, hook, []byte(c.Title), []byte(content)); err != nil {
		logger.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"title":           c.Title,
			"error":           err,
		}).Error("failed-to-send-card-to-dingtalk")
		return fmt.Errorf("failed to send card to conversation %s: %w", conversationID, err)
	}

	logger.WithField("conversation_id", conversationID).Info("card-sent-to-dingtalk")
	return nil
}

// Stop closes the DingTalk stream connection and cleans up resources
func (d *DingTalkBot) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}

	d.mu.Lock()
	streamClient := d.streamClient
	d.streamClient = nil
	d.mu.Unlock()

	if streamClient != nil {
		streamClient.Close()
	}

	logger.Info("dingtalk-bot-stopped")
	return nil
}

// SetMessageHandler sets the message handler in a thread-safe manner
func (d *DingTalkBot) SetMessageHandler(handler func(BotMessage)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messageHandler = handler
}

// GetMessageHandler gets the message handler in a thread-safe manner
func (d *DingTalkBot) GetMessageHandler() func(BotMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messageHandler
}
