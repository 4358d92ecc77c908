package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/larksuite/oapi-sdk-go/v3/ws"
	"github.com/sirupsen/logrus"
)

// FeishuBot implements BotAdapter interface for Feishu (Lark) using WebSocket long connection
type FeishuBot struct {
	AppID             string
	AppSecret         string
	EncryptKey        string // Optional, for encrypted events
	VerificationToken string // Optional, for event verification
	WSClient          *ws.Client
	LarkClient        *lark.Client
	Dispatcher        *dispatcher.EventDispatcher
	messageHandler    func(BotMessage)
	ctx               context.Context
	cancel            context.CancelFunc
}

// NewFeishuBot creates a new Feishu bot instance
func NewFeishuBot(appID, appSecret string) *FeishuBot {
	return &FeishuBot{
		AppID:      appID,
		AppSecret:  appSecret,
		LarkClient: lark.NewClient(appID, appSecret),
		ctx:        context.Background(),
	}
}

// Start establishes WebSocket long connection to Feishu and begins listening for messages
func (f *FeishuBot) Start(messageHandler func(BotMessage)) error {
	f.messageHandler = messageHandler
	f.ctx, f.cancel = context.WithCancel(context.Background())

	logger.WithFields(logrus.Fields{
		"app_id": maskSecret(f.AppID),
	}).Info("starting-feishu-bot-with-websocket-long-connection")

	f.Dispatcher = dispatcher.NewEventDispatcher(f.VerificationToken, f.EncryptKey)
	f.Dispatcher.OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
		f.handleMessageReceive(event)
		return nil
	})

	f.WSClient = ws.NewClient(f.AppID, f.AppSecret,
		ws.WithEventHandler(f.Dispatcher),
		ws.WithLogLevel(larkcore.LogLevelInfo),
		ws.WithAutoReconnect(true),
	)

	// Start blocks for the lifetime of the connection
	go func() {
		if err := f.WSClient.Start(f.ctx); err != nil {
			logger.WithFields(logrus.Fields{
				"app_id": maskSecret(f.AppID),
				"error":  err,
			}).Error("feishu-websocket-connection-failed")
		}
	}()

	time.Sleep(constants.DefaultConnectDelay)

	logger.Info("feishu-websocket-long-connection-started")
	return nil
}

// handleMessageReceive converts a Feishu message event and hands it to the handler
func (f *FeishuBot) handleMessageReceive(event *larkim.P2MessageReceiveV1) {
	if event == nil || event.Event == nil {
		return
	}

	msg, ok := toFeishuBotMessage(event.Event)
	if !ok {
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": "feishu",
		"user_id":  msg.UserID,
		"chat_id":  msg.Channel,
		"direct":   msg.IsDirect,
		"bot":      msg.IsBot,
	}).Debug("received-feishu-message")

	if f.messageHandler != nil {
		f.messageHandler(msg)
	}
}

func toFeishuBotMessage(ev *larkim.P2MessageReceiveV1Data) (BotMessage, bool) {
	if ev.Message == nil {
		return BotMessage{}, false
	}
	if deref(ev.Message.MessageType) != larkim.MsgTypeText {
		return BotMessage{}, false
	}

	msg := BotMessage{
		Platform:  "feishu",
		Channel:   deref(ev.Message.ChatId),
		Content:   extractTextContent(deref(ev.Message.Content)),
		IsDirect:  deref(ev.Message.ChatType) == "p2p",
		Timestamp: time.Now(),
	}
	msg.ChannelName = msg.Channel
	if ms, err := strconv.ParseInt(deref(ev.Message.CreateTime), 10, 64); err == nil {
		msg.Timestamp = time.UnixMilli(ms)
	}

	if ev.Sender != nil {
		msg.IsBot = deref(ev.Sender.SenderType) == "app"
		if ev.Sender.SenderId != nil {
			msg.UserID = deref(ev.Sender.SenderId.UserId)
			if msg.UserID == "" {
				msg.UserID = deref(ev.Sender.SenderId.OpenId)
			}
		}
	}
	msg.AuthorTag = msg.UserID
	return msg, true
}

// SendMessage sends a text message to a Feishu chat
func (f *FeishuBot) SendMessage(chatID, message string) error {
	if truncated, cut := truncate(message, constants.MaxFeishuMessageLength); cut {
		logger.WithFields(logrus.Fields{
			"original_length": len(message),
			"max_length":      constants.MaxFeishuMessageLength,
		}).Info("truncating-message-for-feishu-limit")
		message = truncated
	}

	content, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode feishu text: %w", err)
	}
	return f.create(chatID, larkim.MsgTypeText, string(content))
}

// SendCard sends a card as a Feishu interactive message
func (f *FeishuBot) SendCard(chatID string, c *card.Card) error {
	content, err := feishuCardJSON(c)
	if err != nil {
		return fmt.Errorf("failed to encode feishu card: %w", err)
	}
	return f.create(chatID, larkim.MsgTypeInteractive, content)
}

func (f *FeishuBot) create(chatID, msgType, content string) error {
	if f.LarkClient == nil {
		return fmt.Errorf("feishu client not initialized")
	}
	if chatID == "" {
		return fmt.Errorf("chat ID is required for Feishu")
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(chatID).
		MsgType(msgType).
		Content(content).
		Build()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(body).
		Build()

	resp, err := f.LarkClient.Im.Message.Create(f.ctx, req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-feishu")
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	if !resp.Success() {
		logger.WithFields(logrus.Fields{
			"chat_id":    chatID,
			"code":       resp.Code,
			"msg":        resp.Msg,
			"request_id": resp.RequestId(),
		}).Error("failed-to-send-message-to-feishu-api-error")
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	logger.WithFields(logrus.Fields{
		"chat_id":  chatID,
		"msg_type": msgType,
	}).Info("message-sent-to-feishu")
	return nil
}

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuElement struct {
	Tag      string       `json:"tag"`
	Text     *feishuText  `json:"text,omitempty"`
	Elements []feishuText `json:"elements,omitempty"`
}

type feishuCard struct {
	Config struct {
		WideScreenMode bool `json:"wide_screen_mode"`
	} `json:"config"`
	Header struct {
		Title    feishuText `json:"title"`
		Template string     `json:"template"`
	} `json:"header"`
	Elements []feishuElement `json:"elements"`
}

// feishuCardJSON renders a card in the Feishu message card format
func feishuCardJSON(c *card.Card) (string, error) {
	var fc feishuCard
	fc.Config.WideScreenMode = true
	fc.Header.Title = feishuText{Tag: "plain_text", Content: c.Title}
	fc.Header.Template = "blue"
	switch c.Color {
	case card.ColorError:
		fc.Header.Template = "red"
	case card.ColorNotFound:
		fc.Header.Template = "orange"
	}

	body := (&card.Card{
		Description: c.Description,
		Fields:      c.Fields,
		Image:       c.Image,
	}).Markdown()
	if c.URL != "" {
		body = strings.TrimSpace("[" + c.URL + "](" + c.URL + ")\n" + body)
	}
	if body != "" {
		fc.Elements = append(fc.Elements, feishuElement{
			Tag:  "div",
			Text: &feishuText{Tag: "lark_md", Content: body},
		})
	}
	if c.Footer != "" {
		fc.Elements = append(fc.Elements, feishuElement{
			Tag:      "note",
			Elements: []feishuText{{Tag: "plain_text", Content: c.Footer}},
		})
	}

	out, err := json.Marshal(fc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Stop closes the Feishu WebSocket connection and cleans up resources
func (f *FeishuBot) Stop() error {
	// ws.Client has no Stop method; the connection ends with its context
	if f.cancel != nil {
		f.cancel()
	}
	logger.Info("feishu-bot-stopped")
	return nil
}

// extractTextContent extracts the text of a Feishu text message,
// whose content is {"text":"..."}
func extractTextContent(content string) string {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return content
	}
	return payload.Text
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
