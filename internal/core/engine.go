package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/command"
	"github.com/keepmind9/heliumbot/internal/httpapi"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MessageObserver sees every inbound message before command dispatch
type MessageObserver interface {
	Observe(msg bot.BotMessage) error
}

// Engine is the core event loop connecting bot adapters with the command router
type Engine struct {
	config      *Config
	router      *command.Router
	observer    MessageObserver           // may be nil
	activeBots  map[string]bot.BotAdapter // Bot type -> adapter
	botMu       sync.RWMutex
	messageChan chan bot.BotMessage // Bot message channel
	inflight    sync.WaitGroup      // Running command dispatches
	ctx         context.Context     // Cancelled on Stop; ends message intake
	cancel      context.CancelFunc  // Cancel function for graceful shutdown
	cmdCtx      context.Context     // Passed to handlers; outlives ctx by the shutdown grace period
	cmdCancel   context.CancelFunc
	stopOnce    sync.Once
}

// NewEngine creates a new Engine instance. observer may be nil.
func NewEngine(config *Config, router *command.Router, observer MessageObserver) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	cmdCtx, cmdCancel := context.WithCancel(context.Background())
	return &Engine{
		config:      config,
		router:      router,
		observer:    observer,
		activeBots:  make(map[string]bot.BotAdapter),
		messageChan: make(chan bot.BotMessage, constants.MessageChannelBufferSize),
		ctx:         ctx,
		cancel:      cancel,
		cmdCtx:      cmdCtx,
		cmdCancel:   cmdCancel,
	}
}

// RegisterBotAdapter registers a bot adapter
func (e *Engine) RegisterBotAdapter(botType string, adapter bot.BotAdapter) {
	e.botMu.Lock()
	defer e.botMu.Unlock()
	e.activeBots[botType] = adapter
}

func (e *Engine) botAdapter(platform string) (bot.BotAdapter, bool) {
	e.botMu.RLock()
	defer e.botMu.RUnlock()
	ba, ok := e.activeBots[platform]
	return ba, ok
}

// Run starts every registered bot and processes messages until ctx is
// cancelled or Stop is called. A bot that fails to start aborts Run.
func (e *Engine) Run(ctx context.Context) error {
	logger.Info("starting-heliumbot-engine")

	e.botMu.RLock()
	bots := make(map[string]bot.BotAdapter, len(e.activeBots))
	for k, v := range e.activeBots {
		bots[k] = v
	}
	e.botMu.RUnlock()

	var g errgroup.Group
	for botType, botAdapter := range bots {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("bot %s panicked on start: %v", botType, r)
				}
			}()
			logger.WithField("bot_type", botType).Info("starting-bot")
			if err := botAdapter.Start(e.HandleBotMessage); err != nil {
				return fmt.Errorf("failed to start %s bot: %w", botType, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.WithField("error", err).Error("failed-to-start-bots")
		return err
	}

	e.runEventLoop(ctx)
	return nil
}

// runEventLoop runs the main event loop for processing messages
func (e *Engine) runEventLoop(ctx context.Context) {
	logger.Info("engine-event-loop-started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case <-e.ctx.Done():
			logger.Info("event-loop-shutting-down")
			return
		case msg := <-e.messageChan:
			e.HandleUserMessage(msg)
		}
	}
}

// HandleBotMessage is the callback function for bots to deliver messages.
// Messages arriving after Stop are dropped.
func (e *Engine) HandleBotMessage(msg bot.BotMessage) {
	select {
	case e.messageChan <- msg:
	case <-e.ctx.Done():
	}
}

// HandleUserMessage processes one inbound message: the chat log sees it
// first, in arrival order, then a command dispatch is started for it
func (e *Engine) HandleUserMessage(msg bot.BotMessage) {
	if e.observer != nil {
		if err := e.observer.Observe(msg); err != nil {
			logger.WithFields(logrus.Fields{
				"platform": msg.Platform,
				"channel":  msg.Channel,
				"error":    err,
			}).Warn("chat-log-observe-failed")
		}
	}

	// Unknown commands get no reply, from the whitelist included.
	if msg.IsBot || !e.router.Resolve(msg.Content) {
		return
	}

	if !e.config.IsUserAuthorized(msg.Platform, msg.UserID) {
		logger.WithFields(logrus.Fields{
			"platform": msg.Platform,
			"user":     msg.UserID,
		}).Warn("unauthorized-access-attempt")
		e.SendToBot(msg.Platform, msg.Channel, "❌ Unauthorized: Please contact the administrator to add your user ID")
		return
	}

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.dispatch(msg)
	}()
}

func (e *Engine) dispatch(msg bot.BotMessage) {
	reply := &botReplier{engine: e, platform: msg.Platform, channel: msg.Channel}

	start := time.Now()
	handled, err := e.router.Dispatch(e.cmdCtx, msg, reply)
	if !handled {
		return
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"platform": msg.Platform,
			"channel":  msg.Channel,
			"content":  msg.Content,
			"error":    err,
		}).Error("command-failed")
		if sendErr := reply.SendCard(ErrorCard(err)); sendErr != nil {
			logger.WithField("error", sendErr).Error("failed-to-send-error-card")
		}
		return
	}

	logger.WithFields(logrus.Fields{
		"platform": msg.Platform,
		"channel":  msg.Channel,
		"elapsed":  time.Since(start).String(),
	}).Debug("command-completed")
}

// ErrorCard converts a command failure into the card shown to the user
func ErrorCard(err error) *card.Card {
	var statusErr *httpapi.StatusError
	var schemaErr *httpapi.SchemaError
	switch {
	case errors.As(err, &statusErr):
		return card.Failure("Upstream error",
			fmt.Sprintf("%s returned HTTP %d. Try again later.", statusErr.Endpoint, statusErr.StatusCode))
	case errors.As(err, &schemaErr):
		detail := fmt.Sprintf("%s returned data in an unexpected shape", schemaErr.Endpoint)
		if schemaErr.Field != "" {
			detail += fmt.Sprintf(" (field `%s`)", schemaErr.Field)
		}
		return card.Failure("Unexpected response", detail+".")
	case errors.Is(err, context.DeadlineExceeded):
		return card.Failure("Upstream error", "The request timed out. Try again later.")
	default:
		return card.Failure("Command failed", err.Error())
	}
}

// botReplier sends replies back to the channel a command came from
type botReplier struct {
	engine   *Engine
	platform string
	channel  string
}

func (r *botReplier) SendCard(c *card.Card) error {
	return r.engine.SendCardToBot(r.platform, r.channel, c)
}

func (r *botReplier) SendText(text string) error {
	ba, ok := r.engine.botAdapter(r.platform)
	if !ok {
		return fmt.Errorf("bot %s not registered", r.platform)
	}
	return ba.SendMessage(r.channel, text)
}

// SendToBot sends a message to a specific bot, logging failures
func (e *Engine) SendToBot(platform, channel, message string) {
	botAdapter, exists := e.botAdapter(platform)
	if !exists {
		return
	}
	if err := botAdapter.SendMessage(channel, message); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"channel":  channel,
			"error":    err,
		}).Error("failed-to-send-message-to-bot")
		return
	}
	logger.WithFields(logrus.Fields{
		"platform": platform,
		"channel":  channel,
		"length":   len(message),
	}).Debug("message-sent-to-bot")
}

// SendCardToBot sends a card to a specific bot
func (e *Engine) SendCardToBot(platform, channel string, c *card.Card) error {
	botAdapter, exists := e.botAdapter(platform)
	if !exists {
		return fmt.Errorf("bot %s not registered", platform)
	}
	if err := botAdapter.SendCard(channel, c); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"channel":  channel,
			"title":    c.Title,
			"error":    err,
		}).Error("failed-to-send-card-to-bot")
		return err
	}
	return nil
}

// Wait blocks until every running command dispatch has finished
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Stop gracefully stops the engine: new messages are dropped, running
// commands get up to DefaultShutdownTimeout to finish, then bots disconnect.
func (e *Engine) Stop() error {
	var stopErr error
	e.stopOnce.Do(func() {
		logger.Info("stopping-heliumbot-engine")
		e.cancel()

		done := make(chan struct{})
		go func() {
			e.inflight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(constants.DefaultShutdownTimeout):
			logger.Warn("timed-out-waiting-for-commands")
		}
		e.cmdCancel()

		e.botMu.RLock()
		defer e.botMu.RUnlock()
		var errs []error
		for botType, botAdapter := range e.activeBots {
			logger.WithField("bot_type", botType).Info("stopping-bot")
			if err := botAdapter.Stop(); err != nil {
				logger.WithFields(logrus.Fields{
					"bot_type": botType,
					"error":    err,
				}).Error("failed-to-stop-bot")
				errs = append(errs, fmt.Errorf("stop %s: %w", botType, err))
			}
		}
		stopErr = errors.Join(errs...)
		logger.Info("engine-stopped")
	})
	return stopErr
}
