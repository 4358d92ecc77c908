// Package chatlog appends every public, human-authored message to a
// pipe-delimited log file.
package chatlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned by Observe after a write has failed
var ErrDisabled = errors.New("chat log disabled after write failure")

type syncWriter interface {
	io.WriteCloser
	Sync() error
}

// Logger writes one record per observed message and syncs after each one
type Logger struct {
	mu       sync.Mutex
	path     string
	out      syncWriter
	disabled bool
}

// Open opens path for appending, creating it and its directory as needed
func Open(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create chat log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	logger.WithField("file", path).Info("chat-log-opened")
	return &Logger{path: path, out: f}, nil
}

// Record renders the log line for msg, without the trailing newline:
// timestamp|channel|author|text, with newlines in text written as \n.
func Record(msg bot.BotMessage) string {
	return strings.Join([]string{
		msg.Timestamp.UTC().Format(time.RFC3339Nano),
		msg.ChannelName,
		msg.AuthorTag,
		strings.ReplaceAll(msg.Content, "\n", `\n`),
	}, "|")
}

// Observe logs msg unless it was written by a bot or sent as a direct
// message. After the first write failure the logger stays disabled.
func (l *Logger) Observe(msg bot.BotMessage) error {
	if msg.IsBot || msg.IsDirect {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled {
		return ErrDisabled
	}

	if _, err := io.WriteString(l.out, Record(msg)+"\n"); err != nil {
		return l.fail(err)
	}
	if err := l.out.Sync(); err != nil {
		return l.fail(err)
	}
	return nil
}

func (l *Logger) fail(err error) error {
	l.disabled = true
	logger.WithFields(logrus.Fields{
		"file":  l.path,
		"error": err,
	}).Error("chat-log-write-failed-disabling")
	return fmt.Errorf("write chat log: %w", err)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disabled = true
	return l.out.Close()
}
