package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "file output",
			config: Config{
				Level:      "info",
				File:       filepath.Join(dir, "heliumbot.log"),
				MaxSize:    1,
				MaxBackups: 1,
				MaxAge:     1,
			},
		},
		{
			name:   "stdout only",
			config: Config{Level: "debug", EnableStdout: true},
		},
		{
			name:   "invalid level defaults to info",
			config: Config{Level: "invalid"},
		},
		{
			name:   "no writers",
			config: Config{Level: "info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, InitLogger(tt.config))
			assert.NotNil(t, GetLogger())
		})
	}
}

func TestInitLogger_CreatesLogDirectory(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "logs", "bot.log")

	require.NoError(t, InitLogger(Config{Level: "info", File: logFile}))

	info, err := os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetLogger_ReturnsSameInstance(t *testing.T) {
	assert.Same(t, GetLogger(), GetLogger())
}

func TestLogLevelSetting(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			require.NoError(t, InitLogger(Config{Level: tt.level}))
			assert.Equal(t, tt.expected, GetLogger().GetLevel())
		})
	}
}

func TestFormatterSetting(t *testing.T) {
	require.NoError(t, InitLogger(Config{Level: "debug"}))
	assert.IsType(t, &logrus.TextFormatter{}, GetLogger().Formatter)

	require.NoError(t, InitLogger(Config{Level: "info"}))
	assert.IsType(t, &logrus.JSONFormatter{}, GetLogger().Formatter)

	require.NoError(t, InitLogger(Config{Level: "info", Format: "text"}))
	assert.IsType(t, &logrus.TextFormatter{}, GetLogger().Formatter)
}

func TestWithFields(t *testing.T) {
	require.NoError(t, InitLogger(Config{Level: "info"}))
	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(logrus.Fields{"command": "stats", "group": "helium"}).Info("command-dispatched")
	WithField("channel", "general").Info("message-logged")
	WithError(errors.New("boom")).Error("handler-failed")
	Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "command-dispatched")
	assert.Contains(t, out, "helium")
	assert.Contains(t, out, "general")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "hidden")
}
