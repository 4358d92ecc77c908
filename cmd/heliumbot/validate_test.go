package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keepmind9/heliumbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFile_Valid(t *testing.T) {
	path := writeConfig(t, `
bots:
  discord:
    enabled: true
    token: "abc"
security:
  whitelist_enabled: true
  allowed_users:
    discord: ["42"]
`)

	result, cfg := validateFile(path)
	require.NotNil(t, cfg)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []string{"discord"}, result.Bots)
	assert.Equal(t, 5, result.Cities)
	assert.Equal(t, cfg.ChatLog.File, result.ChatLog)
}

func TestValidateFile_NoBots(t *testing.T) {
	result, cfg := validateFile(writeConfig(t, "bots: {}\n"))
	require.NotNil(t, cfg)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "No bots are enabled")
	assert.Contains(t, result.Warnings, "Whitelist is disabled - anyone in a joined channel can run commands")
}

func TestValidateFile_LoadError(t *testing.T) {
	result, cfg := validateFile(writeConfig(t, "pagination:\n  page_size: 10\n"))
	assert.Nil(t, cfg)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "page_size")
}

func TestValidateConfigDetails(t *testing.T) {
	cfg := &core.Config{
		Bots: map[string]core.BotConfig{
			"telegram": {Enabled: true},
			"feishu":   {Enabled: true, AppID: "cli_x"},
			"discord":  {Enabled: false},
		},
		ChatLog: core.ChatLogConfig{Disabled: true},
	}

	warnings := validateConfigDetails(cfg)
	assert.Equal(t, []string{
		"Whitelist is disabled - anyone in a joined channel can run commands",
		"Bot 'telegram' is enabled but has no token configured",
		"Bot 'feishu' is enabled but has no app credentials configured",
		"Chat log is disabled",
	}, warnings)
}

func TestOutputValidationResult(t *testing.T) {
	result := ValidationResult{
		Valid:  false,
		Config: "config.yaml",
		Errors: []string{"bad timeout"},
	}

	var buf bytes.Buffer
	outputValidationResult(&buf, result, true)
	var got ValidationResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, result, got)

	buf.Reset()
	outputValidationResult(&buf, result, false)
	assert.Contains(t, buf.String(), "❌ Configuration validation failed:")
	assert.Contains(t, buf.String(), "  - bad timeout")
}

func TestShowConfig(t *testing.T) {
	cfg, err := core.ParseConfig([]byte("bots:\n  telegram:\n    enabled: false\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	showConfig(&buf, "config.yaml", cfg)
	out := buf.String()
	assert.Contains(t, out, "Command prefix: !")
	assert.Contains(t, out, "  - telegram: disabled")
	assert.Contains(t, out, "Cities (5):")
	assert.Contains(t, out, "  - tamworth: -31.092978, 150.923561")
}
