// Package core provides the central engine and configuration management for heliumbot.
//
// The core package connects the chat platform adapters with the command
// router. It handles:
//
//   - Configuration loading and validation (from YAML files)
//   - The event loop every inbound message passes through
//   - Chat log observation of public messages
//   - Command dispatch and conversion of failures into reply cards
//   - Graceful shutdown
//
// # Configuration
//
// Configuration is loaded from a YAML file with the following main sections:
//
//   - command_prefix: prefix marking a message as a command (default "!")
//   - bots: IM platform bot configurations
//   - apis: upstream API base URLs, timeout and user agent
//   - chatlog: message log file
//   - pagination: page size and list card threshold
//   - cities: named coordinates for the distance command
//   - security: access control and whitelisting
//   - logging: log configuration
//
// # Example Configuration
//
//	command_prefix: "!"
//	bots:
//	  discord:
//	    enabled: true
//	    token: "${DISCORD_TOKEN}"
//	chatlog:
//	  file: "../logs/discord_chat.log"
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keepmind9/heliumbot/internal/geo"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel      = "info"
	DefaultLogMaxBackups = 5
	DefaultAPITimeout    = "10s"
)

// SupportedBots lists the bot types the start command can create
var SupportedBots = []string{"discord", "telegram", "feishu", "dingtalk"}

// DefaultCities returns the coordinates used when the config has no cities
func DefaultCities() map[string]geo.Point {
	return map[string]geo.Point{
		"armidale":  {Lat: -30.500557, Lon: 151.5973595},
		"tamworth":  {Lat: -31.0929782, Lon: 150.9235611},
		"kootingal": {Lat: -31.062917, Lon: 151.0262554},
		"moonbi":    {Lat: -30.9514627, Lon: 150.975929},
		"quirindi":  {Lat: -31.4994214, Lon: 150.5558575},
	}
}

// LoadConfig loads configuration from file and expands environment variables
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data, applying defaults
func ParseConfig(data []byte) (*Config, error) {
	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig fills defaults and checks the configuration
func validateConfig(config *Config) error {
	if config.CommandPrefix == "" {
		config.CommandPrefix = constants.DefaultCommandPrefix
	}
	if strings.ContainsAny(config.CommandPrefix, " \t\n") {
		return fmt.Errorf("command_prefix must not contain whitespace")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}

	setDefault(&config.APIs.HeliumURL, constants.DefaultHeliumAPIURL)
	setDefault(&config.APIs.ExplorerURL, constants.DefaultExplorerURL)
	setDefault(&config.APIs.MigrationURL, constants.DefaultMigrationURL)
	setDefault(&config.APIs.ImgflipURL, constants.DefaultImgflipURL)
	setDefault(&config.APIs.MemeURL, constants.DefaultMemeAPIURL)
	setDefault(&config.APIs.UserAgent, constants.DefaultUserAgent)
	if config.APIs.Timeout == "" {
		config.APIs.Timeout = DefaultAPITimeout
	}
	timeout, err := time.ParseDuration(config.APIs.Timeout)
	if err != nil {
		return fmt.Errorf("invalid apis.timeout: %w", err)
	}
	if timeout <= 0 || timeout > 5*time.Minute {
		return fmt.Errorf("apis.timeout must be between 0 and 5m (got %v)", timeout)
	}

	setDefault(&config.ChatLog.File, constants.DefaultChatLogFile)
	config.ChatLog.File = expandHome(config.ChatLog.File)
	config.Logging.File = expandHome(config.Logging.File)

	if config.Pagination.PageSize == 0 {
		config.Pagination.PageSize = constants.DefaultPageSize
	}
	if config.Pagination.PageSize < 100 {
		return fmt.Errorf("pagination.page_size must be at least 100 (got %d)", config.Pagination.PageSize)
	}
	if config.Pagination.ListThreshold == 0 {
		config.Pagination.ListThreshold = constants.DefaultListCardThreshold
	}
	if config.Pagination.ListThreshold < 1 || config.Pagination.ListThreshold > constants.DefaultListCardThreshold {
		return fmt.Errorf("pagination.list_threshold must be between 1 and %d (got %d)",
			constants.DefaultListCardThreshold, config.Pagination.ListThreshold)
	}

	if len(config.Cities) == 0 {
		config.Cities = DefaultCities()
	}
	for name, p := range config.Cities {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("city %s: %w", name, err)
		}
	}

	if config.Security.WhitelistEnabled {
		if len(config.Security.AllowedUsers) == 0 {
			return fmt.Errorf("security.allowed_users cannot be empty when whitelist is enabled")
		}
	}

	for botType := range config.Bots {
		if !isSupportedBot(botType) {
			return fmt.Errorf("unsupported bot type %q (supported: %s)", botType, strings.Join(SupportedBots, ", "))
		}
	}

	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func isSupportedBot(botType string) bool {
	for _, b := range SupportedBots {
		if b == botType {
			return true
		}
	}
	return false
}

// APITimeout returns the parsed upstream timeout
func (c *Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.APIs.Timeout)
	if err != nil || d <= 0 {
		return constants.DefaultHTTPTimeout
	}
	return d
}

// EnabledBots returns the names of enabled bots in SupportedBots order
func (c *Config) EnabledBots() []string {
	var names []string
	for _, name := range SupportedBots {
		if b, ok := c.Bots[name]; ok && b.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// GetBotConfig retrieves configuration for a specific bot
func (c *Config) GetBotConfig(botType string) (BotConfig, error) {
	bot, exists := c.Bots[botType]
	if !exists {
		return BotConfig{}, fmt.Errorf("bot type %s not found in configuration", botType)
	}

	if !bot.Enabled {
		return BotConfig{}, fmt.Errorf("bot type %s is disabled", botType)
	}

	return bot, nil
}

// IsUserAuthorized checks if a user is in the whitelist
func (c *Config) IsUserAuthorized(platform, userID string) bool {
	if !c.Security.WhitelistEnabled {
		return true
	}

	userIDs, exists := c.Security.AllowedUsers[platform]
	if !exists {
		return false
	}

	for _, uid := range userIDs {
		if uid == userID {
			return true
		}
	}

	return false
}
