package core

import "github.com/keepmind9/heliumbot/internal/geo"

// Config represents the complete heliumbot configuration structure
type Config struct {
	CommandPrefix string               `yaml:"command_prefix"`
	Bots          map[string]BotConfig `yaml:"bots"`
	APIs          APIConfig            `yaml:"apis"`
	ChatLog       ChatLogConfig        `yaml:"chatlog"`
	Pagination    PaginationConfig     `yaml:"pagination"`
	Cities        map[string]geo.Point `yaml:"cities"`
	Security      SecurityConfig       `yaml:"security"`
	Logging       LoggingConfig        `yaml:"logging"`
}

// BotConfig represents bot configuration
type BotConfig struct {
	Enabled           bool   `yaml:"enabled"`
	AppID             string `yaml:"app_id"`     // Feishu app id / DingTalk client id
	AppSecret         string `yaml:"app_secret"` // Feishu app secret / DingTalk client secret
	Token             string `yaml:"token"`
	ChannelID         string `yaml:"channel_id"`         // Discord: fallback channel
	EncryptKey        string `yaml:"encrypt_key"`        // Feishu: event encryption key (optional)
	VerificationToken string `yaml:"verification_token"` // Feishu: verification token (optional)
}

// APIConfig configures the upstream HTTP APIs
type APIConfig struct {
	HeliumURL    string `yaml:"helium_url"`
	ExplorerURL  string `yaml:"explorer_url"`
	MigrationURL string `yaml:"migration_url"`
	ImgflipURL   string `yaml:"imgflip_url"`
	MemeURL      string `yaml:"meme_url"`
	Timeout      string `yaml:"timeout"` // e.g. "10s"
	UserAgent    string `yaml:"user_agent"`
}

// ChatLogConfig configures the message log
type ChatLogConfig struct {
	Disabled bool   `yaml:"disabled"`
	File     string `yaml:"file"`
}

// PaginationConfig shapes list replies
type PaginationConfig struct {
	PageSize      int `yaml:"page_size"`      // characters per page, wrapper included
	ListThreshold int `yaml:"list_threshold"` // largest list sent as a single card
}

// SecurityConfig represents security and access control configuration
type SecurityConfig struct {
	WhitelistEnabled bool                `yaml:"whitelist_enabled"`
	AllowedUsers     map[string][]string `yaml:"allowed_users"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json or text; empty picks by level
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout
}
