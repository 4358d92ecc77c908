package constants

import "time"

// Message length limits for different platforms
const (
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxFeishuMessageLength is Feishu's message character limit
	MaxFeishuMessageLength = 20000
	// MaxDingTalkMessageLength is DingTalk's message character limit
	MaxDingTalkMessageLength = 20000
)

// Reply shaping
const (
	// DefaultPageSize is the character budget of one paginated reply, wrapper included
	DefaultPageSize = MaxDiscordMessageLength
	// DefaultListCardThreshold is the largest list rendered as a single card.
	// Discord rejects embeds with more than 25 fields.
	DefaultListCardThreshold = 25
	// PagePrefix and PageSuffix wrap every paginated page in a code block
	PagePrefix = "```"
	PageSuffix = "```"
	// DefaultCommandPrefix marks a message as a bot command
	DefaultCommandPrefix = "!"
	// MaxCardColor is the largest 24-bit RGB card color
	MaxCardColor = 0xFFFFFF
)

// Upstream APIs
const (
	DefaultHeliumAPIURL    = "https://api.helium.io/v1"
	DefaultExplorerURL     = "https://explorer.helium.com"
	DefaultMigrationURL    = "https://migration.web.helium.io"
	DefaultImgflipURL      = "https://api.imgflip.com/get_memes"
	DefaultMemeAPIURL      = "https://meme-api.com/gimme/1"
	DefaultContentType     = "application/json; charset=utf-8"
	DefaultUserAgent       = "heliumbot (+https://github.com/keepmind9/heliumbot)"
	DefaultRichAccountsMax = 100
	// Bones is the number of bones in one HNT
	Bones = 100_000_000
)

// Timeouts and delays
const (
	// DefaultHTTPTimeout bounds a single upstream call
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultPollTimeout is the timeout for long polling operations
	DefaultPollTimeout = 60 * time.Second
	// DefaultConnectDelay gives websocket clients time to connect
	DefaultConnectDelay = 2 * time.Second
	// DefaultShutdownTimeout bounds waiting for in-flight commands on stop
	DefaultShutdownTimeout = 15 * time.Second
)

// Message buffer sizes
const (
	// MessageChannelBufferSize is the buffer size for the message channel
	MessageChannelBufferSize = 100
)

// Secret masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply masking
	MinSecretLengthForMasking = 8
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 4
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
	// DefaultChatLogFile is where the chat log is appended
	DefaultChatLogFile = "../logs/discord_chat.log"
)
