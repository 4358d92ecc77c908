package core

import (
	"fmt"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/command"
	"github.com/keepmind9/heliumbot/internal/helium"
	"github.com/keepmind9/heliumbot/internal/httpapi"
	"github.com/keepmind9/heliumbot/internal/meme"
)

// BuildRouter builds the command table from config. Duplicate names or
// aliases fail here, before any bot connects.
func BuildRouter(config *Config) (*command.Router, error) {
	client := httpapi.NewClient(httpapi.Config{
		Timeout:   config.APITimeout(),
		UserAgent: config.APIs.UserAgent,
	})

	lists := card.ListPolicy{
		Threshold: config.Pagination.ListThreshold,
		Paginator: card.NewPaginator(config.Pagination.PageSize),
	}
	heliumSvc := helium.NewService(
		helium.NewClient(client, config.APIs.HeliumURL, config.APIs.MigrationURL),
		helium.NewFormatter(config.APIs.ExplorerURL, lists),
		config.Cities,
	)
	memeSvc := meme.NewService(client, config.APIs.ImgflipURL, config.APIs.MemeURL, nil)

	router := command.NewRouter(config.CommandPrefix)
	for _, g := range []command.Group{heliumSvc.Group(), memeSvc.Group()} {
		if err := router.RegisterGroup(g); err != nil {
			return nil, fmt.Errorf("failed to register %s commands: %w", g.Name, err)
		}
	}
	return router, nil
}

// NewBotAdapter creates the adapter for one configured bot
func NewBotAdapter(botType string, cfg BotConfig) (bot.BotAdapter, error) {
	switch botType {
	case "discord":
		return bot.NewDiscordBot(cfg.Token, cfg.ChannelID), nil
	case "telegram":
		return bot.NewTelegramBot(cfg.Token), nil
	case "feishu":
		feishuBot := bot.NewFeishuBot(cfg.AppID, cfg.AppSecret)
		feishuBot.EncryptKey = cfg.EncryptKey
		feishuBot.VerificationToken = cfg.VerificationToken
		return feishuBot, nil
	case "dingtalk":
		return bot.NewDingTalkBot(cfg.AppID, cfg.AppSecret), nil
	default:
		return nil, fmt.Errorf("bot type %q not implemented", botType)
	}
}
