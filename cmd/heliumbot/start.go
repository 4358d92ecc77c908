package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepmind9/heliumbot/internal/chatlog"
	"github.com/keepmind9/heliumbot/internal/core"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start heliumbot main process",
		Long:  "Start heliumbot main process, connect the enabled bots and answer commands",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := core.LoadConfig(configFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			fmt.Printf("Starting heliumbot with config: %s\n", configFile)
			fmt.Printf("Command prefix: %s\n", config.CommandPrefix)
			fmt.Printf("Whitelist enabled: %v\n", config.Security.WhitelistEnabled)

			if err := logger.InitLogger(loggerConfig(config)); err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}
			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"log_level":   config.Logging.Level,
				"log_file":    config.Logging.File,
			}).Info("logger-initialized")

			router, err := core.BuildRouter(config)
			if err != nil {
				log.Fatalf("Failed to build commands: %v", err)
			}

			var observer core.MessageObserver
			var chatLog *chatlog.Logger
			if !config.ChatLog.Disabled {
				chatLog, err = chatlog.Open(config.ChatLog.File)
				if err != nil {
					log.Fatalf("Failed to open chat log: %v", err)
				}
				defer chatLog.Close()
				observer = chatLog
				fmt.Printf("Chat log: %s\n", config.ChatLog.File)
			}

			engine := core.NewEngine(config, router, observer)

			enabled := config.EnabledBots()
			if len(enabled) == 0 {
				log.Fatalf("No bots are enabled in %s", configFile)
			}
			for _, botType := range enabled {
				adapter, err := core.NewBotAdapter(botType, config.Bots[botType])
				if err != nil {
					log.Fatalf("Failed to create %s bot: %v", botType, err)
				}
				engine.RegisterBotAdapter(botType, adapter)
				log.Printf("Registered %s bot adapter", botType)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engineErrChan := make(chan error, 1)
			go func() {
				fmt.Println("\nheliumbot engine starting...")
				fmt.Println("Press Ctrl+C to stop")
				engineErrChan <- engine.Run(ctx)
			}()

			select {
			case <-ctx.Done():
				log.Printf("Received signal, shutting down gracefully...")
			case err := <-engineErrChan:
				if err != nil {
					log.Printf("Engine error: %v", err)
				}
			}

			if err := engine.Stop(); err != nil {
				log.Printf("Error during shutdown: %v", err)
			}
			log.Println("heliumbot stopped")
		},
	}
)

// loggerConfig maps the logging section onto the logger package
func loggerConfig(config *core.Config) logger.Config {
	return logger.Config{
		Level:        config.Logging.Level,
		Format:       config.Logging.Format,
		File:         config.Logging.File,
		MaxSize:      config.Logging.MaxSize,
		MaxBackups:   config.Logging.MaxBackups,
		MaxAge:       config.Logging.MaxAge,
		Compress:     config.Logging.Compress,
		EnableStdout: config.Logging.EnableStdout,
	}
}

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
}
