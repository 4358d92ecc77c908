package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "heliumbot",
	Short: "heliumbot is a chat bot for Helium network stats and memes",
	Long: `heliumbot connects chat platforms (Discord, Telegram, Feishu, DingTalk)
with the Helium blockchain API and a couple of meme services. Commands are
answered with cards, long lists are paginated, and public messages are
appended to a chat log.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
