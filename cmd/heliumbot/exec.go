package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/core"
	"github.com/spf13/cobra"
)

var execConfig string

var execCmd = &cobra.Command{
	Use:   "exec <command...>",
	Short: "Run one bot command locally and print the replies",
	Long: `Run one bot command against the live APIs without connecting to any chat
platform. Cards are printed as plain text and pages are printed verbatim.

Examples:
  heliumbot exec hm stats
  heliumbot exec -c config.yaml helium miner "angry purple tiger"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadExecConfig(execConfig)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runExec(ctx, config, args, cmd.OutOrStdout())
	},
}

func loadExecConfig(path string) (*core.Config, error) {
	if path == "" {
		return core.ParseConfig(nil)
	}
	return core.LoadConfig(path)
}

// runExec dispatches one command line and writes every reply to out
func runExec(ctx context.Context, config *core.Config, args []string, out io.Writer) error {
	router, err := core.BuildRouter(config)
	if err != nil {
		return err
	}

	msg := bot.BotMessage{
		Platform:    "cli",
		UserID:      "local",
		Channel:     "stdout",
		ChannelName: "stdout",
		AuthorTag:   "local",
		Content:     config.CommandPrefix + strings.Join(args, " "),
		IsDirect:    true,
		Timestamp:   time.Now(),
	}
	reply := &stdoutReplier{out: out}

	handled, err := router.Dispatch(ctx, msg, reply)
	if !handled {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if err != nil {
		return reply.SendCard(core.ErrorCard(err))
	}
	return nil
}

// stdoutReplier prints replies separated by blank lines
type stdoutReplier struct {
	out   io.Writer
	count int
}

func (r *stdoutReplier) SendCard(c *card.Card) error {
	return r.write(c.PlainText())
}

func (r *stdoutReplier) SendText(text string) error {
	return r.write(text)
}

func (r *stdoutReplier) write(s string) error {
	if r.count > 0 {
		if _, err := fmt.Fprintln(r.out); err != nil {
			return err
		}
	}
	r.count++
	_, err := fmt.Fprintln(r.out, s)
	return err
}

func init() {
	execCmd.Flags().StringVarP(&execConfig, "config", "c", "", "Configuration file path (defaults apply when empty)")
}
