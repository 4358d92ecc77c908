package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/keepmind9/heliumbot/internal/core"
	"github.com/spf13/cobra"
)

var (
	validateConfigPath string
	validateShow       bool
	validateJSON       bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	Bots     []string `json:"bots"`
	Cities   int      `json:"cities"`
	ChatLog  string   `json:"chat_log,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate heliumbot configuration file",
	Long: `Validate the heliumbot configuration file without starting the service.

This command checks:
  - YAML syntax and environment variables
  - API timeout, pagination and city coordinates
  - Bot credentials
  - Command registration

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	Run: func(cmd *cobra.Command, args []string) {
		configFile := validateConfigPath
		if configFile == "" {
			configFile = findConfigFile()
		}
		out := cmd.OutOrStdout()
		if configFile == "" {
			fmt.Fprintln(out, "❌ No configuration file found")
			fmt.Fprintln(out, "\nSpecify a config file with --config or ensure one exists at:")
			for _, loc := range configLocations() {
				fmt.Fprintf(out, "  - %s\n", loc)
			}
			os.Exit(1)
		}

		result, cfg := validateFile(configFile)
		if validateShow && cfg != nil {
			showConfig(out, configFile, cfg)
		}
		outputValidationResult(out, result, validateJSON)
		if !result.Valid {
			os.Exit(1)
		}
	},
}

func configLocations() []string {
	return []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/heliumbot/config.yaml"),
		"/etc/heliumbot/config.yaml",
	}
}

func findConfigFile() string {
	for _, loc := range configLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// validateFile loads configFile and collects errors and warnings. The
// config is returned only when it loaded.
func validateFile(configFile string) (ValidationResult, *core.Config) {
	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Config: configFile,
			Errors: []string{err.Error()},
		}, nil
	}

	result := ValidationResult{
		Valid:  true,
		Config: configFile,
		Bots:   cfg.EnabledBots(),
		Cities: len(cfg.Cities),
	}
	if !cfg.ChatLog.Disabled {
		result.ChatLog = cfg.ChatLog.File
	}

	if _, err := core.BuildRouter(cfg); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	if len(result.Bots) == 0 {
		result.Errors = append(result.Errors, "No bots are enabled - at least one bot must be enabled")
	}
	result.Warnings = validateConfigDetails(cfg)
	result.Valid = len(result.Errors) == 0
	return result, cfg
}

func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if !cfg.Security.WhitelistEnabled {
		warnings = append(warnings, "Whitelist is disabled - anyone in a joined channel can run commands")
	}

	for _, name := range cfg.EnabledBots() {
		b := cfg.Bots[name]
		switch name {
		case "discord", "telegram":
			if b.Token == "" {
				warnings = append(warnings, fmt.Sprintf("Bot '%s' is enabled but has no token configured", name))
			}
		default:
			if b.AppID == "" || b.AppSecret == "" {
				warnings = append(warnings, fmt.Sprintf("Bot '%s' is enabled but has no app credentials configured", name))
			}
		}
	}

	if cfg.ChatLog.Disabled {
		warnings = append(warnings, "Chat log is disabled")
	}

	return warnings
}

func showConfig(out io.Writer, configFile string, cfg *core.Config) {
	fmt.Fprintf(out, "✓ Configuration loaded: %s\n\n", configFile)
	fmt.Fprintf(out, "Command prefix: %s\n", cfg.CommandPrefix)
	fmt.Fprintf(out, "Helium API: %s (timeout %s)\n", cfg.APIs.HeliumURL, cfg.APITimeout())
	fmt.Fprintf(out, "Pagination: %d chars, cards up to %d items\n", cfg.Pagination.PageSize, cfg.Pagination.ListThreshold)

	names := make([]string, 0, len(cfg.Bots))
	for name := range cfg.Bots {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "\nBots (%d):\n", len(names))
	for _, name := range names {
		status := "disabled"
		if cfg.Bots[name].Enabled {
			status = "enabled"
		}
		fmt.Fprintf(out, "  - %s: %s\n", name, status)
	}

	cities := make([]string, 0, len(cfg.Cities))
	for name := range cfg.Cities {
		cities = append(cities, name)
	}
	sort.Strings(cities)
	fmt.Fprintf(out, "\nCities (%d):\n", len(cities))
	for _, name := range cities {
		p := cfg.Cities[name]
		fmt.Fprintf(out, "  - %s: %.6f, %.6f\n", name, p.Lat, p.Lon)
	}
	fmt.Fprintln(out)
}

func outputValidationResult(out io.Writer, result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(out, "{\"error\": \"failed to marshal json: %v\"}\n", err)
			return
		}
		fmt.Fprintln(out, string(output))
		return
	}

	if result.Valid {
		fmt.Fprintln(out, "✓ Configuration is valid")
		fmt.Fprintf(out, "  - Config: %s\n", result.Config)
		fmt.Fprintf(out, "  - Bots enabled: %d\n", len(result.Bots))
		fmt.Fprintf(out, "  - Cities: %d\n", result.Cities)
		if result.ChatLog != "" {
			fmt.Fprintf(out, "  - Chat log: %s\n", result.ChatLog)
		}
	} else {
		fmt.Fprintln(out, "❌ Configuration validation failed:")
		fmt.Fprintln(out, "\nErrors:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", errMsg)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\n⚠️  Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "", "Configuration file path")
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show full configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
