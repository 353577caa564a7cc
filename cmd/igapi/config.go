package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igapi/pkg/config"
	"igapi/pkg/ui"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Long: `Write the default configuration as YAML to --config, or to
~/.config/igapi/config.yaml when no path is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	ui.PrintSuccess("Configuration written")
	ui.PrintInfo("Path", path)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	shown := *cfg
	shown.Instagram.SessionID = maskSecret(shown.Instagram.SessionID)
	shown.Instagram.CSRFToken = maskSecret(shown.Instagram.CSRFToken)
	shown.API.APIKey = maskSecret(shown.API.APIKey)

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Configuration is invalid")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Printf("  - %v\n", e)
			}
		}
		return err
	}

	if cfg.Instagram.SessionID == "" && cfg.Instagram.Account == "" {
		ui.PrintWarning("No Instagram session configured, stories will be empty")
	}
	if cfg.API.APIKey == "" {
		ui.PrintWarning("No API key set, every client can call the API")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Listen", cfg.Server.Addr()+cfg.Server.APIPrefix)
	ui.PrintInfo("Upstream rate", fmt.Sprintf("%d requests/minute, %d retries", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.MaxRetries))
	ui.PrintInfo("Client rate", fmt.Sprintf("%d requests/minute", cfg.API.RequestsPerMinute))
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}
