package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igapi/internal/api"
	"igapi/pkg/config"
)

var (
	gitCommit = "unknown"
	buildDate = "unknown"

	configFile string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "igapi",
	Short: "HTTP API for public Instagram data",
	Long: `igapi serves public Instagram profiles, posts, comments, stories,
highlights and hashtags as JSON over HTTP.

Configuration is read from, in order of precedence:
  - command line flags
  - IGAPI_* environment variables (and a .env file)
  - .igapi.yaml or ~/.config/igapi/config.yaml
  - built-in defaults`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", api.Version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igapi.yaml or ~/.config/igapi/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.SetVersionTemplate(`igapi {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges the global flags with command specific ones
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	flags["log-level"] = logLevel
	flags["log-format"] = logFormat
	return config.Load(configFile, flags)
}
