package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "igapi/pkg/errors"
	"igapi/pkg/instagram"
	"igapi/pkg/logger"
	"igapi/pkg/scraper"
	"igapi/pkg/textutil"
	"igapi/pkg/ui"
)

var profileJSON bool

var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Look up one profile without starting the server",
	Example: `  igapi profile instagram
  igapi profile instagram --json`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "print the profile as JSON")
}

func runProfile(cmd *cobra.Command, args []string) error {
	username := instagram.SanitizeUsername(args[0])
	if !textutil.ValidateUsername(username) {
		return fmt.Errorf("invalid username: %q", args[0])
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	// keep the card readable unless asked otherwise
	if logLevel == "" {
		cfg.Logging.Level = "warn"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	if err := resolveSession(&cfg.Instagram, log); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Instagram.Timeout)
	defer cancel()

	svc := scraper.New(instagram.NewClient(cfg, log), log)
	profile, err := svc.GetProfile(ctx, username)
	if err != nil {
		var apiErr *errs.APIError
		if errors.As(err, &apiErr) {
			ui.PrintError(apiErr.Detail)
			os.Exit(1)
		}
		return err
	}

	if profileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	fmt.Println(ui.ProfileCard(profile))
	return nil
}
