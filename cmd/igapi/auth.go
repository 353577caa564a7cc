package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igapi/pkg/auth"
	"igapi/pkg/ui"
)

var (
	loginSkipGuide bool
	logoutAll      bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Instagram sessions",
	Long: `Manage the Instagram session cookies igapi sends upstream.

Sessions are kept in the system keychain when available and in an
encrypted file under the igapi config directory otherwise.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store a session for an Instagram account",
	Long: `Store the sessionid and csrftoken cookies of an Instagram account.

Cookie values are read without echo.`,
	Example: `  igapi auth login
  igapi auth login myaccount --no-guide`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove a stored session",
	Example: `  igapi auth logout myaccount
  igapi auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, listCmd)

	loginCmd.Flags().BoolVar(&loginSkipGuide, "no-guide", false, "do not print cookie instructions")
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored session")
}

func runLogin(_ *cobra.Command, args []string) error {
	manager, err := auth.DefaultManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential stores: %w", err)
	}

	if !loginSkipGuide {
		auth.WriteCookieGuide(os.Stdout)
	}

	reader := bufio.NewReader(os.Stdin)

	username := ""
	if len(args) > 0 {
		username = args[0]
	}
	if username == "" {
		if username, err = prompt(reader, "Instagram username: "); err != nil {
			return err
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	if _, err := manager.Retrieve(username); err == nil {
		answer, _ := prompt(reader, fmt.Sprintf("A session for %s already exists. Replace it? (y/N): ", username))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	sessionID, err := promptSecret(reader, "sessionid: ")
	if err != nil {
		return err
	}
	csrfToken, err := promptSecret(reader, "csrftoken: ")
	if err != nil {
		return err
	}
	userAgent, err := prompt(reader, "User agent (Enter for default): ")
	if err != nil {
		return err
	}

	if !strings.Contains(sessionID, "%3A") && !strings.Contains(sessionID, ":") {
		ui.PrintWarning("sessionid does not look like an Instagram session cookie")
	}

	err = manager.Store(&auth.Session{
		Username:  username,
		SessionID: sessionID,
		CSRFToken: csrfToken,
		UserAgent: userAgent,
	})
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Stored session for %s", username))
	ui.PrintInfo("Use it with", fmt.Sprintf("igapi serve --account %s", username))
	return nil
}

func runLogout(_ *cobra.Command, args []string) error {
	manager, err := auth.DefaultManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential stores: %w", err)
	}

	if logoutAll {
		sessions, err := manager.List()
		if err != nil {
			return err
		}
		removed := 0
		for _, s := range sessions {
			if manager.Delete(s.Username) == nil {
				removed++
			}
		}
		ui.PrintSuccess(fmt.Sprintf("Removed %d session(s)", removed))
		return nil
	}

	if len(args) == 0 {
		return errors.New("specify a username or --all")
	}
	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Removed session for %s", args[0]))
	return nil
}

func runList(_ *cobra.Command, _ []string) error {
	manager, err := auth.DefaultManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential stores: %w", err)
	}

	sessions, err := manager.List()
	if err != nil {
		return err
	}

	rows := make([]ui.SessionRow, 0, len(sessions))
	for _, s := range sessions {
		m := s.Masked()
		rows = append(rows, ui.SessionRow{Username: m.Username, SessionID: m.SessionID, Modified: m.LastModified})
	}
	fmt.Println(ui.SessionTable(rows))
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func promptSecret(reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(reader, label)
	}

	fmt.Print(label)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
