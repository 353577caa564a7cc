package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"igapi/internal/api"
	"igapi/pkg/auth"
	"igapi/pkg/config"
	"igapi/pkg/instagram"
	"igapi/pkg/logger"
	"igapi/pkg/ratelimit"
	"igapi/pkg/scraper"
)

var (
	serveHost    string
	servePort    int
	serveAccount string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until interrupted.

Stories need a logged-in Instagram session. It is taken from
instagram.session_id, IGAPI_SESSION_ID, or a session stored with
'igapi auth login'. Without one the server runs anonymously.`,
	Example: `  igapi serve
  igapi serve --port 9000 --account myaccount`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default 0.0.0.0)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default 8000)")
	serveCmd.Flags().StringVar(&serveAccount, "account", "", "stored Instagram session to use")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(map[string]interface{}{
		"host":    serveHost,
		"port":    servePort,
		"account": serveAccount,
	})
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	if err := resolveSession(&cfg.Instagram, log); err != nil {
		return err
	}

	client := instagram.NewClient(cfg, log)
	handler := api.NewHandler(scraper.New(client, log), log)

	var limiter *ratelimit.Keyed
	if rpm := cfg.API.RequestsPerMinute; rpm > 0 {
		limiter = ratelimit.NewKeyed(func() ratelimit.Limiter {
			return ratelimit.NewSlidingWindow(rpm, time.Minute)
		})
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(handler, api.Options{
			Prefix:      cfg.Server.APIPrefix,
			APIKey:      cfg.API.APIKey,
			CORSOrigins: cfg.API.CORSOrigins,
			Limiter:     limiter,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          stdlog.New(log.GetZerolog(), "", 0),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if limiter != nil {
		go pruneLimiter(ctx, limiter, log)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.LogComponentStart(log, "http", map[string]interface{}{
			"addr":           srv.Addr,
			"prefix":         cfg.Server.APIPrefix,
			"logged_in":      client.LoggedIn(),
			"client_rpm":     cfg.API.RequestsPerMinute,
			"api_key":        cfg.API.APIKey != "",
			"upstream_rpm":   cfg.RateLimit.RequestsPerMinute,
			"upstream_retry": cfg.RateLimit.MaxRetries,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.LogComponentStop(log, "http", "signal received")
	return nil
}

// resolveSession fills the Instagram session from the credential stores.
// Only an explicitly named account that cannot be found is fatal.
func resolveSession(cfg *config.InstagramConfig, log logger.Logger) error {
	if cfg.SessionID != "" {
		return nil
	}

	manager, err := auth.DefaultManager()
	if err != nil {
		log.WithError(err).Warn("credential stores unavailable")
		if cfg.Account != "" {
			return fmt.Errorf("cannot load account %q: %w", cfg.Account, err)
		}
		return nil
	}

	if err := manager.Resolve(cfg); err != nil {
		if cfg.Account != "" {
			return fmt.Errorf("cannot load account %q: %w", cfg.Account, err)
		}
		log.Info("no Instagram session configured, stories will be empty")
	}
	return nil
}

func pruneLimiter(ctx context.Context, limiter *ratelimit.Keyed, log logger.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(); n > 0 {
				log.DebugWithFields("pruned idle client limiters", map[string]interface{}{
					"removed":   n,
					"remaining": limiter.Len(),
				})
			}
		}
	}
}
