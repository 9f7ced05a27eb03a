package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sheetlog/config"
	"sheetlog/directory"
	"sheetlog/gsheets"
	"sheetlog/web"
	"sheetlog/worklog"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the signed worklog webhook receiver",
	Long: `Start the HTTP server that accepts signed POST requests on
/worklog/append and /worklog/update and applies them to the per-user
spreadsheets in the configured Drive folder.`,
	Example: `
  # Start on the configured port
  sheetlog serve

  # Start on an explicit port
  sheetlog serve --port 9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if cfg.Auth.SigningSecret == "" {
			return errors.New("auth.signing_secret (or SIGNING_SECRET) is required to serve")
		}

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		ctx := context.Background()
		client, err := gsheets.NewGoogleClient(ctx, cfg.Google.Credentials)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		dir := directory.New(client, cfg.Drive.RootFolderID, cfg.Drive.SheetsRange, logger)
		service := worklog.NewService(dir, cfg.Share.Role)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: web.NewServer(service, *cfg),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://localhost:%d\n", port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides server.port from config)")
}
