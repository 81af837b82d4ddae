package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/staysight/staysight/internal/ai"
	cfgpkg "github.com/staysight/staysight/internal/config"
	"github.com/staysight/staysight/internal/web"
)

var (
	serveAddr        string
	serveDatasetURL  string
	serveDatasetPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Fetch the dataset and run the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			c.ListenAddr = serveAddr
		}
		if serveDatasetURL != "" {
			c.DatasetURL = serveDatasetURL
		}
		if serveDatasetPath != "" {
			c.DatasetPath = serveDatasetPath
		}

		table, err := loadTable(cmd.Context(), c)
		if err != nil {
			return err
		}

		narrator := newNarrator(c)
		if !narrator.Enabled() {
			slog.Warn("gemini_api_key not set; narrative endpoint disabled")
		}

		srv, err := web.NewServer(table, narrator)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}

		fmt.Printf("staysight dashboard listening on %s\n", c.ListenAddr)
		return srv.ListenAndServe(c.ListenAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDatasetURL, "dataset-url", "", "dataset URL (overrides config)")
	serveCmd.Flags().StringVar(&serveDatasetPath, "dataset-path", "", "local dataset CSV path (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// newNarrator builds the narrative generator from configuration. Without an
// API key it is disabled, not an error.
func newNarrator(c *cfgpkg.Global) *ai.Narrator {
	client := ai.NewClient(
		c.GeminiAPIKey,
		c.GeminiModel,
		time.Duration(c.HTTPTimeoutSec)*time.Second,
		c.RetryMaxAttempts,
		time.Duration(c.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(c.RetryMaxDelayMs)*time.Millisecond,
	)
	return ai.NewNarrator(client)
}
