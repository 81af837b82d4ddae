package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cfgpkg "github.com/staysight/staysight/internal/config"
	"github.com/staysight/staysight/internal/dataset"
	"github.com/staysight/staysight/internal/listing"
)

// loadTable acquires the dataset (local file if configured, remote CSV
// otherwise) and builds the canonical table. A failure here means the
// dashboard cannot run.
func loadTable(ctx context.Context, c *cfgpkg.Global) (*listing.Table, error) {
	loader := dataset.New(
		dataset.WithURL(c.DatasetURL),
		dataset.WithMaxRows(c.MaxRows),
		dataset.WithTimeout(time.Duration(c.HTTPTimeoutSec)*time.Second),
		dataset.WithRetry(
			c.RetryMaxAttempts,
			time.Duration(c.RetryBaseDelayMs)*time.Millisecond,
			time.Duration(c.RetryMaxDelayMs)*time.Millisecond,
		),
	)

	var (
		raw []listing.Raw
		err error
	)
	if c.DatasetPath != "" {
		slog.Info("loading dataset from file", "path", c.DatasetPath)
		raw, err = loader.LoadFile(c.DatasetPath)
	} else {
		slog.Info("fetching dataset", "url", c.DatasetURL)
		raw, err = loader.Fetch(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset unavailable: %w", err)
	}

	table := listing.NewTable(listing.Normalize(raw))
	slog.Info("dataset loaded", "listings", table.Len())
	return table, nil
}
