// Package dataset fetches and parses the source listings CSV. The dataset is
// acquired once at startup; a fetch failure means the dashboard cannot run.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/staysight/staysight/internal/listing"
)

// DefaultURL points at the Inside Airbnb visualisations export for
// Rio de Janeiro.
const DefaultURL = "https://data.insideairbnb.com/brazil/rj/rio-de-janeiro/2024-06-27/visualisations/listings.csv"

// Loader downloads and parses the listings CSV.
type Loader struct {
	httpClient  *http.Client
	url         string
	maxRows     int
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithURL overrides the dataset URL (also used by tests).
func WithURL(url string) Option {
	return func(l *Loader) {
		if url != "" {
			l.url = url
		}
	}
}

// WithMaxRows caps how many data rows are parsed; 0 means unlimited.
func WithMaxRows(n int) Option {
	return func(l *Loader) { l.maxRows = n }
}

// WithRetry configures the download retry strategy.
func WithRetry(maxAttempts int, baseDelay, maxDelay time.Duration) Option {
	return func(l *Loader) {
		if maxAttempts > 0 {
			l.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			l.baseDelay = baseDelay
		}
		if maxDelay > 0 {
			l.maxDelay = maxDelay
		}
	}
}

// WithTimeout sets the HTTP client timeout for the download.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.httpClient.Timeout = d
		}
	}
}

// New creates a Loader with default URL, timeout, and retry strategy.
func New(opts ...Option) *Loader {
	l := &Loader{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		url:         DefaultURL,
		maxAttempts: 3,
		baseDelay:   500 * time.Millisecond,
		maxDelay:    4 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch downloads the CSV and parses it into raw rows. Transient failures
// (network errors, 429, 5xx) are retried with exponential backoff.
func (l *Loader) Fetch(ctx context.Context) ([]listing.Raw, error) {
	var lastErr error
	delay := l.baseDelay

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		rows, err := l.fetchOnce(ctx)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == l.maxAttempts {
			break
		}
		slog.Warn("dataset fetch failed, retrying",
			"attempt", attempt, "max_attempts", l.maxAttempts, "delay", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > l.maxDelay {
			delay = l.maxDelay
		}
	}
	return nil, fmt.Errorf("fetch dataset from %s: %w", l.url, lastErr)
}

func (l *Loader) fetchOnce(ctx context.Context) ([]listing.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &statusError{code: resp.StatusCode}
	}

	return l.parse(resp.Body)
}

// LoadFile parses a local CSV file, for offline runs and tests.
func (l *Loader) LoadFile(path string) ([]listing.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return l.parse(f)
}

// parse reads the header row, maps columns by name, and converts each data
// row into a raw listing. Short rows are tolerated; a row that cannot be
// read at all is skipped, not fatal.
func (l *Loader) parse(r io.Reader) ([]listing.Raw, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := idx["id"]; !ok {
		return nil, fmt.Errorf("unexpected dataset header: %v", header)
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []listing.Raw
	skipped := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			skipped++
			continue
		}
		rows = append(rows, listing.Raw{
			ID:                          field(rec, "id"),
			Name:                        field(rec, "name"),
			HostID:                      field(rec, "host_id"),
			HostName:                    field(rec, "host_name"),
			Neighbourhood:               field(rec, "neighbourhood"),
			Latitude:                    field(rec, "latitude"),
			Longitude:                   field(rec, "longitude"),
			RoomType:                    field(rec, "room_type"),
			Price:                       field(rec, "price"),
			MinimumNights:               field(rec, "minimum_nights"),
			NumberOfReviews:             field(rec, "number_of_reviews"),
			LastReview:                  field(rec, "last_review"),
			ReviewsPerMonth:             field(rec, "reviews_per_month"),
			CalculatedHostListingsCount: field(rec, "calculated_host_listings_count"),
			Availability365:             field(rec, "availability_365"),
		})
		if l.maxRows > 0 && len(rows) >= l.maxRows {
			break
		}
	}
	if skipped > 0 {
		slog.Warn("skipped unreadable dataset rows", "count", skipped)
	}
	return rows, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || (se.code >= 500 && se.code <= 599)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
