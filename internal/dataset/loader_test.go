package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const sampleCSV = `id,name,host_id,host_name,neighbourhood,latitude,longitude,room_type,price,minimum_nights,number_of_reviews,last_review,reviews_per_month,calculated_host_listings_count,availability_365
17878,"Very Nice 2Br in Copacabana",68997,Matthias,Copacabana,-22.96599,-43.17891,Entire home/apt,"$1,132.00",5,260,2024-05-12,2.32,3,287
25026,Beautiful studio,102840,Viviane,Leblon,-22.98405,-43.21931,Private room,,2,53,,0.47,1,0
31560,Loft by the hill,134999,Pedro,Santa Teresa,-22.91590,-43.18290,Entire home/apt,$420.00,1,0,2023-11-02,,2,120
`

func TestFetchParsesListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	loader := New(WithURL(srv.URL))
	rows, err := loader.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	if first.ID != "17878" {
		t.Errorf("ID = %q; want 17878", first.ID)
	}
	if first.Price != "$1,132.00" {
		t.Errorf("Price = %q; want raw currency string", first.Price)
	}
	if first.LastReview != "2024-05-12" {
		t.Errorf("LastReview = %q", first.LastReview)
	}

	second := rows[1]
	if second.Price != "" || second.LastReview != "" {
		t.Errorf("missing fields should stay empty: price=%q last_review=%q", second.Price, second.LastReview)
	}
}

func TestFetchRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	loader := New(WithURL(srv.URL), WithRetry(3, time.Millisecond, 10*time.Millisecond))
	rows, err := loader.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should succeed after retry: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestFetchDoesNotRetryOn404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loader := New(WithURL(srv.URL), WithRetry(3, time.Millisecond, 10*time.Millisecond))
	if _, err := loader.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 404)", got)
	}
}

func TestFetchRespectsMaxRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	loader := New(WithURL(srv.URL), WithMaxRows(2))
	rows, err := loader.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := New()
	rows, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("foo,bar\n1,2\n"))
	}))
	defer srv.Close()

	loader := New(WithURL(srv.URL))
	if _, err := loader.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for a header without an id column")
	}
}
