package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/staysight/staysight/internal/analytics"
)

func sampleDashboard() analytics.Dashboard {
	return analytics.Dashboard{
		TopPricedNeighbourhoods: []analytics.Entry{
			{Category: "Copacabana", Value: 600},
			{Category: "Leblon", Value: 480.5},
		},
		ReviewedGeography: []analytics.GeoPoint{
			{Latitude: -22.96, Longitude: -43.17, Name: "Beach flat", NumberOfReviews: 12},
		},
	}
}

func TestBuildPromptCarriesAggregateOnly(t *testing.T) {
	prompt, err := BuildPrompt(SectionTopPriced, sampleDashboard())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "Copacabana: 600.00") {
		t.Errorf("prompt missing aggregate value:\n%s", prompt)
	}
	if !strings.Contains(prompt, "at most 5 lines") {
		t.Error("prompt should bound the answer length")
	}
	// The geography points belong to a different section and must not leak
	// into this payload.
	if strings.Contains(prompt, "Beach flat") {
		t.Error("prompt includes data outside the requested aggregate")
	}
}

func TestBuildPromptEmptyAggregate(t *testing.T) {
	prompt, err := BuildPrompt(SectionTopHosts, analytics.Dashboard{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "no data matched") {
		t.Errorf("empty aggregate should be stated explicitly:\n%s", prompt)
	}
}

func TestBuildPromptUnknownSection(t *testing.T) {
	if _, err := BuildPrompt(Section("bogus"), analytics.Dashboard{}); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestBuildPromptGeographyTruncates(t *testing.T) {
	d := analytics.Dashboard{}
	for i := 0; i < 40; i++ {
		d.ReviewedGeography = append(d.ReviewedGeography, analytics.GeoPoint{Name: "p", NumberOfReviews: 1})
	}
	prompt, err := BuildPrompt(SectionGeography, d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "and 20 more") {
		t.Errorf("geography payload should stay bounded:\n%s", prompt)
	}
}

func TestNarrateSendsPromptAndTrims(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			received = req.Contents[0].Parts[0].Text
		}
		_ = json.NewEncoder(w).Encode(okBody("  a tidy analysis \n"))
	}))
	defer srv.Close()

	n := NewNarrator(NewClientWithBaseURL("k", "m", time.Second, 1, time.Millisecond, time.Millisecond, srv.URL))
	got, err := n.Narrate(context.Background(), SectionTopPriced, sampleDashboard())
	if err != nil {
		t.Fatalf("Narrate returned error: %v", err)
	}
	if got != "a tidy analysis" {
		t.Errorf("got %q; want trimmed text", got)
	}
	if !strings.Contains(received, "Copacabana") {
		t.Error("server never received the aggregate payload")
	}
}
