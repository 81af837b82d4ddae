package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/staysight/staysight/internal/analytics"
)

// Section identifies which aggregate a narrative is requested for.
type Section string

const (
	SectionTopPriced   Section = "top_priced_neighbourhoods"
	SectionReviewsHood Section = "reviews_by_neighbourhood"
	SectionReviewsRoom Section = "reviews_by_room_type"
	SectionTopHosts    Section = "top_hosts_by_reviews"
	SectionGeography   Section = "reviewed_geography"
)

// Sections lists every valid narrative section.
func Sections() []Section {
	return []Section{
		SectionTopPriced,
		SectionReviewsHood,
		SectionReviewsRoom,
		SectionTopHosts,
		SectionGeography,
	}
}

var sectionTitles = map[Section]string{
	SectionTopPriced:   "Top 10 most expensive neighbourhoods by mean nightly price",
	SectionReviewsHood: "Total review count per neighbourhood",
	SectionReviewsRoom: "Total review count per room type",
	SectionTopHosts:    "Top 10 hosts by total review count",
	SectionGeography:   "Geographic scatter of listings with at least one review",
}

// datasetGlossary describes the source columns for the model, mirroring the
// published Inside Airbnb data dictionary for the visualisations export.
const datasetGlossary = "The underlying dataset is the public Inside Airbnb " +
	"listings export for Rio de Janeiro. Columns: id (listing identifier), " +
	"name (advertised property name), host_id and host_name (host identity), " +
	"neighbourhood, latitude and longitude, room_type, price (nightly price " +
	"in local currency), minimum_nights, number_of_reviews, last_review " +
	"(date of the most recent review), reviews_per_month, " +
	"calculated_host_listings_count (listings owned by the same host), and " +
	"availability_365 (days available over the next year)."

// Narrator produces narrative text for dashboard sections. It only ever
// sends already-computed aggregate values to the model, never raw rows.
type Narrator struct {
	client *Client
}

// NewNarrator wraps a Gemini client.
func NewNarrator(client *Client) *Narrator {
	return &Narrator{client: client}
}

// Enabled reports whether narratives can be generated.
func (n *Narrator) Enabled() bool {
	return n != nil && n.client.Enabled()
}

// Narrate generates an analysis of at most five lines for one section of the
// dashboard.
func (n *Narrator) Narrate(ctx context.Context, section Section, d analytics.Dashboard) (string, error) {
	prompt, err := BuildPrompt(section, d)
	if err != nil {
		return "", err
	}
	text, err := n.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("narrative for %s: %w", section, err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt renders the prompt for a section. The payload is the computed
// aggregate only, formatted as plain label/value lines, which keeps request
// size bounded regardless of how many listings matched the filters.
func BuildPrompt(section Section, d analytics.Dashboard) (string, error) {
	title, ok := sectionTitles[section]
	if !ok {
		return "", fmt.Errorf("unknown narrative section: %q", section)
	}

	var b strings.Builder
	b.WriteString("You are analyzing results from a short-term-rental analytics dashboard.\n")
	b.WriteString(datasetGlossary)
	b.WriteString("\n\nAggregate: ")
	b.WriteString(title)
	b.WriteString("\nValues (already computed from the user's filtered subset):\n")

	switch section {
	case SectionTopPriced, SectionReviewsHood, SectionReviewsRoom, SectionTopHosts:
		entries := entriesFor(section, d)
		if len(entries) == 0 {
			b.WriteString("  (no data matched the current filters)\n")
		}
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s: %.2f\n", e.Category, e.Value)
		}
	case SectionGeography:
		fmt.Fprintf(&b, "  %d reviewed listings plotted on the city map\n", len(d.ReviewedGeography))
		for i, p := range d.ReviewedGeography {
			if i == 20 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(d.ReviewedGeography)-i)
				break
			}
			fmt.Fprintf(&b, "  %s (%.5f, %.5f): %d reviews\n", p.Name, p.Latitude, p.Longitude, p.NumberOfReviews)
		}
	}

	b.WriteString("\nWrite an analysis of these results in at most 5 lines, in plain prose.")
	return b.String(), nil
}

func entriesFor(section Section, d analytics.Dashboard) []analytics.Entry {
	switch section {
	case SectionTopPriced:
		return d.TopPricedNeighbourhoods
	case SectionReviewsHood:
		return d.ReviewsByNeighbourhood
	case SectionReviewsRoom:
		return d.ReviewsByRoomType
	case SectionTopHosts:
		return d.TopHostsByReviews
	}
	return nil
}
