// Package analytics implements the filtering-and-aggregation pipeline:
// user-selected criteria are applied to the canonical table as a conjunction
// of typed predicates, and a fixed set of grouped aggregates is computed
// from the filtered subset.
package analytics

import (
	"fmt"
	"time"

	"github.com/staysight/staysight/internal/listing"
)

// All selects every value for a categorical filter.
const All = "ALL"

// DateRange is an inclusive last-review date window.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// PriceRange is an inclusive nightly-price window.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Criteria is the full set of user-selected filter predicates. A nil
// DateRange means the date filter was left at its default full span; only a
// narrowed selection carries a range, so listings with a missing last-review
// date pass the date predicate exactly when no narrowing occurred.
type Criteria struct {
	DateRange     *DateRange `json:"date_range,omitempty"`
	Neighbourhood string     `json:"neighbourhood"`
	RoomType      string     `json:"room_type"`
	PriceRange    PriceRange `json:"price_range"`
}

// NewCriteria builds and validates a Criteria. Invalid bounds indicate a
// caller bug and are rejected rather than silently reordered.
func NewCriteria(dates *DateRange, neighbourhood, roomType string, prices PriceRange) (Criteria, error) {
	c := Criteria{
		DateRange:     dates,
		Neighbourhood: neighbourhood,
		RoomType:      roomType,
		PriceRange:    prices,
	}
	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Validate checks that every range is well-formed.
func (c Criteria) Validate() error {
	if c.DateRange != nil && c.DateRange.Max.Before(c.DateRange.Min) {
		return fmt.Errorf("invalid date range: min %s is after max %s",
			c.DateRange.Min.Format("2006-01-02"), c.DateRange.Max.Format("2006-01-02"))
	}
	if c.PriceRange.Min > c.PriceRange.Max {
		return fmt.Errorf("invalid price range: min %.2f exceeds max %.2f",
			c.PriceRange.Min, c.PriceRange.Max)
	}
	return nil
}

// Matches reports whether a single listing satisfies all four predicates.
func (c Criteria) Matches(l listing.Listing) bool {
	return c.matchDate(l) && c.matchNeighbourhood(l) && c.matchRoomType(l) && c.matchPrice(l)
}

func (c Criteria) matchDate(l listing.Listing) bool {
	if c.DateRange == nil {
		return true
	}
	if l.LastReview == nil {
		// An active date filter has nothing to compare against.
		return false
	}
	d := *l.LastReview
	return !d.Before(c.DateRange.Min) && !d.After(c.DateRange.Max)
}

func (c Criteria) matchNeighbourhood(l listing.Listing) bool {
	return c.Neighbourhood == All || l.Neighbourhood == c.Neighbourhood
}

func (c Criteria) matchRoomType(l listing.Listing) bool {
	return c.RoomType == All || l.RoomType == c.RoomType
}

func (c Criteria) matchPrice(l listing.Listing) bool {
	if l.Price == nil {
		return false
	}
	return *l.Price >= c.PriceRange.Min && *l.Price <= c.PriceRange.Max
}

// Filter returns the source-ordered subset of the table satisfying the
// criteria. The table is never mutated; an empty result is valid.
func Filter(table *listing.Table, c Criteria) ([]listing.Listing, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rows := table.Rows()
	out := make([]listing.Listing, 0, len(rows))
	for _, l := range rows {
		if c.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// DefaultCriteria selects everything: full price span of the table, all
// neighbourhoods and room types, and no date narrowing.
func DefaultCriteria(table *listing.Table) Criteria {
	min, max, ok := table.PriceBounds()
	if !ok {
		min, max = 0, 0
	}
	return Criteria{
		Neighbourhood: All,
		RoomType:      All,
		PriceRange:    PriceRange{Min: min, Max: max},
	}
}
