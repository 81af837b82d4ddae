// Package listing defines the canonical in-memory representation of the
// short-term-rental dataset: one Listing per source row, collected into an
// immutable Table built once at startup.
package listing

import (
	"sort"
	"time"
)

// Listing is one normalized rental record. Fields that can be absent in the
// source data are pointers; nil means "no valid value" and is never the same
// as zero.
type Listing struct {
	ID                          int64      `json:"id"`
	Name                        string     `json:"name"`
	HostID                      int64      `json:"host_id"`
	HostName                    string     `json:"host_name"`
	Neighbourhood               string     `json:"neighbourhood"`
	Latitude                    float64    `json:"latitude"`
	Longitude                   float64    `json:"longitude"`
	RoomType                    string     `json:"room_type"`
	Price                       *float64   `json:"price"`
	MinimumNights               int        `json:"minimum_nights"`
	NumberOfReviews             int        `json:"number_of_reviews"`
	LastReview                  *time.Time `json:"last_review"`
	ReviewsPerMonth             *float64   `json:"reviews_per_month"`
	CalculatedHostListingsCount int        `json:"calculated_host_listings_count"`
	Availability365             int        `json:"availability_365"`
}

// Table holds the canonical dataset. It is constructed once and shared
// read-only across interactions; nothing in this package or its consumers
// mutates it after NewTable returns.
type Table struct {
	rows []Listing
}

// NewTable builds a canonical table from normalized listings.
func NewTable(rows []Listing) *Table {
	return &Table{rows: rows}
}

// Rows returns the underlying listings in source order. Callers must treat
// the slice as read-only.
func (t *Table) Rows() []Listing {
	return t.rows
}

// Len returns the number of listings.
func (t *Table) Len() int {
	return len(t.rows)
}

// Neighbourhoods returns the distinct neighbourhood names, sorted.
func (t *Table) Neighbourhoods() []string {
	return t.distinct(func(l Listing) string { return l.Neighbourhood })
}

// RoomTypes returns the distinct room types, sorted.
func (t *Table) RoomTypes() []string {
	return t.distinct(func(l Listing) string { return l.RoomType })
}

func (t *Table) distinct(key func(Listing) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range t.rows {
		k := key(l)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PriceBounds returns the minimum and maximum non-missing price.
// ok is false when no listing has a valid price.
func (t *Table) PriceBounds() (min, max float64, ok bool) {
	for _, l := range t.rows {
		if l.Price == nil {
			continue
		}
		p := *l.Price
		if !ok {
			min, max = p, p
			ok = true
			continue
		}
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, ok
}

// DateBounds returns the earliest and latest non-missing last-review date.
// ok is false when no listing has ever been reviewed.
func (t *Table) DateBounds() (min, max time.Time, ok bool) {
	for _, l := range t.rows {
		if l.LastReview == nil {
			continue
		}
		d := *l.LastReview
		if !ok {
			min, max = d, d
			ok = true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, ok
}
