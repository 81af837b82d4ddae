package listing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw holds one source row exactly as it appears in the CSV, before any
// coercion. All fields are strings; the normalizer decides what is missing.
type Raw struct {
	ID                          string
	Name                        string
	HostID                      string
	HostName                    string
	Neighbourhood               string
	Latitude                    string
	Longitude                   string
	RoomType                    string
	Price                       string
	MinimumNights               string
	NumberOfReviews             string
	LastReview                  string
	ReviewsPerMonth             string
	CalculatedHostListingsCount string
	Availability365             string
}

const reviewDateLayout = "2006-01-02"

// Normalize coerces raw rows into the canonical schema. No rows are dropped:
// a field that cannot be parsed becomes missing (nil) or the zero value, and
// the row is kept.
func Normalize(raw []Raw) []Listing {
	out := make([]Listing, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeRow(r))
	}
	return out
}

func normalizeRow(r Raw) Listing {
	return Listing{
		ID:                          parseInt64(r.ID),
		Name:                        strings.TrimSpace(r.Name),
		HostID:                      parseInt64(r.HostID),
		HostName:                    strings.TrimSpace(r.HostName),
		Neighbourhood:               strings.TrimSpace(r.Neighbourhood),
		Latitude:                    parseFloat(r.Latitude),
		Longitude:                   parseFloat(r.Longitude),
		RoomType:                    strings.TrimSpace(r.RoomType),
		Price:                       ParsePrice(r.Price),
		MinimumNights:               parseInt(r.MinimumNights),
		NumberOfReviews:             parseInt(r.NumberOfReviews),
		LastReview:                  ParseReviewDate(r.LastReview),
		ReviewsPerMonth:             parseOptionalFloat(r.ReviewsPerMonth),
		CalculatedHostListingsCount: parseInt(r.CalculatedHostListingsCount),
		Availability365:             parseInt(r.Availability365),
	}
}

// ParsePrice strips currency symbols and thousands separators and parses the
// remainder as a float. Unparseable, negative, or non-finite values are
// missing, not zero.
func ParsePrice(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

// ParseReviewDate parses a last-review date. Empty or malformed strings are
// missing; there is no sentinel date.
func ParseReviewDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, err := time.Parse(reviewDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseOptionalFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(raw string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
