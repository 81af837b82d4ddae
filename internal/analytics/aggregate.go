package analytics

import (
	"math"
	"sort"

	"github.com/staysight/staysight/internal/listing"
)

// TopN is the truncation applied to the ranked aggregates.
const TopN = 10

// Entry is one (category, value) pair of an aggregate result.
type Entry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// GeoPoint is one reviewed listing on the map.
type GeoPoint struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Name            string  `json:"name"`
	NumberOfReviews int     `json:"number_of_reviews"`
}

// Summary holds the three scalar metrics over the filtered subset. Nil means
// "no data": an empty subset must not be mistaken for a true zero.
type Summary struct {
	TotalReviews      *int     `json:"total_reviews"`
	MeanPrice         *float64 `json:"mean_price"`
	MeanMinimumNights *int     `json:"mean_minimum_nights"`
}

// Dashboard bundles every aggregate computed from one filtered subset.
type Dashboard struct {
	Summary                 Summary    `json:"summary"`
	TopPricedNeighbourhoods []Entry    `json:"top_priced_neighbourhoods"`
	ReviewsByNeighbourhood  []Entry    `json:"reviews_by_neighbourhood"`
	ReviewsByRoomType       []Entry    `json:"reviews_by_room_type"`
	TopHostsByReviews       []Entry    `json:"top_hosts_by_reviews"`
	ReviewedGeography       []GeoPoint `json:"reviewed_geography"`
}

// Compute derives the full dashboard from a filtered subset. An empty subset
// yields empty aggregates and nil scalars, never an error.
func Compute(rows []listing.Listing) Dashboard {
	return Dashboard{
		Summary:                 Summarize(rows),
		TopPricedNeighbourhoods: TopPricedNeighbourhoods(rows),
		ReviewsByNeighbourhood:  ReviewsByNeighbourhood(rows),
		ReviewsByRoomType:       ReviewsByRoomType(rows),
		TopHostsByReviews:       TopHostsByReviews(rows),
		ReviewedGeography:       ReviewedGeography(rows),
	}
}

// TopPricedNeighbourhoods ranks neighbourhoods by mean non-missing price,
// descending, truncated to TopN. Neighbourhoods with no priced listing are
// excluded rather than reported as NaN.
func TopPricedNeighbourhoods(rows []listing.Listing) []Entry {
	type acc struct {
		sum   float64
		count int
	}
	grouped := make(map[string]*acc)
	var order []string

	for _, l := range rows {
		if l.Neighbourhood == "" || l.Price == nil {
			continue
		}
		a, ok := grouped[l.Neighbourhood]
		if !ok {
			a = &acc{}
			grouped[l.Neighbourhood] = a
			order = append(order, l.Neighbourhood)
		}
		a.sum += *l.Price
		a.count++
	}

	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		a := grouped[key]
		entries = append(entries, Entry{Category: key, Value: a.sum / float64(a.count)})
	}
	return rankDescending(entries, TopN)
}

// ReviewsByNeighbourhood sums review counts per neighbourhood, descending,
// untruncated.
func ReviewsByNeighbourhood(rows []listing.Listing) []Entry {
	return sumReviewsBy(rows, func(l listing.Listing) string { return l.Neighbourhood }, 0)
}

// ReviewsByRoomType sums review counts per room type, descending,
// untruncated.
func ReviewsByRoomType(rows []listing.Listing) []Entry {
	return sumReviewsBy(rows, func(l listing.Listing) string { return l.RoomType }, 0)
}

// TopHostsByReviews ranks hosts by total review count, descending, truncated
// to TopN. Listings without a host name are excluded.
func TopHostsByReviews(rows []listing.Listing) []Entry {
	return sumReviewsBy(rows, func(l listing.Listing) string { return l.HostName }, TopN)
}

// sumReviewsBy groups rows by key, sums NumberOfReviews, sorts descending
// with first-encounter order breaking ties, and truncates to limit (0 = no
// truncation). Rows with an empty key are excluded from the grouping.
func sumReviewsBy(rows []listing.Listing, key func(listing.Listing) string, limit int) []Entry {
	grouped := make(map[string]float64)
	var order []string

	for _, l := range rows {
		k := key(l)
		if k == "" {
			continue
		}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] += float64(l.NumberOfReviews)
	}

	entries := make([]Entry, 0, len(order))
	for _, k := range order {
		entries = append(entries, Entry{Category: k, Value: grouped[k]})
	}
	return rankDescending(entries, limit)
}

// rankDescending sorts entries by value descending. The sort is stable so
// ties keep the first-encountered group first, and truncation happens only
// after sorting.
func rankDescending(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// ReviewedGeography passes through the coordinates of every listing with at
// least one review, in source order.
func ReviewedGeography(rows []listing.Listing) []GeoPoint {
	points := make([]GeoPoint, 0, len(rows))
	for _, l := range rows {
		if l.NumberOfReviews <= 0 {
			continue
		}
		points = append(points, GeoPoint{
			Latitude:        l.Latitude,
			Longitude:       l.Longitude,
			Name:            l.Name,
			NumberOfReviews: l.NumberOfReviews,
		})
	}
	return points
}

// Summarize computes the three scalar metrics. MeanPrice excludes missing
// prices from both numerator and denominator and is nil when no priced rows
// remain; all three are nil for an empty subset.
func Summarize(rows []listing.Listing) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	totalReviews := 0
	var priceSum float64
	priced := 0
	var nightsSum int

	for _, l := range rows {
		totalReviews += l.NumberOfReviews
		nightsSum += l.MinimumNights
		if l.Price != nil {
			priceSum += *l.Price
			priced++
		}
	}

	s := Summary{TotalReviews: &totalReviews}
	if priced > 0 {
		mean := priceSum / float64(priced)
		s.MeanPrice = &mean
	}
	meanNights := int(math.Round(float64(nightsSum) / float64(len(rows))))
	s.MeanMinimumNights = &meanNights
	return s
}
