package web

import (
	"math"

	"github.com/staysight/staysight/internal/analytics"
)

// City-centre coordinates for the map view (Rio de Janeiro).
const (
	mapCenterLatitude  = -22.9068
	mapCenterLongitude = -43.1729
	mapZoom            = 10
)

// ChartConfig is a render-ready chart description. The frontend draws it;
// the server never formats currency or locale.
type ChartConfig struct {
	ID        string       `json:"id"`
	ChartType string       `json:"chartType"` // "bar", "pie", "scatter_map"
	Title     string       `json:"title"`
	XAxis     string       `json:"xAxis,omitempty"`
	YAxis     string       `json:"yAxis,omitempty"`
	Points    []ChartPoint `json:"points,omitempty"`
	Map       *MapConfig   `json:"map,omitempty"`
}

// ChartPoint is a single labelled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MapConfig describes the scatter map of reviewed listings.
type MapConfig struct {
	CenterLatitude  float64              `json:"centerLatitude"`
	CenterLongitude float64              `json:"centerLongitude"`
	Zoom            int                  `json:"zoom"`
	Points          []analytics.GeoPoint `json:"points"`
}

// BuildCharts converts the computed dashboard into chart configurations,
// one per aggregate, in the order the dashboard presents them.
func BuildCharts(d analytics.Dashboard) []ChartConfig {
	return []ChartConfig{
		{
			ID:        "top_priced_neighbourhoods",
			ChartType: "bar",
			Title:     "Top 10 most expensive neighbourhoods",
			XAxis:     "Neighbourhood",
			YAxis:     "Mean price",
			Points:    toPoints(d.TopPricedNeighbourhoods),
		},
		{
			ID:        "reviews_by_neighbourhood",
			ChartType: "bar",
			Title:     "Reviews per neighbourhood",
			XAxis:     "Neighbourhood",
			YAxis:     "Reviews",
			Points:    toPoints(d.ReviewsByNeighbourhood),
		},
		{
			ID:        "reviews_by_room_type",
			ChartType: "pie",
			Title:     "Reviews per room type",
			Points:    toPoints(d.ReviewsByRoomType),
		},
		{
			ID:        "top_hosts_by_reviews",
			ChartType: "bar",
			Title:     "Top 10 hosts by reviews",
			XAxis:     "Host",
			YAxis:     "Reviews",
			Points:    toPoints(d.TopHostsByReviews),
		},
		{
			ID:        "reviewed_geography",
			ChartType: "scatter_map",
			Title:     "Reviewed listings map",
			Map: &MapConfig{
				CenterLatitude:  mapCenterLatitude,
				CenterLongitude: mapCenterLongitude,
				Zoom:            mapZoom,
				Points:          d.ReviewedGeography,
			},
		},
	}
}

func toPoints(entries []analytics.Entry) []ChartPoint {
	points := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, ChartPoint{Label: e.Category, Value: round2(e.Value)})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
