package analytics

import (
	"testing"
	"time"

	"github.com/staysight/staysight/internal/listing"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func price(v float64) *float64 { return &v }

func fixtureTable() *listing.Table {
	return listing.NewTable([]listing.Listing{
		{ID: 1, Name: "Beach flat", HostName: "Ana", Neighbourhood: "Copacabana", RoomType: "Entire home/apt",
			Price: price(500), NumberOfReviews: 10, LastReview: date(2024, 3, 15), MinimumNights: 2},
		{ID: 2, Name: "Small room", HostName: "Bruno", Neighbourhood: "Copacabana", RoomType: "Private room",
			Price: price(700), NumberOfReviews: 5, LastReview: date(2024, 1, 5), MinimumNights: 1},
		{ID: 3, Name: "Hill house", HostName: "Ana", Neighbourhood: "Leblon", RoomType: "Entire home/apt",
			Price: nil, NumberOfReviews: 0, LastReview: nil, MinimumNights: 3},
		{ID: 4, Name: "Harbour loft", HostName: "", Neighbourhood: "Santa Teresa", RoomType: "Private room",
			Price: price(300), NumberOfReviews: 8, LastReview: date(2024, 6, 1), MinimumNights: 2},
	})
}

func TestCriteriaValidation(t *testing.T) {
	tests := []struct {
		name    string
		dates   *DateRange
		prices  PriceRange
		wantErr bool
	}{
		{"valid full", nil, PriceRange{Min: 0, Max: 1000}, false},
		{"valid dates", &DateRange{Min: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Max: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}, PriceRange{Max: 100}, false},
		{"price min over max", nil, PriceRange{Min: 500, Max: 100}, true},
		{"date min after max", &DateRange{Min: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Max: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, PriceRange{Max: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCriteria(tt.dates, All, All, tt.prices)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCriteria error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterDefaultsSelectPricedRows(t *testing.T) {
	table := fixtureTable()
	rows, err := Filter(table, DefaultCriteria(table))
	if err != nil {
		t.Fatal(err)
	}
	// Listing 3 has a missing price, and the price predicate always fails on
	// missing prices.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, l := range rows {
		if l.Price == nil {
			t.Errorf("listing %d with missing price passed the price predicate", l.ID)
		}
	}
}

func TestFilterPreservesSourceOrder(t *testing.T) {
	table := fixtureTable()
	rows, err := Filter(table, DefaultCriteria(table))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].ID < rows[i-1].ID {
			t.Fatalf("rows out of source order: %d before %d", rows[i-1].ID, rows[i].ID)
		}
	}
}

func TestFilterDatePredicate(t *testing.T) {
	table := fixtureTable()
	c := DefaultCriteria(table)
	c.DateRange = &DateRange{
		Min: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Max: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	rows, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, l := range rows {
		if l.LastReview == nil {
			t.Errorf("listing %d with missing review date passed an active date filter", l.ID)
		}
	}
	// Boundary is inclusive: listing 4 reviewed exactly on Max.
	if rows[1].ID != 4 {
		t.Errorf("expected listing 4 at the inclusive upper bound, got %d", rows[1].ID)
	}
}

func TestFilterMissingDatesIncludedWithoutNarrowing(t *testing.T) {
	table := fixtureTable()
	c := DefaultCriteria(table)
	// Widen the price range so the missing-price row is the only exclusion
	// candidate, then drop the price floor below everything.
	c.PriceRange = PriceRange{Min: 0, Max: 10000}

	rows, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range rows {
		if l.ID == 3 {
			t.Error("listing 3 has a missing price and must not pass")
		}
	}

	// A nil DateRange must not exclude the never-reviewed listing from the
	// date predicate itself.
	if !c.matchDate(table.Rows()[2]) {
		t.Error("nil date range should pass listings with missing review dates")
	}
}

func TestFilterCategoricalPredicates(t *testing.T) {
	table := fixtureTable()

	c := DefaultCriteria(table)
	c.Neighbourhood = "Copacabana"
	rows, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("neighbourhood filter: got %d rows, want 2", len(rows))
	}

	c = DefaultCriteria(table)
	c.RoomType = "Private room"
	rows, err = Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("room type filter: got %d rows, want 2", len(rows))
	}

	// Case-sensitive exact match.
	c.RoomType = "private room"
	rows, err = Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("case-insensitive match leaked %d rows", len(rows))
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	table := fixtureTable()
	c := DefaultCriteria(table)
	c.Neighbourhood = "Copacabana"

	first, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("re-applying criteria changed the result: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("row %d differs between applications", i)
		}
	}
}

func TestFilterNarrowingIsMonotone(t *testing.T) {
	table := fixtureTable()
	c := DefaultCriteria(table)

	wide, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}

	// Shrink the price range step by step; the match count must never grow.
	// Drop the floor first so every step keeps the range well-formed.
	c.PriceRange.Min = 0
	prev := len(wide)
	for _, max := range []float64{600, 400, 200, 50} {
		c.PriceRange.Max = max
		rows, err := Filter(table, c)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) > prev {
			t.Fatalf("narrowing to max=%v grew the subset: %d > %d", max, len(rows), prev)
		}
		prev = len(rows)
	}
}

func TestFilterEmptyResultIsValid(t *testing.T) {
	table := fixtureTable()
	c := DefaultCriteria(table)
	c.Neighbourhood = "Nowhere"

	rows, err := Filter(table, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}
