package listing

import (
	"testing"
	"time"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"150", f(150)},
		{"$150.00", f(150)},
		{"$1,250.50", f(1250.50)},
		{"  $99 ", f(99)},
		{"0", f(0)},
		{"", nil},
		{"invalid", nil},
		{"R$ 100", nil},
		{"-50", nil},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParsePrice(%q) = %v; want missing", tt.raw, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ParsePrice(%q) = missing; want %v", tt.raw, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("ParsePrice(%q) = %v; want %v", tt.raw, *got, *tt.want)
		}
	}
}

func TestParseReviewDate(t *testing.T) {
	got := ParseReviewDate("2024-06-27")
	if got == nil {
		t.Fatal("expected a date, got missing")
	}
	want := time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseReviewDate = %v; want %v", got, want)
	}

	for _, raw := range []string{"", "not-a-date", "27/06/2024", "2024-13-01"} {
		if d := ParseReviewDate(raw); d != nil {
			t.Errorf("ParseReviewDate(%q) = %v; want missing", raw, *d)
		}
	}
}

func TestNormalizeKeepsMalformedRows(t *testing.T) {
	raw := []Raw{
		{ID: "1", Name: "Ocean flat", Neighbourhood: "Copacabana", Price: "$500", NumberOfReviews: "10", LastReview: "2024-01-15"},
		{ID: "2", Name: "Hill house", Neighbourhood: "Leblon", Price: "invalid", NumberOfReviews: "not-a-number", LastReview: "bogus"},
	}

	rows := Normalize(raw)
	if len(rows) != 2 {
		t.Fatalf("Normalize dropped rows: got %d, want 2", len(rows))
	}

	good := rows[0]
	if good.Price == nil || *good.Price != 500 {
		t.Errorf("rows[0].Price = %v; want 500", good.Price)
	}
	if good.LastReview == nil {
		t.Error("rows[0].LastReview should be set")
	}

	bad := rows[1]
	if bad.Price != nil {
		t.Errorf("rows[1].Price = %v; want missing", *bad.Price)
	}
	if bad.LastReview != nil {
		t.Errorf("rows[1].LastReview = %v; want missing", *bad.LastReview)
	}
	if bad.NumberOfReviews != 0 {
		t.Errorf("rows[1].NumberOfReviews = %d; want 0", bad.NumberOfReviews)
	}
	if bad.Neighbourhood != "Leblon" {
		t.Errorf("rows[1].Neighbourhood = %q; want Leblon", bad.Neighbourhood)
	}
}

func f(v float64) *float64 { return &v }
