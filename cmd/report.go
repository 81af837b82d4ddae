package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/staysight/staysight/internal/ai"
	"github.com/staysight/staysight/internal/analytics"
	"github.com/staysight/staysight/internal/listing"
)

var (
	repStart         string
	repEnd           string
	repNeighbourhood string
	repRoomType      string
	repMinPrice      float64
	repMaxPrice      float64
	repNarrate       bool
	repDatasetURL    string
	repDatasetPath   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the filtered dashboard aggregates to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if repDatasetURL != "" {
			c.DatasetURL = repDatasetURL
		}
		if repDatasetPath != "" {
			c.DatasetPath = repDatasetPath
		}

		table, err := loadTable(cmd.Context(), c)
		if err != nil {
			return err
		}

		criteria, err := reportCriteria(cmd, table)
		if err != nil {
			return err
		}

		rows, err := analytics.Filter(table, criteria)
		if err != nil {
			return err
		}
		dashboard := analytics.Compute(rows)
		printDashboard(table.Len(), len(rows), dashboard)

		if repNarrate {
			narrator := newNarrator(c)
			if !narrator.Enabled() {
				return fmt.Errorf("--narrate requires gemini_api_key to be configured")
			}
			for _, section := range ai.Sections() {
				text, err := narrator.Narrate(cmd.Context(), section, dashboard)
				if err != nil {
					fmt.Printf("\n[%s] narrative unavailable: %v\n", section, err)
					continue
				}
				fmt.Printf("\n[%s]\n%s\n", section, text)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&repStart, "start", "", "earliest last-review date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&repEnd, "end", "", "latest last-review date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&repNeighbourhood, "neighbourhood", analytics.All, "neighbourhood filter")
	reportCmd.Flags().StringVar(&repRoomType, "room-type", analytics.All, "room type filter")
	reportCmd.Flags().Float64Var(&repMinPrice, "min-price", -1, "minimum nightly price")
	reportCmd.Flags().Float64Var(&repMaxPrice, "max-price", -1, "maximum nightly price")
	reportCmd.Flags().BoolVar(&repNarrate, "narrate", false, "append AI narrative per aggregate")
	reportCmd.Flags().StringVar(&repDatasetURL, "dataset-url", "", "dataset URL (overrides config)")
	reportCmd.Flags().StringVar(&repDatasetPath, "dataset-path", "", "local dataset CSV path (overrides config)")
	rootCmd.AddCommand(reportCmd)
}

// reportCriteria turns the report flags into filter criteria. Date flags
// only narrow the selection when they cut inside the dataset's own span,
// matching the dashboard's default-range semantics.
func reportCriteria(cmd *cobra.Command, table *listing.Table) (analytics.Criteria, error) {
	criteria := analytics.DefaultCriteria(table)
	criteria.Neighbourhood = repNeighbourhood
	criteria.RoomType = repRoomType

	if cmd.Flags().Changed("min-price") {
		criteria.PriceRange.Min = repMinPrice
	}
	if cmd.Flags().Changed("max-price") {
		criteria.PriceRange.Max = repMaxPrice
	}

	if repStart != "" || repEnd != "" {
		boundMin, boundMax, ok := table.DateBounds()
		start, end := boundMin, boundMax
		var err error
		if repStart != "" {
			start, err = time.Parse("2006-01-02", repStart)
			if err != nil {
				return analytics.Criteria{}, fmt.Errorf("invalid --start: %q", repStart)
			}
		}
		if repEnd != "" {
			end, err = time.Parse("2006-01-02", repEnd)
			if err != nil {
				return analytics.Criteria{}, fmt.Errorf("invalid --end: %q", repEnd)
			}
		}
		if !ok || start.After(boundMin) || end.Before(boundMax) {
			criteria.DateRange = &analytics.DateRange{Min: start, Max: end}
		}
	}

	return analytics.NewCriteria(criteria.DateRange, criteria.Neighbourhood, criteria.RoomType, criteria.PriceRange)
}

func printDashboard(total, matched int, d analytics.Dashboard) {
	sep := strings.Repeat("─", 56)

	fmt.Printf("\n%s\n  Listings report — %d of %d listings match\n%s\n", sep, matched, total, sep)

	fmt.Println("\n  Summary")
	fmt.Printf("    Total reviews       : %s\n", fmtInt(d.Summary.TotalReviews))
	fmt.Printf("    Mean price          : %s\n", fmtFloat(d.Summary.MeanPrice))
	fmt.Printf("    Mean minimum nights : %s\n", fmtInt(d.Summary.MeanMinimumNights))

	printEntries("Top 10 most expensive neighbourhoods (mean price)", d.TopPricedNeighbourhoods)
	printEntries("Reviews per neighbourhood", d.ReviewsByNeighbourhood)
	printEntries("Reviews per room type", d.ReviewsByRoomType)
	printEntries("Top 10 hosts by reviews", d.TopHostsByReviews)

	fmt.Println("\n  Reviewed listings on the map")
	if len(d.ReviewedGeography) == 0 {
		fmt.Println("    no data")
	} else {
		fmt.Printf("    %d listings with at least one review\n", len(d.ReviewedGeography))
	}
	fmt.Println()
}

func printEntries(title string, entries []analytics.Entry) {
	fmt.Printf("\n  %s\n", title)
	if len(entries) == 0 {
		fmt.Println("    no data")
		return
	}
	for i, e := range entries {
		fmt.Printf("    %2d. %-36s %12.2f\n", i+1, truncate(e.Category, 36), e.Value)
	}
}

func fmtInt(v *int) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%.2f", *v)
}

// truncate shortens a label to max runes. Neighbourhood and host names are
// frequently accented, so byte slicing would cut inside a rune.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
