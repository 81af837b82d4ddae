package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/staysight/staysight/internal/ai"
	"github.com/staysight/staysight/internal/analytics"
)

const dateLayout = "2006-01-02"

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// metaResponse carries everything a filter UI needs to populate its widgets.
type metaResponse struct {
	Listings       int       `json:"listings"`
	Neighbourhoods []string  `json:"neighbourhoods"`
	RoomTypes      []string  `json:"room_types"`
	PriceMin       *float64  `json:"price_min"`
	PriceMax       *float64  `json:"price_max"`
	DateMin        *dateOnly `json:"date_min"`
	DateMax        *dateOnly `json:"date_max"`
}

// dateOnly marshals as "2006-01-02".
type dateOnly time.Time

func (d dateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(dateLayout))
}

func (d *dateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = dateOnly(t)
	return nil
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := metaResponse{
		Listings:       s.table.Len(),
		Neighbourhoods: s.table.Neighbourhoods(),
		RoomTypes:      s.table.RoomTypes(),
	}
	if min, max, ok := s.table.PriceBounds(); ok {
		resp.PriceMin, resp.PriceMax = &min, &max
	}
	if min, max, ok := s.table.DateBounds(); ok {
		dmin, dmax := dateOnly(min), dateOnly(max)
		resp.DateMin, resp.DateMax = &dmin, &dmax
	}
	apiJSON(w, resp, http.StatusOK)
}

// parseCriteria builds filter criteria from query parameters. Absent
// parameters fall back to select-all defaults. A date range identical to the
// dataset's full span is treated as no narrowing, so listings that were
// never reviewed stay included under the default selection.
func (s *Server) parseCriteria(r *http.Request) (analytics.Criteria, error) {
	q := r.URL.Query()

	neighbourhood := q.Get("neighbourhood")
	if neighbourhood == "" {
		neighbourhood = analytics.All
	}
	roomType := q.Get("room_type")
	if roomType == "" {
		roomType = analytics.All
	}

	prices := analytics.DefaultCriteria(s.table).PriceRange
	if v := q.Get("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("invalid min_price: %q", v)
		}
		prices.Min = p
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("invalid max_price: %q", v)
		}
		prices.Max = p
	}

	var dates *analytics.DateRange
	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr != "" || endStr != "" {
		boundMin, boundMax, ok := s.table.DateBounds()
		start, end := boundMin, boundMax
		var err error
		if startStr != "" {
			start, err = time.Parse(dateLayout, startStr)
			if err != nil {
				return analytics.Criteria{}, fmt.Errorf("invalid start date: %q", startStr)
			}
		}
		if endStr != "" {
			end, err = time.Parse(dateLayout, endStr)
			if err != nil {
				return analytics.Criteria{}, fmt.Errorf("invalid end date: %q", endStr)
			}
		}
		narrowed := !ok || start.After(boundMin) || end.Before(boundMax)
		if narrowed {
			dates = &analytics.DateRange{Min: start, Max: end}
		}
	}

	return analytics.NewCriteria(dates, neighbourhood, roomType, prices)
}

// dashboardResponse is the full payload for one filter interaction.
type dashboardResponse struct {
	Criteria analytics.Criteria  `json:"criteria"`
	Matched  int                 `json:"matched"`
	Data     analytics.Dashboard `json:"data"`
	Charts   []ChartConfig       `json:"charts"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	criteria, err := s.parseCriteria(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := analytics.Filter(s.table, criteria)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	dashboard := analytics.Compute(rows)
	apiJSON(w, dashboardResponse{
		Criteria: criteria,
		Matched:  len(rows),
		Data:     dashboard,
		Charts:   BuildCharts(dashboard),
	}, http.StatusOK)
}

// narrativeResponse carries the generated text for one section.
type narrativeResponse struct {
	Section   ai.Section `json:"section"`
	Narrative string     `json:"narrative"`
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.narrator.Enabled() {
		apiError(w, "narrative generation is not configured", http.StatusServiceUnavailable)
		return
	}

	section := ai.Section(r.URL.Query().Get("section"))
	if !validSection(section) {
		apiError(w, fmt.Sprintf("unknown section: %q", section), http.StatusBadRequest)
		return
	}

	criteria, err := s.parseCriteria(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := analytics.Filter(s.table, criteria)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.narrator.Narrate(r.Context(), section, analytics.Compute(rows))
	if err != nil {
		var rle *ai.RateLimitError
		if errors.As(err, &rle) {
			apiError(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		apiError(w, err.Error(), http.StatusBadGateway)
		return
	}

	apiJSON(w, narrativeResponse{Section: section, Narrative: text}, http.StatusOK)
}

func validSection(section ai.Section) bool {
	for _, s := range ai.Sections() {
		if s == section {
			return true
		}
	}
	return false
}
