package dataset

import (
	"fmt"
	"math"
)

// notAvailable is the presentation fallback for absent fields.
const notAvailable = "N/A"

// maxReferenceLength caps the reference citation shown in the detail panel.
// Presentation contract only; the stored field is never mutated.
const maxReferenceLength = 100

// Detail is the formatted detail panel for one glacier. All fields are
// display-ready strings except the id.
type Detail struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	SpecificLocation string `json:"specific_location"`
	PoliticalUnit    string `json:"political_unit"`
	ElevationRange   string `json:"elevation_range"`
	LatLong          string `json:"lat_long"`
	Reference        string `json:"reference"`
	SponsoringAgency string `json:"sponsoring_agency"`
	Remarks          string `json:"remarks"`
}

// SelectionResult pairs the detail panel with the four time-series slices for
// the resolved glacier. A slice may be empty; that is an expected result, not
// an error.
type SelectionResult struct {
	Detail Detail                   `json:"detail"`
	Series map[Metric][]SeriesPoint `json:"series"`
}

// Resolve maps a selected glacier id to its detail panel and series slices.
// A nil or unknown id falls back to defaultID: the dashboard always shows
// something. The only error case is a defaultID missing from the dataset,
// which is a configuration defect callers should catch at startup.
func Resolve(s *Store, defaultID int, selectedID *int) (SelectionResult, error) {
	id := defaultID
	if selectedID != nil {
		if _, ok := s.Glacier(*selectedID); ok {
			id = *selectedID
		}
	}

	g, ok := s.Glacier(id)
	if !ok {
		return SelectionResult{}, fmt.Errorf("default glacier id %d not in dataset", id)
	}

	series := make(map[Metric][]SeriesPoint, len(Metrics))
	for _, m := range Metrics {
		slice := s.Series(m, g.ID)
		if slice == nil {
			slice = []SeriesPoint{}
		}
		series[m] = slice
	}

	return SelectionResult{Detail: formatDetail(g), Series: series}, nil
}

func formatDetail(g Glacier) Detail {
	return Detail{
		ID:               g.ID,
		Name:             textOrNA(g.Name),
		SpecificLocation: textOrNA(g.SpecificLocation),
		PoliticalUnit:    textOrNA(g.PoliticalUnit),
		ElevationRange:   formatElevationRange(g.LowestElevation, g.HighestElevation),
		LatLong:          fmt.Sprintf("%.2f, %.2f", g.Latitude, g.Longitude),
		Reference:        truncateReference(textOrNA(g.Reference)),
		SponsoringAgency: textOrNA(g.SponsoringAgency),
		Remarks:          textOrNA(g.Remarks),
	}
}

// formatElevationRange renders "<low> to <high>" with each side independently
// falling back to N/A when the value is absent or not a number.
func formatElevationRange(low, high *float64) string {
	return elevationOrNA(low) + " to " + elevationOrNA(high)
}

func elevationOrNA(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return notAvailable
	}
	return fmt.Sprintf("%.0f", *v)
}

func truncateReference(ref string) string {
	if len(ref) > maxReferenceLength {
		return ref[:maxReferenceLength] + "..."
	}
	return ref
}

func textOrNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
