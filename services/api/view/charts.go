package view

import (
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

// ChartKind discriminates the fixed rendering strategies the dashboard knows.
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartArea     ChartKind = "area"
	ChartSegments ChartKind = "segments"
	ChartNoData   ChartKind = "no_data"
)

// ChartPoint is one (year, value) sample of a single-point-per-year series.
type ChartPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Segment is an interval-valued measurement drawn as an independent two-point
// line at constant height. Segments are never joined to each other, even when
// one ends in the year the next begins.
type Segment struct {
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`
	Value     float64 `json:"value"`
}

// ChartSpec is the declarative chart description handed to the rendering sink.
// Exactly one of Points/Segments/Message is populated, according to Kind.
type ChartSpec struct {
	Kind       ChartKind    `json:"kind"`
	Horizontal bool         `json:"horizontal,omitempty"`
	Points     []ChartPoint `json:"points,omitempty"`
	Segments   []Segment    `json:"segments,omitempty"`
	Message    string       `json:"message,omitempty"`
}

const noDataMessage = "No Available Data"

// NoDataPlaceholder returns the stable spec shown when a metric has no rows
// for the selected glacier. Visually distinct from an empty chart.
func NoDataPlaceholder() ChartSpec {
	return ChartSpec{Kind: ChartNoData, Message: noDataMessage}
}

// MassBalanceChart renders annual balances [mm w.e.] as vertical bars ordered
// by year. A single-point series renders natively as one bar.
func MassBalanceChart(slice []dataset.SeriesPoint) ChartSpec {
	if len(slice) == 0 {
		return NoDataPlaceholder()
	}
	return ChartSpec{Kind: ChartBar, Points: chartPoints(slice)}
}

// LengthChart renders lengths [km] as horizontal bars ordered by year, the
// orientation the deployed dashboard uses for this metric.
func LengthChart(slice []dataset.SeriesPoint) ChartSpec {
	if len(slice) == 0 {
		return NoDataPlaceholder()
	}
	return ChartSpec{Kind: ChartBar, Horizontal: true, Points: chartPoints(slice)}
}

// AreaChart renders areas [1000 m²] as a filled area series ordered by year.
func AreaChart(slice []dataset.SeriesPoint) ChartSpec {
	if len(slice) == 0 {
		return NoDataPlaceholder()
	}
	return ChartSpec{Kind: ChartArea, Points: chartPoints(slice)}
}

// ThicknessChangeChart renders thickness changes [mm] as independent two-point
// segments from the reference year to the measurement year. Each measurement
// covers an interval, so drawing it as a point series would misstate the data.
func ThicknessChangeChart(slice []dataset.SeriesPoint) ChartSpec {
	if len(slice) == 0 {
		return NoDataPlaceholder()
	}
	segments := make([]Segment, 0, len(slice))
	for _, p := range slice {
		segments = append(segments, Segment{
			StartYear: p.ReferenceYear,
			EndYear:   p.Year,
			Value:     p.Value,
		})
	}
	return ChartSpec{Kind: ChartSegments, Segments: segments}
}

// Charts builds all four chart specs from a selection result, keyed by metric.
func Charts(sel dataset.SelectionResult) map[dataset.Metric]ChartSpec {
	return map[dataset.Metric]ChartSpec{
		dataset.MetricMassBalance:     MassBalanceChart(sel.Series[dataset.MetricMassBalance]),
		dataset.MetricThicknessChange: ThicknessChangeChart(sel.Series[dataset.MetricThicknessChange]),
		dataset.MetricLength:          LengthChart(sel.Series[dataset.MetricLength]),
		dataset.MetricArea:            AreaChart(sel.Series[dataset.MetricArea]),
	}
}

func chartPoints(slice []dataset.SeriesPoint) []ChartPoint {
	points := make([]ChartPoint, 0, len(slice))
	for _, p := range slice {
		points = append(points, ChartPoint{Year: p.Year, Value: p.Value})
	}
	return points
}
