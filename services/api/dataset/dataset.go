package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// Metric identifies one of the four measured quantities.
type Metric string

const (
	MetricMassBalance     Metric = "mass_balance"
	MetricThicknessChange Metric = "thickness_change"
	MetricLength          Metric = "length"
	MetricArea            Metric = "area"
)

// Metrics lists the four metrics in dashboard display order.
var Metrics = []Metric{MetricMassBalance, MetricThicknessChange, MetricLength, MetricArea}

// SentinelYear is the placeholder first-measurement year for glaciers with no
// series data at all. It keeps them sorting last and failing the default
// min-year filter gracefully instead of breaking numeric comparisons.
const SentinelYear = 2020

// earthRadiusMeters is the WGS84 equatorial radius used by the EPSG:3857
// Web Mercator projection.
const earthRadiusMeters = 6378137.0

// Glacier is one monitored site from the WGMS entity table.
type Glacier struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	PoliticalUnit    string  `json:"political_unit"`
	SpecificLocation string  `json:"specific_location,omitempty"`
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lon"`
	MercatorX        float64 `json:"mercator_x"`
	MercatorY        float64 `json:"mercator_y"`

	PrimaryClassification  Code `json:"primary_classification"`
	Form                   Code `json:"form"`
	FrontalCharacteristics Code `json:"frontal_characteristics"`

	LowestElevation  *float64 `json:"lowest_elevation,omitempty"`
	HighestElevation *float64 `json:"highest_elevation,omitempty"`

	FirstMeasurementYear int `json:"first_measurement_year"`
	YearsOfMeasurement   int `json:"years_of_measurement"`

	HasMassBalance     bool `json:"has_mass_balance"`
	HasThicknessChange bool `json:"has_thickness_change"`
	HasLength          bool `json:"has_length"`
	HasArea            bool `json:"has_area"`

	Reference        string `json:"reference,omitempty"`
	SponsoringAgency string `json:"sponsoring_agency,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// HasMetric reports whether the glacier has at least one recorded point for
// the given metric.
func (g Glacier) HasMetric(m Metric) bool {
	switch m {
	case MetricMassBalance:
		return g.HasMassBalance
	case MetricThicknessChange:
		return g.HasThicknessChange
	case MetricLength:
		return g.HasLength
	case MetricArea:
		return g.HasArea
	default:
		return false
	}
}

// SeriesPoint is one measurement of one metric for one glacier in one year.
// ReferenceYear is only set for thickness change, where Value is the change
// accumulated since that year.
type SeriesPoint struct {
	GlacierID     int     `json:"glacier_id"`
	Year          int     `json:"year"`
	ReferenceYear int     `json:"reference_year,omitempty"`
	Value         float64 `json:"value"`
}

// Tables holds the five tables produced by the offline ETL, as handed to the
// store by a loader. Glacier rows carry only source columns; derived fields
// (availability flags, first year, years of measurement, projected X/Y) are
// filled in by NewStore.
type Tables struct {
	Glaciers        []Glacier
	MassBalance     []SeriesPoint
	ThicknessChange []SeriesPoint
	Length          []SeriesPoint
	Area            []SeriesPoint
}

// Store holds the immutable in-memory dataset shared read-only by the filter
// and selection pipelines. It is built once at startup and never mutated.
type Store struct {
	glaciers []Glacier
	byID     map[int]int
	series   map[Metric]map[int][]SeriesPoint

	// duplicates counts the (glacier, year) rows dropped per metric during load.
	duplicates map[Metric]int
}

// NewStore builds the store from raw tables: validates join keys, deduplicates
// (glacier, year) rows per metric keeping the first occurrence, sorts each
// series by year, and derives the per-glacier summary fields.
func NewStore(t Tables, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		glaciers:   make([]Glacier, len(t.Glaciers)),
		byID:       make(map[int]int, len(t.Glaciers)),
		series:     make(map[Metric]map[int][]SeriesPoint, len(Metrics)),
		duplicates: make(map[Metric]int, len(Metrics)),
	}

	copy(s.glaciers, t.Glaciers)
	sort.Slice(s.glaciers, func(i, j int) bool { return s.glaciers[i].ID < s.glaciers[j].ID })
	for i, g := range s.glaciers {
		if _, ok := s.byID[g.ID]; ok {
			return nil, fmt.Errorf("duplicate glacier id %d in entity table", g.ID)
		}
		s.byID[g.ID] = i
	}

	raw := map[Metric][]SeriesPoint{
		MetricMassBalance:     t.MassBalance,
		MetricThicknessChange: t.ThicknessChange,
		MetricLength:          t.Length,
		MetricArea:            t.Area,
	}
	for _, m := range Metrics {
		grouped, dropped, err := s.groupSeries(m, raw[m])
		if err != nil {
			return nil, err
		}
		s.series[m] = grouped
		s.duplicates[m] = dropped
		if dropped > 0 {
			logger.Warn("dropped duplicate series points", "metric", string(m), "count", dropped)
		}
	}

	projection := s2.NewMercatorProjection(math.Pi * earthRadiusMeters)
	for i := range s.glaciers {
		g := &s.glaciers[i]
		g.PrimaryClassification = g.PrimaryClassification.normalize()
		g.Form = g.Form.normalize()
		g.FrontalCharacteristics = g.FrontalCharacteristics.normalize()

		projected := projection.FromLatLng(s2.LatLngFromDegrees(g.Latitude, g.Longitude))
		g.MercatorX = projected.X
		g.MercatorY = projected.Y

		s.deriveSummary(g)
	}

	return s, nil
}

// groupSeries buckets points by glacier id, rejecting rows whose id is not in
// the entity table and dropping repeated years (first occurrence in table
// order wins). Each bucket is sorted by year ascending.
func (s *Store) groupSeries(m Metric, points []SeriesPoint) (map[int][]SeriesPoint, int, error) {
	grouped := make(map[int][]SeriesPoint)
	seen := make(map[int]map[int]bool)
	dropped := 0

	for _, p := range points {
		if _, ok := s.byID[p.GlacierID]; !ok {
			return nil, 0, fmt.Errorf("%s row references unknown glacier id %d", m, p.GlacierID)
		}
		years := seen[p.GlacierID]
		if years == nil {
			years = make(map[int]bool)
			seen[p.GlacierID] = years
		}
		if years[p.Year] {
			dropped++
			continue
		}
		years[p.Year] = true
		grouped[p.GlacierID] = append(grouped[p.GlacierID], p)
	}

	for id := range grouped {
		slice := grouped[id]
		sort.Slice(slice, func(i, j int) bool { return slice[i].Year < slice[j].Year })
	}
	return grouped, dropped, nil
}

// deriveSummary fills in the availability flags, the distinct-year count, and
// the first measurement year (sentinel 2020 when the glacier has no data).
func (s *Store) deriveSummary(g *Glacier) {
	years := make(map[int]bool)
	first := 0
	for _, m := range Metrics {
		slice := s.series[m][g.ID]
		for _, p := range slice {
			years[p.Year] = true
			if first == 0 || p.Year < first {
				first = p.Year
			}
		}
		has := len(slice) > 0
		switch m {
		case MetricMassBalance:
			g.HasMassBalance = has
		case MetricThicknessChange:
			g.HasThicknessChange = has
		case MetricLength:
			g.HasLength = has
		case MetricArea:
			g.HasArea = has
		}
	}

	g.YearsOfMeasurement = len(years)
	if first == 0 {
		first = SentinelYear
	}
	g.FirstMeasurementYear = first
}

// Glaciers returns the entity table sorted by id. The slice is shared and
// must be treated as read-only.
func (s *Store) Glaciers() []Glacier {
	return s.glaciers
}

// Glacier looks up a single site by id.
func (s *Store) Glacier(id int) (Glacier, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Glacier{}, false
	}
	return s.glaciers[i], true
}

// Series returns the points of one metric for one glacier, sorted by year
// ascending. An empty slice means the glacier has no data for that metric.
func (s *Store) Series(m Metric, id int) []SeriesPoint {
	return s.series[m][id]
}

// Len returns the number of glaciers in the store.
func (s *Store) Len() int {
	return len(s.glaciers)
}

// Duplicates reports how many duplicate (glacier, year) rows were dropped per
// metric during load. Non-zero values are upstream data-quality defects.
func (s *Store) Duplicates() map[Metric]int {
	return s.duplicates
}
