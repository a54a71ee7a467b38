package dataset

// DataRequirement constrains one availability flag.
type DataRequirement int

const (
	// Any places no constraint on the flag.
	Any DataRequirement = iota
	// RequirePresent matches only glaciers that have the metric.
	RequirePresent
	// RequireAbsent matches only glaciers without the metric. The dashboard UI
	// never produces it, but the matching semantics support it.
	RequireAbsent
)

// Predicate is one ephemeral set of filter constraints, built fresh from
// widget state on every interaction. An empty allowed-code slice means
// "no filter", not "exclude everything".
type Predicate struct {
	MaxFirstMeasurementYear int
	MinYearsOfMeasurement   int

	PrimaryClassifications []Code
	Forms                  []Code
	FrontalCharacteristics []Code

	MassBalance     DataRequirement
	ThicknessChange DataRequirement
	Length          DataRequirement
	Area            DataRequirement
}

// DefaultPredicate returns the dashboard's initial widget state: sliders at
// their permissive ends, every dropdown empty, every checkbox unchecked.
func DefaultPredicate() Predicate {
	return Predicate{MaxFirstMeasurementYear: SentinelYear}
}

// FilteredResult is the outcome of applying a predicate: the matching subset
// plus the headline statistics shown above the map. EarliestYear is nil for an
// empty subset; it never reports the internal 2020 sentinel as a real year.
type FilteredResult struct {
	Subset       []Glacier `json:"subset"`
	Count        int       `json:"count"`
	EarliestYear *int      `json:"earliest_year"`
	CountryCount int       `json:"country_count"`
}

// Filter applies the predicate to the entity table. Pure: identical inputs
// yield identical outputs, and the subset preserves the input order.
func Filter(glaciers []Glacier, p Predicate) FilteredResult {
	subset := make([]Glacier, 0, len(glaciers))
	countries := make(map[string]bool)
	var earliest *int

	for _, g := range glaciers {
		if !p.Matches(g) {
			continue
		}
		subset = append(subset, g)
		countries[g.PoliticalUnit] = true
		if earliest == nil || g.FirstMeasurementYear < *earliest {
			year := g.FirstMeasurementYear
			earliest = &year
		}
	}

	return FilteredResult{
		Subset:       subset,
		Count:        len(subset),
		EarliestYear: earliest,
		CountryCount: len(countries),
	}
}

// Matches reports whether a single glacier satisfies the predicate. Threshold
// comparisons are inclusive.
func (p Predicate) Matches(g Glacier) bool {
	if g.FirstMeasurementYear > p.MaxFirstMeasurementYear {
		return false
	}
	if g.YearsOfMeasurement < p.MinYearsOfMeasurement {
		return false
	}
	if !matchCodes(p.PrimaryClassifications, g.PrimaryClassification) {
		return false
	}
	if !matchCodes(p.Forms, g.Form) {
		return false
	}
	if !matchCodes(p.FrontalCharacteristics, g.FrontalCharacteristics) {
		return false
	}
	return matchRequirement(p.MassBalance, g.HasMassBalance) &&
		matchRequirement(p.ThicknessChange, g.HasThicknessChange) &&
		matchRequirement(p.Length, g.HasLength) &&
		matchRequirement(p.Area, g.HasArea)
}

// matchCodes treats an empty allowed-set as the full domain.
func matchCodes(allowed []Code, c Code) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == c {
			return true
		}
	}
	return false
}

func matchRequirement(r DataRequirement, has bool) bool {
	switch r {
	case RequirePresent:
		return has
	case RequireAbsent:
		return !has
	default:
		return true
	}
}

// DataPointCount sums, across the four series tables, the rows belonging to
// the subset. Display statistic only; recomputed per interaction, never in a
// hot loop.
func (s *Store) DataPointCount(subset []Glacier) int {
	total := 0
	for _, g := range subset {
		for _, m := range Metrics {
			total += len(s.series[m][g.ID])
		}
	}
	return total
}
