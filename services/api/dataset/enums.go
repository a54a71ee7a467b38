package dataset

// Code is a WGMS categorical attribute code. Every categorical attribute uses
// the same closed 0-10 domain, with 10 meaning unknown/unspecified.
type Code int

const (
	CodeMin     Code = 0
	CodeMax     Code = 10
	CodeUnknown Code = 10
)

// normalize maps out-of-domain codes to CodeUnknown so that a bad source row
// degrades to "unknown" instead of silently failing every filter.
func (c Code) normalize() Code {
	if c < CodeMin || c > CodeMax {
		return CodeUnknown
	}
	return c
}

// AllCodes returns the full attribute domain, the effective allowed-set when a
// filter field is left empty.
func AllCodes() []Code {
	codes := make([]Code, 0, CodeMax-CodeMin+1)
	for c := CodeMin; c <= CodeMax; c++ {
		codes = append(codes, c)
	}
	return codes
}

// FilterOption pairs an attribute code with its display label, in the form the
// dashboard's dropdowns consume.
type FilterOption struct {
	Value Code   `json:"value"`
	Label string `json:"label"`
}

// Label catalogues from the WGMS attribute documentation.
var (
	primaryClassificationLabels = [...]string{
		"Miscellaneous",
		"Continental Ice Sheet",
		"Ice Field",
		"Ice Cap",
		"Outlet Glacier",
		"Valley Glacier",
		"Mountain Glacier",
		"Glacieret and Snowfield",
		"Ice Shelf",
		"Rock Glacier",
		"Unknown",
	}

	formLabels = [...]string{
		"Miscellaneous",
		"Compound Basins",
		"Compound Basin",
		"Simple Basin",
		"Cirque",
		"Niche",
		"Crater",
		"Ice Apron",
		"Group",
		"Remnant",
		"Unknown",
	}

	frontalCharacteristicsLabels = [...]string{
		"Miscellaneous",
		"Piedmont",
		"Expanded Foot",
		"Lobed",
		"Calving",
		"Coalescing, non-contributing",
		"Irregular, clean ice",
		"Irregular, debris-covered",
		"Single lobe, clean ice",
		"Single lobe, debris-covered",
		"Unknown",
	}
)

func options(labels [11]string) []FilterOption {
	opts := make([]FilterOption, 0, len(labels))
	for i, label := range labels {
		opts = append(opts, FilterOption{Value: Code(i), Label: label})
	}
	return opts
}

// PrimaryClassificationOptions returns the primary-classification dropdown options.
func PrimaryClassificationOptions() []FilterOption {
	return options(primaryClassificationLabels)
}

// FormOptions returns the form dropdown options.
func FormOptions() []FilterOption {
	return options(formLabels)
}

// FrontalCharacteristicOptions returns the frontal-characteristics dropdown options.
func FrontalCharacteristicOptions() []FilterOption {
	return options(frontalCharacteristicsLabels)
}
