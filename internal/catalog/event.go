package catalog

import (
	"time"
)

const (
	logEnergyMagnitudeFactorConstant = 1.5
	logEnergyOffsetConstant          = 4.8
	// UnassignedFoldIndex marks events falling outside every configured fold window.
	UnassignedFoldIndex = -1
	// DefaultSampleWeight is the weight assigned to real catalog events.
	DefaultSampleWeight = 1.0
)

// Method identifies how an event record entered the catalog.
type Method string

// Known catalog methods. Synthetic catalogs may carry additional method
// labels; the pipeline preserves unknown labels as-is.
const (
	MethodReal      Method = "real"
	MethodBootstrap Method = "bootstrap"
	MethodPhysics   Method = "physics"
	MethodSimple    Method = "simple"
)

// Event is a single earthquake record, real or synthetic.
type Event struct {
	Identifier      string    `json:"id"`
	OccurrenceTime  time.Time `json:"time"`
	Magnitude       float64   `json:"magnitude"`
	Longitude       float64   `json:"longitude"`
	Latitude        float64   `json:"latitude"`
	DepthKilometers float64   `json:"depth_km"`
	Synthetic       bool      `json:"is_synthetic"`
	SampleWeight    float64   `json:"sample_weight"`
	Method          Method    `json:"method"`
	LogEnergy       float64   `json:"log_energy"`
	FoldIndex       int       `json:"cv_fold"`
}

// FoldWindow bounds a time-based cross-validation fold by calendar years,
// both years inclusive.
type FoldWindow struct {
	Index     int `json:"index" mapstructure:"index" yaml:"index"`
	StartYear int `json:"start_year" mapstructure:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" mapstructure:"end_year" yaml:"end_year"`
}

// Contains reports whether the provided occurrence time falls inside the window.
func (window FoldWindow) Contains(occurrenceTime time.Time) bool {
	eventYear := occurrenceTime.Year()
	return eventYear >= window.StartYear && eventYear <= window.EndYear
}

// DefaultFoldWindows returns the seven three-year fold blocks spanning the
// Marmara catalog period.
func DefaultFoldWindows() []FoldWindow {
	return []FoldWindow{
		{Index: 0, StartYear: 2003, EndYear: 2005},
		{Index: 1, StartYear: 2006, EndYear: 2008},
		{Index: 2, StartYear: 2009, EndYear: 2011},
		{Index: 3, StartYear: 2012, EndYear: 2014},
		{Index: 4, StartYear: 2015, EndYear: 2017},
		{Index: 5, StartYear: 2018, EndYear: 2020},
		{Index: 6, StartYear: 2021, EndYear: 2025},
	}
}

// AssignFoldIndex resolves the fold index for the provided occurrence time,
// returning UnassignedFoldIndex when no window matches.
func AssignFoldIndex(occurrenceTime time.Time, foldWindows []FoldWindow) int {
	for _, foldWindow := range foldWindows {
		if foldWindow.Contains(occurrenceTime) {
			return foldWindow.Index
		}
	}
	return UnassignedFoldIndex
}

// ComputeLogEnergy approximates the released energy in log10 joules for the
// provided magnitude.
func ComputeLogEnergy(magnitude float64) float64 {
	return logEnergyMagnitudeFactorConstant*magnitude + logEnergyOffsetConstant
}

// FoldEventCount pairs a fold window with the number of events inside it.
type FoldEventCount struct {
	Index      int `json:"index" yaml:"index"`
	StartYear  int `json:"start_year" yaml:"start_year"`
	EndYear    int `json:"end_year" yaml:"end_year"`
	EventCount int `json:"event_count" yaml:"event_count"`
}

// DatasetMetrics summarizes an assembled catalog.
type DatasetMetrics struct {
	TotalEvents               int              `json:"total_earthquakes" yaml:"total_earthquakes"`
	RealEvents                int              `json:"real_events" yaml:"real_events"`
	SyntheticEvents           int              `json:"synthetic_events" yaml:"synthetic_events"`
	MethodCounts              map[string]int   `json:"method_counts" yaml:"method_counts"`
	MagnitudeMinimum          float64          `json:"magnitude_min" yaml:"magnitude_min"`
	MagnitudeMaximum          float64          `json:"magnitude_max" yaml:"magnitude_max"`
	RealMagnitudeMaximum      float64          `json:"real_magnitude_max" yaml:"real_magnitude_max"`
	SyntheticMagnitudeMinimum float64          `json:"synthetic_magnitude_min" yaml:"synthetic_magnitude_min"`
	DateRangeStart            time.Time        `json:"date_range_start" yaml:"date_range_start"`
	DateRangeEnd              time.Time        `json:"date_range_end" yaml:"date_range_end"`
	FoldCount                 int              `json:"cv_folds" yaml:"cv_folds"`
	FoldEventCounts           []FoldEventCount `json:"fold_event_counts" yaml:"fold_event_counts"`
}
