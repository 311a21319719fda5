package analyze

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	insufficientEventsMessageConstant      = "not enough events above the minimum magnitude to estimate a b-value"
	statisticsMarshalErrorTemplateConstant = "unable to encode statistics: %w"
	statisticsWriteErrorTemplateConstant   = "unable to write statistics file %s: %w"
	statisticsComputedMessageConstant      = "statistics computed"
	bValueWriteErrorTemplateConstant       = "unable to write b-value file %s: %w"
	artifactFilePermissionsOctal           = 0o644
	bValueUncertaintyFactorConstant        = 2.3
	minimumEventsForEstimateConstant       = 2
	floatBitSizeConstant                   = 64
	bValueFormatPrecisionConstant          = -1
	analysisBinStepConstant                = 0.5
	analysisBinUpperEdgeConstant           = 7.0
	// DefaultMinimumMagnitude filters the catalog before analysis.
	DefaultMinimumMagnitude = 3.0
	// DefaultCompletenessMagnitude is the threshold whose estimate is persisted.
	DefaultCompletenessMagnitude = 3.5
)

var errInsufficientEvents = errors.New(insufficientEventsMessageConstant)

// DefaultBValueThresholds returns the minimum magnitudes examined during analysis.
func DefaultBValueThresholds() []float64 {
	return []float64{3.0, 3.5, 4.0, 4.5}
}

// Options describes one analysis run.
type Options struct {
	InputPath             string
	StatisticsOutputPath  string
	BValueOutputPath      string
	MinimumMagnitude      float64
	CompletenessMagnitude float64
	BValueThresholds      []float64
}

// BValueEstimate is a Gutenberg-Richter b-value maximum-likelihood estimate.
type BValueEstimate struct {
	MinimumMagnitude float64 `yaml:"minimum_magnitude"`
	BValue           float64 `yaml:"b_value"`
	Uncertainty      float64 `yaml:"uncertainty"`
	EventCount       int     `yaml:"event_count"`
}

// MagnitudeBinCount pairs a half-magnitude bin with its event count.
type MagnitudeBinCount struct {
	Range      catalog.MagnitudeRange `yaml:"range"`
	EventCount int                    `yaml:"event_count"`
}

// Statistics aggregates the analysis results persisted as YAML.
type Statistics struct {
	TotalEvents            int                 `yaml:"total_events"`
	AnalyzedEvents         int                 `yaml:"analyzed_events"`
	MinimumMagnitude       float64             `yaml:"minimum_magnitude"`
	MagnitudeMinimum       float64             `yaml:"magnitude_min"`
	MagnitudeMaximum       float64             `yaml:"magnitude_max"`
	DepthMinimumKilometers float64             `yaml:"depth_min_km"`
	DepthMaximumKilometers float64             `yaml:"depth_max_km"`
	DateRangeStart         time.Time           `yaml:"date_range_start"`
	DateRangeEnd           time.Time           `yaml:"date_range_end"`
	YearlyCounts           map[int]int         `yaml:"yearly_counts"`
	MagnitudeBinCounts     []MagnitudeBinCount `yaml:"magnitude_bin_counts"`
	BValueEstimates        []BValueEstimate    `yaml:"b_value_estimates"`
	CompletenessMagnitude  float64             `yaml:"completeness_magnitude"`
	CompletenessBValue     float64             `yaml:"completeness_b_value"`
}

// Service computes catalog statistics.
type Service struct {
	logger *zap.Logger
}

// NewService constructs an analysis service with the provided logger.
func NewService(logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}, nil
}

// Analyze loads a canonical catalog, computes statistics over events at or
// above the minimum magnitude, and writes the statistics and b-value artifacts.
func (service *Service) Analyze(options Options) (Statistics, error) {
	resolvedOptions := resolveOptions(options)

	events, readError := catalog.ReadCatalog(resolvedOptions.InputPath)
	if readError != nil {
		return Statistics{}, readError
	}

	statistics := ComputeStatistics(events, resolvedOptions)

	service.logger.Debug(
		statisticsComputedMessageConstant,
		zap.String(logFieldInputPathConstant, resolvedOptions.InputPath),
		zap.Int(logFieldTotalEventsConstant, statistics.TotalEvents),
		zap.Int(logFieldAnalyzedEventsConstant, statistics.AnalyzedEvents),
	)

	if len(resolvedOptions.StatisticsOutputPath) > 0 {
		if writeError := writeStatisticsArtifact(resolvedOptions.StatisticsOutputPath, statistics); writeError != nil {
			return Statistics{}, writeError
		}
	}

	if len(resolvedOptions.BValueOutputPath) > 0 {
		if writeError := writeBValueArtifact(resolvedOptions.BValueOutputPath, statistics.CompletenessBValue); writeError != nil {
			return Statistics{}, writeError
		}
	}

	return statistics, nil
}

// ComputeStatistics derives catalog statistics without touching the filesystem.
func ComputeStatistics(events []catalog.Event, options Options) Statistics {
	resolvedOptions := resolveOptions(options)

	statistics := Statistics{
		TotalEvents:           len(events),
		MinimumMagnitude:      resolvedOptions.MinimumMagnitude,
		CompletenessMagnitude: resolvedOptions.CompletenessMagnitude,
		YearlyCounts:          map[int]int{},
	}

	analyzedEvents := make([]catalog.Event, 0, len(events))
	for _, event := range events {
		if event.Magnitude >= resolvedOptions.MinimumMagnitude {
			analyzedEvents = append(analyzedEvents, event)
		}
	}
	statistics.AnalyzedEvents = len(analyzedEvents)

	if len(analyzedEvents) == 0 {
		return statistics
	}

	statistics.MagnitudeMinimum = analyzedEvents[0].Magnitude
	statistics.MagnitudeMaximum = analyzedEvents[0].Magnitude
	statistics.DepthMinimumKilometers = analyzedEvents[0].DepthKilometers
	statistics.DepthMaximumKilometers = analyzedEvents[0].DepthKilometers
	statistics.DateRangeStart = analyzedEvents[0].OccurrenceTime
	statistics.DateRangeEnd = analyzedEvents[0].OccurrenceTime

	magnitudes := make([]float64, 0, len(analyzedEvents))
	for _, event := range analyzedEvents {
		magnitudes = append(magnitudes, event.Magnitude)
		statistics.YearlyCounts[event.OccurrenceTime.Year()]++

		if event.Magnitude < statistics.MagnitudeMinimum {
			statistics.MagnitudeMinimum = event.Magnitude
		}
		if event.Magnitude > statistics.MagnitudeMaximum {
			statistics.MagnitudeMaximum = event.Magnitude
		}
		if event.DepthKilometers < statistics.DepthMinimumKilometers {
			statistics.DepthMinimumKilometers = event.DepthKilometers
		}
		if event.DepthKilometers > statistics.DepthMaximumKilometers {
			statistics.DepthMaximumKilometers = event.DepthKilometers
		}
		if event.OccurrenceTime.Before(statistics.DateRangeStart) {
			statistics.DateRangeStart = event.OccurrenceTime
		}
		if event.OccurrenceTime.After(statistics.DateRangeEnd) {
			statistics.DateRangeEnd = event.OccurrenceTime
		}
	}

	analysisRanges := catalog.MagnitudeRangesFromEdges(analysisBinEdges(resolvedOptions.MinimumMagnitude))
	rangeCounts := catalog.CountEventsByRange(analyzedEvents, analysisRanges)
	for rangeIndex, magnitudeRange := range analysisRanges {
		statistics.MagnitudeBinCounts = append(statistics.MagnitudeBinCounts, MagnitudeBinCount{
			Range:      magnitudeRange,
			EventCount: rangeCounts[rangeIndex],
		})
	}

	for _, bValueThreshold := range resolvedOptions.BValueThresholds {
		estimate, estimateError := EstimateBValue(magnitudes, bValueThreshold)
		if estimateError != nil {
			continue
		}
		statistics.BValueEstimates = append(statistics.BValueEstimates, estimate)
		if bValueThreshold == resolvedOptions.CompletenessMagnitude {
			statistics.CompletenessBValue = estimate.BValue
		}
	}

	return statistics
}

// EstimateBValue computes the maximum-likelihood Gutenberg-Richter b-value for
// magnitudes at or above the provided minimum.
func EstimateBValue(magnitudes []float64, minimumMagnitude float64) (BValueEstimate, error) {
	filteredMagnitudes := make([]float64, 0, len(magnitudes))
	for _, magnitude := range magnitudes {
		if magnitude >= minimumMagnitude {
			filteredMagnitudes = append(filteredMagnitudes, magnitude)
		}
	}

	if len(filteredMagnitudes) < minimumEventsForEstimateConstant {
		return BValueEstimate{}, errInsufficientEvents
	}

	magnitudeSum := 0.0
	for _, magnitude := range filteredMagnitudes {
		magnitudeSum += magnitude
	}
	meanMagnitude := magnitudeSum / float64(len(filteredMagnitudes))

	bValue := math.Log10(math.E) / (meanMagnitude - minimumMagnitude)
	uncertainty := bValueUncertaintyFactorConstant * bValue / math.Sqrt(float64(len(filteredMagnitudes)))

	return BValueEstimate{
		MinimumMagnitude: minimumMagnitude,
		BValue:           bValue,
		Uncertainty:      uncertainty,
		EventCount:       len(filteredMagnitudes),
	}, nil
}

func resolveOptions(options Options) Options {
	resolvedOptions := options
	if resolvedOptions.MinimumMagnitude == 0 {
		resolvedOptions.MinimumMagnitude = DefaultMinimumMagnitude
	}
	if resolvedOptions.CompletenessMagnitude == 0 {
		resolvedOptions.CompletenessMagnitude = DefaultCompletenessMagnitude
	}
	if len(resolvedOptions.BValueThresholds) == 0 {
		resolvedOptions.BValueThresholds = DefaultBValueThresholds()
	}
	return resolvedOptions
}

func analysisBinEdges(minimumMagnitude float64) []float64 {
	binEdges := []float64{}
	for binEdge := minimumMagnitude; binEdge <= analysisBinUpperEdgeConstant; binEdge += analysisBinStepConstant {
		binEdges = append(binEdges, binEdge)
	}
	return binEdges
}

func writeStatisticsArtifact(statisticsPath string, statistics Statistics) error {
	encodedStatistics, marshalError := yaml.Marshal(statistics)
	if marshalError != nil {
		return fmt.Errorf(statisticsMarshalErrorTemplateConstant, marshalError)
	}

	if writeError := os.WriteFile(statisticsPath, encodedStatistics, artifactFilePermissionsOctal); writeError != nil {
		return fmt.Errorf(statisticsWriteErrorTemplateConstant, statisticsPath, writeError)
	}

	return nil
}

func writeBValueArtifact(bValuePath string, bValue float64) error {
	encodedBValue := strconv.FormatFloat(bValue, 'f', bValueFormatPrecisionConstant, floatBitSizeConstant)
	if writeError := os.WriteFile(bValuePath, []byte(encodedBValue), artifactFilePermissionsOctal); writeError != nil {
		return fmt.Errorf(bValueWriteErrorTemplateConstant, bValuePath, writeError)
	}
	return nil
}
