package analyze_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/quakeset/internal/analyze"
	"github.com/temirov/quakeset/internal/catalog"
)

const (
	analysisCatalogFileNameConstant = "catalog.csv"
	statisticsFileNameConstant      = "statistics.yaml"
	bValueFileNameConstant          = "b_value.txt"
	estimateToleranceConstant       = 1e-9
	statisticsLogMessageConstant    = "statistics computed"
	analyzedEventsLogFieldName      = "analyzed_events"
)

func TestEstimateBValue(testInstance *testing.T) {
	magnitudes := []float64{3.5, 4.0, 4.5, 5.0}
	minimumMagnitude := 3.5

	estimate, estimateError := analyze.EstimateBValue(magnitudes, minimumMagnitude)
	require.NoError(testInstance, estimateError)

	meanMagnitude := (3.5 + 4.0 + 4.5 + 5.0) / 4.0
	expectedBValue := math.Log10(math.E) / (meanMagnitude - minimumMagnitude)
	expectedUncertainty := 2.3 * expectedBValue / math.Sqrt(4.0)

	require.Equal(testInstance, 4, estimate.EventCount)
	require.InDelta(testInstance, minimumMagnitude, estimate.MinimumMagnitude, estimateToleranceConstant)
	require.InDelta(testInstance, expectedBValue, estimate.BValue, estimateToleranceConstant)
	require.InDelta(testInstance, expectedUncertainty, estimate.Uncertainty, estimateToleranceConstant)
}

func TestEstimateBValueRequiresEnoughEvents(testInstance *testing.T) {
	_, estimateError := analyze.EstimateBValue([]float64{4.0}, 3.5)
	require.Error(testInstance, estimateError)

	_, thresholdError := analyze.EstimateBValue([]float64{3.0, 3.1, 3.2}, 5.0)
	require.Error(testInstance, thresholdError)
}

func TestComputeStatisticsFiltersBelowMinimumMagnitude(testInstance *testing.T) {
	events := []catalog.Event{
		{OccurrenceTime: time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 2.5, DepthKilometers: 8.0},
		{OccurrenceTime: time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 3.5, DepthKilometers: 10.0},
		{OccurrenceTime: time.Date(2006, time.June, 1, 0, 0, 0, 0, time.UTC), Magnitude: 4.5, DepthKilometers: 14.0},
		{OccurrenceTime: time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 5.5, DepthKilometers: 6.0},
	}

	statistics := analyze.ComputeStatistics(events, analyze.Options{})

	require.Equal(testInstance, 4, statistics.TotalEvents)
	require.Equal(testInstance, 3, statistics.AnalyzedEvents)
	require.InDelta(testInstance, 3.5, statistics.MagnitudeMinimum, estimateToleranceConstant)
	require.InDelta(testInstance, 5.5, statistics.MagnitudeMaximum, estimateToleranceConstant)
	require.InDelta(testInstance, 6.0, statistics.DepthMinimumKilometers, estimateToleranceConstant)
	require.InDelta(testInstance, 14.0, statistics.DepthMaximumKilometers, estimateToleranceConstant)
	require.Equal(testInstance, map[int]int{2006: 2, 2009: 1}, statistics.YearlyCounts)
	require.Equal(testInstance, time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC), statistics.DateRangeStart)
	require.Equal(testInstance, time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC), statistics.DateRangeEnd)
	require.NotEmpty(testInstance, statistics.MagnitudeBinCounts)
}

func TestAnalyzeWritesArtifacts(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()

	events := []catalog.Event{
		{Identifier: "EQ_000001", OccurrenceTime: time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 3.6, DepthKilometers: 10.0, SampleWeight: 1, Method: catalog.MethodReal, FoldIndex: catalog.UnassignedFoldIndex},
		{Identifier: "EQ_000002", OccurrenceTime: time.Date(2007, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 4.1, DepthKilometers: 12.0, SampleWeight: 1, Method: catalog.MethodReal, FoldIndex: catalog.UnassignedFoldIndex},
		{Identifier: "EQ_000003", OccurrenceTime: time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 4.8, DepthKilometers: 9.0, SampleWeight: 1, Method: catalog.MethodReal, FoldIndex: catalog.UnassignedFoldIndex},
	}
	catalogPath := filepath.Join(workingDirectory, analysisCatalogFileNameConstant)
	require.NoError(testInstance, catalog.WriteCatalog(catalogPath, events))

	statisticsPath := filepath.Join(workingDirectory, statisticsFileNameConstant)
	bValuePath := filepath.Join(workingDirectory, bValueFileNameConstant)

	service, serviceError := analyze.NewService(nil)
	require.NoError(testInstance, serviceError)

	statistics, analyzeError := service.Analyze(analyze.Options{
		InputPath:            catalogPath,
		StatisticsOutputPath: statisticsPath,
		BValueOutputPath:     bValuePath,
	})
	require.NoError(testInstance, analyzeError)
	require.Equal(testInstance, 3, statistics.AnalyzedEvents)

	require.FileExists(testInstance, statisticsPath)

	bValueContent, readError := os.ReadFile(bValuePath)
	require.NoError(testInstance, readError)
	require.NotEmpty(testInstance, bValueContent)
}

func TestAnalyzeLogsComputedStatistics(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()

	events := []catalog.Event{
		{Identifier: "EQ_000001", OccurrenceTime: time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 3.6, DepthKilometers: 10.0, SampleWeight: 1, Method: catalog.MethodReal, FoldIndex: catalog.UnassignedFoldIndex},
		{Identifier: "EQ_000002", OccurrenceTime: time.Date(2007, time.January, 1, 0, 0, 0, 0, time.UTC), Magnitude: 4.1, DepthKilometers: 12.0, SampleWeight: 1, Method: catalog.MethodReal, FoldIndex: catalog.UnassignedFoldIndex},
	}
	catalogPath := filepath.Join(workingDirectory, analysisCatalogFileNameConstant)
	require.NoError(testInstance, catalog.WriteCatalog(catalogPath, events))

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	service, serviceError := analyze.NewService(zap.New(observedCore))
	require.NoError(testInstance, serviceError)

	_, analyzeError := service.Analyze(analyze.Options{InputPath: catalogPath})
	require.NoError(testInstance, analyzeError)

	statisticsEntries := observedLogs.FilterMessage(statisticsLogMessageConstant).All()
	require.Len(testInstance, statisticsEntries, 1)
	require.EqualValues(testInstance, 2, statisticsEntries[0].ContextMap()[analyzedEventsLogFieldName])
}
