package assemble

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/snapshot"
)

const (
	unmarkedSyntheticErrorTemplateConstant = "synthetic catalog %s contains event %s without synthetic marking"
	sourceCatalogLoadedMessageConstant     = "source catalog loaded"
	logFieldCatalogPathConstant            = "catalog_path"
	metricsMarshalErrorTemplateConstant    = "unable to encode dataset metrics: %w"
	metricsWriteErrorTemplateConstant      = "unable to write dataset metrics file %s: %w"
	metricsFilePermissionsOctal            = 0o644
)

// Options describes one assembly run.
type Options struct {
	RealCatalogPath       string
	SyntheticCatalogPaths []string
	OutputPath            string
	MetricsPath           string
	SnapshotPath          string
	FoldWindows           []catalog.FoldWindow
}

// Result carries the assembled dataset and its metrics.
type Result struct {
	Events             []catalog.Event
	Metrics            catalog.DatasetMetrics
	SnapshotIdentifier string
}

// Service merges real and synthetic catalogs into the final dataset.
type Service struct {
	logger *zap.Logger
}

// NewService constructs an assembly service with the provided logger.
func NewService(logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}, nil
}

// Assemble reads the configured catalogs, labels cross-validation folds,
// computes metrics, and writes the combined catalog plus artifacts.
func (service *Service) Assemble(executionContext context.Context, options Options) (Result, error) {
	foldWindows := options.FoldWindows
	if len(foldWindows) == 0 {
		foldWindows = catalog.DefaultFoldWindows()
	}

	realEvents, realReadError := catalog.ReadCatalog(options.RealCatalogPath)
	if realReadError != nil {
		return Result{}, realReadError
	}
	service.logger.Debug(
		sourceCatalogLoadedMessageConstant,
		zap.String(logFieldCatalogPathConstant, options.RealCatalogPath),
		zap.Int(logFieldEventCountConstant, len(realEvents)),
	)

	combinedEvents := make([]catalog.Event, 0, len(realEvents))
	combinedEvents = append(combinedEvents, realEvents...)

	for _, syntheticCatalogPath := range options.SyntheticCatalogPaths {
		syntheticEvents, syntheticReadError := catalog.ReadCatalog(syntheticCatalogPath)
		if syntheticReadError != nil {
			return Result{}, syntheticReadError
		}

		for _, syntheticEvent := range syntheticEvents {
			if !syntheticEvent.Synthetic || syntheticEvent.Method == catalog.MethodReal {
				return Result{}, fmt.Errorf(unmarkedSyntheticErrorTemplateConstant, syntheticCatalogPath, syntheticEvent.Identifier)
			}
		}

		service.logger.Debug(
			sourceCatalogLoadedMessageConstant,
			zap.String(logFieldCatalogPathConstant, syntheticCatalogPath),
			zap.Int(logFieldEventCountConstant, len(syntheticEvents)),
		)

		combinedEvents = append(combinedEvents, syntheticEvents...)
	}

	for eventIndex := range combinedEvents {
		combinedEvents[eventIndex].FoldIndex = catalog.AssignFoldIndex(combinedEvents[eventIndex].OccurrenceTime, foldWindows)
	}

	metrics := ComputeMetrics(combinedEvents, foldWindows)

	if len(options.OutputPath) > 0 {
		if writeError := catalog.WriteCatalog(options.OutputPath, combinedEvents); writeError != nil {
			return Result{}, writeError
		}
	}

	if len(options.MetricsPath) > 0 {
		if writeError := writeMetricsArtifact(options.MetricsPath, metrics); writeError != nil {
			return Result{}, writeError
		}
	}

	result := Result{Events: combinedEvents, Metrics: metrics}

	if len(options.SnapshotPath) > 0 {
		snapshotIdentifier, snapshotError := service.persistSnapshot(executionContext, options.SnapshotPath, combinedEvents, metrics)
		if snapshotError != nil {
			return Result{}, snapshotError
		}
		result.SnapshotIdentifier = snapshotIdentifier
	}

	return result, nil
}

// ComputeMetrics summarizes an assembled event list.
func ComputeMetrics(events []catalog.Event, foldWindows []catalog.FoldWindow) catalog.DatasetMetrics {
	metrics := catalog.DatasetMetrics{
		TotalEvents:  len(events),
		MethodCounts: map[string]int{},
		FoldCount:    len(foldWindows),
	}

	foldEventCounts := make([]catalog.FoldEventCount, 0, len(foldWindows))
	foldCountsByIndex := map[int]int{}

	syntheticMagnitudeInitialized := false
	realMagnitudeInitialized := false

	for eventIndex, event := range events {
		metrics.MethodCounts[string(event.Method)]++

		if event.Synthetic {
			metrics.SyntheticEvents++
			if !syntheticMagnitudeInitialized || event.Magnitude < metrics.SyntheticMagnitudeMinimum {
				metrics.SyntheticMagnitudeMinimum = event.Magnitude
				syntheticMagnitudeInitialized = true
			}
		} else {
			metrics.RealEvents++
			if !realMagnitudeInitialized || event.Magnitude > metrics.RealMagnitudeMaximum {
				metrics.RealMagnitudeMaximum = event.Magnitude
				realMagnitudeInitialized = true
			}
		}

		if eventIndex == 0 {
			metrics.MagnitudeMinimum = event.Magnitude
			metrics.MagnitudeMaximum = event.Magnitude
			metrics.DateRangeStart = event.OccurrenceTime
			metrics.DateRangeEnd = event.OccurrenceTime
		} else {
			if event.Magnitude < metrics.MagnitudeMinimum {
				metrics.MagnitudeMinimum = event.Magnitude
			}
			if event.Magnitude > metrics.MagnitudeMaximum {
				metrics.MagnitudeMaximum = event.Magnitude
			}
			if event.OccurrenceTime.Before(metrics.DateRangeStart) {
				metrics.DateRangeStart = event.OccurrenceTime
			}
			if event.OccurrenceTime.After(metrics.DateRangeEnd) {
				metrics.DateRangeEnd = event.OccurrenceTime
			}
		}

		if event.FoldIndex != catalog.UnassignedFoldIndex {
			foldCountsByIndex[event.FoldIndex]++
		}
	}

	sortedFoldWindows := make([]catalog.FoldWindow, len(foldWindows))
	copy(sortedFoldWindows, foldWindows)
	sort.Slice(sortedFoldWindows, func(firstIndex, secondIndex int) bool {
		return sortedFoldWindows[firstIndex].Index < sortedFoldWindows[secondIndex].Index
	})

	for _, foldWindow := range sortedFoldWindows {
		foldEventCounts = append(foldEventCounts, catalog.FoldEventCount{
			Index:      foldWindow.Index,
			StartYear:  foldWindow.StartYear,
			EndYear:    foldWindow.EndYear,
			EventCount: foldCountsByIndex[foldWindow.Index],
		})
	}

	metrics.FoldEventCounts = foldEventCounts

	return metrics
}

func (service *Service) persistSnapshot(executionContext context.Context, snapshotPath string, events []catalog.Event, metrics catalog.DatasetMetrics) (string, error) {
	snapshotStore, openError := snapshot.OpenStore(snapshotPath)
	if openError != nil {
		return "", openError
	}
	defer snapshotStore.Close()

	return snapshotStore.SaveDataset(executionContext, events, metrics)
}

func writeMetricsArtifact(metricsPath string, metrics catalog.DatasetMetrics) error {
	encodedMetrics, marshalError := yaml.Marshal(metrics)
	if marshalError != nil {
		return fmt.Errorf(metricsMarshalErrorTemplateConstant, marshalError)
	}

	if writeError := os.WriteFile(metricsPath, encodedMetrics, metricsFilePermissionsOctal); writeError != nil {
		return fmt.Errorf(metricsWriteErrorTemplateConstant, metricsPath, writeError)
	}

	return nil
}
