package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/report"
)

const (
	expectedBootstrapDisplayNameConstant = "Bootstrap method"
	expectedPhysicsDisplayNameConstant   = "Physics-based method"
	expectedSimpleDisplayNameConstant    = "Simple method"
	expectedUnknownDisplayNameConstant   = "Hybrid method"
	unknownMethodNameConstant            = "hybrid"
	documentToleranceConstant            = 1e-9
)

func fixtureEvents() []catalog.Event {
	return []catalog.Event{
		{
			Identifier:     "EQ_000001",
			OccurrenceTime: time.Date(2004, time.March, 12, 10, 0, 0, 0, time.UTC),
			Magnitude:      4.2,
			Synthetic:      false,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			FoldIndex:      0,
		},
		{
			Identifier:     "EQ_000002",
			OccurrenceTime: time.Date(2007, time.June, 1, 0, 30, 0, 0, time.UTC),
			Magnitude:      5.1,
			Synthetic:      false,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			FoldIndex:      1,
		},
		{
			Identifier:     "SYN_BOOT_000001",
			OccurrenceTime: time.Date(2016, time.October, 3, 18, 0, 0, 0, time.UTC),
			Magnitude:      6.5,
			Synthetic:      true,
			SampleWeight:   0.3,
			Method:         catalog.MethodBootstrap,
			FoldIndex:      4,
		},
		{
			Identifier:     "SYN_PHYS_000001",
			OccurrenceTime: time.Date(2019, time.February, 20, 6, 15, 0, 0, time.UTC),
			Magnitude:      7.2,
			Synthetic:      true,
			SampleWeight:   0.1,
			Method:         catalog.MethodPhysics,
			FoldIndex:      5,
		},
	}
}

func TestBuildDocumentSummarizesEvents(testInstance *testing.T) {
	document := report.BuildDocument(fixtureEvents(), catalog.DefaultFoldWindows())

	require.Equal(testInstance, 4, document.TotalEvents)
	require.Equal(testInstance, 2, document.RealEvents)
	require.Equal(testInstance, 2, document.SyntheticEvents)

	require.Len(testInstance, document.Methods, 2)
	require.Equal(testInstance, catalog.MethodBootstrap, document.Methods[0].Method)
	require.Equal(testInstance, expectedBootstrapDisplayNameConstant, document.Methods[0].DisplayName)
	require.Equal(testInstance, 1, document.Methods[0].EventCount)
	require.InDelta(testInstance, 0.3, document.Methods[0].SampleWeight, documentToleranceConstant)
	require.Equal(testInstance, catalog.MethodPhysics, document.Methods[1].Method)
	require.Equal(testInstance, expectedPhysicsDisplayNameConstant, document.Methods[1].DisplayName)

	require.Equal(testInstance, time.Date(2004, time.March, 12, 10, 0, 0, 0, time.UTC), document.PeriodStart)
	require.Equal(testInstance, time.Date(2019, time.February, 20, 6, 15, 0, 0, time.UTC), document.PeriodEnd)

	require.Equal(testInstance, []string{"real", "bootstrap", "physics"}, document.Distribution.Methods)
	require.Len(testInstance, document.Distribution.MagnitudeRanges, 5)
	require.Equal(testInstance, [][]int{
		{0, 0, 0},
		{1, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}, document.Distribution.Counts)

	require.Len(testInstance, document.Folds, 7)
	require.Equal(testInstance, 1, document.Folds[0].EventCount)
	require.Equal(testInstance, 1, document.Folds[1].EventCount)
	require.Equal(testInstance, 0, document.Folds[2].EventCount)
	require.Equal(testInstance, 1, document.Folds[4].EventCount)
	require.Equal(testInstance, 1, document.Folds[5].EventCount)

	require.Len(testInstance, document.UsageLines, 4)
}

func TestDisplayNameForMethod(testInstance *testing.T) {
	require.Equal(testInstance, expectedBootstrapDisplayNameConstant, report.DisplayNameForMethod(catalog.MethodBootstrap))
	require.Equal(testInstance, expectedPhysicsDisplayNameConstant, report.DisplayNameForMethod(catalog.MethodPhysics))
	require.Equal(testInstance, expectedSimpleDisplayNameConstant, report.DisplayNameForMethod(catalog.MethodSimple))
	require.Equal(testInstance, expectedUnknownDisplayNameConstant, report.DisplayNameForMethod(catalog.Method(unknownMethodNameConstant)))
}

func TestMethodForDisplayNameRoundTrip(testInstance *testing.T) {
	knownMethods := []catalog.Method{catalog.MethodBootstrap, catalog.MethodPhysics, catalog.MethodSimple}
	for _, method := range knownMethods {
		require.Equal(testInstance, method, report.MethodForDisplayName(report.DisplayNameForMethod(method)))
	}

	require.Equal(testInstance, catalog.Method(unknownMethodNameConstant), report.MethodForDisplayName(expectedUnknownDisplayNameConstant))
}
