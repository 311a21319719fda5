package prepare_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/prepare"
)

const (
	rawCatalogFileNameConstant           = "raw.csv"
	preparedCatalogFileNameConstant      = "prepared.csv"
	prepareSubtestNameTemplateConstant   = "%d_%s"
	testCaseDatetimeHeaderMessage        = "datetime header"
	testCaseSplitDateTimeHeaderMessage   = "separate date and time headers"
	testCaseDepthlessHeaderMessage       = "missing depth defaults"
	testCaseMissingTimeHeaderMessage     = "missing time columns are rejected"
	testCaseMissingMagnitudeMessage      = "missing magnitude column is rejected"
	rawDatetimeCatalogContentConstant    = "datetime,magnitude,longitude,latitude,depth_km,id\n2010-05-01 12:30:00,4.2,28.9,40.7,11.5,TK_001\n"
	rawSplitDateTimeCatalogContent       = "date,time,magnitude,longitude,latitude,depth\n2010-05-01,12:30:00,4.2,28.9,40.7,11.5\n"
	rawDepthlessCatalogContentConstant   = "datetime,magnitude,longitude,latitude\n2010-05-01 12:30:00,4.2,28.9,40.7\n"
	rawTimelessCatalogContentConstant    = "magnitude,longitude,latitude\n4.2,28.9,40.7\n"
	rawMagnitudelessCatalogContent       = "datetime,longitude,latitude\n2010-05-01 12:30:00,28.9,40.7\n"
	expectedProvidedIdentifierConstant   = "TK_001"
	expectedGeneratedIdentifierConstant  = "EQ_000001"
	prepareToleranceConstant             = 1e-9
	expectedPreparedDepthConstant        = 11.5
	customDefaultDepthKilometersConstant = 7.5
	normalizedCatalogLogMessageConstant  = "raw catalog normalized"
	totalEventsLogFieldNameConstant      = "total_events"
)

func TestPrepare(testInstance *testing.T) {
	testCases := []struct {
		name               string
		rawContent         string
		defaultDepth       float64
		expectError        bool
		expectedIdentifier string
		expectedDepth      float64
	}{
		{
			name:               testCaseDatetimeHeaderMessage,
			rawContent:         rawDatetimeCatalogContentConstant,
			expectError:        false,
			expectedIdentifier: expectedProvidedIdentifierConstant,
			expectedDepth:      expectedPreparedDepthConstant,
		},
		{
			name:               testCaseSplitDateTimeHeaderMessage,
			rawContent:         rawSplitDateTimeCatalogContent,
			expectError:        false,
			expectedIdentifier: expectedGeneratedIdentifierConstant,
			expectedDepth:      expectedPreparedDepthConstant,
		},
		{
			name:               testCaseDepthlessHeaderMessage,
			rawContent:         rawDepthlessCatalogContentConstant,
			defaultDepth:       customDefaultDepthKilometersConstant,
			expectError:        false,
			expectedIdentifier: expectedGeneratedIdentifierConstant,
			expectedDepth:      customDefaultDepthKilometersConstant,
		},
		{
			name:        testCaseMissingTimeHeaderMessage,
			rawContent:  rawTimelessCatalogContentConstant,
			expectError: true,
		},
		{
			name:        testCaseMissingMagnitudeMessage,
			rawContent:  rawMagnitudelessCatalogContent,
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(prepareSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			workingDirectory := testInstance.TempDir()
			rawCatalogPath := filepath.Join(workingDirectory, rawCatalogFileNameConstant)
			require.NoError(testInstance, os.WriteFile(rawCatalogPath, []byte(testCase.rawContent), 0o644))
			preparedCatalogPath := filepath.Join(workingDirectory, preparedCatalogFileNameConstant)

			service, serviceError := prepare.NewService(nil)
			require.NoError(testInstance, serviceError)

			summary, prepareError := service.Prepare(prepare.Options{
				InputPath:              rawCatalogPath,
				OutputPath:             preparedCatalogPath,
				DefaultDepthKilometers: testCase.defaultDepth,
			})
			if testCase.expectError {
				require.Error(testInstance, prepareError)
				return
			}

			require.NoError(testInstance, prepareError)
			require.Equal(testInstance, 1, summary.TotalEvents)
			require.InDelta(testInstance, 4.2, summary.MagnitudeMinimum, prepareToleranceConstant)

			preparedEvents, readError := catalog.ReadCatalog(preparedCatalogPath)
			require.NoError(testInstance, readError)
			require.Len(testInstance, preparedEvents, 1)

			preparedEvent := preparedEvents[0]
			require.Equal(testInstance, testCase.expectedIdentifier, preparedEvent.Identifier)
			require.InDelta(testInstance, testCase.expectedDepth, preparedEvent.DepthKilometers, prepareToleranceConstant)
			require.False(testInstance, preparedEvent.Synthetic)
			require.Equal(testInstance, catalog.MethodReal, preparedEvent.Method)
			require.InDelta(testInstance, catalog.DefaultSampleWeight, preparedEvent.SampleWeight, prepareToleranceConstant)
			require.InDelta(testInstance, catalog.ComputeLogEnergy(4.2), preparedEvent.LogEnergy, prepareToleranceConstant)
			require.Equal(testInstance, catalog.UnassignedFoldIndex, preparedEvent.FoldIndex)
		})
	}
}

func TestPrepareLogsNormalizationProgress(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	rawCatalogPath := filepath.Join(workingDirectory, rawCatalogFileNameConstant)
	require.NoError(testInstance, os.WriteFile(rawCatalogPath, []byte(rawDatetimeCatalogContentConstant), 0o644))
	preparedCatalogPath := filepath.Join(workingDirectory, preparedCatalogFileNameConstant)

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	service, serviceError := prepare.NewService(zap.New(observedCore))
	require.NoError(testInstance, serviceError)

	_, prepareError := service.Prepare(prepare.Options{
		InputPath:  rawCatalogPath,
		OutputPath: preparedCatalogPath,
	})
	require.NoError(testInstance, prepareError)

	normalizationEntries := observedLogs.FilterMessage(normalizedCatalogLogMessageConstant).All()
	require.Len(testInstance, normalizationEntries, 1)
	require.EqualValues(testInstance, 1, normalizationEntries[0].ContextMap()[totalEventsLogFieldNameConstant])
}
