package report_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/report"
)

const (
	validatorSubtestNameTemplateConstant = "%d_%s"
	testCaseConsistentDocumentMessage    = "consistent document passes"
	testCaseMethodTotalsMessageConstant  = "method totals mismatch is reported"
	testCaseEventTotalsMessageConstant   = "event totals mismatch is reported"
	testCaseDistributionMethodMessage    = "distribution column mismatch is reported"
	testCaseDistributionTotalMessage     = "distribution total mismatch is reported"
	testCaseNegativeFoldMessageConstant  = "negative fold count is reported"
	boundaryMagnitudeValueConstant       = 3.0
	aboveRangeMagnitudeValueConstant     = 8.5
	binnedMagnitudeValueConstant         = 4.5
	testCaseFoldTotalsMessageConstant    = "fold totals above total are reported"
	testCaseFoldWindowMessageConstant    = "inverted fold window is reported"
	testCasePeriodOrderMessageConstant   = "inverted period is reported"
)

func consistentDocument() report.Document {
	return report.BuildDocument(fixtureEvents(), catalog.DefaultFoldWindows())
}

func TestValidate(testInstance *testing.T) {
	testCases := []struct {
		name             string
		mutateDocument   func(document *report.Document)
		expectedCode     string
		expectViolations bool
	}{
		{
			name:             testCaseConsistentDocumentMessage,
			mutateDocument:   func(document *report.Document) {},
			expectViolations: false,
		},
		{
			name: testCaseMethodTotalsMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.Methods[0].EventCount++
			},
			expectedCode:     report.ViolationCodeMethodTotals,
			expectViolations: true,
		},
		{
			name: testCaseEventTotalsMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.RealEvents++
			},
			expectedCode:     report.ViolationCodeEventTotals,
			expectViolations: true,
		},
		{
			name: testCaseDistributionMethodMessage,
			mutateDocument: func(document *report.Document) {
				document.Distribution.Counts[1][0]++
			},
			expectedCode:     report.ViolationCodeDistributionMethod,
			expectViolations: true,
		},
		{
			name: testCaseDistributionTotalMessage,
			mutateDocument: func(document *report.Document) {
				document.Distribution.Counts[1][0]++
				document.RealEvents++
			},
			expectedCode:     report.ViolationCodeDistributionTotal,
			expectViolations: true,
		},
		{
			name: testCaseNegativeFoldMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.Folds[2].EventCount = -1
			},
			expectedCode:     report.ViolationCodeNegativeFoldCount,
			expectViolations: true,
		},
		{
			name: testCaseFoldTotalsMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.Folds[0].EventCount += 100
			},
			expectedCode:     report.ViolationCodeFoldTotals,
			expectViolations: true,
		},
		{
			name: testCaseFoldWindowMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.Folds[3].StartYear = document.Folds[3].EndYear + 1
			},
			expectedCode:     report.ViolationCodeFoldWindowOrder,
			expectViolations: true,
		},
		{
			name: testCasePeriodOrderMessageConstant,
			mutateDocument: func(document *report.Document) {
				document.PeriodStart = document.PeriodEnd.Add(time.Hour)
			},
			expectedCode:     report.ViolationCodePeriodOrder,
			expectViolations: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(validatorSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			document := consistentDocument()
			testCase.mutateDocument(&document)

			violations := report.Validate(document)
			if !testCase.expectViolations {
				require.Nil(testInstance, violations)
				return
			}

			require.NotEmpty(testInstance, violations)

			violationCodes := make([]string, 0, len(violations))
			for _, violation := range violations {
				violationCodes = append(violationCodes, violation.Code)
				require.NotEmpty(testInstance, violation.Description)
			}
			require.Contains(testInstance, violationCodes, testCase.expectedCode)
		})
	}
}

func TestValidateAcceptsUnbinnedMagnitudes(testInstance *testing.T) {
	unbinnedBoundaryEvents := []catalog.Event{
		{
			Identifier:     "EQ_000101",
			OccurrenceTime: time.Date(2004, time.June, 1, 8, 0, 0, 0, time.UTC),
			Magnitude:      boundaryMagnitudeValueConstant,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			LogEnergy:      catalog.ComputeLogEnergy(boundaryMagnitudeValueConstant),
			FoldIndex:      0,
		},
		{
			Identifier:     "EQ_000102",
			OccurrenceTime: time.Date(2010, time.July, 2, 9, 0, 0, 0, time.UTC),
			Magnitude:      aboveRangeMagnitudeValueConstant,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			LogEnergy:      catalog.ComputeLogEnergy(aboveRangeMagnitudeValueConstant),
			FoldIndex:      2,
		},
		{
			Identifier:     "EQ_000103",
			OccurrenceTime: time.Date(2019, time.August, 3, 10, 0, 0, 0, time.UTC),
			Magnitude:      binnedMagnitudeValueConstant,
			SampleWeight:   catalog.DefaultSampleWeight,
			Method:         catalog.MethodReal,
			LogEnergy:      catalog.ComputeLogEnergy(binnedMagnitudeValueConstant),
			FoldIndex:      5,
		},
	}

	document := report.BuildDocument(unbinnedBoundaryEvents, catalog.DefaultFoldWindows())
	require.Nil(testInstance, report.Validate(document))

	parsedDocument, parseError := report.Parse(report.Render(document))
	require.NoError(testInstance, parseError)
	require.Nil(testInstance, report.Validate(parsedDocument))
}
