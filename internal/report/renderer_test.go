package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/quakeset/internal/catalog"
	"github.com/temirov/quakeset/internal/report"
)

const (
	expectedReportTitleLineConstant     = "# Synthetic Earthquake Dataset Report"
	expectedTotalEventsLineConstant     = "Total events: 4"
	expectedRealEventsLineConstant      = "Real events: 2"
	expectedSyntheticEventsLineConstant = "Synthetic events: 2"
	expectedBootstrapHeaderLineConstant = "1. **Bootstrap method**: 1 events"
	expectedPhysicsHeaderLineConstant   = "2. **Physics-based method**: 1 events"
	expectedBootstrapWeightLineConstant = "   - Sample weight: 0.3"
	expectedPhysicsBValueLineConstant   = "   - Based on Gutenberg-Richter relation with b-value = 0.77"
	expectedTableHeaderLineConstant     = "mag_range   real  bootstrap  physics"
	expectedTableFirstRowLineConstant   = "(3.0, 4.0]     0          0        0"
	expectedDateRangeLineConstant       = "Date range: 2004-03-12 10:00:00 to 2019-02-20 06:15:00"
	expectedFirstFoldLineConstant       = "- Fold 0 (2003-2005): 1 events"
	expectedEmptyFoldLineConstant       = "- Fold 2 (2009-2011): 0 events"
	expectedFirstUsageLineConstant      = "1. Use the `sample_weight` column to give appropriate importance to each event"
	expectedSectionHeadingCountConstant = 6
	sectionHeadingPrefixConstant        = "## "
)

func TestRenderEmitsCanonicalLayout(testInstance *testing.T) {
	document := report.BuildDocument(fixtureEvents(), catalog.DefaultFoldWindows())
	renderedReport := report.Render(document)

	expectedLines := []string{
		expectedReportTitleLineConstant,
		expectedTotalEventsLineConstant,
		expectedRealEventsLineConstant,
		expectedSyntheticEventsLineConstant,
		expectedBootstrapHeaderLineConstant,
		expectedPhysicsHeaderLineConstant,
		expectedBootstrapWeightLineConstant,
		expectedPhysicsBValueLineConstant,
		expectedTableHeaderLineConstant,
		expectedTableFirstRowLineConstant,
		expectedDateRangeLineConstant,
		expectedFirstFoldLineConstant,
		expectedEmptyFoldLineConstant,
		expectedFirstUsageLineConstant,
	}

	renderedLines := strings.Split(renderedReport, "\n")
	renderedLineSet := map[string]bool{}
	for _, renderedLine := range renderedLines {
		renderedLineSet[renderedLine] = true
	}

	for _, expectedLine := range expectedLines {
		require.True(testInstance, renderedLineSet[expectedLine], expectedLine)
	}

	headingCount := 0
	for _, renderedLine := range renderedLines {
		if strings.HasPrefix(renderedLine, sectionHeadingPrefixConstant) {
			headingCount++
		}
	}
	require.Equal(testInstance, expectedSectionHeadingCountConstant, headingCount)
}

func TestRenderParseRoundTrip(testInstance *testing.T) {
	document := report.BuildDocument(fixtureEvents(), catalog.DefaultFoldWindows())
	renderedReport := report.Render(document)

	parsedDocument, parseError := report.Parse(renderedReport)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, document, parsedDocument)
}

func TestParseRejectsMalformedReports(testInstance *testing.T) {
	malformedReports := []string{
		"## Dataset Summary\n\nTotal events: 4\n",
		"# Synthetic Earthquake Dataset Report\n\n## Dataset Summary\n\nTotal events: many\n",
		"# Synthetic Earthquake Dataset Report\n\n## Cross-Validation Folds\n\n- Fold zero (2003-2005): 1 events\n",
	}

	for _, malformedReport := range malformedReports {
		_, parseError := report.Parse(malformedReport)
		require.Error(testInstance, parseError, malformedReport)
	}
}
