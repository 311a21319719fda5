package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	reportTitleConstant              = "# Synthetic Earthquake Dataset Report"
	datasetSummaryHeadingConstant    = "## Dataset Summary"
	syntheticMethodsHeadingConstant  = "## Synthetic Data Methods"
	magnitudeDistributionHeading     = "## Magnitude Distribution"
	timePeriodHeadingConstant        = "## Time Period"
	crossValidationHeadingConstant   = "## Cross-Validation Folds"
	usageHeadingConstant             = "## Usage for Forecasting"
	totalEventsLineTemplateConstant  = "Total events: %d"
	realEventsLineTemplateConstant   = "Real events: %d"
	syntheticEventsLineTemplate      = "Synthetic events: %d"
	methodHeaderLineTemplateConstant = "%d. **%s**: %d events"
	descriptionLineTemplateConstant  = "   - %s"
	sampleWeightLineTemplateConstant = "   - Sample weight: %s"
	dateRangeLineTemplateConstant    = "Date range: %s to %s"
	foldsIntroductionLineConstant    = "The dataset is divided into time-based CV folds:"
	foldLineTemplateConstant         = "- Fold %d (%d-%d): %d events"
	usageIntroductionLineConstant    = "When training earthquake forecasting models:"
	usageLineTemplateConstant        = "%d. %s"
	codeFenceConstant                = "```"
	tableColumnSeparatorConstant     = "  "
	newlineConstant                  = "\n"
	floatBitSizeConstant             = 64
	minimalFloatPrecisionConstant    = -1
)

// Render emits the markdown form of a report document.
func Render(document Document) string {
	reportBuilder := &strings.Builder{}

	writeLine(reportBuilder, reportTitleConstant)
	writeLine(reportBuilder, "")

	writeLine(reportBuilder, datasetSummaryHeadingConstant)
	writeLine(reportBuilder, "")
	writeLine(reportBuilder, fmt.Sprintf(totalEventsLineTemplateConstant, document.TotalEvents))
	writeLine(reportBuilder, fmt.Sprintf(realEventsLineTemplateConstant, document.RealEvents))
	writeLine(reportBuilder, fmt.Sprintf(syntheticEventsLineTemplate, document.SyntheticEvents))
	writeLine(reportBuilder, "")

	writeLine(reportBuilder, syntheticMethodsHeadingConstant)
	writeLine(reportBuilder, "")
	for methodPosition, methodSummary := range document.Methods {
		writeLine(reportBuilder, fmt.Sprintf(methodHeaderLineTemplateConstant, methodPosition+1, methodSummary.DisplayName, methodSummary.EventCount))
		for _, descriptionLine := range methodSummary.DescriptionLines {
			writeLine(reportBuilder, fmt.Sprintf(descriptionLineTemplateConstant, descriptionLine))
		}
		writeLine(reportBuilder, fmt.Sprintf(sampleWeightLineTemplateConstant, formatSampleWeight(methodSummary.SampleWeight)))
		writeLine(reportBuilder, "")
	}

	writeLine(reportBuilder, magnitudeDistributionHeading)
	writeLine(reportBuilder, "")
	writeLine(reportBuilder, codeFenceConstant)
	for _, tableLine := range renderDistributionTable(document.Distribution) {
		writeLine(reportBuilder, tableLine)
	}
	writeLine(reportBuilder, codeFenceConstant)
	writeLine(reportBuilder, "")

	writeLine(reportBuilder, timePeriodHeadingConstant)
	writeLine(reportBuilder, "")
	writeLine(reportBuilder, fmt.Sprintf(
		dateRangeLineTemplateConstant,
		document.PeriodStart.Format(catalog.CanonicalTimeLayout()),
		document.PeriodEnd.Format(catalog.CanonicalTimeLayout()),
	))
	writeLine(reportBuilder, "")

	writeLine(reportBuilder, crossValidationHeadingConstant)
	writeLine(reportBuilder, "")
	writeLine(reportBuilder, foldsIntroductionLineConstant)
	writeLine(reportBuilder, "")
	for _, foldEventCount := range document.Folds {
		writeLine(reportBuilder, fmt.Sprintf(
			foldLineTemplateConstant,
			foldEventCount.Index,
			foldEventCount.StartYear,
			foldEventCount.EndYear,
			foldEventCount.EventCount,
		))
	}
	writeLine(reportBuilder, "")

	writeLine(reportBuilder, usageHeadingConstant)
	writeLine(reportBuilder, "")
	writeLine(reportBuilder, usageIntroductionLineConstant)
	writeLine(reportBuilder, "")
	for usagePosition, usageLine := range document.UsageLines {
		writeLine(reportBuilder, fmt.Sprintf(usageLineTemplateConstant, usagePosition+1, usageLine))
	}

	return reportBuilder.String()
}

func renderDistributionTable(distributionTable DistributionTable) []string {
	if len(distributionTable.MagnitudeRanges) == 0 {
		return nil
	}

	labelColumnWidth := len(distributionLabelHeaderConstant)
	rowLabels := make([]string, 0, len(distributionTable.MagnitudeRanges))
	for _, magnitudeRange := range distributionTable.MagnitudeRanges {
		rowLabel := magnitudeRange.Label()
		rowLabels = append(rowLabels, rowLabel)
		if len(rowLabel) > labelColumnWidth {
			labelColumnWidth = len(rowLabel)
		}
	}

	countColumnWidths := make([]int, len(distributionTable.Methods))
	for columnIndex, methodName := range distributionTable.Methods {
		countColumnWidths[columnIndex] = len(methodName)
		for _, rowCounts := range distributionTable.Counts {
			countWidth := len(strconv.Itoa(rowCounts[columnIndex]))
			if countWidth > countColumnWidths[columnIndex] {
				countColumnWidths[columnIndex] = countWidth
			}
		}
	}

	tableLines := make([]string, 0, len(distributionTable.Counts)+1)

	headerFields := []string{padRight(distributionLabelHeaderConstant, labelColumnWidth)}
	for columnIndex, methodName := range distributionTable.Methods {
		headerFields = append(headerFields, padLeft(methodName, countColumnWidths[columnIndex]))
	}
	tableLines = append(tableLines, strings.Join(headerFields, tableColumnSeparatorConstant))

	for rowIndex, rowCounts := range distributionTable.Counts {
		rowFields := []string{padRight(rowLabels[rowIndex], labelColumnWidth)}
		for columnIndex, countValue := range rowCounts {
			rowFields = append(rowFields, padLeft(strconv.Itoa(countValue), countColumnWidths[columnIndex]))
		}
		tableLines = append(tableLines, strings.Join(rowFields, tableColumnSeparatorConstant))
	}

	return tableLines
}

func formatSampleWeight(sampleWeight float64) string {
	return strconv.FormatFloat(sampleWeight, 'f', minimalFloatPrecisionConstant, floatBitSizeConstant)
}

func writeLine(reportBuilder *strings.Builder, lineContent string) {
	reportBuilder.WriteString(lineContent)
	reportBuilder.WriteString(newlineConstant)
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(value))
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat(" ", width-len(value)) + value
}
