package report

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	sampleWeightLinePrefixConstant     = "Sample weight: "
	missingTitleMessageConstant        = "document does not start with the report title"
	malformedLineErrorTemplateConstant = "malformed %s line: %q"
	scanErrorTemplateConstant          = "unable to scan report: %w"
	totalEventsLineDescriptionConstant = "total events"
	realEventsLineDescriptionConstant  = "real events"
	syntheticEventsLineDescription     = "synthetic events"
	methodLineDescriptionConstant      = "method"
	dateRangeLineDescriptionConstant   = "date range"
	foldLineDescriptionConstant        = "fold"
	distributionLineDescription        = "distribution table"
	titleLineDescriptionConstant       = "title"
	floatBitSizeConstant64             = 64
)

var (
	totalEventsLinePattern     = regexp.MustCompile(`^Total events: (\d+)$`)
	realEventsLinePattern      = regexp.MustCompile(`^Real events: (\d+)$`)
	syntheticEventsLinePattern = regexp.MustCompile(`^Synthetic events: (\d+)$`)
	methodHeaderLinePattern    = regexp.MustCompile(`^\d+\. \*\*(.+)\*\*: (\d+) events$`)
	descriptionLinePattern     = regexp.MustCompile(`^   - (.+)$`)
	dateRangeLinePattern       = regexp.MustCompile(`^Date range: (.+) to (.+)$`)
	foldLinePattern            = regexp.MustCompile(`^- Fold (\d+) \((\d+)-(\d+)\): (\d+) events$`)
	usageLinePattern           = regexp.MustCompile(`^\d+\. (.+)$`)
)

type parserSection int

const (
	sectionNone parserSection = iota
	sectionDatasetSummary
	sectionSyntheticMethods
	sectionMagnitudeDistribution
	sectionTimePeriod
	sectionCrossValidation
	sectionUsage
)

var sectionHeadings = map[string]parserSection{
	datasetSummaryHeadingConstant:   sectionDatasetSummary,
	syntheticMethodsHeadingConstant: sectionSyntheticMethods,
	magnitudeDistributionHeading:    sectionMagnitudeDistribution,
	timePeriodHeadingConstant:       sectionTimePeriod,
	crossValidationHeadingConstant:  sectionCrossValidation,
	usageHeadingConstant:            sectionUsage,
}

// Parse recovers a report document from its rendered markdown form.
func Parse(renderedReport string) (Document, error) {
	document := Document{}

	lineScanner := bufio.NewScanner(strings.NewReader(renderedReport))
	currentSection := sectionNone
	insideCodeFence := false
	tableLines := []string{}
	titleSeen := false

	for lineScanner.Scan() {
		currentLine := lineScanner.Text()
		trimmedLine := strings.TrimSpace(currentLine)

		if !titleSeen {
			if len(trimmedLine) == 0 {
				continue
			}
			if trimmedLine != reportTitleConstant {
				return Document{}, fmt.Errorf(malformedLineErrorTemplateConstant, titleLineDescriptionConstant, trimmedLine)
			}
			titleSeen = true
			continue
		}

		if heading, headingKnown := sectionHeadings[trimmedLine]; headingKnown && !insideCodeFence {
			currentSection = heading
			continue
		}

		switch currentSection {
		case sectionDatasetSummary:
			if parseError := parseSummaryLine(trimmedLine, &document); parseError != nil {
				return Document{}, parseError
			}
		case sectionSyntheticMethods:
			if parseError := parseMethodLine(currentLine, trimmedLine, &document); parseError != nil {
				return Document{}, parseError
			}
		case sectionMagnitudeDistribution:
			if trimmedLine == codeFenceConstant {
				insideCodeFence = !insideCodeFence
				continue
			}
			if insideCodeFence && len(trimmedLine) > 0 {
				tableLines = append(tableLines, currentLine)
			}
		case sectionTimePeriod:
			if parseError := parsePeriodLine(trimmedLine, &document); parseError != nil {
				return Document{}, parseError
			}
		case sectionCrossValidation:
			if parseError := parseFoldLine(trimmedLine, &document); parseError != nil {
				return Document{}, parseError
			}
		case sectionUsage:
			parseUsageLine(trimmedLine, &document)
		}
	}

	if scanError := lineScanner.Err(); scanError != nil {
		return Document{}, fmt.Errorf(scanErrorTemplateConstant, scanError)
	}

	if !titleSeen {
		return Document{}, fmt.Errorf(malformedLineErrorTemplateConstant, titleLineDescriptionConstant, missingTitleMessageConstant)
	}

	distributionTable, tableError := parseDistributionTable(tableLines)
	if tableError != nil {
		return Document{}, tableError
	}
	document.Distribution = distributionTable

	return document, nil
}

func parseSummaryLine(trimmedLine string, document *Document) error {
	if len(trimmedLine) == 0 {
		return nil
	}

	if matches := totalEventsLinePattern.FindStringSubmatch(trimmedLine); matches != nil {
		parsedValue, parseError := strconv.Atoi(matches[1])
		if parseError != nil {
			return fmt.Errorf(malformedLineErrorTemplateConstant, totalEventsLineDescriptionConstant, trimmedLine)
		}
		document.TotalEvents = parsedValue
		return nil
	}

	if matches := realEventsLinePattern.FindStringSubmatch(trimmedLine); matches != nil {
		parsedValue, parseError := strconv.Atoi(matches[1])
		if parseError != nil {
			return fmt.Errorf(malformedLineErrorTemplateConstant, realEventsLineDescriptionConstant, trimmedLine)
		}
		document.RealEvents = parsedValue
		return nil
	}

	if matches := syntheticEventsLinePattern.FindStringSubmatch(trimmedLine); matches != nil {
		parsedValue, parseError := strconv.Atoi(matches[1])
		if parseError != nil {
			return fmt.Errorf(malformedLineErrorTemplateConstant, syntheticEventsLineDescription, trimmedLine)
		}
		document.SyntheticEvents = parsedValue
		return nil
	}

	return fmt.Errorf(malformedLineErrorTemplateConstant, totalEventsLineDescriptionConstant, trimmedLine)
}

func parseMethodLine(rawLine string, trimmedLine string, document *Document) error {
	if len(trimmedLine) == 0 {
		return nil
	}

	if matches := methodHeaderLinePattern.FindStringSubmatch(trimmedLine); matches != nil {
		eventCount, parseError := strconv.Atoi(matches[2])
		if parseError != nil {
			return fmt.Errorf(malformedLineErrorTemplateConstant, methodLineDescriptionConstant, trimmedLine)
		}

		document.Methods = append(document.Methods, MethodSummary{
			Method:      MethodForDisplayName(matches[1]),
			DisplayName: matches[1],
			EventCount:  eventCount,
		})
		return nil
	}

	if matches := descriptionLinePattern.FindStringSubmatch(rawLine); matches != nil {
		if len(document.Methods) == 0 {
			return fmt.Errorf(malformedLineErrorTemplateConstant, methodLineDescriptionConstant, trimmedLine)
		}

		currentMethod := &document.Methods[len(document.Methods)-1]
		detailLine := matches[1]

		if strings.HasPrefix(detailLine, sampleWeightLinePrefixConstant) {
			sampleWeight, weightError := strconv.ParseFloat(strings.TrimPrefix(detailLine, sampleWeightLinePrefixConstant), floatBitSizeConstant64)
			if weightError != nil {
				return fmt.Errorf(malformedLineErrorTemplateConstant, methodLineDescriptionConstant, trimmedLine)
			}
			currentMethod.SampleWeight = sampleWeight
			return nil
		}

		currentMethod.DescriptionLines = append(currentMethod.DescriptionLines, detailLine)
		return nil
	}

	return fmt.Errorf(malformedLineErrorTemplateConstant, methodLineDescriptionConstant, trimmedLine)
}

func parsePeriodLine(trimmedLine string, document *Document) error {
	if len(trimmedLine) == 0 {
		return nil
	}

	matches := dateRangeLinePattern.FindStringSubmatch(trimmedLine)
	if matches == nil {
		return fmt.Errorf(malformedLineErrorTemplateConstant, dateRangeLineDescriptionConstant, trimmedLine)
	}

	periodStart, startError := catalog.ParseEventTime(matches[1])
	if startError != nil {
		return fmt.Errorf(malformedLineErrorTemplateConstant, dateRangeLineDescriptionConstant, trimmedLine)
	}

	periodEnd, endError := catalog.ParseEventTime(matches[2])
	if endError != nil {
		return fmt.Errorf(malformedLineErrorTemplateConstant, dateRangeLineDescriptionConstant, trimmedLine)
	}

	document.PeriodStart = periodStart
	document.PeriodEnd = periodEnd
	return nil
}

func parseFoldLine(trimmedLine string, document *Document) error {
	if len(trimmedLine) == 0 || trimmedLine == foldsIntroductionLineConstant {
		return nil
	}

	matches := foldLinePattern.FindStringSubmatch(trimmedLine)
	if matches == nil {
		return fmt.Errorf(malformedLineErrorTemplateConstant, foldLineDescriptionConstant, trimmedLine)
	}

	foldIndex, indexError := strconv.Atoi(matches[1])
	startYear, startYearError := strconv.Atoi(matches[2])
	endYear, endYearError := strconv.Atoi(matches[3])
	eventCount, eventCountError := strconv.Atoi(matches[4])
	if indexError != nil || startYearError != nil || endYearError != nil || eventCountError != nil {
		return fmt.Errorf(malformedLineErrorTemplateConstant, foldLineDescriptionConstant, trimmedLine)
	}

	document.Folds = append(document.Folds, catalog.FoldEventCount{
		Index:      foldIndex,
		StartYear:  startYear,
		EndYear:    endYear,
		EventCount: eventCount,
	})
	return nil
}

func parseUsageLine(trimmedLine string, document *Document) {
	if len(trimmedLine) == 0 || trimmedLine == usageIntroductionLineConstant {
		return
	}

	if matches := usageLinePattern.FindStringSubmatch(trimmedLine); matches != nil {
		document.UsageLines = append(document.UsageLines, matches[1])
	}
}

func parseDistributionTable(tableLines []string) (DistributionTable, error) {
	if len(tableLines) == 0 {
		return DistributionTable{}, nil
	}

	headerFields := strings.Fields(tableLines[0])
	if len(headerFields) < 2 || headerFields[0] != distributionLabelHeaderConstant {
		return DistributionTable{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, tableLines[0])
	}

	distributionTable := DistributionTable{Methods: headerFields[1:]}

	for _, tableLine := range tableLines[1:] {
		labelEndIndex := strings.IndexRune(tableLine, ']')
		if labelEndIndex < 0 {
			return DistributionTable{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, tableLine)
		}

		rowLabel := strings.TrimSpace(tableLine[:labelEndIndex+1])
		magnitudeRange, labelError := parseMagnitudeRangeLabel(rowLabel)
		if labelError != nil {
			return DistributionTable{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, tableLine)
		}

		countFields := strings.Fields(tableLine[labelEndIndex+1:])
		if len(countFields) != len(distributionTable.Methods) {
			return DistributionTable{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, tableLine)
		}

		rowCounts := make([]int, 0, len(countFields))
		for _, countField := range countFields {
			countValue, countError := strconv.Atoi(countField)
			if countError != nil {
				return DistributionTable{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, tableLine)
			}
			rowCounts = append(rowCounts, countValue)
		}

		distributionTable.MagnitudeRanges = append(distributionTable.MagnitudeRanges, magnitudeRange)
		distributionTable.Counts = append(distributionTable.Counts, rowCounts)
	}

	return distributionTable, nil
}

func parseMagnitudeRangeLabel(rowLabel string) (catalog.MagnitudeRange, error) {
	trimmedLabel := strings.TrimSuffix(strings.TrimPrefix(rowLabel, "("), "]")
	boundFields := strings.Split(trimmedLabel, ",")
	if len(boundFields) != 2 {
		return catalog.MagnitudeRange{}, fmt.Errorf(malformedLineErrorTemplateConstant, distributionLineDescription, rowLabel)
	}

	lowerBound, lowerError := strconv.ParseFloat(strings.TrimSpace(boundFields[0]), floatBitSizeConstant64)
	if lowerError != nil {
		return catalog.MagnitudeRange{}, lowerError
	}

	upperBound, upperError := strconv.ParseFloat(strings.TrimSpace(boundFields[1]), floatBitSizeConstant64)
	if upperError != nil {
		return catalog.MagnitudeRange{}, upperError
	}

	return catalog.MagnitudeRange{Lower: lowerBound, Upper: upperBound}, nil
}
