package report

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	bootstrapDisplayNameConstant    = "Bootstrap method"
	physicsDisplayNameConstant      = "Physics-based method"
	simpleDisplayNameConstant       = "Simple method"
	genericMethodSuffixConstant     = " method"
	realColumnNameConstant          = "real"
	distributionLabelHeaderConstant = "mag_range"
)

var canonicalUsageLines = []string{
	"Use the `sample_weight` column to give appropriate importance to each event",
	"Use the `is_synthetic` column to differentiate between real and synthetic events",
	"Use the `cv_fold` column for time-based cross-validation",
	"Consider evaluating model performance with and without synthetic data",
}

var methodDisplayNames = map[catalog.Method]string{
	catalog.MethodBootstrap: bootstrapDisplayNameConstant,
	catalog.MethodPhysics:   physicsDisplayNameConstant,
	catalog.MethodSimple:    simpleDisplayNameConstant,
}

var methodDescriptionLines = map[catalog.Method][]string{
	catalog.MethodBootstrap: {
		"Created by scaling up moderate (M5-6) real events",
	},
	catalog.MethodPhysics: {
		"Generated using fault geometry and physical parameters",
		"Based on Gutenberg-Richter relation with b-value = 0.77",
	},
	catalog.MethodSimple: {
		"Created by spatial jittering from template events",
	},
}

var syntheticMethodOrder = []catalog.Method{
	catalog.MethodBootstrap,
	catalog.MethodPhysics,
	catalog.MethodSimple,
}

// MethodSummary describes one synthetic generation method in the report.
type MethodSummary struct {
	Method           catalog.Method
	DisplayName      string
	EventCount       int
	SampleWeight     float64
	DescriptionLines []string
}

// DistributionTable is the magnitude-range by method count table.
type DistributionTable struct {
	MagnitudeRanges []catalog.MagnitudeRange
	Methods         []string
	Counts          [][]int
}

// Document is the structured form of the synthetic dataset report.
type Document struct {
	TotalEvents     int
	RealEvents      int
	SyntheticEvents int
	Methods         []MethodSummary
	Distribution    DistributionTable
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Folds           []catalog.FoldEventCount
	UsageLines      []string
}

// BuildDocument summarizes an assembled event list into a report document.
func BuildDocument(events []catalog.Event, foldWindows []catalog.FoldWindow) Document {
	document := Document{UsageLines: canonicalUsageLines}

	syntheticCountsByMethod := map[catalog.Method]int{}
	syntheticWeightsByMethod := map[catalog.Method]float64{}

	for _, event := range events {
		document.TotalEvents++
		if event.Synthetic {
			document.SyntheticEvents++
			if _, methodSeen := syntheticCountsByMethod[event.Method]; !methodSeen {
				syntheticWeightsByMethod[event.Method] = event.SampleWeight
			}
			syntheticCountsByMethod[event.Method]++
		} else {
			document.RealEvents++
		}

		if document.TotalEvents == 1 {
			document.PeriodStart = event.OccurrenceTime
			document.PeriodEnd = event.OccurrenceTime
		} else {
			if event.OccurrenceTime.Before(document.PeriodStart) {
				document.PeriodStart = event.OccurrenceTime
			}
			if event.OccurrenceTime.After(document.PeriodEnd) {
				document.PeriodEnd = event.OccurrenceTime
			}
		}
	}

	for _, method := range orderedSyntheticMethods(syntheticCountsByMethod) {
		document.Methods = append(document.Methods, MethodSummary{
			Method:           method,
			DisplayName:      DisplayNameForMethod(method),
			EventCount:       syntheticCountsByMethod[method],
			SampleWeight:     syntheticWeightsByMethod[method],
			DescriptionLines: methodDescriptionLines[method],
		})
	}

	document.Distribution = buildDistributionTable(events)

	foldCountsByIndex := map[int]int{}
	for _, event := range events {
		if event.FoldIndex != catalog.UnassignedFoldIndex {
			foldCountsByIndex[event.FoldIndex]++
		}
	}
	for _, foldWindow := range foldWindows {
		document.Folds = append(document.Folds, catalog.FoldEventCount{
			Index:      foldWindow.Index,
			StartYear:  foldWindow.StartYear,
			EndYear:    foldWindow.EndYear,
			EventCount: foldCountsByIndex[foldWindow.Index],
		})
	}

	return document
}

// DisplayNameForMethod resolves the report heading for a generation method.
func DisplayNameForMethod(method catalog.Method) string {
	if displayName, displayNameKnown := methodDisplayNames[method]; displayNameKnown {
		return displayName
	}
	return capitalizeFirstRune(string(method)) + genericMethodSuffixConstant
}

// MethodForDisplayName reverses DisplayNameForMethod for known headings and
// falls back to lowercasing the first word of unknown ones.
func MethodForDisplayName(displayName string) catalog.Method {
	for method, knownDisplayName := range methodDisplayNames {
		if knownDisplayName == displayName {
			return method
		}
	}

	firstWord := displayName
	if spaceIndex := strings.IndexRune(displayName, ' '); spaceIndex > 0 {
		firstWord = displayName[:spaceIndex]
	}
	return catalog.Method(strings.ToLower(firstWord))
}

func orderedSyntheticMethods(countsByMethod map[catalog.Method]int) []catalog.Method {
	orderedMethods := []catalog.Method{}
	seenMethods := map[catalog.Method]bool{}

	for _, method := range syntheticMethodOrder {
		if _, methodPresent := countsByMethod[method]; methodPresent {
			orderedMethods = append(orderedMethods, method)
			seenMethods[method] = true
		}
	}

	remainingMethods := []catalog.Method{}
	for method := range countsByMethod {
		if !seenMethods[method] {
			remainingMethods = append(remainingMethods, method)
		}
	}
	sort.Slice(remainingMethods, func(firstIndex, secondIndex int) bool {
		return remainingMethods[firstIndex] < remainingMethods[secondIndex]
	})

	return append(orderedMethods, remainingMethods...)
}

func buildDistributionTable(events []catalog.Event) DistributionTable {
	magnitudeRanges := catalog.MagnitudeRangesFromEdges(catalog.DefaultMagnitudeBinEdges())

	methodsPresent := map[string]bool{}
	for _, event := range events {
		methodsPresent[string(event.Method)] = true
	}

	columnMethods := []string{}
	if methodsPresent[realColumnNameConstant] {
		columnMethods = append(columnMethods, realColumnNameConstant)
	}
	for _, method := range syntheticMethodOrder {
		if methodsPresent[string(method)] {
			columnMethods = append(columnMethods, string(method))
		}
	}

	knownColumns := map[string]bool{realColumnNameConstant: true}
	for _, method := range syntheticMethodOrder {
		knownColumns[string(method)] = true
	}
	remainingMethods := []string{}
	for methodName := range methodsPresent {
		if !knownColumns[methodName] {
			remainingMethods = append(remainingMethods, methodName)
		}
	}
	sort.Strings(remainingMethods)
	columnMethods = append(columnMethods, remainingMethods...)

	columnIndexes := map[string]int{}
	for columnIndex, methodName := range columnMethods {
		columnIndexes[methodName] = columnIndex
	}

	counts := make([][]int, len(magnitudeRanges))
	for rowIndex := range counts {
		counts[rowIndex] = make([]int, len(columnMethods))
	}

	for _, event := range events {
		for rowIndex, magnitudeRange := range magnitudeRanges {
			if magnitudeRange.Contains(event.Magnitude) {
				counts[rowIndex][columnIndexes[string(event.Method)]]++
				break
			}
		}
	}

	return DistributionTable{
		MagnitudeRanges: magnitudeRanges,
		Methods:         columnMethods,
		Counts:          counts,
	}
}

func capitalizeFirstRune(value string) string {
	if len(value) == 0 {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
