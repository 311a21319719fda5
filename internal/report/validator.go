package report

import (
	"fmt"
)

// Violation codes emitted by Validate.
const (
	ViolationCodeMethodTotals       = "method_totals_mismatch"
	ViolationCodeEventTotals        = "event_totals_mismatch"
	ViolationCodeDistributionMethod = "distribution_method_mismatch"
	ViolationCodeDistributionTotal  = "distribution_total_mismatch"
	ViolationCodeNegativeFoldCount  = "negative_fold_count"
	ViolationCodeFoldTotals         = "fold_totals_exceed_total"
	ViolationCodeFoldWindowOrder    = "fold_window_invalid"
	ViolationCodePeriodOrder        = "period_order_invalid"
)

const (
	methodTotalsViolationTemplateConstant       = "method counts sum to %d but the document states %d synthetic events"
	eventTotalsViolationTemplateConstant        = "real (%d) plus synthetic (%d) events do not equal the stated total (%d)"
	distributionMethodViolationTemplateConstant = "distribution column %s sums to %d which exceeds the %d events stated for that method"
	distributionTotalViolationTemplateConstant  = "distribution cells sum to %d which exceeds the stated total of %d events"
	negativeFoldViolationTemplateConstant       = "fold %d states a negative event count (%d)"
	foldTotalsViolationTemplateConstant         = "fold counts sum to %d which exceeds the stated total of %d events"
	foldWindowViolationTemplateConstant         = "fold %d window %d-%d is not a valid year range"
	periodOrderViolationTemplateConstant        = "period start %s is after period end %s"
)

// ConsistencyViolation describes one failed document-consistency check.
type ConsistencyViolation struct {
	Code        string
	Description string
}

// Validate runs every document-consistency check and returns the full list of
// violations. A nil result means the document is internally consistent.
func Validate(document Document) []ConsistencyViolation {
	violations := []ConsistencyViolation{}

	violations = append(violations, validateEventTotals(document)...)
	violations = append(violations, validateDistribution(document)...)
	violations = append(violations, validateFolds(document)...)
	violations = append(violations, validatePeriod(document)...)

	if len(violations) == 0 {
		return nil
	}
	return violations
}

func validateEventTotals(document Document) []ConsistencyViolation {
	violations := []ConsistencyViolation{}

	methodTotal := 0
	for _, methodSummary := range document.Methods {
		methodTotal += methodSummary.EventCount
	}

	if methodTotal != document.SyntheticEvents {
		violations = append(violations, ConsistencyViolation{
			Code:        ViolationCodeMethodTotals,
			Description: fmt.Sprintf(methodTotalsViolationTemplateConstant, methodTotal, document.SyntheticEvents),
		})
	}

	if document.RealEvents+document.SyntheticEvents != document.TotalEvents {
		violations = append(violations, ConsistencyViolation{
			Code:        ViolationCodeEventTotals,
			Description: fmt.Sprintf(eventTotalsViolationTemplateConstant, document.RealEvents, document.SyntheticEvents, document.TotalEvents),
		})
	}

	return violations
}

// validateDistribution bounds the table sums from above. Events with
// magnitudes outside the binned range are absent from the table, so column
// and cell sums may fall short of the stated counts but must never exceed
// them.
func validateDistribution(document Document) []ConsistencyViolation {
	if len(document.Distribution.MagnitudeRanges) == 0 {
		return nil
	}

	violations := []ConsistencyViolation{}

	methodCounts := map[string]int{realColumnNameConstant: document.RealEvents}
	for _, methodSummary := range document.Methods {
		methodCounts[string(methodSummary.Method)] = methodSummary.EventCount
	}

	cellTotal := 0
	for columnIndex, methodName := range document.Distribution.Methods {
		columnTotal := 0
		for _, rowCounts := range document.Distribution.Counts {
			if columnIndex < len(rowCounts) {
				columnTotal += rowCounts[columnIndex]
			}
		}
		cellTotal += columnTotal

		expectedCount, expectationKnown := methodCounts[methodName]
		if expectationKnown && columnTotal > expectedCount {
			violations = append(violations, ConsistencyViolation{
				Code:        ViolationCodeDistributionMethod,
				Description: fmt.Sprintf(distributionMethodViolationTemplateConstant, methodName, columnTotal, expectedCount),
			})
		}
	}

	if cellTotal > document.TotalEvents {
		violations = append(violations, ConsistencyViolation{
			Code:        ViolationCodeDistributionTotal,
			Description: fmt.Sprintf(distributionTotalViolationTemplateConstant, cellTotal, document.TotalEvents),
		})
	}

	return violations
}

func validateFolds(document Document) []ConsistencyViolation {
	violations := []ConsistencyViolation{}

	foldTotal := 0
	for _, foldEventCount := range document.Folds {
		if foldEventCount.EventCount < 0 {
			violations = append(violations, ConsistencyViolation{
				Code:        ViolationCodeNegativeFoldCount,
				Description: fmt.Sprintf(negativeFoldViolationTemplateConstant, foldEventCount.Index, foldEventCount.EventCount),
			})
			continue
		}
		foldTotal += foldEventCount.EventCount

		if foldEventCount.StartYear > foldEventCount.EndYear {
			violations = append(violations, ConsistencyViolation{
				Code:        ViolationCodeFoldWindowOrder,
				Description: fmt.Sprintf(foldWindowViolationTemplateConstant, foldEventCount.Index, foldEventCount.StartYear, foldEventCount.EndYear),
			})
		}
	}

	if foldTotal > document.TotalEvents {
		violations = append(violations, ConsistencyViolation{
			Code:        ViolationCodeFoldTotals,
			Description: fmt.Sprintf(foldTotalsViolationTemplateConstant, foldTotal, document.TotalEvents),
		})
	}

	return violations
}

func validatePeriod(document Document) []ConsistencyViolation {
	if document.PeriodStart.IsZero() || document.PeriodEnd.IsZero() {
		return nil
	}

	if document.PeriodStart.After(document.PeriodEnd) {
		return []ConsistencyViolation{{
			Code:        ViolationCodePeriodOrder,
			Description: fmt.Sprintf(periodOrderViolationTemplateConstant, document.PeriodStart, document.PeriodEnd),
		}}
	}

	return nil
}
