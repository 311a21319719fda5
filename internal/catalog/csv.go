package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	columnIdentifierConstant     = "id"
	columnTimeConstant           = "time"
	columnMagnitudeConstant      = "magnitude"
	columnLongitudeConstant      = "longitude"
	columnLatitudeConstant       = "latitude"
	columnDepthConstant          = "depth_km"
	columnSyntheticConstant      = "is_synthetic"
	columnSampleWeightConstant   = "sample_weight"
	columnMethodConstant         = "method"
	columnLogEnergyConstant      = "log_energy"
	columnFoldConstant           = "cv_fold"
	canonicalTimeLayoutConstant  = "2006-01-02 15:04:05"
	syntheticTrueValueConstant   = "1"
	syntheticFalseValueConstant  = "0"
	openCatalogErrorTemplate     = "unable to open catalog %s: %w"
	createCatalogErrorTemplate   = "unable to create catalog %s: %w"
	readCatalogErrorTemplate     = "unable to read catalog %s: %w"
	writeCatalogErrorTemplate    = "unable to write catalog %s: %w"
	missingColumnsErrorTemplate  = "catalog %s is missing required columns: %s"
	emptyCatalogErrorTemplate    = "catalog %s contains no header row"
	rowFieldErrorTemplate        = "catalog %s row %d column %s: %w"
	unparsableTimeErrorTemplate  = "unrecognized time value %q"
	missingColumnsJoinSeparator  = ", "
	floatBitSizeConstant         = 64
	minimalFloatPrecisionDigits  = -1
	foldBaseTenConstant          = 10
	writtenFilePermissionsOctal  = 0o644
	syntheticTrueAlternativeWord = "true"
)

var acceptedTimeLayouts = []string{
	canonicalTimeLayoutConstant,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var requiredColumnNames = []string{
	columnIdentifierConstant,
	columnTimeConstant,
	columnMagnitudeConstant,
	columnLongitudeConstant,
	columnLatitudeConstant,
	columnDepthConstant,
}

// CanonicalColumns returns the column order used by every catalog file the
// pipeline writes.
func CanonicalColumns() []string {
	return []string{
		columnIdentifierConstant,
		columnTimeConstant,
		columnMagnitudeConstant,
		columnLongitudeConstant,
		columnLatitudeConstant,
		columnDepthConstant,
		columnSyntheticConstant,
		columnSampleWeightConstant,
		columnMethodConstant,
		columnLogEnergyConstant,
		columnFoldConstant,
	}
}

// CanonicalTimeLayout returns the timestamp layout used in catalog files.
func CanonicalTimeLayout() string {
	return canonicalTimeLayoutConstant
}

// ParseEventTime parses a timestamp using the layouts accepted across catalog
// sources.
func ParseEventTime(rawValue string) (time.Time, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	for _, candidateLayout := range acceptedTimeLayouts {
		parsedTime, parseError := time.Parse(candidateLayout, trimmedValue)
		if parseError == nil {
			return parsedTime, nil
		}
	}
	return time.Time{}, fmt.Errorf(unparsableTimeErrorTemplate, rawValue)
}

// ReadCatalog loads events from a canonical catalog CSV file. The synthetic
// augmentation columns are optional; absent values default to a real event
// with full sample weight and no fold assignment.
func ReadCatalog(catalogPath string) ([]Event, error) {
	catalogFile, openError := os.Open(catalogPath)
	if openError != nil {
		return nil, fmt.Errorf(openCatalogErrorTemplate, catalogPath, openError)
	}
	defer catalogFile.Close()

	csvReader := csv.NewReader(catalogFile)
	records, readError := csvReader.ReadAll()
	if readError != nil {
		return nil, fmt.Errorf(readCatalogErrorTemplate, catalogPath, readError)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf(emptyCatalogErrorTemplate, catalogPath)
	}

	columnIndexes := map[string]int{}
	for headerIndex, headerName := range records[0] {
		columnIndexes[strings.ToLower(strings.TrimSpace(headerName))] = headerIndex
	}

	missingColumns := []string{}
	for _, requiredColumn := range requiredColumnNames {
		if _, columnPresent := columnIndexes[requiredColumn]; !columnPresent {
			missingColumns = append(missingColumns, requiredColumn)
		}
	}
	if len(missingColumns) > 0 {
		return nil, fmt.Errorf(missingColumnsErrorTemplate, catalogPath, strings.Join(missingColumns, missingColumnsJoinSeparator))
	}

	events := make([]Event, 0, len(records)-1)
	for rowIndex, record := range records[1:] {
		parsedEvent, parseError := parseEventRecord(record, columnIndexes)
		if parseError != nil {
			return nil, fmt.Errorf(rowFieldErrorTemplate, catalogPath, rowIndex+1, parseError.columnName, parseError.cause)
		}
		events = append(events, parsedEvent)
	}

	return events, nil
}

// WriteCatalog persists events to a canonical catalog CSV file.
func WriteCatalog(catalogPath string, events []Event) error {
	catalogFile, createError := os.OpenFile(catalogPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, writtenFilePermissionsOctal)
	if createError != nil {
		return fmt.Errorf(createCatalogErrorTemplate, catalogPath, createError)
	}
	defer catalogFile.Close()

	csvWriter := csv.NewWriter(catalogFile)
	if writeError := csvWriter.Write(CanonicalColumns()); writeError != nil {
		return fmt.Errorf(writeCatalogErrorTemplate, catalogPath, writeError)
	}

	for _, event := range events {
		if writeError := csvWriter.Write(formatEventRecord(event)); writeError != nil {
			return fmt.Errorf(writeCatalogErrorTemplate, catalogPath, writeError)
		}
	}

	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return fmt.Errorf(writeCatalogErrorTemplate, catalogPath, flushError)
	}

	return nil
}

type fieldParseError struct {
	columnName string
	cause      error
}

func parseEventRecord(record []string, columnIndexes map[string]int) (Event, *fieldParseError) {
	fieldValue := func(columnName string) (string, bool) {
		columnIndex, columnPresent := columnIndexes[columnName]
		if !columnPresent || columnIndex >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[columnIndex]), true
	}

	identifierValue, _ := fieldValue(columnIdentifierConstant)

	timeValue, _ := fieldValue(columnTimeConstant)
	occurrenceTime, timeError := ParseEventTime(timeValue)
	if timeError != nil {
		return Event{}, &fieldParseError{columnName: columnTimeConstant, cause: timeError}
	}

	magnitudeValue, _ := fieldValue(columnMagnitudeConstant)
	magnitude, magnitudeError := strconv.ParseFloat(magnitudeValue, floatBitSizeConstant)
	if magnitudeError != nil {
		return Event{}, &fieldParseError{columnName: columnMagnitudeConstant, cause: magnitudeError}
	}

	longitudeValue, _ := fieldValue(columnLongitudeConstant)
	longitude, longitudeError := strconv.ParseFloat(longitudeValue, floatBitSizeConstant)
	if longitudeError != nil {
		return Event{}, &fieldParseError{columnName: columnLongitudeConstant, cause: longitudeError}
	}

	latitudeValue, _ := fieldValue(columnLatitudeConstant)
	latitude, latitudeError := strconv.ParseFloat(latitudeValue, floatBitSizeConstant)
	if latitudeError != nil {
		return Event{}, &fieldParseError{columnName: columnLatitudeConstant, cause: latitudeError}
	}

	depthValue, _ := fieldValue(columnDepthConstant)
	depthKilometers, depthError := strconv.ParseFloat(depthValue, floatBitSizeConstant)
	if depthError != nil {
		return Event{}, &fieldParseError{columnName: columnDepthConstant, cause: depthError}
	}

	parsedEvent := Event{
		Identifier:      identifierValue,
		OccurrenceTime:  occurrenceTime,
		Magnitude:       magnitude,
		Longitude:       longitude,
		Latitude:        latitude,
		DepthKilometers: depthKilometers,
		Synthetic:       false,
		SampleWeight:    DefaultSampleWeight,
		Method:          MethodReal,
		LogEnergy:       ComputeLogEnergy(magnitude),
		FoldIndex:       UnassignedFoldIndex,
	}

	if syntheticValue, syntheticPresent := fieldValue(columnSyntheticConstant); syntheticPresent && len(syntheticValue) > 0 {
		parsedEvent.Synthetic = syntheticValue == syntheticTrueValueConstant || strings.EqualFold(syntheticValue, syntheticTrueAlternativeWord)
	}

	if weightValue, weightPresent := fieldValue(columnSampleWeightConstant); weightPresent && len(weightValue) > 0 {
		sampleWeight, weightError := strconv.ParseFloat(weightValue, floatBitSizeConstant)
		if weightError != nil {
			return Event{}, &fieldParseError{columnName: columnSampleWeightConstant, cause: weightError}
		}
		parsedEvent.SampleWeight = sampleWeight
	}

	if methodValue, methodPresent := fieldValue(columnMethodConstant); methodPresent && len(methodValue) > 0 {
		parsedEvent.Method = Method(methodValue)
	}

	if energyValue, energyPresent := fieldValue(columnLogEnergyConstant); energyPresent && len(energyValue) > 0 {
		logEnergy, energyError := strconv.ParseFloat(energyValue, floatBitSizeConstant)
		if energyError != nil {
			return Event{}, &fieldParseError{columnName: columnLogEnergyConstant, cause: energyError}
		}
		parsedEvent.LogEnergy = logEnergy
	}

	if foldValue, foldPresent := fieldValue(columnFoldConstant); foldPresent && len(foldValue) > 0 {
		foldIndex, foldError := strconv.Atoi(foldValue)
		if foldError != nil {
			return Event{}, &fieldParseError{columnName: columnFoldConstant, cause: foldError}
		}
		parsedEvent.FoldIndex = foldIndex
	}

	return parsedEvent, nil
}

func formatEventRecord(event Event) []string {
	syntheticValue := syntheticFalseValueConstant
	if event.Synthetic {
		syntheticValue = syntheticTrueValueConstant
	}

	return []string{
		event.Identifier,
		event.OccurrenceTime.Format(canonicalTimeLayoutConstant),
		strconv.FormatFloat(event.Magnitude, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		strconv.FormatFloat(event.Longitude, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		strconv.FormatFloat(event.Latitude, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		strconv.FormatFloat(event.DepthKilometers, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		syntheticValue,
		strconv.FormatFloat(event.SampleWeight, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		string(event.Method),
		strconv.FormatFloat(event.LogEnergy, 'f', minimalFloatPrecisionDigits, floatBitSizeConstant),
		strconv.FormatInt(int64(event.FoldIndex), foldBaseTenConstant),
	}
}
