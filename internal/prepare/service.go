package prepare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	rawColumnDatetimeConstant           = "datetime"
	rawColumnTimeConstant               = "time"
	rawColumnDateConstant               = "date"
	rawColumnMagnitudeConstant          = "magnitude"
	rawColumnLongitudeConstant          = "longitude"
	rawColumnLatitudeConstant           = "latitude"
	rawColumnDepthConstant              = "depth"
	rawColumnDepthKilometersConstant    = "depth_km"
	rawColumnIdentifierConstant         = "id"
	generatedIdentifierTemplateConstant = "EQ_%06d"
	combinedDateTimeTemplateConstant    = "%s %s"
	openRawCatalogErrorTemplateConstant = "unable to open raw catalog %s: %w"
	readRawCatalogErrorTemplateConstant = "unable to read raw catalog %s: %w"
	emptyRawCatalogMessageConstant      = "raw catalog contains no header row"
	missingTimeColumnsMessageConstant   = "raw catalog provides no datetime, time, or date column"
	missingColumnErrorTemplateConstant  = "raw catalog is missing the %s column"
	rawRowErrorTemplateConstant         = "raw catalog row %d: %w"
	rawCatalogNormalizedMessage         = "raw catalog normalized"
	floatBitSizeConstant                = 64
	// DefaultDepthKilometers substitutes for catalogs without depth information.
	DefaultDepthKilometers = 10.0
)

var (
	errEmptyRawCatalog    = errors.New(emptyRawCatalogMessageConstant)
	errMissingTimeColumns = errors.New(missingTimeColumnsMessageConstant)
)

// Options describes one preparation run.
type Options struct {
	InputPath              string
	OutputPath             string
	DefaultDepthKilometers float64
}

// Summary captures the statistics reported after preparation.
type Summary struct {
	TotalEvents            int
	MagnitudeMinimum       float64
	MagnitudeMaximum       float64
	DepthMinimumKilometers float64
	DepthMaximumKilometers float64
	DateRangeStart         time.Time
	DateRangeEnd           time.Time
	MagnitudeRangeCounts   []MagnitudeRangeCount
}

// MagnitudeRangeCount pairs a magnitude range with the number of prepared
// events inside it.
type MagnitudeRangeCount struct {
	Range      catalog.MagnitudeRange
	EventCount int
}

// Service normalizes raw catalog exports into canonical catalog files.
type Service struct {
	logger *zap.Logger
}

// NewService constructs a preparation service with the provided logger.
func NewService(logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}, nil
}

// Prepare reads a raw catalog, maps its columns onto the canonical schema,
// stamps real-event defaults, and writes the canonical catalog file.
func (service *Service) Prepare(options Options) (Summary, error) {
	defaultDepth := options.DefaultDepthKilometers
	if defaultDepth == 0 {
		defaultDepth = DefaultDepthKilometers
	}

	rawRecords, columnIndexes, readError := readRawRecords(options.InputPath)
	if readError != nil {
		return Summary{}, readError
	}

	events := make([]catalog.Event, 0, len(rawRecords))
	for rowIndex, rawRecord := range rawRecords {
		event, mappingError := mapRawRecord(rawRecord, columnIndexes, rowIndex, defaultDepth)
		if mappingError != nil {
			return Summary{}, fmt.Errorf(rawRowErrorTemplateConstant, rowIndex+1, mappingError)
		}
		events = append(events, event)
	}

	service.logger.Debug(
		rawCatalogNormalizedMessage,
		zap.String(logFieldInputPathConstant, options.InputPath),
		zap.Int(logFieldTotalEventsConstant, len(events)),
	)

	if writeError := catalog.WriteCatalog(options.OutputPath, events); writeError != nil {
		return Summary{}, writeError
	}

	return summarizeEvents(events), nil
}

type rawColumnIndexes struct {
	timeIndex       int
	dateIndex       int
	combineDateTime bool
	magnitudeIndex  int
	longitudeIndex  int
	latitudeIndex   int
	depthIndex      int
	identifierIndex int
}

func readRawRecords(inputPath string) ([][]string, rawColumnIndexes, error) {
	rawFile, openError := os.Open(inputPath)
	if openError != nil {
		return nil, rawColumnIndexes{}, fmt.Errorf(openRawCatalogErrorTemplateConstant, inputPath, openError)
	}
	defer rawFile.Close()

	csvReader := csv.NewReader(rawFile)
	records, readError := csvReader.ReadAll()
	if readError != nil {
		return nil, rawColumnIndexes{}, fmt.Errorf(readRawCatalogErrorTemplateConstant, inputPath, readError)
	}

	if len(records) == 0 {
		return nil, rawColumnIndexes{}, errEmptyRawCatalog
	}

	headerIndexes := map[string]int{}
	for headerIndex, headerName := range records[0] {
		headerIndexes[strings.ToLower(strings.TrimSpace(headerName))] = headerIndex
	}

	columnIndexes, resolveError := resolveRawColumns(headerIndexes)
	if resolveError != nil {
		return nil, rawColumnIndexes{}, resolveError
	}

	return records[1:], columnIndexes, nil
}

func resolveRawColumns(headerIndexes map[string]int) (rawColumnIndexes, error) {
	columnIndexes := rawColumnIndexes{
		timeIndex:       -1,
		dateIndex:       -1,
		magnitudeIndex:  -1,
		longitudeIndex:  -1,
		latitudeIndex:   -1,
		depthIndex:      -1,
		identifierIndex: -1,
	}

	if datetimeIndex, datetimePresent := headerIndexes[rawColumnDatetimeConstant]; datetimePresent {
		columnIndexes.timeIndex = datetimeIndex
	} else if timeIndex, timePresent := headerIndexes[rawColumnTimeConstant]; timePresent {
		columnIndexes.timeIndex = timeIndex
		if dateIndex, datePresent := headerIndexes[rawColumnDateConstant]; datePresent {
			columnIndexes.dateIndex = dateIndex
			columnIndexes.combineDateTime = true
		}
	} else {
		return rawColumnIndexes{}, errMissingTimeColumns
	}

	magnitudeIndex, magnitudePresent := headerIndexes[rawColumnMagnitudeConstant]
	if !magnitudePresent {
		return rawColumnIndexes{}, fmt.Errorf(missingColumnErrorTemplateConstant, rawColumnMagnitudeConstant)
	}
	columnIndexes.magnitudeIndex = magnitudeIndex

	longitudeIndex, longitudePresent := headerIndexes[rawColumnLongitudeConstant]
	if !longitudePresent {
		return rawColumnIndexes{}, fmt.Errorf(missingColumnErrorTemplateConstant, rawColumnLongitudeConstant)
	}
	columnIndexes.longitudeIndex = longitudeIndex

	latitudeIndex, latitudePresent := headerIndexes[rawColumnLatitudeConstant]
	if !latitudePresent {
		return rawColumnIndexes{}, fmt.Errorf(missingColumnErrorTemplateConstant, rawColumnLatitudeConstant)
	}
	columnIndexes.latitudeIndex = latitudeIndex

	if depthIndex, depthPresent := headerIndexes[rawColumnDepthConstant]; depthPresent {
		columnIndexes.depthIndex = depthIndex
	} else if depthKilometersIndex, depthKilometersPresent := headerIndexes[rawColumnDepthKilometersConstant]; depthKilometersPresent {
		columnIndexes.depthIndex = depthKilometersIndex
	}

	if identifierIndex, identifierPresent := headerIndexes[rawColumnIdentifierConstant]; identifierPresent {
		columnIndexes.identifierIndex = identifierIndex
	}

	return columnIndexes, nil
}

func mapRawRecord(rawRecord []string, columnIndexes rawColumnIndexes, rowIndex int, defaultDepth float64) (catalog.Event, error) {
	recordField := func(fieldIndex int) string {
		if fieldIndex < 0 || fieldIndex >= len(rawRecord) {
			return ""
		}
		return strings.TrimSpace(rawRecord[fieldIndex])
	}

	timeValue := recordField(columnIndexes.timeIndex)
	if columnIndexes.combineDateTime {
		timeValue = fmt.Sprintf(combinedDateTimeTemplateConstant, recordField(columnIndexes.dateIndex), timeValue)
	}

	occurrenceTime, timeError := catalog.ParseEventTime(timeValue)
	if timeError != nil {
		return catalog.Event{}, timeError
	}

	magnitude, magnitudeError := strconv.ParseFloat(recordField(columnIndexes.magnitudeIndex), floatBitSizeConstant)
	if magnitudeError != nil {
		return catalog.Event{}, magnitudeError
	}

	longitude, longitudeError := strconv.ParseFloat(recordField(columnIndexes.longitudeIndex), floatBitSizeConstant)
	if longitudeError != nil {
		return catalog.Event{}, longitudeError
	}

	latitude, latitudeError := strconv.ParseFloat(recordField(columnIndexes.latitudeIndex), floatBitSizeConstant)
	if latitudeError != nil {
		return catalog.Event{}, latitudeError
	}

	depthKilometers := defaultDepth
	if depthValue := recordField(columnIndexes.depthIndex); len(depthValue) > 0 {
		parsedDepth, depthError := strconv.ParseFloat(depthValue, floatBitSizeConstant)
		if depthError != nil {
			return catalog.Event{}, depthError
		}
		depthKilometers = parsedDepth
	}

	identifierValue := recordField(columnIndexes.identifierIndex)
	if len(identifierValue) == 0 {
		identifierValue = fmt.Sprintf(generatedIdentifierTemplateConstant, rowIndex+1)
	}

	return catalog.Event{
		Identifier:      identifierValue,
		OccurrenceTime:  occurrenceTime,
		Magnitude:       magnitude,
		Longitude:       longitude,
		Latitude:        latitude,
		DepthKilometers: depthKilometers,
		Synthetic:       false,
		SampleWeight:    catalog.DefaultSampleWeight,
		Method:          catalog.MethodReal,
		LogEnergy:       catalog.ComputeLogEnergy(magnitude),
		FoldIndex:       catalog.UnassignedFoldIndex,
	}, nil
}

func summarizeEvents(events []catalog.Event) Summary {
	summary := Summary{TotalEvents: len(events)}
	if len(events) == 0 {
		return summary
	}

	summary.MagnitudeMinimum = events[0].Magnitude
	summary.MagnitudeMaximum = events[0].Magnitude
	summary.DepthMinimumKilometers = events[0].DepthKilometers
	summary.DepthMaximumKilometers = events[0].DepthKilometers
	summary.DateRangeStart = events[0].OccurrenceTime
	summary.DateRangeEnd = events[0].OccurrenceTime

	for _, event := range events[1:] {
		if event.Magnitude < summary.MagnitudeMinimum {
			summary.MagnitudeMinimum = event.Magnitude
		}
		if event.Magnitude > summary.MagnitudeMaximum {
			summary.MagnitudeMaximum = event.Magnitude
		}
		if event.DepthKilometers < summary.DepthMinimumKilometers {
			summary.DepthMinimumKilometers = event.DepthKilometers
		}
		if event.DepthKilometers > summary.DepthMaximumKilometers {
			summary.DepthMaximumKilometers = event.DepthKilometers
		}
		if event.OccurrenceTime.Before(summary.DateRangeStart) {
			summary.DateRangeStart = event.OccurrenceTime
		}
		if event.OccurrenceTime.After(summary.DateRangeEnd) {
			summary.DateRangeEnd = event.OccurrenceTime
		}
	}

	magnitudeRanges := catalog.MagnitudeRangesFromEdges(catalog.DefaultMagnitudeBinEdges())
	rangeCounts := catalog.CountEventsByRange(events, magnitudeRanges)
	for rangeIndex, magnitudeRange := range magnitudeRanges {
		summary.MagnitudeRangeCounts = append(summary.MagnitudeRangeCounts, MagnitudeRangeCount{
			Range:      magnitudeRange,
			EventCount: rangeCounts[rangeIndex],
		})
	}

	return summary
}
