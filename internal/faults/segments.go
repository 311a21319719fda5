package faults

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	coordinatePairSeparatorConstant      = ";"
	coordinateComponentSeparatorConstant = ","
	coordinateComponentCountConstant     = 2
	malformedCoordinateErrorTemplate     = "malformed coordinate %q in segment polyline"
	createSegmentsFileErrorTemplate      = "unable to create fault segments file %s: %w"
	writeSegmentsFileErrorTemplate       = "unable to write fault segments file %s: %w"
	segmentsFilePermissionsOctal         = 0o644
	floatBitSizeConstant                 = 64
	baseTenConstant                      = 10
)

var segmentColumnNames = []string{
	"segment_id",
	"name",
	"coordinates",
	"strike",
	"dip",
	"rake",
	"length_km",
	"seismogenic_thickness_km",
}

// Segment describes one simplified fault segment.
type Segment struct {
	SegmentIdentifier              string
	Name                           string
	Coordinates                    string
	StrikeDegrees                  int
	DipDegrees                     int
	RakeDegrees                    int
	LengthKilometers               int
	SeismogenicThicknessKilometers int
}

// Coordinate is a longitude/latitude pair along a segment polyline.
type Coordinate struct {
	Longitude float64
	Latitude  float64
}

// MarmaraSegments returns the approximate main segments of the North
// Anatolian Fault inside the Marmara region.
func MarmaraSegments() []Segment {
	return []Segment{
		{
			SegmentIdentifier:              "NAF_Western",
			Name:                           "North Anatolian Fault (Western Segment)",
			Coordinates:                    "26.7,40.4;27.2,40.5;27.7,40.7",
			StrikeDegrees:                  275,
			DipDegrees:                     85,
			RakeDegrees:                    180,
			LengthKilometers:               85,
			SeismogenicThicknessKilometers: 15,
		},
		{
			SegmentIdentifier:              "NAF_Central",
			Name:                           "North Anatolian Fault (Central Marmara)",
			Coordinates:                    "27.7,40.7;28.3,40.8;28.9,40.9",
			StrikeDegrees:                  270,
			DipDegrees:                     80,
			RakeDegrees:                    175,
			LengthKilometers:               70,
			SeismogenicThicknessKilometers: 17,
		},
		{
			SegmentIdentifier:              "NAF_Eastern",
			Name:                           "North Anatolian Fault (Eastern Marmara)",
			Coordinates:                    "28.9,40.9;29.5,40.7;30.0,40.6",
			StrikeDegrees:                  265,
			DipDegrees:                     75,
			RakeDegrees:                    170,
			LengthKilometers:               65,
			SeismogenicThicknessKilometers: 15,
		},
		{
			SegmentIdentifier:              "NAF_Southern",
			Name:                           "North Anatolian Fault (Southern Branch)",
			Coordinates:                    "27.5,40.5;28.2,40.4;28.9,40.3;29.5,40.2",
			StrikeDegrees:                  260,
			DipDegrees:                     80,
			RakeDegrees:                    165,
			LengthKilometers:               120,
			SeismogenicThicknessKilometers: 12,
		},
	}
}

// ParseCoordinates decodes the semicolon-delimited polyline carried by a
// segment record.
func ParseCoordinates(encodedCoordinates string) ([]Coordinate, error) {
	encodedPairs := strings.Split(strings.TrimSpace(encodedCoordinates), coordinatePairSeparatorConstant)
	coordinates := make([]Coordinate, 0, len(encodedPairs))

	for _, encodedPair := range encodedPairs {
		components := strings.Split(strings.TrimSpace(encodedPair), coordinateComponentSeparatorConstant)
		if len(components) != coordinateComponentCountConstant {
			return nil, fmt.Errorf(malformedCoordinateErrorTemplate, encodedPair)
		}

		longitude, longitudeError := strconv.ParseFloat(strings.TrimSpace(components[0]), floatBitSizeConstant)
		if longitudeError != nil {
			return nil, fmt.Errorf(malformedCoordinateErrorTemplate, encodedPair)
		}

		latitude, latitudeError := strconv.ParseFloat(strings.TrimSpace(components[1]), floatBitSizeConstant)
		if latitudeError != nil {
			return nil, fmt.Errorf(malformedCoordinateErrorTemplate, encodedPair)
		}

		coordinates = append(coordinates, Coordinate{Longitude: longitude, Latitude: latitude})
	}

	return coordinates, nil
}

// WriteSegmentsCSV persists fault segments in the layout consumed by the
// analysis tooling.
func WriteSegmentsCSV(segmentsPath string, segments []Segment) error {
	segmentsFile, createError := os.OpenFile(segmentsPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, segmentsFilePermissionsOctal)
	if createError != nil {
		return fmt.Errorf(createSegmentsFileErrorTemplate, segmentsPath, createError)
	}
	defer segmentsFile.Close()

	csvWriter := csv.NewWriter(segmentsFile)
	if writeError := csvWriter.Write(segmentColumnNames); writeError != nil {
		return fmt.Errorf(writeSegmentsFileErrorTemplate, segmentsPath, writeError)
	}

	for _, segment := range segments {
		segmentRecord := []string{
			segment.SegmentIdentifier,
			segment.Name,
			segment.Coordinates,
			strconv.FormatInt(int64(segment.StrikeDegrees), baseTenConstant),
			strconv.FormatInt(int64(segment.DipDegrees), baseTenConstant),
			strconv.FormatInt(int64(segment.RakeDegrees), baseTenConstant),
			strconv.FormatInt(int64(segment.LengthKilometers), baseTenConstant),
			strconv.FormatInt(int64(segment.SeismogenicThicknessKilometers), baseTenConstant),
		}
		if writeError := csvWriter.Write(segmentRecord); writeError != nil {
			return fmt.Errorf(writeSegmentsFileErrorTemplate, segmentsPath, writeError)
		}
	}

	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return fmt.Errorf(writeSegmentsFileErrorTemplate, segmentsPath, flushError)
	}

	return nil
}
