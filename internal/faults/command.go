package faults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "faults"
	commandShortDescriptionConstant       = "Export the built-in Marmara fault segment table"
	commandLongDescriptionConstant        = "faults writes the simplified North Anatolian Fault segments for the Marmara region to a CSV file."
	commandExecutionErrorTemplateConstant = "fault export failed: %w"
	unexpectedArgumentsMessageConstant    = "faults does not accept positional arguments"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Path of the fault segments CSV file to write"
	defaultOutputPathConstant             = "data/raw/marmara_faults.csv"
	outputDirectoryPermissionsOctal       = 0o755
	segmentsWrittenMessageConstant        = "fault segments exported"
	logFieldOutputPathConstant            = "output_path"
	logFieldSegmentCountConstant          = "segment_count"
	logFieldCoordinateCountConstant       = "coordinate_count"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration values for the fault export command.
type CommandConfiguration struct {
	OutputPath string `mapstructure:"output"`
}

// DefaultConfigurationValues exposes baseline configuration for the fault export command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".output": defaultOutputPathConstant,
	}
}

// CommandBuilder assembles the Cobra command exporting fault segments.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the faults command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	outputPath := builder.resolveOutputPath(command)
	logger := builder.resolveLogger()

	outputDirectory := filepath.Dir(outputPath)
	if directoryError := os.MkdirAll(outputDirectory, outputDirectoryPermissionsOctal); directoryError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, directoryError)
	}

	segments := MarmaraSegments()

	coordinateCount := 0
	for _, segment := range segments {
		coordinates, coordinatesError := ParseCoordinates(segment.Coordinates)
		if coordinatesError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, coordinatesError)
		}
		coordinateCount += len(coordinates)
	}

	if writeError := WriteSegmentsCSV(outputPath, segments); writeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, writeError)
	}

	logger.Info(
		segmentsWrittenMessageConstant,
		zap.String(logFieldOutputPathConstant, outputPath),
		zap.Int(logFieldSegmentCountConstant, len(segments)),
		zap.Int(logFieldCoordinateCountConstant, coordinateCount),
	)

	return nil
}

func (builder *CommandBuilder) resolveOutputPath(command *cobra.Command) string {
	flagValue, _ := command.Flags().GetString(flagOutputNameConstant)
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	if builder.ConfigurationProvider != nil {
		configuredPath := strings.TrimSpace(builder.ConfigurationProvider().OutputPath)
		if len(configuredPath) > 0 {
			return configuredPath
		}
	}

	return defaultOutputPathConstant
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
