package prepare

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
	commandUseConstant                    = "prepare"
	commandShortDescriptionConstant       = "Normalize a raw earthquake catalog into the canonical schema"
	commandLongDescriptionConstant        = "prepare maps raw catalog exports onto the canonical column set, stamps real-event defaults, and writes the processed catalog."
	commandExecutionErrorTemplateConstant = "catalog preparation failed: %w"
	unexpectedArgumentsMessageConstant    = "prepare does not accept positional arguments"
	flagInputNameConstant                 = "input"
	flagInputDescriptionConstant          = "Path of the raw catalog CSV file"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Path of the canonical catalog CSV file to write"
	flagDefaultDepthNameConstant          = "default-depth"
	flagDefaultDepthDescriptionConstant   = "Depth in kilometers substituted when the raw catalog lacks depth values"
	outputDirectoryPermissionsOctal       = 0o755
	catalogPreparedMessageConstant        = "catalog prepared"
	magnitudeRangeCountMessageConstant    = "magnitude range counted"
	logFieldInputPathConstant             = "input_path"
	logFieldOutputPathConstant            = "output_path"
	logFieldTotalEventsConstant           = "total_events"
	logFieldMagnitudeMinimumConstant      = "magnitude_min"
	logFieldMagnitudeMaximumConstant      = "magnitude_max"
	logFieldDepthMinimumConstant          = "depth_min_km"
	logFieldDepthMaximumConstant          = "depth_max_km"
	logFieldDateRangeStartConstant        = "date_range_start"
	logFieldDateRangeEndConstant          = "date_range_end"
	logFieldMagnitudeRangeConstant        = "magnitude_range"
	logFieldEventCountConstant            = "event_count"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for catalog preparation.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the prepare command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", flagInputDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)
	command.Flags().Float64(flagDefaultDepthNameConstant, 0, flagDefaultDepthDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.resolveOptions(command)
	logger := builder.resolveLogger()

	outputDirectory := filepath.Dir(options.OutputPath)
	if directoryError := os.MkdirAll(outputDirectory, outputDirectoryPermissionsOctal); directoryError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, directoryError)
	}

	service, serviceError := NewService(logger)
	if serviceError != nil {
		return serviceError
	}

	summary, prepareError := service.Prepare(options)
	if prepareError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, prepareError)
	}

	logger.Info(
		catalogPreparedMessageConstant,
		zap.String(logFieldInputPathConstant, options.InputPath),
		zap.String(logFieldOutputPathConstant, options.OutputPath),
		zap.Int(logFieldTotalEventsConstant, summary.TotalEvents),
		zap.Float64(logFieldMagnitudeMinimumConstant, summary.MagnitudeMinimum),
		zap.Float64(logFieldMagnitudeMaximumConstant, summary.MagnitudeMaximum),
		zap.Float64(logFieldDepthMinimumConstant, summary.DepthMinimumKilometers),
		zap.Float64(logFieldDepthMaximumConstant, summary.DepthMaximumKilometers),
		zap.Time(logFieldDateRangeStartConstant, summary.DateRangeStart),
		zap.Time(logFieldDateRangeEndConstant, summary.DateRangeEnd),
	)

	for _, magnitudeRangeCount := range summary.MagnitudeRangeCounts {
		logger.Debug(
			magnitudeRangeCountMessageConstant,
			zap.String(logFieldMagnitudeRangeConstant, magnitudeRangeCount.Range.Label()),
			zap.Int(logFieldEventCountConstant, magnitudeRangeCount.EventCount),
		)
	}

	return nil
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) Options {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().sanitize()
	}

	options := Options{
		InputPath:              configuration.InputPath,
		OutputPath:             configuration.OutputPath,
		DefaultDepthKilometers: configuration.DefaultDepthKilometers,
	}

	if flagValue, _ := command.Flags().GetString(flagInputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.InputPath = strings.TrimSpace(flagValue)
	}
	if flagValue, _ := command.Flags().GetString(flagOutputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.OutputPath = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(flagDefaultDepthNameConstant) {
		flagValue, _ := command.Flags().GetFloat64(flagDefaultDepthNameConstant)
		options.DefaultDepthKilometers = flagValue
	}

	if len(options.InputPath) == 0 {
		options.InputPath = defaultInputPathConstant
	}
	if len(options.OutputPath) == 0 {
		options.OutputPath = defaultOutputPathConstant
	}

	return options
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
