package analyze

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
	commandUseConstant                    = "analyze"
	commandShortDescriptionConstant       = "Compute catalog statistics and Gutenberg-Richter b-values"
	commandLongDescriptionConstant        = "analyze summarizes a canonical catalog: yearly counts, magnitude bins, and maximum-likelihood b-value estimates, persisting YAML and b-value artifacts."
	commandExecutionErrorTemplateConstant = "catalog analysis failed: %w"
	unexpectedArgumentsMessageConstant    = "analyze does not accept positional arguments"
	flagInputNameConstant                 = "input"
	flagInputDescriptionConstant          = "Path of the canonical catalog CSV file"
	flagStatisticsNameConstant            = "statistics-output"
	flagStatisticsDescriptionConstant     = "Path of the statistics YAML artifact to write"
	flagBValueNameConstant                = "b-value-output"
	flagBValueDescriptionConstant         = "Path of the b-value artifact to write"
	outputDirectoryPermissionsOctal       = 0o755
	catalogAnalyzedMessageConstant        = "catalog analyzed"
	bValueEstimateMessageConstant         = "b-value estimated"
	logFieldInputPathConstant             = "input_path"
	logFieldAnalyzedEventsConstant        = "analyzed_events"
	logFieldTotalEventsConstant           = "total_events"
	logFieldDateRangeStartConstant        = "date_range_start"
	logFieldDateRangeEndConstant          = "date_range_end"
	logFieldMinimumMagnitudeConstant      = "minimum_magnitude"
	logFieldBValueConstant                = "b_value"
	logFieldUncertaintyConstant           = "uncertainty"
	logFieldEventCountConstant            = "event_count"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for catalog analysis.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the analyze command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", flagInputDescriptionConstant)
	command.Flags().String(flagStatisticsNameConstant, "", flagStatisticsDescriptionConstant)
	command.Flags().String(flagBValueNameConstant, "", flagBValueDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.resolveOptions(command)
	logger := builder.resolveLogger()

	for _, artifactPath := range []string{options.StatisticsOutputPath, options.BValueOutputPath} {
		if len(artifactPath) == 0 {
			continue
		}
		if directoryError := os.MkdirAll(filepath.Dir(artifactPath), outputDirectoryPermissionsOctal); directoryError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, directoryError)
		}
	}

	service, serviceError := NewService(logger)
	if serviceError != nil {
		return serviceError
	}

	statistics, analyzeError := service.Analyze(options)
	if analyzeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, analyzeError)
	}

	logger.Info(
		catalogAnalyzedMessageConstant,
		zap.String(logFieldInputPathConstant, options.InputPath),
		zap.Int(logFieldTotalEventsConstant, statistics.TotalEvents),
		zap.Int(logFieldAnalyzedEventsConstant, statistics.AnalyzedEvents),
		zap.Time(logFieldDateRangeStartConstant, statistics.DateRangeStart),
		zap.Time(logFieldDateRangeEndConstant, statistics.DateRangeEnd),
	)

	for _, estimate := range statistics.BValueEstimates {
		logger.Info(
			bValueEstimateMessageConstant,
			zap.Float64(logFieldMinimumMagnitudeConstant, estimate.MinimumMagnitude),
			zap.Float64(logFieldBValueConstant, estimate.BValue),
			zap.Float64(logFieldUncertaintyConstant, estimate.Uncertainty),
			zap.Int(logFieldEventCountConstant, estimate.EventCount),
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
		InputPath:             configuration.InputPath,
		StatisticsOutputPath:  configuration.StatisticsOutputPath,
		BValueOutputPath:      configuration.BValueOutputPath,
		MinimumMagnitude:      configuration.MinimumMagnitude,
		CompletenessMagnitude: configuration.CompletenessMagnitude,
		BValueThresholds:      configuration.BValueThresholds,
	}

	if flagValue, _ := command.Flags().GetString(flagInputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.InputPath = strings.TrimSpace(flagValue)
	}
	if flagValue, _ := command.Flags().GetString(flagStatisticsNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.StatisticsOutputPath = strings.TrimSpace(flagValue)
	}
	if flagValue, _ := command.Flags().GetString(flagBValueNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.BValueOutputPath = strings.TrimSpace(flagValue)
	}

	if len(options.InputPath) == 0 {
		options.InputPath = defaultInputPathConstant
	}
	if len(options.StatisticsOutputPath) == 0 {
		options.StatisticsOutputPath = defaultStatisticsPathConstant
	}
	if len(options.BValueOutputPath) == 0 {
		options.BValueOutputPath = defaultBValuePathConstant
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
