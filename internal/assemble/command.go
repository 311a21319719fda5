package assemble

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
	commandUseConstant                    = "assemble"
	commandShortDescriptionConstant       = "Combine real and synthetic catalogs into the final dataset"
	commandLongDescriptionConstant        = "assemble merges the real catalog with synthetic catalogs, labels time-based cross-validation folds, and writes the combined dataset with its metrics."
	commandExecutionErrorTemplateConstant = "dataset assembly failed: %w"
	unexpectedArgumentsMessageConstant    = "assemble does not accept positional arguments"
	flagRealNameConstant                  = "real"
	flagRealDescriptionConstant           = "Path of the real catalog CSV file"
	flagSyntheticNameConstant             = "synthetic"
	flagSyntheticDescriptionConstant      = "Synthetic catalog CSV file (repeatable)"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Path of the combined dataset CSV file to write"
	flagMetricsNameConstant               = "metrics-output"
	flagMetricsDescriptionConstant        = "Path of the dataset metrics YAML artifact to write"
	flagSnapshotNameConstant              = "snapshot"
	flagSnapshotDescriptionConstant       = "Optional path of the snapshot database receiving the assembled dataset"
	outputDirectoryPermissionsOctal       = 0o755
	datasetAssembledMessageConstant       = "dataset assembled"
	foldLabeledMessageConstant            = "cross-validation fold labeled"
	logFieldOutputPathConstant            = "output_path"
	logFieldTotalEventsConstant           = "total_events"
	logFieldRealEventsConstant            = "real_events"
	logFieldSyntheticEventsConstant       = "synthetic_events"
	logFieldSnapshotIdentifierConstant    = "snapshot_id"
	logFieldFoldIndexConstant             = "fold_index"
	logFieldFoldStartYearConstant         = "start_year"
	logFieldFoldEndYearConstant           = "end_year"
	logFieldEventCountConstant            = "event_count"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for dataset assembly.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the assemble command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagRealNameConstant, "", flagRealDescriptionConstant)
	command.Flags().StringSlice(flagSyntheticNameConstant, nil, flagSyntheticDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)
	command.Flags().String(flagMetricsNameConstant, "", flagMetricsDescriptionConstant)
	command.Flags().String(flagSnapshotNameConstant, "", flagSnapshotDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := builder.resolveOptions(command)
	logger := builder.resolveLogger()

	for _, artifactPath := range []string{options.OutputPath, options.MetricsPath, options.SnapshotPath} {
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

	result, assembleError := service.Assemble(command.Context(), options)
	if assembleError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, assembleError)
	}

	logger.Info(
		datasetAssembledMessageConstant,
		zap.String(logFieldOutputPathConstant, options.OutputPath),
		zap.Int(logFieldTotalEventsConstant, result.Metrics.TotalEvents),
		zap.Int(logFieldRealEventsConstant, result.Metrics.RealEvents),
		zap.Int(logFieldSyntheticEventsConstant, result.Metrics.SyntheticEvents),
		zap.String(logFieldSnapshotIdentifierConstant, result.SnapshotIdentifier),
	)

	for _, foldEventCount := range result.Metrics.FoldEventCounts {
		logger.Debug(
			foldLabeledMessageConstant,
			zap.Int(logFieldFoldIndexConstant, foldEventCount.Index),
			zap.Int(logFieldFoldStartYearConstant, foldEventCount.StartYear),
			zap.Int(logFieldFoldEndYearConstant, foldEventCount.EndYear),
			zap.Int(logFieldEventCountConstant, foldEventCount.EventCount),
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
		RealCatalogPath:       configuration.RealCatalogPath,
		SyntheticCatalogPaths: configuration.SyntheticCatalogPaths,
		OutputPath:            configuration.OutputPath,
		MetricsPath:           configuration.MetricsPath,
		SnapshotPath:          configuration.SnapshotPath,
		FoldWindows:           configuration.FoldWindows,
	}

	if flagValue, _ := command.Flags().GetString(flagRealNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.RealCatalogPath = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(flagSyntheticNameConstant) {
		flagValues, _ := command.Flags().GetStringSlice(flagSyntheticNameConstant)
		options.SyntheticCatalogPaths = sanitizePaths(flagValues)
	}
	if flagValue, _ := command.Flags().GetString(flagOutputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.OutputPath = strings.TrimSpace(flagValue)
	}
	if flagValue, _ := command.Flags().GetString(flagMetricsNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.MetricsPath = strings.TrimSpace(flagValue)
	}
	if flagValue, _ := command.Flags().GetString(flagSnapshotNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		options.SnapshotPath = strings.TrimSpace(flagValue)
	}

	if len(options.RealCatalogPath) == 0 {
		options.RealCatalogPath = defaultRealCatalogPathConstant
	}
	if len(options.OutputPath) == 0 {
		options.OutputPath = defaultOutputPathConstant
	}
	if len(options.MetricsPath) == 0 {
		options.MetricsPath = defaultMetricsPathConstant
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
