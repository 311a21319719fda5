package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	reportCommandUseConstant               = "report"
	reportCommandShortDescriptionConstant  = "Render the synthetic dataset report from an assembled catalog"
	reportCommandLongDescriptionConstant   = "report summarizes an assembled dataset into the fixed markdown report covering totals, methods, magnitude distribution, time period, and cross-validation folds."
	verifyCommandUseConstant               = "verify"
	verifyCommandShortDescriptionConstant  = "Check an existing dataset report for internal consistency"
	verifyCommandLongDescriptionConstant   = "verify parses a rendered dataset report and checks that every subtotal it states is consistent with its totals."
	reportExecutionErrorTemplateConstant   = "report generation failed: %w"
	verifyExecutionErrorTemplateConstant   = "report verification failed: %w"
	unexpectedArgumentsMessageConstant     = "the command does not accept positional arguments"
	inconsistentReportMessageTemplateConst = "report %s is inconsistent: %d violation(s)"
	flagInputNameConstant                  = "input"
	reportFlagInputDescriptionConstant     = "Path of the assembled dataset CSV file"
	verifyFlagInputDescriptionConstant     = "Path of the rendered report markdown file"
	flagOutputNameConstant                 = "output"
	flagOutputDescriptionConstant          = "Path of the report markdown file to write"
	outputDirectoryPermissionsOctal        = 0o755
	reportFilePermissionsOctal             = 0o644
	reportRenderedMessageConstant          = "report rendered"
	reportVerifiedMessageConstant          = "report verified"
	consistencyViolationMessageConstant    = "consistency violation"
	logFieldInputPathConstant              = "input_path"
	logFieldOutputPathConstant             = "output_path"
	logFieldTotalEventsConstant            = "total_events"
	logFieldViolationCodeConstant          = "code"
	logFieldViolationDescriptionConstant   = "description"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command rendering the dataset report.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   reportCommandUseConstant,
		Short: reportCommandShortDescriptionConstant,
		Long:  reportCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", reportFlagInputDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().sanitize()
	}

	inputPath := configuration.InputPath
	if flagValue, _ := command.Flags().GetString(flagInputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		inputPath = strings.TrimSpace(flagValue)
	}
	if len(inputPath) == 0 {
		inputPath = defaultInputPathConstant
	}

	outputPath := configuration.OutputPath
	if flagValue, _ := command.Flags().GetString(flagOutputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		outputPath = strings.TrimSpace(flagValue)
	}
	if len(outputPath) == 0 {
		outputPath = defaultOutputPathConstant
	}

	foldWindows := configuration.FoldWindows
	if len(foldWindows) == 0 {
		foldWindows = catalog.DefaultFoldWindows()
	}

	logger := builder.resolveLogger()

	events, readError := catalog.ReadCatalog(inputPath)
	if readError != nil {
		return fmt.Errorf(reportExecutionErrorTemplateConstant, readError)
	}

	document := BuildDocument(events, foldWindows)
	renderedReport := Render(document)

	if directoryError := os.MkdirAll(filepath.Dir(outputPath), outputDirectoryPermissionsOctal); directoryError != nil {
		return fmt.Errorf(reportExecutionErrorTemplateConstant, directoryError)
	}

	if writeError := os.WriteFile(outputPath, []byte(renderedReport), reportFilePermissionsOctal); writeError != nil {
		return fmt.Errorf(reportExecutionErrorTemplateConstant, writeError)
	}

	logger.Info(
		reportRenderedMessageConstant,
		zap.String(logFieldInputPathConstant, inputPath),
		zap.String(logFieldOutputPathConstant, outputPath),
		zap.Int(logFieldTotalEventsConstant, document.TotalEvents),
	)

	return nil
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

// VerifyCommandBuilder assembles the Cobra command checking report consistency.
type VerifyCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() VerifyConfiguration
}

// Build constructs the verify command.
func (builder *VerifyCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortDescriptionConstant,
		Long:  verifyCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", verifyFlagInputDescriptionConstant)

	return command, nil
}

func (builder *VerifyCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := VerifyConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().sanitize()
	}

	inputPath := configuration.InputPath
	if flagValue, _ := command.Flags().GetString(flagInputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		inputPath = strings.TrimSpace(flagValue)
	}
	if len(inputPath) == 0 {
		inputPath = defaultOutputPathConstant
	}

	logger := builder.resolveLogger()

	renderedReport, readError := os.ReadFile(inputPath)
	if readError != nil {
		return fmt.Errorf(verifyExecutionErrorTemplateConstant, readError)
	}

	document, parseError := Parse(string(renderedReport))
	if parseError != nil {
		return fmt.Errorf(verifyExecutionErrorTemplateConstant, parseError)
	}

	violations := Validate(document)
	for _, violation := range violations {
		logger.Warn(
			consistencyViolationMessageConstant,
			zap.String(logFieldViolationCodeConstant, violation.Code),
			zap.String(logFieldViolationDescriptionConstant, violation.Description),
		)
	}

	if len(violations) > 0 {
		return fmt.Errorf(inconsistentReportMessageTemplateConst, inputPath, len(violations))
	}

	logger.Info(
		reportVerifiedMessageConstant,
		zap.String(logFieldInputPathConstant, inputPath),
		zap.Int(logFieldTotalEventsConstant, document.TotalEvents),
	)

	return nil
}

func (builder *VerifyCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
