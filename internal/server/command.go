package server

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/quakeset/internal/snapshot"
)

const (
	serveCommandUseConstant              = "serve"
	serveCommandShortDescriptionConstant = "Serve assembled dataset snapshots over HTTP"
	serveCommandLongDescriptionConstant  = "serve exposes stored dataset snapshots over an HTTP API, including dataset metrics, fold counts, and the rendered markdown report."
	serveExecutionErrorTemplateConstant  = "http server failed: %w"
	unexpectedArgumentsMessageConstant   = "the serve command does not accept positional arguments"
	flagAddressNameConstant              = "address"
	flagAddressDescriptionConstant       = "Listen address for the HTTP server"
	flagSnapshotNameConstant             = "snapshot"
	flagSnapshotDescriptionConstant      = "Path of the snapshot database to serve"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command serving snapshots over HTTP.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the serve command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   serveCommandUseConstant,
		Short: serveCommandShortDescriptionConstant,
		Long:  serveCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagAddressNameConstant, "", flagAddressDescriptionConstant)
	command.Flags().String(flagSnapshotNameConstant, "", flagSnapshotDescriptionConstant)

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

	listenAddress := configuration.ListenAddress
	if flagValue, _ := command.Flags().GetString(flagAddressNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		listenAddress = strings.TrimSpace(flagValue)
	}
	if len(listenAddress) == 0 {
		listenAddress = defaultListenAddressConstant
	}

	snapshotPath := configuration.SnapshotPath
	if flagValue, _ := command.Flags().GetString(flagSnapshotNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		snapshotPath = strings.TrimSpace(flagValue)
	}
	if len(snapshotPath) == 0 {
		snapshotPath = defaultSnapshotPathConstant
	}

	logger := builder.resolveLogger()

	snapshotStore, openError := snapshot.OpenStore(snapshotPath)
	if openError != nil {
		return fmt.Errorf(serveExecutionErrorTemplateConstant, openError)
	}
	defer func() {
		_ = snapshotStore.Close()
	}()

	executionContext, stopSignalHandling := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignalHandling()

	serverInstance := NewServer(snapshotStore, configuration.FoldWindows, logger)
	if runError := serverInstance.Run(executionContext, listenAddress); runError != nil {
		return fmt.Errorf(serveExecutionErrorTemplateConstant, runError)
	}

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
