package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/quakeset/internal/utils"
)

const (
	faultsCommandNameConstant   = "faults"
	prepareCommandNameConstant  = "prepare"
	analyzeCommandNameConstant  = "analyze"
	assembleCommandNameConstant = "assemble"
	reportCommandNameConstant   = "report"
	verifyCommandNameConstant   = "verify"
	serveCommandNameConstant    = "serve"
)

func TestNewApplicationRegistersCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	expectedCommandNames := []string{
		faultsCommandNameConstant,
		prepareCommandNameConstant,
		analyzeCommandNameConstant,
		assembleCommandNameConstant,
		reportCommandNameConstant,
		verifyCommandNameConstant,
		serveCommandNameConstant,
	}
	for _, expectedCommandName := range expectedCommandNames {
		require.True(testInstance, registeredCommandNames[expectedCommandName], expectedCommandName)
	}
}

func TestApplicationRootCommandShowsHelp(testInstance *testing.T) {
	application := NewApplication()
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
}

func TestApplicationLoadsEmbeddedConfiguration(testInstance *testing.T) {
	application := NewApplication()
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
}

func TestResolveApplicationVersion(testInstance *testing.T) {
	require.NotEmpty(testInstance, resolveApplicationVersion())
}
