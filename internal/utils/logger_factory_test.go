package utils_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/quakeset/internal/utils"
)

const (
	loggerSubtestNameTemplateConstant     = "%d_%s"
	testCaseStructuredInfoMessageConstant = "structured info logger"
	testCaseConsoleDebugMessageConstant   = "console debug logger"
	testCaseUnknownLevelMessageConstant   = "unknown level is rejected"
	testCaseUnknownFormatMessageConstant  = "unknown format is rejected"
	unknownLogLevelConstant               = utils.LogLevel("verbose")
	unknownLogFormatConstant              = utils.LogFormat("plain")
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name               string
		logLevel           utils.LogLevel
		logFormat          utils.LogFormat
		expectError        bool
		expectDebugEnabled bool
	}{
		{
			name:               testCaseStructuredInfoMessageConstant,
			logLevel:           utils.LogLevelInfo,
			logFormat:          utils.LogFormatStructured,
			expectError:        false,
			expectDebugEnabled: false,
		},
		{
			name:               testCaseConsoleDebugMessageConstant,
			logLevel:           utils.LogLevelDebug,
			logFormat:          utils.LogFormatConsole,
			expectError:        false,
			expectDebugEnabled: true,
		},
		{
			name:        testCaseUnknownLevelMessageConstant,
			logLevel:    unknownLogLevelConstant,
			logFormat:   utils.LogFormatStructured,
			expectError: true,
		},
		{
			name:        testCaseUnknownFormatMessageConstant,
			logLevel:    utils.LogLevelInfo,
			logFormat:   unknownLogFormatConstant,
			expectError: true,
		},
	}

	loggerFactory := utils.NewLoggerFactory()

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(loggerSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			logger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
			require.Equal(testInstance, testCase.expectDebugEnabled, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
