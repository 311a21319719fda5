package report

import (
	"strings"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	defaultInputPathConstant  = "data/processed/final_dataset_v1.csv"
	defaultOutputPathConstant = "outputs/synthetic_data_report.md"
)

// CommandConfiguration captures configuration values for the report command.
type CommandConfiguration struct {
	InputPath   string               `mapstructure:"input"`
	OutputPath  string               `mapstructure:"output"`
	FoldWindows []catalog.FoldWindow `mapstructure:"fold_windows"`
}

// VerifyConfiguration captures configuration values for the verify command.
type VerifyConfiguration struct {
	InputPath string `mapstructure:"input"`
}

// DefaultConfigurationValues exposes baseline configuration for the report command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".input":  defaultInputPathConstant,
		configurationKeyPrefix + ".output": defaultOutputPathConstant,
	}
}

// DefaultVerifyConfigurationValues exposes baseline configuration for the verify command.
func DefaultVerifyConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".input": defaultOutputPathConstant,
	}
}

// sanitize trims configured paths without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	return sanitized
}

// sanitize trims configured paths without applying implicit defaults.
func (configuration VerifyConfiguration) sanitize() VerifyConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	return sanitized
}
