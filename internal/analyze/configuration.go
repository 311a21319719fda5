package analyze

import "strings"

const (
	defaultInputPathConstant      = "data/processed/processed_earthquakes.csv"
	defaultStatisticsPathConstant = "outputs/catalog_statistics.yaml"
	defaultBValuePathConstant     = "data/processed/b_value.txt"
)

// CommandConfiguration captures configuration values for the analyze command.
type CommandConfiguration struct {
	InputPath             string    `mapstructure:"input"`
	StatisticsOutputPath  string    `mapstructure:"statistics_output"`
	BValueOutputPath      string    `mapstructure:"b_value_output"`
	MinimumMagnitude      float64   `mapstructure:"minimum_magnitude"`
	CompletenessMagnitude float64   `mapstructure:"completeness_magnitude"`
	BValueThresholds      []float64 `mapstructure:"b_value_thresholds"`
}

// DefaultConfigurationValues exposes baseline configuration for the analyze command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".input":                  defaultInputPathConstant,
		configurationKeyPrefix + ".statistics_output":      defaultStatisticsPathConstant,
		configurationKeyPrefix + ".b_value_output":         defaultBValuePathConstant,
		configurationKeyPrefix + ".minimum_magnitude":      DefaultMinimumMagnitude,
		configurationKeyPrefix + ".completeness_magnitude": DefaultCompletenessMagnitude,
	}
}

// sanitize trims configured paths without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	sanitized.StatisticsOutputPath = strings.TrimSpace(configuration.StatisticsOutputPath)
	sanitized.BValueOutputPath = strings.TrimSpace(configuration.BValueOutputPath)
	return sanitized
}
