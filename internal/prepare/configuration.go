package prepare

import "strings"

const (
	defaultInputPathConstant  = "data/processed/marmara_catalog_processed.csv"
	defaultOutputPathConstant = "data/processed/processed_earthquakes.csv"
)

// CommandConfiguration captures configuration values for the prepare command.
type CommandConfiguration struct {
	InputPath              string  `mapstructure:"input"`
	OutputPath             string  `mapstructure:"output"`
	DefaultDepthKilometers float64 `mapstructure:"default_depth_km"`
}

// DefaultConfigurationValues exposes baseline configuration for the prepare command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".input":            defaultInputPathConstant,
		configurationKeyPrefix + ".output":           defaultOutputPathConstant,
		configurationKeyPrefix + ".default_depth_km": DefaultDepthKilometers,
	}
}

// sanitize trims configured paths without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	return sanitized
}
