package assemble

import (
	"strings"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	defaultRealCatalogPathConstant = "data/processed/processed_earthquakes.csv"
	defaultOutputPathConstant      = "data/processed/final_dataset_v1.csv"
	defaultMetricsPathConstant     = "outputs/dataset_metrics.yaml"
)

// DefaultSyntheticCatalogPaths lists the synthetic catalogs combined by default.
func DefaultSyntheticCatalogPaths() []string {
	return []string{
		"data/processed/synthetic_bootstrap_v1.csv",
		"data/processed/synthetic_physics_snapshots_v1.csv",
		"data/processed/synthetic_simple_v1.csv",
	}
}

// CommandConfiguration captures configuration values for the assemble command.
type CommandConfiguration struct {
	RealCatalogPath       string               `mapstructure:"real"`
	SyntheticCatalogPaths []string             `mapstructure:"synthetic"`
	OutputPath            string               `mapstructure:"output"`
	MetricsPath           string               `mapstructure:"metrics_output"`
	SnapshotPath          string               `mapstructure:"snapshot"`
	FoldWindows           []catalog.FoldWindow `mapstructure:"fold_windows"`
}

// DefaultConfigurationValues exposes baseline configuration for the assemble command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".real":           defaultRealCatalogPathConstant,
		configurationKeyPrefix + ".synthetic":      DefaultSyntheticCatalogPaths(),
		configurationKeyPrefix + ".output":         defaultOutputPathConstant,
		configurationKeyPrefix + ".metrics_output": defaultMetricsPathConstant,
	}
}

// sanitize trims configured values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RealCatalogPath = strings.TrimSpace(configuration.RealCatalogPath)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.MetricsPath = strings.TrimSpace(configuration.MetricsPath)
	sanitized.SnapshotPath = strings.TrimSpace(configuration.SnapshotPath)
	sanitized.SyntheticCatalogPaths = sanitizePaths(configuration.SyntheticCatalogPaths)

	return sanitized
}

func sanitizePaths(rawPaths []string) []string {
	sanitizedPaths := make([]string, 0, len(rawPaths))
	for _, candidatePath := range rawPaths {
		trimmedPath := strings.TrimSpace(candidatePath)
		if len(trimmedPath) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, trimmedPath)
	}
	return sanitizedPaths
}
