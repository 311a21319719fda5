package server

import (
	"strings"

	"github.com/temirov/quakeset/internal/catalog"
)

const (
	defaultListenAddressConstant = ":8080"
	defaultSnapshotPathConstant  = "data/processed/snapshots.db"
)

// CommandConfiguration captures configuration values for the serve command.
type CommandConfiguration struct {
	ListenAddress string               `mapstructure:"address"`
	SnapshotPath  string               `mapstructure:"snapshot"`
	FoldWindows   []catalog.FoldWindow `mapstructure:"fold_windows"`
}

// DefaultConfigurationValues exposes baseline configuration for the serve command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".address":  defaultListenAddressConstant,
		configurationKeyPrefix + ".snapshot": defaultSnapshotPathConstant,
	}
}

// sanitize trims configured values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ListenAddress = strings.TrimSpace(configuration.ListenAddress)
	sanitized.SnapshotPath = strings.TrimSpace(configuration.SnapshotPath)
	return sanitized
}
