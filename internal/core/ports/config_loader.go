package ports

import "go.trai.ch/wipt/internal/core/domain"

// ConfigLoader defines the interface for loading client settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the machine and user configuration layers, applies environment
	// overrides and returns the effective settings. Missing files are not an error.
	Load() (*domain.Settings, error)
}
