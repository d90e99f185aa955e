// Package engine selects the installer engine named in the settings.
package engine

import (
	"go.trai.ch/wipt/internal/adapters/inventory"
	"go.trai.ch/wipt/internal/adapters/msiexec"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine both executes plans and answers installed-state queries.
type Engine interface {
	ports.Installer
	ports.InstalledState
}

// New returns the engine selected by settings.Engine.
func New(settings *domain.Settings, runner ports.CommandRunner, logger ports.Logger) (Engine, error) {
	inv := inventory.New(settings.InventoryPath)

	switch settings.Engine {
	case domain.EngineInventory, "":
		return inv, nil
	case domain.EngineMsiexec:
		return msiexec.New(runner, logger, inv), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownEngine, string(settings.Engine)), "engine", string(settings.Engine))
	}
}
