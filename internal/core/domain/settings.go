package domain

// Engine names an installer engine implementation.
type Engine string

const (
	// EngineInventory records operations in a local inventory file without touching the system.
	EngineInventory Engine = "inventory"
	// EngineMsiexec drives the platform msiexec tool.
	EngineMsiexec Engine = "msiexec"
)

// Settings is the effective client configuration.
type Settings struct {
	// Repositories lists the repository source URLs in the order they are merged.
	Repositories []string

	// TargetDir is the default install directory. Empty lets the engine decide.
	TargetDir string

	// PerUser installs for the current user only instead of all users.
	PerUser bool

	// CachePath is the location of the persisted repository cache.
	CachePath string

	// InventoryPath is the location of the installed-product inventory.
	InventoryPath string

	// Engine selects the installer engine.
	Engine Engine
}

// DefaultSettings returns the settings used when no configuration layer sets a value.
func DefaultSettings() *Settings {
	return &Settings{
		CachePath:     DefaultCachePath(),
		InventoryPath: DefaultInventoryPath(),
		Engine:        EngineInventory,
	}
}
