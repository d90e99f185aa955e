package domain

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppDirName is the name of the per-user and machine-wide application directory.
	AppDirName = "wipt"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "wipt.yaml"

	// CacheFileName is the name of the persisted repository cache.
	CacheFileName = "cache.json.zst"

	// InventoryFileName is the name of the installed-product inventory used by the inventory engine.
	InventoryFileName = "inventory.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultMachineConfigPath returns the machine-wide configuration file path.
func DefaultMachineConfigPath() string {
	if runtime.GOOS == "windows" {
		base := os.Getenv("ProgramData")
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, AppDirName, ConfigFileName)
	}
	return filepath.Join("/etc", AppDirName, ConfigFileName)
}

// DefaultUserConfigPath returns the per-user configuration file path.
// It returns an empty string when no user configuration directory is available.
func DefaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppDirName, ConfigFileName)
}

// DefaultCachePath returns the per-user repository cache path.
// It falls back to the temporary directory when no user cache directory is available.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppDirName, CacheFileName)
}

// DefaultInventoryPath returns the per-user inventory path.
func DefaultInventoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, AppDirName, InventoryFileName)
}
