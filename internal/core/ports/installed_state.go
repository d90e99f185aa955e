package ports

import "go.trai.ch/wipt/internal/core/domain"

// InstalledState is the installer engine's view of what is on the machine.
//
//go:generate mockgen -source=installed_state.go -destination=mocks/mock_installed_state.go -package=mocks
type InstalledState interface {
	// QueryState reports the state of a package instance.
	QueryState(productCode domain.Code) (domain.InstallState, error)

	// EnumRelatedProducts lists every locally known instance sharing an upgrade code.
	EnumRelatedProducts(upgradeCode domain.Code) ([]domain.Code, error)

	// InstalledVersion returns the version string recorded for an instance.
	InstalledVersion(productCode domain.Code) (string, error)

	// AppliedPatches lists the patch codes already applied to an instance.
	AppliedPatches(productCode domain.Code) ([]domain.Code, error)
}
