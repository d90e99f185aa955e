package ports

import (
	"context"

	"go.trai.ch/wipt/internal/core/domain"
)

// Installer executes resolved plans against the platform installer engine.
//
//go:generate mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Install installs or reinstalls the plan's package.
	Install(ctx context.Context, plan *domain.InstallPlan) error

	// Remove uninstalls a package instance.
	Remove(ctx context.Context, plan *domain.RemovePlan) error

	// ApplyPatch applies a patch to an installed instance.
	ApplyPatch(ctx context.Context, patch domain.PatchPlan) error
}

// CommandRunner runs an external program and reports its exit code.
type CommandRunner interface {
	// Run executes name with args. A non-zero exit code is reported through code, not err;
	// err is reserved for failures to start the program.
	Run(ctx context.Context, name string, args ...string) (code int, err error)
}
