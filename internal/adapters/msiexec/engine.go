// Package msiexec implements an installer engine that drives the Windows Installer command-line tool.
package msiexec

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/wipt/internal/adapters/inventory"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Program is the installer executable.
const Program = "msiexec"

const (
	exitSuccess        = 0
	exitRebootRequired = 3010
)

var exitMessages = map[int]string{
	1601: "the Windows Installer service could not be accessed",
	1602: "installation canceled by the user",
	1603: "fatal error during installation",
	1605: "product is not currently installed",
	1618: "another installation is already in progress",
	1619: "installation package could not be opened",
	1620: "installation package is invalid",
	1625: "installation is forbidden by system policy",
	1633: "installation package is not supported on this platform",
	1638: "another version of this product is already installed",
	1642: "patch does not apply to the installed product",
}

// Engine implements ports.Installer and ports.InstalledState.
// Installed state is answered from the inventory, which records every operation msiexec completes.
type Engine struct {
	*inventory.Inventory

	runner ports.CommandRunner
	logger ports.Logger
}

// New creates an Engine running msiexec through runner.
func New(runner ports.CommandRunner, logger ports.Logger, inv *inventory.Inventory) *Engine {
	return &Engine{Inventory: inv, runner: runner, logger: logger}
}

// Install runs a quiet install of the plan's package and records it.
func (e *Engine) Install(ctx context.Context, plan *domain.InstallPlan) error {
	if plan.TargetDir == "" {
		if dir := os.Getenv("ProgramFiles"); dir != "" {
			e.logger.Warn("no target directory specified, defaulting to " + dir)
			copied := *plan
			copied.TargetDir = dir
			plan = &copied
		}
	}

	args := append([]string{"/i", PackagePath(plan.Package.URL), "/qn"}, Properties(plan)...)
	if err := e.run(ctx, "install", plan.Product, args); err != nil {
		return err
	}
	return e.Inventory.Install(ctx, plan)
}

// Remove runs a quiet uninstall of the instance and drops its record.
func (e *Engine) Remove(ctx context.Context, plan *domain.RemovePlan) error {
	args := []string{"/x", plan.ProductCode.String(), "/qn", "REBOOT=R"}
	if err := e.run(ctx, "remove", plan.Product, args); err != nil {
		return err
	}
	return e.Inventory.Remove(ctx, plan)
}

// ApplyPatch applies a patch to the installed instance and records it.
func (e *Engine) ApplyPatch(ctx context.Context, patch domain.PatchPlan) error {
	args := []string{"/p", PackagePath(patch.URL), "/n", patch.ProductCode.String(), "/qn", "REBOOT=R"}
	if err := e.run(ctx, "patch", patch.Name, args); err != nil {
		return err
	}
	return e.Inventory.ApplyPatch(ctx, patch)
}

func (e *Engine) run(ctx context.Context, operation, subject string, args []string) error {
	code, err := e.runner.Run(ctx, Program, args...)
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrInstallFailed.Error()), "operation", operation), "product", subject)
	}

	switch code {
	case exitSuccess:
		return nil
	case exitRebootRequired:
		e.logger.Warn("a restart is required to complete the " + operation + " of " + subject)
		return nil
	}

	failure := zerr.Wrap(domain.ErrInstallFailed, operation+" of "+subject+" failed")
	failure = zerr.With(failure, "exit_code", code)
	if msg, ok := exitMessages[code]; ok {
		failure = zerr.With(failure, "reason", msg)
	}
	return failure
}

// Properties renders the installer properties for an install plan.
// Values containing whitespace are quoted after the equals sign, the only form msiexec accepts.
func Properties(plan *domain.InstallPlan) []string {
	var props []string
	if len(plan.Transforms) > 0 {
		props = append(props, property("TRANSFORMS", plan.TransformChain()))
	}
	if plan.Reinstall {
		props = append(props, "REINSTALL=ALL", "REINSTALLMODE=vomus")
	}
	if plan.TargetDir != "" {
		props = append(props, property("TARGETDIR", plan.TargetDir))
	}
	props = append(props, "REBOOT=R")
	if !plan.PerUser {
		props = append(props, "ALLUSERS=1")
	}
	return props
}

func property(name, value string) string {
	if strings.ContainsAny(value, " \t") {
		value = `"` + value + `"`
	}
	return name + "=" + value
}

// PackagePath converts a package URL into a location msiexec accepts.
// The installer does not understand file URLs, so those become native paths.
func PackagePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return raw
	}

	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = "//" + u.Host + path
	} else if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(strings.TrimSpace(path))
}
