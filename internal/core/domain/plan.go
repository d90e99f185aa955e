package domain

import (
	"strings"
)

// Action is the outcome of resolving a single request.
type Action string

const (
	// ActionInstall installs a package, either fresh or as a minor upgrade.
	ActionInstall Action = "install"
	// ActionSkip means nothing needs to be done.
	ActionSkip Action = "skip"
	// ActionPatch applies outstanding patches to an installed instance.
	ActionPatch Action = "patch"
)

// Request is a user request of the form "name" or "name=version".
type Request struct {
	Name string
	// Version is nil when the user did not ask for a specific version.
	Version *Version
}

// ParseRequest splits "name[=version]" into a Request.
func ParseRequest(s string) Request {
	name, ver, found := strings.Cut(strings.TrimSpace(s), "=")
	req := Request{Name: strings.TrimSpace(name)}
	if found && strings.TrimSpace(ver) != "" {
		v := ParseVersion(ver)
		req.Version = &v
	}
	return req
}

// String renders the request back into "name[=version]" form.
func (r Request) String() string {
	if r.Version == nil {
		return r.Name
	}
	return r.Name + "=" + r.Version.String()
}

// InstallOptions are the per-command switches that shape an install plan.
type InstallOptions struct {
	IgnoreTransforms bool
	IgnorePatches    bool
	PerUser          bool
	TargetDir        string
}

// PatchPlan is a single patch application against an installed package instance.
type PatchPlan struct {
	PatchCode   Code
	Name        string
	URL         string
	ProductCode Code
}

// InstallPlan is the resolved intent for one install request.
// It is a structured description; turning it into installer property syntax is the engine's job.
type InstallPlan struct {
	Product     string
	UpgradeCode Code
	Action      Action
	Reason      string

	// Version is the resolved target version.
	Version Version
	Package Package

	// Transforms holds the URLs of every applicable transform in manifest order.
	Transforms []string

	// Reinstall is set when an instance of the product is already installed,
	// making this a minor upgrade over that instance rather than a fresh install.
	Reinstall bool

	TargetDir string
	PerUser   bool

	Patches []PatchPlan

	// MissingDependencies lists declared dependencies that are not satisfied by installed products.
	MissingDependencies []Dependency
}

// TransformChain joins the transform URLs into the single chain value installers expect.
func (p InstallPlan) TransformChain() string {
	return strings.Join(p.Transforms, ";")
}

// RemovePlan is the resolved intent for one remove request.
type RemovePlan struct {
	Product     string
	ProductCode Code
	Version     Version
}

// UpgradePlan is the resolved intent for one product during an upgrade run.
// Exactly one of Install or Patches is meaningful, selected by Action.
type UpgradePlan struct {
	Product string
	Action  Action
	Install *InstallPlan
	Patches []PatchPlan
}

// InstallState is the installer engine's view of a package instance.
type InstallState int

const (
	// StateUnknown means the engine does not recognize the product code.
	StateUnknown InstallState = iota
	// StateAbsent means the product is not installed for this user or machine.
	StateAbsent
	// StateRemoved means the product is being removed.
	StateRemoved
	// StateAdvertised means the product is advertised but not installed.
	StateAdvertised
	// StateInstalled means the product is installed.
	StateInstalled
)

// IsInstalled reports whether the state counts as an installed instance.
// Everything except unknown, absent and removed does.
func (s InstallState) IsInstalled() bool {
	switch s {
	case StateUnknown, StateAbsent, StateRemoved:
		return false
	default:
		return true
	}
}

// String returns a readable name for the state.
func (s InstallState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateRemoved:
		return "removed"
	case StateAdvertised:
		return "advertised"
	case StateInstalled:
		return "installed"
	default:
		return "unknown"
	}
}

// Instance is an installed package instance of a product.
type Instance struct {
	ProductCode Code
	Version     Version
}
