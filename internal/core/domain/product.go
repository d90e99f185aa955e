package domain

import "slices"

// Package is one installable artifact (an MSI) of a product at a specific version.
type Package struct {
	ProductCode Code    `json:"productCode"`
	Version     Version `json:"version"`
	URL         string  `json:"url"`
}

// Transform is a customization layer (an MST) applied to installs whose target
// version lies within [MinVersion, MaxVersion]. A nil bound is unbounded.
type Transform struct {
	MinVersion *Version `json:"minVersion,omitempty"`
	MaxVersion *Version `json:"maxVersion,omitempty"`
	URL        string   `json:"url"`
}

// Applies reports whether the transform covers the given target version.
func (t Transform) Applies(target Version) bool {
	return target.InRange(t.MinVersion, t.MaxVersion)
}

// Patch is an incremental update (an MSP) for specific installed package instances.
type Patch struct {
	PatchCode Code   `json:"patchCode"`
	Name      string `json:"name"`
	URL       string `json:"url"`

	// ProductCodes lists the package instances the patch targets.
	// An empty list binds the patch to the first instance it is applied against.
	ProductCodes []Code `json:"productCodes,omitempty"`
}

// AppliesTo reports whether the patch targets the given package instance.
func (p Patch) AppliesTo(productCode Code) bool {
	return len(p.ProductCodes) == 0 || slices.Contains(p.ProductCodes, productCode)
}

// Dependency names another product that must be present, optionally within a version range.
type Dependency struct {
	ProductName string   `json:"productName"`
	MinVersion  *Version `json:"minVersion,omitempty"`
	MaxVersion  *Version `json:"maxVersion,omitempty"`
}

// Entry is a named cache entry: either a *Product or a *Suite.
type Entry interface {
	// EntryName returns the display name of the entry.
	EntryName() string

	entry()
}

// Product is a logical software unit, stable across versions through its UpgradeCode.
type Product struct {
	UpgradeCode   Code         `json:"upgradeCode"`
	Name          string       `json:"name"`
	Publisher     string       `json:"publisher,omitempty"`
	SupportURL    string       `json:"supportUrl,omitempty"`
	Description   string       `json:"description,omitempty"`
	StableVersion *Version     `json:"stableVersion,omitempty"`
	DevelVersion  *Version     `json:"develVersion,omitempty"`
	Packages      []Package    `json:"packages,omitempty"`
	Transforms    []Transform  `json:"transforms,omitempty"`
	Patches       []Patch      `json:"patches,omitempty"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
}

// EntryName implements Entry.
func (p *Product) EntryName() string { return p.Name }

func (*Product) entry() {}

// FindPackage returns the package whose version equals v exactly.
func (p *Product) FindPackage(v Version) (Package, bool) {
	for _, pkg := range p.Packages {
		if pkg.Version.Equal(v) {
			return pkg, true
		}
	}
	return Package{}, false
}

// TransformsFor returns the URLs of all transforms covering target, in manifest order.
func (p *Product) TransformsFor(target Version) []string {
	var urls []string
	for _, t := range p.Transforms {
		if t.Applies(target) {
			urls = append(urls, t.URL)
		}
	}
	return urls
}

// SortedPackages returns a copy of the packages ordered by version.
func (p *Product) SortedPackages() []Package {
	pkgs := slices.Clone(p.Packages)
	slices.SortStableFunc(pkgs, func(a, b Package) int {
		return a.Version.Compare(b.Version)
	})
	return pkgs
}

// Suite groups independent products that are commonly installed together.
type Suite struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
}

// EntryName implements Entry.
func (s *Suite) EntryName() string { return s.Name }

func (*Suite) entry() {}

// Repository is one decoded repository document.
type Repository struct {
	Maintainer string
	SupportURL string

	// Entries holds products and suites in document order.
	Entries []Entry
}
