// Package resolver decides which installer operations a request needs.
//
// The resolver only reads the cache and the installed-state port; it never installs anything.
// Every decision is returned as a plan the caller hands to an installer engine.
package resolver

import (
	"slices"
	"strings"

	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	reasonAlreadyInstalled = "already installed"
	reasonNewerInstalled   = "newer version installed"
)

// Resolver computes install, remove and upgrade plans.
type Resolver struct {
	state ports.InstalledState
}

// NewResolver creates a new Resolver querying state for what is installed.
func NewResolver(state ports.InstalledState) *Resolver {
	return &Resolver{state: state}
}

// Install resolves a request to install a product, optionally at a specific version.
func (r *Resolver) Install(cache *domain.Cache, req domain.Request, opts domain.InstallOptions) (*domain.InstallPlan, error) {
	product, pkg, err := r.Locate(cache, req)
	if err != nil {
		return nil, err
	}
	target := pkg.Version

	instances, err := r.Instances(product)
	if err != nil {
		return nil, err
	}

	plan := &domain.InstallPlan{
		Product:     product.Name,
		UpgradeCode: product.UpgradeCode,
		Action:      domain.ActionInstall,
		Version:     target,
		Package:     pkg,
		TargetDir:   opts.TargetDir,
		PerUser:     opts.PerUser,
	}

	switch {
	case slices.ContainsFunc(instances, func(i domain.Instance) bool { return i.Version.Equal(target) }):
		plan.Action = domain.ActionSkip
		plan.Reason = reasonAlreadyInstalled
		return plan, nil
	case len(instances) == 0:
	case slices.ContainsFunc(instances, func(i domain.Instance) bool { return i.Version.Less(target) }):
		plan.Reinstall = true
	default:
		plan.Action = domain.ActionSkip
		plan.Reason = reasonNewerInstalled
		return plan, nil
	}

	if !opts.IgnoreTransforms {
		plan.Transforms = product.TransformsFor(target)
	}

	if !opts.IgnorePatches {
		plan.Patches, err = r.outstandingPatches(product, pkg.ProductCode)
		if err != nil {
			return nil, err
		}
	}

	plan.MissingDependencies, err = r.missingDependencies(cache, product)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// Locate finds the product named by req and the package for the requested version,
// or for the stable version when none was requested.
func (r *Resolver) Locate(cache *domain.Cache, req domain.Request) (*domain.Product, domain.Package, error) {
	product, err := cache.Product(req.Name)
	if err != nil {
		return nil, domain.Package{}, err
	}

	target, err := targetVersion(product, req)
	if err != nil {
		return nil, domain.Package{}, err
	}

	pkg, ok := product.FindPackage(target)
	if !ok {
		return nil, domain.Package{}, noPackage(product.Name, target)
	}
	return product, pkg, nil
}

// Remove resolves a request to remove an installed product.
// Without a version the product must have exactly one installed instance.
func (r *Resolver) Remove(cache *domain.Cache, req domain.Request) (*domain.RemovePlan, error) {
	product, err := cache.Product(req.Name)
	if err != nil {
		return nil, err
	}

	instances, err := r.Instances(product)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotInstalled, product.Name), "product", product.Name)
	}

	var chosen domain.Instance
	switch {
	case req.Version != nil:
		idx := slices.IndexFunc(instances, func(i domain.Instance) bool { return i.Version.Equal(*req.Version) })
		if idx < 0 {
			err := zerr.With(zerr.Wrap(domain.ErrNotInstalled, product.Name), "product", product.Name)
			return nil, zerr.With(err, "version", req.Version.String())
		}
		chosen = instances[idx]
	case len(instances) > 1:
		err := zerr.With(zerr.Wrap(domain.ErrAmbiguousVersion, product.Name), "product", product.Name)
		return nil, zerr.With(err, "installed", versionList(instances))
	default:
		chosen = instances[0]
	}

	return &domain.RemovePlan{
		Product:     product.Name,
		ProductCode: chosen.ProductCode,
		Version:     chosen.Version,
	}, nil
}

// Upgrade resolves the upgrade of one product to its stable version.
//
// When every installed instance is below the stable version, the stable package is reinstalled
// over them. Otherwise the instances at or above stable receive their outstanding patches only.
// A product that is not installed, or that has no stable version, yields no plans.
func (r *Resolver) Upgrade(product *domain.Product, opts domain.InstallOptions) ([]domain.UpgradePlan, error) {
	if product.StableVersion == nil {
		return nil, nil
	}
	stable := *product.StableVersion

	instances, err := r.Instances(product)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}

	var current []domain.Instance
	for _, inst := range instances {
		if !inst.Version.Less(stable) {
			current = append(current, inst)
		}
	}

	if len(current) == 0 {
		pkg, ok := product.FindPackage(stable)
		if !ok {
			return nil, noPackage(product.Name, stable)
		}

		install := &domain.InstallPlan{
			Product:     product.Name,
			UpgradeCode: product.UpgradeCode,
			Action:      domain.ActionInstall,
			Version:     stable,
			Package:     pkg,
			Reinstall:   true,
			TargetDir:   opts.TargetDir,
			PerUser:     opts.PerUser,
		}
		if !opts.IgnoreTransforms {
			install.Transforms = product.TransformsFor(stable)
		}
		if !opts.IgnorePatches {
			install.Patches, err = r.outstandingPatches(product, pkg.ProductCode)
			if err != nil {
				return nil, err
			}
		}
		return []domain.UpgradePlan{{Product: product.Name, Action: domain.ActionInstall, Install: install}}, nil
	}

	if opts.IgnorePatches {
		return nil, nil
	}

	set := newPatchSet()
	for _, inst := range current {
		if err := r.bindApplied(set, product, inst.ProductCode); err != nil {
			return nil, err
		}
	}
	for _, inst := range current {
		if err := r.collectPatches(set, product, inst.ProductCode); err != nil {
			return nil, err
		}
	}
	if len(set.plans) == 0 {
		return nil, nil
	}
	return []domain.UpgradePlan{{Product: product.Name, Action: domain.ActionPatch, Patches: set.plans}}, nil
}

// Instances lists the installed instances of a product, in the order the engine reports them.
func (r *Resolver) Instances(product *domain.Product) ([]domain.Instance, error) {
	codes, err := r.state.EnumRelatedProducts(product.UpgradeCode)
	if err != nil {
		return nil, err
	}

	var instances []domain.Instance
	for _, code := range codes {
		state, err := r.state.QueryState(code)
		if err != nil {
			return nil, err
		}
		if !state.IsInstalled() {
			continue
		}

		raw, err := r.state.InstalledVersion(code)
		if err != nil {
			return nil, err
		}
		instances = append(instances, domain.Instance{ProductCode: code, Version: domain.ParseVersion(raw)})
	}
	return instances, nil
}

// patchSet collects the patch applications of one resolution.
// Each (patch, product code) pair is planned once, and a patch naming no product codes
// is bound to the first instance it is found applied to or planned for.
type patchSet struct {
	plans []domain.PatchPlan
	bound map[domain.Code]domain.Code
}

func newPatchSet() *patchSet {
	return &patchSet{bound: make(map[domain.Code]domain.Code)}
}

func (s *patchSet) planned(patch, productCode domain.Code) bool {
	return slices.ContainsFunc(s.plans, func(pp domain.PatchPlan) bool {
		return pp.PatchCode == patch && pp.ProductCode == productCode
	})
}

// outstandingPatches returns the product's patches for productCode that are not applied yet.
func (r *Resolver) outstandingPatches(product *domain.Product, productCode domain.Code) ([]domain.PatchPlan, error) {
	set := newPatchSet()
	if err := r.collectPatches(set, product, productCode); err != nil {
		return nil, err
	}
	return set.plans, nil
}

// bindApplied binds unscoped patches already applied to productCode to that instance.
func (r *Resolver) bindApplied(set *patchSet, product *domain.Product, productCode domain.Code) error {
	if !slices.ContainsFunc(product.Patches, func(p domain.Patch) bool { return len(p.ProductCodes) == 0 }) {
		return nil
	}

	applied, err := r.state.AppliedPatches(productCode)
	if err != nil {
		return err
	}
	for _, p := range product.Patches {
		if len(p.ProductCodes) > 0 || !slices.Contains(applied, p.PatchCode) {
			continue
		}
		if _, ok := set.bound[p.PatchCode]; !ok {
			set.bound[p.PatchCode] = productCode
		}
	}
	return nil
}

// collectPatches adds the product's patches for productCode that are neither applied nor planned.
func (r *Resolver) collectPatches(set *patchSet, product *domain.Product, productCode domain.Code) error {
	var candidates []domain.Patch
	for _, p := range product.Patches {
		if !p.AppliesTo(productCode) {
			continue
		}
		if len(p.ProductCodes) == 0 {
			if code, ok := set.bound[p.PatchCode]; ok && code != productCode {
				continue
			}
			set.bound[p.PatchCode] = productCode
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil
	}

	applied, err := r.state.AppliedPatches(productCode)
	if err != nil {
		return err
	}

	for _, p := range candidates {
		if slices.Contains(applied, p.PatchCode) || set.planned(p.PatchCode, productCode) {
			continue
		}
		set.plans = append(set.plans, domain.PatchPlan{
			PatchCode:   p.PatchCode,
			Name:        p.Name,
			URL:         p.URL,
			ProductCode: productCode,
		})
	}
	return nil
}

// missingDependencies lists the declared dependencies that no installed instance satisfies.
func (r *Resolver) missingDependencies(cache *domain.Cache, product *domain.Product) ([]domain.Dependency, error) {
	var missing []domain.Dependency
	for _, dep := range product.Dependencies {
		required, err := cache.Product(dep.ProductName)
		if err != nil {
			missing = append(missing, dep)
			continue
		}

		instances, err := r.Instances(required)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(instances, func(i domain.Instance) bool {
			return i.Version.InRange(dep.MinVersion, dep.MaxVersion)
		}) {
			missing = append(missing, dep)
		}
	}
	return missing, nil
}

func targetVersion(product *domain.Product, req domain.Request) (domain.Version, error) {
	if req.Version != nil {
		return *req.Version, nil
	}
	if product.StableVersion == nil {
		return domain.Version{}, zerr.With(zerr.Wrap(domain.ErrNoStableVersion, product.Name), "product", product.Name)
	}
	return *product.StableVersion, nil
}

func noPackage(product string, v domain.Version) error {
	err := zerr.Wrap(domain.ErrNoPackage, product+" "+v.String())
	return zerr.With(zerr.With(err, "product", product), "version", v.String())
}

func versionList(instances []domain.Instance) string {
	versions := make([]string, len(instances))
	for i, inst := range instances {
		versions[i] = inst.Version.String()
	}
	return strings.Join(versions, ", ")
}
