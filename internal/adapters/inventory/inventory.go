// Package inventory implements an installer engine that records installed products in a local YAML file.
package inventory

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"slices"
	"sync"

	wiptfs "go.trai.ch/wipt/internal/adapters/fs"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Record is one installed package instance.
type Record struct {
	Name        string   `yaml:"name"`
	UpgradeCode string   `yaml:"upgradeCode"`
	ProductCode string   `yaml:"productCode"`
	Version     string   `yaml:"version"`
	TargetDir   string   `yaml:"targetDir,omitempty"`
	PerUser     bool     `yaml:"perUser,omitempty"`
	Transforms  []string `yaml:"transforms,omitempty"`
	Patches     []string `yaml:"patches,omitempty"`
}

type document struct {
	Products []Record `yaml:"products"`
}

// Inventory implements ports.InstalledState and ports.Installer on top of a YAML file.
type Inventory struct {
	path string
	mu   sync.Mutex
}

// New creates an Inventory stored at path. The file is created on first write.
func New(path string) *Inventory {
	return &Inventory{path: path}
}

// Records returns every recorded instance in file order.
func (i *Inventory) Records() ([]Record, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// QueryState reports StateInstalled for recorded instances and StateUnknown otherwise.
func (i *Inventory) QueryState(productCode domain.Code) (domain.InstallState, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return domain.StateUnknown, err
	}
	if doc.find(productCode) < 0 {
		return domain.StateUnknown, nil
	}
	return domain.StateInstalled, nil
}

// EnumRelatedProducts lists the recorded instances sharing an upgrade code.
func (i *Inventory) EnumRelatedProducts(upgradeCode domain.Code) ([]domain.Code, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return nil, err
	}

	var codes []domain.Code
	for _, r := range doc.Products {
		if !sameCode(r.UpgradeCode, upgradeCode) {
			continue
		}
		code, err := domain.ParseCode(r.ProductCode)
		if err != nil {
			return nil, i.readError(err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// InstalledVersion returns the recorded version of an instance.
func (i *Inventory) InstalledVersion(productCode domain.Code) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return "", err
	}
	idx := doc.find(productCode)
	if idx < 0 {
		return "", notInstalled(productCode)
	}
	return doc.Products[idx].Version, nil
}

// AppliedPatches lists the patch codes recorded against an instance.
func (i *Inventory) AppliedPatches(productCode domain.Code) ([]domain.Code, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return nil, err
	}
	idx := doc.find(productCode)
	if idx < 0 {
		return nil, nil
	}

	codes := make([]domain.Code, 0, len(doc.Products[idx].Patches))
	for _, raw := range doc.Products[idx].Patches {
		code, err := domain.ParseCode(raw)
		if err != nil {
			return nil, i.readError(err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Install records the plan's package. A reinstall replaces the older instances of the same product.
func (i *Inventory) Install(ctx context.Context, plan *domain.InstallPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return err
	}

	if plan.Reinstall {
		doc.Products = slices.DeleteFunc(doc.Products, func(r Record) bool {
			return sameCode(r.UpgradeCode, plan.UpgradeCode) && domain.ParseVersion(r.Version).Less(plan.Version)
		})
	}

	rec := Record{
		Name:        plan.Product,
		UpgradeCode: plan.UpgradeCode.String(),
		ProductCode: plan.Package.ProductCode.String(),
		Version:     plan.Version.String(),
		TargetDir:   plan.TargetDir,
		PerUser:     plan.PerUser,
		Transforms:  plan.Transforms,
	}

	if idx := doc.find(plan.Package.ProductCode); idx >= 0 {
		rec.Patches = doc.Products[idx].Patches
		doc.Products[idx] = rec
	} else {
		doc.Products = append(doc.Products, rec)
	}

	return i.write(doc)
}

// Remove deletes the record of an instance.
func (i *Inventory) Remove(ctx context.Context, plan *domain.RemovePlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return err
	}
	idx := doc.find(plan.ProductCode)
	if idx < 0 {
		return notInstalled(plan.ProductCode)
	}
	doc.Products = slices.Delete(doc.Products, idx, idx+1)

	return i.write(doc)
}

// ApplyPatch records a patch against an installed instance. Reapplying is a no-op.
func (i *Inventory) ApplyPatch(ctx context.Context, patch domain.PatchPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	doc, err := i.read()
	if err != nil {
		return err
	}
	idx := doc.find(patch.ProductCode)
	if idx < 0 {
		return notInstalled(patch.ProductCode)
	}

	rec := &doc.Products[idx]
	if slices.ContainsFunc(rec.Patches, func(raw string) bool { return sameCode(raw, patch.PatchCode) }) {
		return nil
	}
	rec.Patches = append(rec.Patches, patch.PatchCode.String())

	return i.write(doc)
}

func (i *Inventory) read() (*document, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &document{}, nil
		}
		return nil, i.readError(err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, i.readError(err)
	}
	return &doc, nil
}

func (i *Inventory) write(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInventoryWriteFailed.Error()), "path", i.path)
	}
	if err := wiptfs.WriteFileAtomic(i.path, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInventoryWriteFailed.Error()), "path", i.path)
	}
	return nil
}

func (i *Inventory) readError(err error) error {
	return zerr.With(zerr.Wrap(err, domain.ErrInventoryReadFailed.Error()), "path", i.path)
}

func (d *document) find(productCode domain.Code) int {
	return slices.IndexFunc(d.Products, func(r Record) bool {
		return sameCode(r.ProductCode, productCode)
	})
}

func sameCode(raw string, code domain.Code) bool {
	parsed, err := domain.ParseCode(raw)
	return err == nil && parsed == code
}

func notInstalled(productCode domain.Code) error {
	return zerr.With(zerr.Wrap(domain.ErrNotInstalled, productCode.String()), "product_code", productCode.String())
}
