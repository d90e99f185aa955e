// Package manifest reads and writes repository documents.
package manifest

import (
	"bytes"
	"encoding/xml"
	"strings"

	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parser implements ports.ManifestParser for XML repository documents.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse validates a repository document and converts it into domain entries in document order.
// Unknown elements are ignored.
func (p *Parser) Parse(data []byte) (*domain.Repository, error) {
	var doc repositoryXML

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return nil, schemaError("malformed document", err.Error())
	}

	if !knownNamespace(doc.XMLName.Space) {
		return nil, zerr.With(schemaError("unknown namespace", doc.XMLName.Space), "namespace", doc.XMLName.Space)
	}

	repo := &domain.Repository{
		Maintainer: doc.Maintainer,
		SupportURL: doc.SupportURL,
	}

	for i := range doc.Children {
		child := &doc.Children[i]
		if !knownNamespace(child.XMLName.Space) {
			continue
		}

		switch child.XMLName.Local {
		case "Product":
			product, err := convertProduct(child)
			if err != nil {
				return nil, err
			}
			repo.Entries = append(repo.Entries, product)
		case "Suite":
			suite, err := convertSuite(child)
			if err != nil {
				return nil, err
			}
			repo.Entries = append(repo.Entries, suite)
		}
	}

	return repo, nil
}

func convertProduct(e *entryXML) (*domain.Product, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, schemaError("product without a name", "")
	}

	upgradeCode, err := domain.ParseCode(e.UpgradeCode)
	if err != nil {
		return nil, zerr.With(schemaError("invalid UpgradeCode", err.Error()), "product", name)
	}

	p := &domain.Product{
		UpgradeCode:   upgradeCode,
		Name:          name,
		Publisher:     e.Publisher,
		SupportURL:    e.SupportURL,
		StableVersion: e.StableVersion.ptr(),
		DevelVersion:  e.DevelVersion.ptr(),
	}
	if e.Description != nil {
		p.Description = strings.TrimSpace(*e.Description)
	}

	for _, pkg := range e.Packages {
		converted, err := convertPackage(name, pkg)
		if err != nil {
			return nil, err
		}
		p.Packages = append(p.Packages, converted)
	}

	for _, t := range e.Transforms {
		url := strings.TrimSpace(t.URL)
		if url == "" {
			return nil, zerr.With(schemaError("transform without URL", ""), "product", name)
		}
		transform := domain.Transform{
			MinVersion: t.MinVersion.ptr(),
			MaxVersion: t.MaxVersion.ptr(),
			URL:        url,
		}
		if t.Version != nil && transform.MinVersion == nil && transform.MaxVersion == nil {
			transform.MinVersion = t.Version.ptr()
			transform.MaxVersion = t.Version.ptr()
		}
		p.Transforms = append(p.Transforms, transform)
	}

	for _, patch := range e.Patches {
		converted, err := convertPatch(name, patch)
		if err != nil {
			return nil, err
		}
		p.Patches = append(p.Patches, converted)
	}

	for _, d := range e.Dependencies {
		depName := strings.TrimSpace(d.ProductName)
		if depName == "" {
			return nil, zerr.With(schemaError("dependency without ProductName", ""), "product", name)
		}
		p.Dependencies = append(p.Dependencies, domain.Dependency{
			ProductName: depName,
			MinVersion:  d.MinVersion.ptr(),
			MaxVersion:  d.MaxVersion.ptr(),
		})
	}

	return p, nil
}

func convertPackage(product string, pkg packageXML) (domain.Package, error) {
	code, err := domain.ParseCode(pkg.ProductCode)
	if err != nil {
		return domain.Package{}, zerr.With(schemaError("invalid package ProductCode", err.Error()), "product", product)
	}
	if pkg.Version == nil {
		return domain.Package{}, zerr.With(schemaError("package without Version", ""), "product", product)
	}
	url := strings.TrimSpace(pkg.URL)
	if url == "" {
		return domain.Package{}, zerr.With(schemaError("package without URL", ""), "product", product)
	}

	return domain.Package{ProductCode: code, Version: pkg.Version.version(), URL: url}, nil
}

func convertPatch(product string, patch patchXML) (domain.Patch, error) {
	code, err := domain.ParseCode(patch.PatchCode)
	if err != nil {
		return domain.Patch{}, zerr.With(schemaError("invalid PatchCode", err.Error()), "product", product)
	}
	url := strings.TrimSpace(patch.URL)
	if url == "" {
		return domain.Patch{}, zerr.With(schemaError("patch without URL", ""), "product", product)
	}

	converted := domain.Patch{PatchCode: code, Name: patch.Name, URL: url}
	for _, raw := range patch.ProductCodes {
		target, err := domain.ParseCode(raw)
		if err != nil {
			return domain.Patch{}, zerr.With(schemaError("invalid patch ProductCode", err.Error()), "product", product)
		}
		converted.ProductCodes = append(converted.ProductCodes, target)
	}
	return converted, nil
}

func convertSuite(e *entryXML) (*domain.Suite, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, schemaError("suite without a name", "")
	}

	suite := &domain.Suite{Name: name}
	for _, member := range e.Members {
		if member = strings.TrimSpace(member); member != "" {
			suite.Products = append(suite.Products, member)
		}
	}
	return suite, nil
}

func schemaError(reason, cause string) error {
	err := zerr.Wrap(domain.ErrSchemaInvalid, reason)
	if cause != "" {
		err = zerr.With(err, "cause", cause)
	}
	return err
}
