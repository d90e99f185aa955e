// Package updater rebuilds the repository cache from the configured sources.
package updater

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
)

// SpanName is the name of the span recorded for each repository source.
const SpanName = "wipt.update.source"

// Updater fetches, validates and merges repository documents into a fresh cache.
type Updater struct {
	fetcher ports.Fetcher
	parser  ports.ManifestParser
	store   ports.CacheStore
	logger  ports.Logger
	tracer  ports.Tracer
}

// NewUpdater creates a new Updater with the given dependencies.
func NewUpdater(
	fetcher ports.Fetcher,
	parser ports.ManifestParser,
	store ports.CacheStore,
	logger ports.Logger,
	tracer ports.Tracer,
) *Updater {
	return &Updater{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		logger:  logger,
		tracer:  tracer,
	}
}

// Update rebuilds cache from sources, one source at a time and in order.
//
// A source that cannot be fetched is skipped and makes the result false; the sources that
// did merge are still saved and swapped into cache. A schema violation or a product
// collision aborts the whole update: nothing is saved and cache is left as it was.
func (u *Updater) Update(ctx context.Context, cache *domain.Cache, sources []string) (bool, error) {
	if len(sources) == 0 {
		return false, domain.ErrNoSources
	}

	working := domain.NewCache()
	complete := true

	for _, source := range sources {
		ok, err := u.updateSource(ctx, working, source)
		if err != nil {
			return false, err
		}
		complete = complete && ok
	}

	if err := u.store.Save(working); err != nil {
		return false, err
	}
	cache.Replace(working)

	return complete, nil
}

func (u *Updater) updateSource(ctx context.Context, working *domain.Cache, source string) (bool, error) {
	ctx, span := u.tracer.Start(ctx, SpanName)
	defer span.End()
	span.SetAttribute("wipt.source", source)

	data, err := u.fetcher.Fetch(ctx, source)
	if err != nil {
		u.logger.Warn("skipping repository " + source + ": " + err.Error())
		span.RecordError(err)
		span.SetAttribute("wipt.outcome", "fetch_failed")
		return false, nil
	}

	repo, err := u.parser.Parse(data)
	if err != nil {
		span.RecordError(err)
		span.SetAttribute("wipt.outcome", "invalid")
		return false, zerr.With(err, "source", source)
	}

	if err := Merge(working, repo); err != nil {
		span.RecordError(err)
		span.SetAttribute("wipt.outcome", "collision")
		return false, zerr.With(err, "source", source)
	}

	span.SetAttribute("wipt.outcome", "merged")
	span.SetAttribute("wipt.entries", len(repo.Entries))
	return true, nil
}

// Merge folds the entries of repo into cache.
//
// Products are matched by name. Their package, transform, patch and dependency lists are
// appended without de-duplication; a later stable or devel version replaces an earlier one
// and empty descriptive fields are filled in. Suites with the same name pool their members.
// A name shared by products with different upgrade codes, or by a product and a suite,
// is a collision.
func Merge(cache *domain.Cache, repo *domain.Repository) error {
	for _, entry := range repo.Entries {
		existing, found := cache.Lookup(entry.EntryName())

		switch incoming := entry.(type) {
		case *domain.Product:
			if !found {
				cache.Put(cloneProduct(incoming))
				continue
			}
			current, ok := existing.(*domain.Product)
			if !ok {
				return collision(incoming.Name, "name is already used by a suite")
			}
			if current.UpgradeCode != incoming.UpgradeCode {
				err := collision(incoming.Name, "upgrade codes differ")
				err = zerr.With(err, "upgrade_code", current.UpgradeCode.String())
				return zerr.With(err, "conflicting_upgrade_code", incoming.UpgradeCode.String())
			}
			mergeProduct(current, incoming)

		case *domain.Suite:
			if !found {
				cache.Put(&domain.Suite{Name: incoming.Name, Products: slices.Clone(incoming.Products)})
				continue
			}
			current, ok := existing.(*domain.Suite)
			if !ok {
				return collision(incoming.Name, "name is already used by a product")
			}
			for _, member := range incoming.Products {
				if !slices.ContainsFunc(current.Products, func(m string) bool { return strings.EqualFold(m, member) }) {
					current.Products = append(current.Products, member)
				}
			}
		}
	}
	return nil
}

func mergeProduct(dst, src *domain.Product) {
	if dst.Publisher == "" {
		dst.Publisher = src.Publisher
	}
	if dst.SupportURL == "" {
		dst.SupportURL = src.SupportURL
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if src.StableVersion != nil {
		v := *src.StableVersion
		dst.StableVersion = &v
	}
	if src.DevelVersion != nil {
		v := *src.DevelVersion
		dst.DevelVersion = &v
	}

	dst.Packages = append(dst.Packages, src.Packages...)
	dst.Transforms = append(dst.Transforms, src.Transforms...)
	dst.Patches = append(dst.Patches, src.Patches...)
	dst.Dependencies = append(dst.Dependencies, src.Dependencies...)
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Packages = slices.Clone(p.Packages)
	c.Transforms = slices.Clone(p.Transforms)
	c.Patches = slices.Clone(p.Patches)
	c.Dependencies = slices.Clone(p.Dependencies)
	return &c
}

func collision(name, reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrProductCollision, reason), "product", name)
}
