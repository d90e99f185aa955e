// Package app implements the application layer for wipt.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/wipt/internal/adapters/fetch"
	"go.trai.ch/wipt/internal/adapters/fs"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/wipt/internal/engine/resolver"
	"go.trai.ch/wipt/internal/engine/updater"
	"go.trai.ch/wipt/internal/ui/style"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	settings  *domain.Settings
	logger    ports.Logger
	store     ports.CacheStore
	fetcher   ports.Fetcher
	updater   *updater.Updater
	resolver  *resolver.Resolver
	installer ports.Installer

	cache *domain.Cache
}

// New creates a new App instance.
func New(
	settings *domain.Settings,
	log ports.Logger,
	store ports.CacheStore,
	fetcher ports.Fetcher,
	upd *updater.Updater,
	res *resolver.Resolver,
	installer ports.Installer,
) *App {
	return &App{
		settings:  settings,
		logger:    log,
		store:     store,
		fetcher:   fetcher,
		updater:   upd,
		resolver:  res,
		installer: installer,
	}
}

// Cache returns the repository cache, loading it from the store on first use.
// An unreadable cache is reported and replaced by an empty one.
func (a *App) Cache() *domain.Cache {
	if a.cache != nil {
		return a.cache
	}

	cache, err := a.store.Load()
	if err != nil {
		a.logger.Warn("could not parse existing cache, starting with an empty one")
		a.logger.Error(err)
	}
	if cache == nil {
		cache = domain.NewCache()
	}
	a.cache = cache
	return cache
}

// Update rebuilds the cache from the configured repositories.
func (a *App) Update(ctx context.Context) error {
	if a.cache == nil {
		a.cache = domain.NewCache()
	}

	complete, err := a.updater.Update(ctx, a.cache, a.settings.Repositories)
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("cache updated with %d entries", a.cache.Len()))
	if !complete {
		return zerr.Wrap(domain.ErrBatchFailed, "some repositories could not be fetched")
	}
	return nil
}

// Install resolves and installs every requested product. Suites expand to their members.
// A failing request is reported and does not stop the others.
func (a *App) Install(ctx context.Context, names []string, opts domain.InstallOptions) error {
	cache := a.queryCache()
	opts = a.installOptions(opts)

	return a.batch(expand(cache, names), func(req domain.Request) error {
		plan, err := a.resolver.Install(cache, req, opts)
		if err != nil {
			return err
		}

		for _, dep := range plan.MissingDependencies {
			a.logger.Warn(fmt.Sprintf("%s requires %s, which is not installed", plan.Product, describeDependency(dep)))
		}

		if plan.Action == domain.ActionSkip {
			a.logger.Info(fmt.Sprintf("skipping %s %s: %s", plan.Product, plan.Version, plan.Reason))
			return nil
		}

		return a.install(ctx, plan)
	})
}

// Remove resolves and removes every requested product.
func (a *App) Remove(ctx context.Context, names []string) error {
	cache := a.queryCache()

	return a.batch(expand(cache, names), func(req domain.Request) error {
		plan, err := a.resolver.Remove(cache, req)
		if err != nil {
			return err
		}

		a.logger.Info(fmt.Sprintf("removing %s %s", plan.Product, plan.Version))
		return a.installer.Remove(ctx, plan)
	})
}

// Upgrade brings the named products, or every product in the cache when names is empty,
// to their stable version and applies outstanding patches.
func (a *App) Upgrade(ctx context.Context, names []string, opts domain.InstallOptions) error {
	cache := a.queryCache()
	opts = a.installOptions(opts)

	var reqs []domain.Request
	if len(names) == 0 {
		for _, p := range cache.Products() {
			reqs = append(reqs, domain.Request{Name: p.Name})
		}
	} else {
		reqs = expand(cache, names)
	}

	changed := 0
	err := a.batch(reqs, func(req domain.Request) error {
		product, err := cache.Product(req.Name)
		if err != nil {
			return err
		}

		plans, err := a.resolver.Upgrade(product, opts)
		if err != nil {
			return err
		}

		for _, plan := range plans {
			changed++
			switch plan.Action {
			case domain.ActionInstall:
				if err := a.install(ctx, plan.Install); err != nil {
					return err
				}
			case domain.ActionPatch:
				if err := a.applyPatches(ctx, plan.Product, plan.Patches); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err == nil && changed == 0 {
		a.logger.Info("all installed products are up to date")
	}
	return err
}

// Download saves the package of every requested product into dir.
func (a *App) Download(ctx context.Context, names []string, dir string) error {
	cache := a.queryCache()

	return a.batch(expand(cache, names), func(req domain.Request) error {
		product, pkg, err := a.resolver.Locate(cache, req)
		if err != nil {
			return err
		}

		data, err := a.fetcher.Fetch(ctx, pkg.URL)
		if err != nil {
			return err
		}

		path := filepath.Join(dir, fetch.FileName(pkg.URL))
		if err := fs.WriteFileAtomic(path, data); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "path", path)
		}

		a.logger.Info(fmt.Sprintf("downloaded %s %s to %s", product.Name, pkg.Version, path))
		return nil
	})
}

// Show writes a listing of the requested entries, or of every entry when names is empty.
func (a *App) Show(w io.Writer, names []string) error {
	cache := a.queryCache()

	if len(names) == 0 {
		entries := cache.All()
		slices.SortFunc(entries, func(x, y domain.Entry) int {
			return strings.Compare(domain.Key(x.EntryName()), domain.Key(y.EntryName()))
		})
		for _, e := range entries {
			a.showEntry(w, e)
		}
		return nil
	}

	reqs := make([]domain.Request, len(names))
	for i, name := range names {
		reqs[i] = domain.ParseRequest(name)
	}

	return a.batch(reqs, func(req domain.Request) error {
		e, ok := cache.Lookup(req.Name)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrProductNotFound, req.Name), "product", req.Name)
		}
		a.showEntry(w, e)
		return nil
	})
}

// RepoCreate writes an empty repository document to path.
func (a *App) RepoCreate(path, maintainer, supportURL string) error {
	data, err := manifest.NewDocument(maintainer, supportURL).Bytes()
	if err != nil {
		return err
	}

	if err := fs.WriteFileAtomic(path, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}

	a.logger.Info("created repository " + path)
	return nil
}

// RepoAddPackage adds a package to the repository document at path.
func (a *App) RepoAddPackage(path string, info manifest.PackageInfo, makeStable bool) error {
	// #nosec G304 -- the repository file is named by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	doc, err := manifest.ParseDocument(data)
	if err != nil {
		return zerr.With(err, "path", path)
	}

	created := doc.AddPackage(info, makeStable)

	out, err := doc.Bytes()
	if err != nil {
		return err
	}
	if err := fs.WriteFileAtomic(path, out); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}

	if created {
		a.logger.Info(fmt.Sprintf("added product %s with package %s", info.ProductName, info.Version))
	} else {
		a.logger.Info(fmt.Sprintf("added package %s to %s", info.Version, info.ProductName))
	}
	return nil
}

// queryCache returns the cache for commands that read it, warning when it holds nothing.
func (a *App) queryCache() *domain.Cache {
	cache := a.Cache()
	if cache.Len() == 0 {
		a.logger.Warn("the package cache is empty, run 'wipt update' first")
	}
	return cache
}

// installOptions fills unset options from the configuration.
func (a *App) installOptions(opts domain.InstallOptions) domain.InstallOptions {
	if opts.TargetDir == "" {
		opts.TargetDir = a.settings.TargetDir
	}
	opts.PerUser = opts.PerUser || a.settings.PerUser
	return opts
}

func (a *App) install(ctx context.Context, plan *domain.InstallPlan) error {
	verb := "installing"
	if plan.Reinstall {
		verb = "upgrading"
	}
	a.logger.Info(fmt.Sprintf("%s %s %s", verb, plan.Product, plan.Version))

	if err := a.installer.Install(ctx, plan); err != nil {
		return err
	}
	return a.applyPatches(ctx, plan.Product, plan.Patches)
}

func (a *App) applyPatches(ctx context.Context, product string, patches []domain.PatchPlan) error {
	for _, patch := range patches {
		a.logger.Info(fmt.Sprintf("applying patch %s to %s", patch.Name, product))
		if err := a.installer.ApplyPatch(ctx, patch); err != nil {
			return err
		}
	}
	return nil
}

// batch runs fn for every request. Failures are logged and reported together as ErrBatchFailed.
func (a *App) batch(reqs []domain.Request, fn func(domain.Request) error) error {
	var failed []string
	for _, req := range reqs {
		if err := fn(req); err != nil {
			a.logger.Error(err)
			failed = append(failed, req.String())
		}
	}

	if len(failed) > 0 {
		return zerr.With(zerr.Wrap(domain.ErrBatchFailed, strings.Join(failed, ", ")), "failed", len(failed))
	}
	return nil
}

func (a *App) showEntry(w io.Writer, e domain.Entry) {
	switch v := e.(type) {
	case *domain.Suite:
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", v.Name, style.MarkSuite, strings.Join(v.Products, ", "))
	case *domain.Product:
		a.showProduct(w, v)
	}
}

func (a *App) showProduct(w io.Writer, p *domain.Product) {
	_, _ = fmt.Fprintln(w, p.Name)
	if p.Publisher != "" {
		_, _ = fmt.Fprintf(w, "  publisher: %s\n", p.Publisher)
	}
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", p.Description)
	}

	instances, err := a.resolver.Instances(p)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("could not query installed state of %s: %v", p.Name, err))
	}

	for _, pkg := range p.SortedPackages() {
		var marks []string
		if p.StableVersion != nil && pkg.Version.Equal(*p.StableVersion) {
			marks = append(marks, style.MarkStable)
		}
		if p.DevelVersion != nil && pkg.Version.Equal(*p.DevelVersion) {
			marks = append(marks, style.MarkDevel)
		}
		if slices.ContainsFunc(instances, func(i domain.Instance) bool { return i.Version.Equal(pkg.Version) }) {
			marks = append(marks, style.MarkInstalled)
		}

		line := "  " + pkg.Version.String()
		if len(marks) > 0 {
			line += " " + strings.Join(marks, " ")
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// expand parses names into requests, replacing unversioned suite names by their member products.
func expand(cache *domain.Cache, names []string) []domain.Request {
	var reqs []domain.Request
	for _, name := range names {
		req := domain.ParseRequest(name)
		if e, ok := cache.Lookup(req.Name); ok && req.Version == nil {
			if suite, ok := e.(*domain.Suite); ok {
				for _, member := range suite.Products {
					reqs = append(reqs, domain.Request{Name: member})
				}
				continue
			}
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func describeDependency(dep domain.Dependency) string {
	switch {
	case dep.MinVersion != nil && dep.MaxVersion != nil:
		return fmt.Sprintf("%s %s-%s", dep.ProductName, dep.MinVersion, dep.MaxVersion)
	case dep.MinVersion != nil:
		return fmt.Sprintf("%s >= %s", dep.ProductName, dep.MinVersion)
	case dep.MaxVersion != nil:
		return fmt.Sprintf("%s <= %s", dep.ProductName, dep.MaxVersion)
	default:
		return dep.ProductName
	}
}
