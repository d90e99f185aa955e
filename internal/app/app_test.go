package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wipt/internal/adapters/inventory"
	"go.trai.ch/wipt/internal/adapters/logger"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/adapters/telemetry"
	"go.trai.ch/wipt/internal/app"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports/mocks"
	"go.trai.ch/wipt/internal/engine/resolver"
	"go.trai.ch/wipt/internal/engine/updater"
	"go.uber.org/mock/gomock"
)

var (
	u1     = domain.MustParseCode("{00000000-0000-0000-0000-0000000000A1}")
	uBar   = domain.MustParseCode("{00000000-0000-0000-0000-0000000000B1}")
	c1     = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C1}")
	c2     = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C2}")
	c3     = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C3}")
	cBar   = domain.MustParseCode("{00000000-0000-0000-0000-0000000000B2}")
	patchP = domain.MustParseCode("{00000000-0000-0000-0000-0000000000F1}")
)

func ver(major, minor, build int) *domain.Version {
	v := domain.NewVersion(major, minor, build)
	return &v
}

func fooProduct() *domain.Product {
	return &domain.Product{
		UpgradeCode:   u1,
		Name:          "Foo",
		Publisher:     "Acme",
		Description:   "The Foo tool",
		StableVersion: ver(2, 0, 0),
		DevelVersion:  ver(2, 1, 0),
		Packages: []domain.Package{
			{ProductCode: c2, Version: *ver(2, 0, 0), URL: "http://example.com/Foo-2.0.msi"},
			{ProductCode: c1, Version: *ver(1, 0, 0), URL: "http://example.com/Foo-1.0.msi"},
			{ProductCode: c3, Version: *ver(2, 1, 0), URL: "http://example.com/Foo-2.1.msi"},
		},
		Transforms: []domain.Transform{
			{MinVersion: ver(1, 0, 0), URL: "http://example.com/t.mst"},
		},
		Patches: []domain.Patch{
			{PatchCode: patchP, Name: "P", URL: "http://example.com/p.msp", ProductCodes: []domain.Code{c2}},
		},
	}
}

func barProduct() *domain.Product {
	return &domain.Product{
		UpgradeCode:   uBar,
		Name:          "Bar",
		StableVersion: ver(1, 5, 0),
		Packages: []domain.Package{
			{ProductCode: cBar, Version: *ver(1, 5, 0), URL: "http://example.com/Bar-1.5.msi"},
		},
	}
}

func newCache() *domain.Cache {
	cache := domain.NewCache()
	cache.Put(fooProduct())
	cache.Put(barProduct())
	cache.Put(&domain.Suite{Name: "Office", Products: []string{"Foo", "Bar"}})
	return cache
}

type fixture struct {
	app       *app.App
	inventory *inventory.Inventory
	store     *mocks.MockCacheStore
	fetcher   *mocks.MockFetcher
	parser    *mocks.MockManifestParser
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, settings *domain.Settings) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		inventory: inventory.New(filepath.Join(t.TempDir(), "inventory.yaml")),
		store:     mocks.NewMockCacheStore(ctrl),
		fetcher:   mocks.NewMockFetcher(ctrl),
		parser:    mocks.NewMockManifestParser(ctrl),
		logs:      new(bytes.Buffer),
	}

	log, ok := logger.New().(*logger.Logger)
	require.True(t, ok)
	log.SetOutput(f.logs)
	log.SetJSON(true)

	if settings == nil {
		settings = domain.DefaultSettings()
	}

	upd := updater.NewUpdater(f.fetcher, f.parser, f.store, log, telemetry.NewNoOpTracer())
	res := resolver.NewResolver(f.inventory)
	f.app = app.New(settings, log, f.store, f.fetcher, upd, res, f.inventory)
	return f
}

func (f *fixture) withCache(cache *domain.Cache) *fixture {
	f.store.EXPECT().Load().Return(cache, nil)
	return f
}

func (f *fixture) records(t *testing.T) []inventory.Record {
	t.Helper()
	records, err := f.inventory.Records()
	require.NoError(t, err)
	return records
}

func TestApp_Install(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	ctx := context.Background()

	require.NoError(t, f.app.Install(ctx, []string{"foo"}, domain.InstallOptions{}))

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Foo", records[0].Name)
	assert.Equal(t, "2.0.0", records[0].Version)
	assert.Equal(t, c2.String(), records[0].ProductCode)
	assert.Equal(t, []string{"http://example.com/t.mst"}, records[0].Transforms)
	assert.Equal(t, []string{patchP.String()}, records[0].Patches)

	require.NoError(t, f.app.Install(ctx, []string{"Foo"}, domain.InstallOptions{}))
	assert.Contains(t, f.logs.String(), "skipping Foo 2.0.0: already installed")
	assert.Len(t, f.records(t), 1)
}

func TestApp_Install_ExpandsSuites(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())

	require.NoError(t, f.app.Install(context.Background(), []string{"office"}, domain.InstallOptions{}))

	records := f.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, "Foo", records[0].Name)
	assert.Equal(t, "Bar", records[1].Name)
}

func TestApp_Install_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())

	err := f.app.Install(context.Background(), []string{"Missing", "Foo=9.9", "Bar"}, domain.InstallOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBatchFailed))

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Bar", records[0].Name)
	assert.Contains(t, f.logs.String(), "product not found")
	assert.Contains(t, f.logs.String(), "no package for version")
}

func TestApp_Install_OptionsFromSettings(t *testing.T) {
	t.Parallel()

	settings := domain.DefaultSettings()
	settings.TargetDir = "/opt/apps"
	settings.PerUser = true

	f := newFixture(t, settings).withCache(newCache())
	ctx := context.Background()

	require.NoError(t, f.app.Install(ctx, []string{"Bar"}, domain.InstallOptions{}))
	require.NoError(t, f.app.Install(ctx, []string{"Foo=1.0"}, domain.InstallOptions{
		TargetDir:        "/srv/foo",
		IgnoreTransforms: true,
	}))

	records := f.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, "/opt/apps", records[0].TargetDir)
	assert.True(t, records[0].PerUser)
	assert.Equal(t, "/srv/foo", records[1].TargetDir)
	assert.Empty(t, records[1].Transforms)
}

func TestApp_Install_WarnsAboutMissingDependencies(t *testing.T) {
	t.Parallel()

	cache := newCache()
	foo, err := cache.Product("Foo")
	require.NoError(t, err)
	foo.Dependencies = []domain.Dependency{{ProductName: "Bar", MinVersion: ver(1, 0, 0)}}

	f := newFixture(t, nil).withCache(cache)

	require.NoError(t, f.app.Install(context.Background(), []string{"Foo"}, domain.InstallOptions{}))
	assert.Contains(t, f.logs.String(), "Foo requires Bar")
	assert.Contains(t, f.logs.String(), "which is not installed")
}

func TestApp_Install_EngineFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockCacheStore(ctrl)
	state := mocks.NewMockInstalledState(ctrl)
	installer := mocks.NewMockInstaller(ctrl)
	log := mocks.NewMockLogger(ctrl)

	store.EXPECT().Load().Return(newCache(), nil)
	state.EXPECT().EnumRelatedProducts(uBar).Return(nil, nil)
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).Return(domain.ErrInstallFailed)
	log.EXPECT().Info("installing Bar 1.5.0")
	log.EXPECT().Error(domain.ErrInstallFailed)

	a := app.New(domain.DefaultSettings(), log, store, nil, nil, resolver.NewResolver(state), installer)

	err := a.Install(context.Background(), []string{"Bar"}, domain.InstallOptions{})
	assert.ErrorIs(t, err, domain.ErrBatchFailed)
}

func TestApp_Remove(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	ctx := context.Background()

	require.NoError(t, f.app.Install(ctx, []string{"Foo", "Bar"}, domain.InstallOptions{}))
	require.NoError(t, f.app.Remove(ctx, []string{"foo"}))

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Bar", records[0].Name)

	err := f.app.Remove(ctx, []string{"Foo"})
	assert.ErrorIs(t, err, domain.ErrBatchFailed)
	assert.Contains(t, f.logs.String(), "product is not installed")
}

func TestApp_Upgrade(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	ctx := context.Background()

	require.NoError(t, f.inventory.Install(ctx, &domain.InstallPlan{
		Product:     "Foo",
		UpgradeCode: u1,
		Action:      domain.ActionInstall,
		Version:     *ver(1, 0, 0),
		Package:     domain.Package{ProductCode: c1, Version: *ver(1, 0, 0)},
	}))

	require.NoError(t, f.app.Upgrade(ctx, nil, domain.InstallOptions{}))

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, c2.String(), records[0].ProductCode)
	assert.Equal(t, "2.0.0", records[0].Version)
	assert.Equal(t, []string{patchP.String()}, records[0].Patches)
	assert.Contains(t, f.logs.String(), "upgrading Foo 2.0.0")

	f.logs.Reset()
	require.NoError(t, f.app.Upgrade(ctx, nil, domain.InstallOptions{}))
	assert.Contains(t, f.logs.String(), "all installed products are up to date")
}

func TestApp_Upgrade_NamedProducts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	ctx := context.Background()

	require.NoError(t, f.inventory.Install(ctx, &domain.InstallPlan{
		Product:     "Foo",
		UpgradeCode: u1,
		Action:      domain.ActionInstall,
		Version:     *ver(1, 0, 0),
		Package:     domain.Package{ProductCode: c1, Version: *ver(1, 0, 0)},
	}))

	err := f.app.Upgrade(ctx, []string{"Nope", "foo"}, domain.InstallOptions{})
	require.ErrorIs(t, err, domain.ErrBatchFailed)
	assert.Contains(t, f.logs.String(), "product not found")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "2.0.0", records[0].Version)
}

func TestApp_Update(t *testing.T) {
	t.Parallel()

	settings := domain.DefaultSettings()
	settings.Repositories = []string{"http://a.example/repo.xml", "http://b.example/repo.xml"}

	f := newFixture(t, settings)
	ctx := context.Background()

	f.fetcher.EXPECT().Fetch(gomock.Any(), "http://a.example/repo.xml").Return([]byte("a"), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), "http://b.example/repo.xml").Return(nil, domain.ErrFetchFailed)
	f.parser.EXPECT().Parse([]byte("a")).Return(&domain.Repository{Entries: []domain.Entry{fooProduct()}}, nil)
	f.store.EXPECT().Save(gomock.Any()).Return(nil)

	err := f.app.Update(ctx)
	assert.ErrorIs(t, err, domain.ErrBatchFailed)

	// The merged source is usable without reloading the store.
	_, ok := f.app.Cache().Lookup("FOO")
	assert.True(t, ok)
}

func TestApp_Update_NoSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	assert.ErrorIs(t, f.app.Update(context.Background()), domain.ErrNoSources)
}

func TestApp_Cache_CorruptStartsEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.store.EXPECT().Load().Return(domain.NewCache(), domain.ErrCacheCorrupt)

	cache := f.app.Cache()
	assert.Equal(t, 0, cache.Len())
	assert.Same(t, cache, f.app.Cache())
	assert.Contains(t, f.logs.String(), "could not parse existing cache")
}

func TestApp_Show(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	require.NoError(t, f.inventory.Install(context.Background(), &domain.InstallPlan{
		Product:     "Foo",
		UpgradeCode: u1,
		Version:     *ver(1, 0, 0),
		Package:     domain.Package{ProductCode: c1, Version: *ver(1, 0, 0)},
	}))

	var out bytes.Buffer
	require.NoError(t, f.app.Show(&out, nil))

	g := goldie.New(t)
	g.Assert(t, "show_all", out.Bytes())

	out.Reset()
	err := f.app.Show(&out, []string{"bar", "Nope"})
	assert.ErrorIs(t, err, domain.ErrBatchFailed)
	assert.Equal(t, "Bar\n  1.5.0 (stable)\n", out.String())
}

func TestApp_Download(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil).withCache(newCache())
	dir := t.TempDir()

	f.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com/Foo-1.0.msi").Return([]byte("msi"), nil)

	require.NoError(t, f.app.Download(context.Background(), []string{"Foo=1.0"}, dir))

	data, err := os.ReadFile(filepath.Join(dir, "Foo-1.0.msi"))
	require.NoError(t, err)
	assert.Equal(t, "msi", string(data))
}

func TestApp_RepoAuthoring(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	path := filepath.Join(t.TempDir(), "repo", "repository.xml")

	require.NoError(t, f.app.RepoCreate(path, "Acme IT", ""))

	info := manifest.PackageInfo{
		ProductName: "Foo",
		UpgradeCode: u1,
		Publisher:   "Acme",
		Version:     "1.0",
		ProductCode: c1,
		URL:         "http://example.com/Foo-1.0.msi",
	}
	require.NoError(t, f.app.RepoAddPackage(path, info, false))

	info.Version = "2.0"
	info.ProductCode = c2
	info.URL = "http://example.com/Foo-2.0.msi"
	require.NoError(t, f.app.RepoAddPackage(path, info, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "SupportURL=")

	repo, err := manifest.NewParser().Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Acme IT", repo.Maintainer)
	require.Len(t, repo.Entries, 1)

	foo, ok := repo.Entries[0].(*domain.Product)
	require.True(t, ok)
	assert.Equal(t, *ver(1, 0, 0), *foo.StableVersion)
	assert.Len(t, foo.Packages, 2)
	assert.Contains(t, f.logs.String(), "added package 2.0 to Foo")
}

func TestApp_RepoAddPackage_MissingFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	err := f.app.RepoAddPackage(filepath.Join(t.TempDir(), "none.xml"), manifest.PackageInfo{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrManifestReadFailed.Error())
}
