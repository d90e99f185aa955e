package updater_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/wipt/internal/adapters/telemetry"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/wipt/internal/core/ports/mocks"
	"go.trai.ch/wipt/internal/engine/updater"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var (
	u1 = domain.MustParseCode("{00000000-0000-0000-0000-0000000000A1}")
	u2 = domain.MustParseCode("{00000000-0000-0000-0000-0000000000A2}")
	c1 = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C1}")
	c2 = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C2}")
)

func ver(major, minor, build int) *domain.Version {
	v := domain.NewVersion(major, minor, build)
	return &v
}

func fooRepo() *domain.Repository {
	return &domain.Repository{Entries: []domain.Entry{
		&domain.Product{
			UpgradeCode:   u1,
			Name:          "Foo",
			StableVersion: ver(1, 0, 0),
			Packages:      []domain.Package{{ProductCode: c1, Version: *ver(1, 0, 0), URL: "http://a/Foo-1.0.msi"}},
		},
	}}
}

func fooUpdateRepo() *domain.Repository {
	return &domain.Repository{Entries: []domain.Entry{
		&domain.Product{
			UpgradeCode:   u1,
			Name:          "FOO",
			Publisher:     "ACME",
			StableVersion: ver(2, 0, 0),
			Packages:      []domain.Package{{ProductCode: c2, Version: *ver(2, 0, 0), URL: "http://b/Foo-2.0.msi"}},
			Transforms:    []domain.Transform{{MinVersion: ver(1, 0, 0), URL: "http://b/t.mst"}},
		},
		&domain.Suite{Name: "Office", Products: []string{"Foo"}},
	}}
}

type fixture struct {
	fetcher *mocks.MockFetcher
	parser  *mocks.MockManifestParser
	store   *mocks.MockCacheStore
	logger  *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &fixture{
		fetcher: mocks.NewMockFetcher(ctrl),
		parser:  mocks.NewMockManifestParser(ctrl),
		store:   mocks.NewMockCacheStore(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
}

func (f *fixture) updater(tracer ports.Tracer) *updater.Updater {
	if tracer == nil {
		tracer = telemetry.NewNoOpTracer()
	}
	return updater.NewUpdater(f.fetcher, f.parser, f.store, f.logger, tracer)
}

func (f *fixture) serve(source string, repo *domain.Repository) {
	f.fetcher.EXPECT().Fetch(gomock.Any(), source).Return([]byte(source), nil).AnyTimes()
	f.parser.EXPECT().Parse([]byte(source)).DoAndReturn(func([]byte) (*domain.Repository, error) {
		return repo, nil
	}).AnyTimes()
}

func TestUpdate_NoSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ok, err := f.updater(nil).Update(context.Background(), domain.NewCache(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrNoSources)
}

func TestUpdate_MergesSourcesInOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.serve("a", fooRepo())
	f.serve("b", fooUpdateRepo())

	var saved *domain.Cache
	f.store.EXPECT().Save(gomock.Any()).DoAndReturn(func(c *domain.Cache) error {
		saved = c
		return nil
	})

	cache := domain.NewCache()
	ok, err := f.updater(nil).Update(context.Background(), cache, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, saved.Products(), cache.Products())

	foo, err := cache.Product("foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", foo.Name, "first-seen casing is kept")
	assert.Equal(t, "ACME", foo.Publisher, "empty fields are filled by later sources")
	assert.Equal(t, ver(2, 0, 0), foo.StableVersion, "the last stable version wins")
	assert.Len(t, foo.Packages, 2)
	assert.Len(t, foo.Transforms, 1)
}

func TestUpdate_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.serve("a", fooRepo())
	f.serve("b", fooUpdateRepo())
	f.store.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	u := f.updater(nil)
	sources := []string{"a", "b"}

	once := domain.NewCache()
	_, err := u.Update(context.Background(), once, sources)
	require.NoError(t, err)

	twice := domain.NewCache()
	for range 2 {
		_, err = u.Update(context.Background(), twice, sources)
		require.NoError(t, err)
	}

	assert.Equal(t, once.Products(), twice.Products())
	assert.Equal(t, once.Len(), twice.Len())
}

func TestUpdate_Collision(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.serve("a", &domain.Repository{Entries: []domain.Entry{&domain.Product{UpgradeCode: u1, Name: "bar"}}})
	f.serve("b", &domain.Repository{Entries: []domain.Entry{&domain.Product{UpgradeCode: u2, Name: "Bar"}}})

	cache := domain.NewCache()
	cache.Put(&domain.Product{UpgradeCode: u1, Name: "Existing"})

	ok, err := f.updater(nil).Update(context.Background(), cache, []string{"a", "b"})
	assert.False(t, ok)
	require.ErrorIs(t, err, domain.ErrProductCollision)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "b", zErr.Metadata()["source"])

	_, found := cache.Lookup("existing")
	assert.True(t, found, "cache is untouched after an aborted update")
	assert.Equal(t, 1, cache.Len())
}

func TestUpdate_SchemaErrorAborts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any(), "bad").Return([]byte("bad"), nil)
	f.parser.EXPECT().Parse([]byte("bad")).Return(nil, zerr.Wrap(domain.ErrSchemaInvalid, "malformed document"))

	ok, err := f.updater(nil).Update(context.Background(), domain.NewCache(), []string{"bad", "never-fetched"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestUpdate_FetchFailureKeepsOtherSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any(), "down").
		Return(nil, zerr.Wrap(domain.ErrFetchFailed, "connection refused"))
	f.serve("a", fooRepo())
	f.logger.EXPECT().Warn(gomock.Any())
	f.store.EXPECT().Save(gomock.Any()).Return(nil)

	cache := domain.NewCache()
	ok, err := f.updater(nil).Update(context.Background(), cache, []string{"down", "a"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cache.Product("Foo")
	assert.NoError(t, err)
}

func TestUpdate_SaveFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.serve("a", fooRepo())
	f.store.EXPECT().Save(gomock.Any()).Return(errors.New("disk full"))

	cache := domain.NewCache()
	ok, err := f.updater(nil).Update(context.Background(), cache, []string{"a"})
	assert.False(t, ok)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestUpdate_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any(), "down").Return(nil, errors.New("unreachable"))
	f.serve("a", fooRepo())
	f.logger.EXPECT().Warn(gomock.Any())
	f.store.EXPECT().Save(gomock.Any()).Return(nil)

	u := f.updater(telemetry.NewOTelTracer("test"))
	_, err := u.Update(context.Background(), domain.NewCache(), []string{"down", "a"})
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, updater.SpanName, spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("wipt.source", "down"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("wipt.outcome", "fetch_failed"))
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	assert.Contains(t, spans[1].Attributes(), attribute.String("wipt.source", "a"))
	assert.Contains(t, spans[1].Attributes(), attribute.String("wipt.outcome", "merged"))
	assert.Contains(t, spans[1].Attributes(), attribute.Int("wipt.entries", 1))
}
