package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/core/domain"
)

var (
	fooUpgrade = domain.MustParseCode("{00000000-0000-0000-0000-0000000000A1}")
	fooV1      = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C1}")
	fooV2      = domain.MustParseCode("{00000000-0000-0000-0000-0000000000C2}")
)

func TestDocument_CreateAndAddPackage(t *testing.T) {
	doc := manifest.NewDocument("SIGWin", "")

	created := doc.AddPackage(manifest.PackageInfo{
		ProductName: "Foo",
		UpgradeCode: fooUpgrade,
		Version:     "1.0",
		ProductCode: fooV1,
		URL:         "http://example.com/Foo-1.0.msi",
	}, false)
	assert.True(t, created)

	created = doc.AddPackage(manifest.PackageInfo{
		ProductName: "Foo",
		UpgradeCode: fooUpgrade,
		Version:     "2.0.0",
		ProductCode: fooV2,
		URL:         "http://example.com/Foo-2.0.msi",
	}, false)
	assert.False(t, created)

	data, err := doc.Bytes()
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, `SupportURL=""`, "empty attributes are dropped")
	assert.NotContains(t, out, `Publisher=""`)

	repo, err := manifest.NewParser().Parse(data)
	require.NoError(t, err)
	require.Len(t, repo.Entries, 1)

	foo := repo.Entries[0].(*domain.Product)
	require.NotNil(t, foo.StableVersion)
	assert.Equal(t, domain.NewVersion(1, 0, 0), *foo.StableVersion, "new product is stable at its first package")
	require.Len(t, foo.Packages, 2)
	assert.Equal(t, fooV2, foo.Packages[1].ProductCode)
}

func TestDocument_AddPackage_MakeStable(t *testing.T) {
	doc, err := manifest.ParseDocument(readTestdata(t, "repository.xml"))
	require.NoError(t, err)

	created := doc.AddPackage(manifest.PackageInfo{
		ProductName: "Foo",
		UpgradeCode: fooUpgrade,
		Version:     "3.1",
		ProductCode: domain.MustParseCode("{00000000-0000-0000-0000-0000000000C3}"),
		URL:         "http://example.com/Foo-3.1.msi",
	}, true)
	assert.False(t, created)

	data, err := doc.Bytes()
	require.NoError(t, err)

	repo, err := manifest.NewParser().Parse(data)
	require.NoError(t, err)
	require.Len(t, repo.Entries, 2, "suite survives the round trip")

	foo := repo.Entries[0].(*domain.Product)
	assert.Equal(t, domain.NewVersion(3, 1, 0), *foo.StableVersion)
	assert.Len(t, foo.Packages, 3)
	assert.Len(t, foo.Transforms, 2)
	assert.Contains(t, string(data), "Screenshot", "unknown elements are preserved")
	assert.Contains(t, string(data), `xmlns="`+manifest.Namespace+`"`)
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := manifest.ParseDocument([]byte("<Catalog/>"))
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}
