package domain

import "go.trai.ch/zerr"

var (
	// ErrNoSources is returned when an update runs with no configured repository sources.
	ErrNoSources = zerr.New("no repository sources configured")

	// ErrFetchFailed is returned when a repository source cannot be retrieved.
	ErrFetchFailed = zerr.New("failed to fetch repository")

	// ErrSchemaInvalid is returned when a repository document does not conform to the manifest schema.
	ErrSchemaInvalid = zerr.New("repository document does not conform to schema")

	// ErrProductCollision is returned when two products share a name but differ in upgrade code,
	// or when a product and a suite share a name.
	ErrProductCollision = zerr.New("product name collision")

	// ErrNoProducts is returned when a command that needs product names is given none.
	ErrNoProducts = zerr.New("no packages specified")

	// ErrProductNotFound is returned when a requested name is not present in the cache.
	ErrProductNotFound = zerr.New("product not found")

	// ErrNotAProduct is returned when a suite is used where a product is required.
	ErrNotAProduct = zerr.New("entry is a suite, not a product")

	// ErrNoPackage is returned when no package exists for the resolved version of a product.
	ErrNoPackage = zerr.New("no package for version")

	// ErrNoStableVersion is returned when a product without a stable version is requested unversioned.
	ErrNoStableVersion = zerr.New("product has no stable version")

	// ErrAmbiguousVersion is returned when several instances are installed and no version was given.
	ErrAmbiguousVersion = zerr.New("more than one version installed, specify a version")

	// ErrNotInstalled is returned when removing a product that has no installed instance.
	ErrNotInstalled = zerr.New("product is not installed")

	// ErrInvalidCode is returned when an identifier is not a well-formed GUID.
	ErrInvalidCode = zerr.New("invalid code")

	// ErrCacheCorrupt is returned when the persisted cache is missing pieces or cannot be decoded.
	ErrCacheCorrupt = zerr.New("cache is corrupt")

	// ErrCacheReadFailed is returned when the cache file cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache")

	// ErrCacheWriteFailed is returned when the cache file cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache")

	// ErrConfigReadFailed is returned when a config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigEnvFailed is returned when environment overrides cannot be processed.
	ErrConfigEnvFailed = zerr.New("failed to process environment overrides")

	// ErrUnknownEngine is returned when the configured installer engine is not recognized.
	ErrUnknownEngine = zerr.New("unknown installer engine")

	// ErrInventoryReadFailed is returned when the installed-product inventory cannot be read.
	ErrInventoryReadFailed = zerr.New("failed to read inventory")

	// ErrInventoryWriteFailed is returned when the installed-product inventory cannot be written.
	ErrInventoryWriteFailed = zerr.New("failed to write inventory")

	// ErrInstallFailed is returned when the installer engine reports a failure.
	ErrInstallFailed = zerr.New("installer engine failed")

	// ErrBatchFailed is returned when at least one request in a batch failed.
	ErrBatchFailed = zerr.New("one or more requests failed")

	// ErrManifestReadFailed is returned when a local manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestWriteFailed is returned when a local manifest file cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrDownloadFailed is returned when a package cannot be saved to disk.
	ErrDownloadFailed = zerr.New("failed to download package")
)
