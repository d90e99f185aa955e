// Package cachestore persists the merged repository cache as a checksummed, zstd-compressed JSON file.
package cachestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	wiptfs "go.trai.ch/wipt/internal/adapters/fs"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatVersion is the on-disk format of the cache file.
const FormatVersion = 1

const (
	kindProduct = "product"
	kindSuite   = "suite"
)

type envelope struct {
	Format   int             `json:"format"`
	Checksum string          `json:"checksum"`
	Entries  json.RawMessage `json:"entries"`
}

type record struct {
	Kind    string          `json:"kind"`
	Product *domain.Product `json:"product,omitempty"`
	Suite   *domain.Suite   `json:"suite,omitempty"`
}

// Store implements ports.CacheStore on a single file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache file. A missing file is an empty cache.
func (s *Store) Load() (*domain.Cache, error) {
	compressed, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewCache(), nil
		}
		return domain.NewCache(), s.corrupt("unreadable cache file", err)
	}

	cache, err := decode(compressed)
	if err != nil {
		return domain.NewCache(), s.corrupt("undecodable cache file", err)
	}
	return cache, nil
}

// Save replaces the cache file atomically.
func (s *Store) Save(cache *domain.Cache) error {
	data, err := encode(cache)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}

	if err := wiptfs.WriteFileAtomic(s.path, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}
	return nil
}

func (s *Store) corrupt(reason string, cause error) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrCacheCorrupt, reason), "path", s.path), "cause", cause.Error())
}

func encode(cache *domain.Cache) ([]byte, error) {
	entries := cache.All()
	slices.SortFunc(entries, func(a, b domain.Entry) int {
		return strings.Compare(domain.Key(a.EntryName()), domain.Key(b.EntryName()))
	})

	records := make([]record, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case *domain.Product:
			records = append(records, record{Kind: kindProduct, Product: v})
		case *domain.Suite:
			records = append(records, record{Kind: kindSuite, Suite: v})
		}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(envelope{
		Format:   FormatVersion,
		Checksum: checksum(raw),
		Entries:  raw,
	})
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = enc.Close() }()

	return enc.EncodeAll(payload, nil), nil
}

func decode(compressed []byte) (*domain.Cache, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	if env.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported cache format %d", env.Format)
	}
	if env.Checksum != checksum(env.Entries) {
		return nil, errors.New("checksum mismatch")
	}

	var records []record
	if err := json.Unmarshal(env.Entries, &records); err != nil {
		return nil, err
	}

	cache := domain.NewCache()
	for i, r := range records {
		switch {
		case r.Kind == kindProduct && r.Product != nil && r.Product.Name != "":
			cache.Put(r.Product)
		case r.Kind == kindSuite && r.Suite != nil && r.Suite.Name != "":
			cache.Put(r.Suite)
		default:
			return nil, fmt.Errorf("invalid record %d of kind %q", i, r.Kind)
		}
	}
	return cache, nil
}

func checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
