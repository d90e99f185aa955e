package ports

import "go.trai.ch/wipt/internal/core/domain"

// ManifestParser decodes repository documents.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestParser interface {
	// Parse validates a repository document and returns its entries in document order.
	// A document that does not conform to the schema yields domain.ErrSchemaInvalid.
	Parse(data []byte) (*domain.Repository, error)
}
