package app

import (
	"encoding/json"
	"fmt"
	"os"

	"propal/internal/domain"
)

// CatalogService serves the static speech-to-text configuration tree. The
// catalog is read from disk exactly once, at construction; a load failure is
// fatal to the caller, not retried.
type CatalogService struct {
	catalog domain.Catalog
}

// NewCatalogService loads and validates the catalog from the given JSON file.
func NewCatalogService(path string) (*CatalogService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var cat domain.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if len(cat.Providers) == 0 {
		return nil, fmt.Errorf("catalog %s: no providers", path)
	}
	for _, p := range cat.Providers {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog %s: provider with empty id", path)
		}
		for _, m := range p.Models {
			if m.ID == "" {
				return nil, fmt.Errorf("catalog %s: provider %s: model with empty id", path, p.ID)
			}
		}
	}

	return &CatalogService{catalog: cat}, nil
}

// Catalog returns the loaded configuration tree.
func (s *CatalogService) Catalog() domain.Catalog {
	return s.catalog
}
