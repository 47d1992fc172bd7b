package domain

// Catalog is the static speech-to-text configuration tree: providers offer
// models, models support languages. Loaded once per process, never mutated.
type Catalog struct {
	Providers []Provider `json:"providers"`
}

// Provider is one speech-to-text vendor in the catalog.
type Provider struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Models []Model `json:"models"`
}

// Model is one model offered by a provider.
type Model struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

// Provider returns the provider with the given id.
func (c *Catalog) Provider(id string) (*Provider, bool) {
	for i := range c.Providers {
		if c.Providers[i].ID == id {
			return &c.Providers[i], true
		}
	}
	return nil, false
}

// Model returns the model with the given id.
func (p *Provider) Model(id string) (*Model, bool) {
	for i := range p.Models {
		if p.Models[i].ID == id {
			return &p.Models[i], true
		}
	}
	return nil, false
}

// HasLanguage reports whether the model supports the given language.
func (m *Model) HasLanguage(lang string) bool {
	for _, l := range m.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
