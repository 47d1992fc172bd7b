// Package selection implements the cascading provider → model → language
// configuration choice as an explicit state machine. The machine enforces
// referential consistency between the three levels: it never holds a model
// the selected provider does not offer, nor a language the selected model
// does not support. A previously persisted triple is restored optimistically
// and revalidated once the catalog arrives.
package selection

import (
	"errors"

	"propal/internal/domain"
)

// Phase is the machine's position in the cascading selection.
type Phase int

const (
	// PhaseNoProvider means nothing is selected yet.
	PhaseNoProvider Phase = iota
	// PhaseProviderSelected means a provider is chosen, no model.
	PhaseProviderSelected
	// PhaseModelSelected means provider and model are chosen, no language.
	PhaseModelSelected
	// PhaseFullySelected means the full triple is chosen and valid.
	PhaseFullySelected
	// PhaseFailed is the terminal state after a catalog fetch failure.
	PhaseFailed
)

// String returns a readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNoProvider:
		return "no-provider"
	case PhaseProviderSelected:
		return "provider-selected"
	case PhaseModelSelected:
		return "model-selected"
	case PhaseFullySelected:
		return "fully-selected"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Selection is the persisted provider/model/language triple.
type Selection struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

var (
	// ErrCatalogNotLoaded means a selection was attempted before the catalog
	// resolved.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	// ErrCatalogFailed means the machine is in its terminal failed state.
	ErrCatalogFailed = errors.New("catalog fetch failed")
	// ErrNoProvider means a model was selected without a provider.
	ErrNoProvider = errors.New("no provider selected")
	// ErrNoModel means a language was selected without a model.
	ErrNoModel = errors.New("no model selected")
	// ErrUnknownProvider means the provider id is not in the catalog.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownModel means the model id is not offered by the selected provider.
	ErrUnknownModel = errors.New("unknown model for provider")
	// ErrUnknownLanguage means the language is not supported by the selected model.
	ErrUnknownLanguage = errors.New("unknown language for model")
)

// Machine drives the cascading selection. It is not safe for concurrent use;
// it models a single cooperative UI thread.
type Machine struct {
	store   Store
	catalog *domain.Catalog
	sel     Selection
	gen     int
	err     error
}

// New creates a machine persisting to store. A nil store disables persistence.
func New(store Store) *Machine {
	return &Machine{store: store}
}

// Restore loads a previously persisted triple, if any, and holds it
// optimistically until the catalog arrives.
func (m *Machine) Restore() error {
	if m.store == nil {
		return nil
	}
	sel, ok, err := m.store.Load()
	if err != nil {
		return err
	}
	if ok {
		m.sel = sel
	}
	return nil
}

// BeginFetch marks the start of a catalog fetch and returns its generation.
// Only the most recent generation may resolve or fail the fetch; responses
// from superseded fetches are ignored (latest request wins).
func (m *Machine) BeginFetch() int {
	m.gen++
	return m.gen
}

// ResolveCatalog installs the fetched catalog and revalidates any held
// selection with the cascading rules. Reports whether the response was
// applied; a stale generation is dropped.
func (m *Machine) ResolveCatalog(gen int, cat *domain.Catalog) bool {
	if gen != m.gen {
		return false
	}
	m.catalog = cat
	m.err = nil
	m.cascade()
	return true
}

// FailCatalog moves the machine to its terminal failed state unless the
// response is stale.
func (m *Machine) FailCatalog(gen int, err error) bool {
	if gen != m.gen {
		return false
	}
	if err == nil {
		err = ErrCatalogFailed
	}
	m.err = err
	return true
}

// SelectProvider chooses a provider. The held model and language survive only
// if the new provider still offers them.
func (m *Machine) SelectProvider(id string) error {
	if err := m.ready(); err != nil {
		return err
	}
	p, ok := m.catalog.Provider(id)
	if !ok {
		return ErrUnknownProvider
	}

	m.sel.Provider = id
	if mod, ok := p.Model(m.sel.Model); !ok {
		m.sel.Model = ""
		m.sel.Language = ""
	} else if m.sel.Language != "" && !mod.HasLanguage(m.sel.Language) {
		m.sel.Language = ""
	}
	return m.persist()
}

// SelectModel chooses a model of the current provider. The held language
// survives only if the new model supports it.
func (m *Machine) SelectModel(id string) error {
	if err := m.ready(); err != nil {
		return err
	}
	if m.sel.Provider == "" {
		return ErrNoProvider
	}
	p, _ := m.catalog.Provider(m.sel.Provider)
	mod, ok := p.Model(id)
	if !ok {
		return ErrUnknownModel
	}

	m.sel.Model = id
	if m.sel.Language != "" && !mod.HasLanguage(m.sel.Language) {
		m.sel.Language = ""
	}
	return m.persist()
}

// SelectLanguage chooses a language of the current model, completing the
// triple.
func (m *Machine) SelectLanguage(lang string) error {
	if err := m.ready(); err != nil {
		return err
	}
	if m.sel.Provider == "" {
		return ErrNoProvider
	}
	if m.sel.Model == "" {
		return ErrNoModel
	}
	p, _ := m.catalog.Provider(m.sel.Provider)
	mod, _ := p.Model(m.sel.Model)
	if !mod.HasLanguage(lang) {
		return ErrUnknownLanguage
	}

	m.sel.Language = lang
	return m.persist()
}

// Phase returns the machine's current phase.
func (m *Machine) Phase() Phase {
	switch {
	case m.err != nil:
		return PhaseFailed
	case m.sel.Provider == "":
		return PhaseNoProvider
	case m.sel.Model == "":
		return PhaseProviderSelected
	case m.sel.Language == "":
		return PhaseModelSelected
	}
	return PhaseFullySelected
}

// Current returns the held triple. It may be unvalidated while the catalog is
// still in flight.
func (m *Machine) Current() Selection {
	return m.sel
}

// Err returns the terminal catalog error, if any.
func (m *Machine) Err() error {
	return m.err
}

// Models returns the model set offered by the selected provider.
func (m *Machine) Models() []domain.Model {
	if m.catalog == nil || m.sel.Provider == "" {
		return nil
	}
	p, ok := m.catalog.Provider(m.sel.Provider)
	if !ok {
		return nil
	}
	return p.Models
}

// Languages returns the language set supported by the selected model.
func (m *Machine) Languages() []string {
	if m.catalog == nil || m.sel.Provider == "" || m.sel.Model == "" {
		return nil
	}
	p, ok := m.catalog.Provider(m.sel.Provider)
	if !ok {
		return nil
	}
	mod, ok := p.Model(m.sel.Model)
	if !ok {
		return nil
	}
	return mod.Languages
}

func (m *Machine) ready() error {
	if m.err != nil {
		return ErrCatalogFailed
	}
	if m.catalog == nil {
		return ErrCatalogNotLoaded
	}
	return nil
}

// cascade re-runs the downstream validation rules top-down against the loaded
// catalog, clearing whatever no longer belongs.
func (m *Machine) cascade() {
	p, ok := m.catalog.Provider(m.sel.Provider)
	if !ok {
		m.sel = Selection{}
		return
	}
	mod, ok := p.Model(m.sel.Model)
	if !ok {
		m.sel.Model = ""
		m.sel.Language = ""
		return
	}
	if m.sel.Language != "" && !mod.HasLanguage(m.sel.Language) {
		m.sel.Language = ""
	}
}

// persist writes the triple through the store when, and only when, the full
// triple is valid. Partial selections are never persisted.
func (m *Machine) persist() error {
	if m.Phase() != PhaseFullySelected || m.store == nil {
		return nil
	}
	return m.store.Save(m.sel)
}
