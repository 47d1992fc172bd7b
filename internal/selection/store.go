package selection

// Store is the port for persisting the selected triple between runs. It
// mirrors browser local storage: the value is overwritten wholesale on each
// save, with no migration format.
type Store interface {
	// Load returns the persisted triple and whether one was present.
	Load() (Selection, bool, error)
	// Save overwrites the persisted triple.
	Save(Selection) error
}
