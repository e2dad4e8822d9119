package posixfs

import "basalt/pkg/storage"

// BackendName is the key this backend registers under.
const BackendName = "posix"

type factory struct{}

var _ storage.Factory = factory{}

func (factory) Name() string {
	return BackendName
}

func (factory) New(cfg storage.Config) (storage.Backend, error) {
	return New(cfg.Base, WithCacheMode(cfg.Cache)), nil
}

// Register makes the posix backend selectable through
// storage.NewBackend. Call it once during process startup; registration
// is deliberate, not an import side effect.
func Register() {
	storage.Register(factory{})
}
