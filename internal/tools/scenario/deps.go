package scenario

import "github.com/louisbranch/warlord/internal/services/battle/storage"

// runnerDeps bundles injectable dependencies for runner construction.
type runnerDeps struct {
	store storage.Store
	// closeStore releases the store when the runner closes; nil for stores
	// owned by the caller.
	closeStore func() error
}
