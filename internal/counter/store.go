// Package counter persists the single reset epoch that every other part
// of the system derives its display from.
package counter

import (
	"fmt"

	"grimm.is/sincelast/internal/logging"
	"grimm.is/sincelast/internal/state"
)

const (
	// Bucket groups timer keys in the state store.
	Bucket = "timer"
	// Key holds the reset epoch as a JSON-encoded integer. The name is
	// kept for compatibility with existing stores.
	Key = "social_timer_count"
)

// Store reads and writes the persisted reset epoch.
// Writes are last-write-wins: concurrent resets from different clients
// leave one arbitrary winner, and no compare-and-swap is offered.
type Store struct {
	store  state.Store
	logger *logging.Logger
}

// NewStore creates the counter store and ensures its bucket exists.
func NewStore(st state.Store, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := st.CreateBucket(Bucket); err != nil && err != state.ErrBucketExists {
		return nil, fmt.Errorf("failed to create timer bucket: %w", err)
	}
	return &Store{store: st, logger: logger.WithComponent("counter")}, nil
}

// GetOrInit returns the persisted reset epoch. If the key is absent, or
// the read fails for any reason, the store re-initializes itself to
// fallback and returns fallback. A missing key and a broken read are the
// same condition here: no valid epoch exists, so one is created.
//
// The returned error is non-nil only when the healing write itself
// failed; the epoch is valid to use either way.
func (s *Store) GetOrInit(fallback int64) (int64, error) {
	var epoch int64
	err := s.store.GetJSON(Bucket, Key, &epoch)
	if err == nil {
		return epoch, nil
	}

	if err != state.ErrNotFound {
		s.logger.Warn("epoch read failed, re-initializing", "error", err, "fallback", fallback)
	} else {
		s.logger.Info("no epoch stored, initializing", "fallback", fallback)
	}

	if _, werr := s.Reset(fallback); werr != nil {
		return fallback, fmt.Errorf("failed to initialize epoch: %w", werr)
	}
	return fallback, nil
}

// Reset persists epoch under the counter key, overwriting any prior
// value, and returns it. Write failures are surfaced, never retried: a
// failed reset must not look like a successful one.
func (s *Store) Reset(epoch int64) (int64, error) {
	if err := s.store.SetJSON(Bucket, Key, epoch); err != nil {
		return 0, fmt.Errorf("failed to persist reset epoch: %w", err)
	}
	return epoch, nil
}
