package vector

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrBusy = errors.New("an ingestion is already in progress")

// Store is the process-wide handle to the current index. Readers get a
// consistent snapshot via an atomic pointer; writers serialize through
// Replace, which rejects a second concurrent rebuild instead of
// queueing it.
type Store struct {
	current atomic.Pointer[Index]
	writeMu sync.Mutex
}

func NewStore() *Store {
	return &Store{}
}

// Load returns the current index snapshot, or nil before the first
// successful ingestion.
func (s *Store) Load() *Index {
	return s.current.Load()
}

// Replace runs build while holding the writer lock and installs its
// result as a single atomic swap. If build fails, the previous index
// stays in place. A build already in flight yields ErrBusy.
func (s *Store) Replace(build func() (*Index, error)) error {
	if !s.writeMu.TryLock() {
		return ErrBusy
	}
	defer s.writeMu.Unlock()

	ix, err := build()
	if err != nil {
		return err
	}
	s.current.Store(ix)
	return nil
}
