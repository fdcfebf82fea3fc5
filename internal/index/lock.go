package index

import (
	"github.com/gofrs/flock"

	sifterr "github.com/pdfsift/pdfsift/internal/errors"
)

// RunLock guards a store against concurrent indexing runs from separate
// processes. It is advisory: readers are unaffected.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes the lock next to the store at storePath.
// Fails immediately if another process holds it.
func AcquireRunLock(storePath string) (*RunLock, error) {
	fl := flock.New(storePath + ".lock")

	locked, err := fl.TryLock()
	if err != nil {
		return nil, sifterr.Wrap(sifterr.ErrCodeStoreLocked, err)
	}
	if !locked {
		return nil, sifterr.New(sifterr.ErrCodeStoreLocked,
			"store is locked by another pdfsift process", nil).
			WithDetail("path", storePath).
			WithSuggestion("Wait for the other indexing run to finish")
	}

	return &RunLock{fl: fl}, nil
}

// Release drops the lock.
func (l *RunLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
