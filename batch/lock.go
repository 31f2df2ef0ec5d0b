package batch

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file created in every output directory.
const LockName = ".bisresample.lock"

type fileLock struct {
	f *flock.Flock
}

func newFileLock(dir string) (*fileLock, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, err
	}
	return &fileLock{f: flock.New(filepath.Join(dir, LockName))}, nil
}

func (l *fileLock) Lock() error   { return l.f.Lock() }
func (l *fileLock) Unlock() error { return l.f.Unlock() }
