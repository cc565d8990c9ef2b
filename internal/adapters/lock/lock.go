// Package lock serializes recalculations of the same project across
// goroutines and processes using advisory file locks.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/zerr"
)

// RetryInterval is the pause between attempts to take a file lock held by
// another process.
const RetryInterval = 10 * time.Millisecond

var _ ports.Locker = (*Locker)(nil)

// Locker implements ports.Locker. Within a process each key is guarded by a
// one-slot semaphore so that waiting honors context cancellation; across
// processes an exclusive lock on a file below the state directory is held.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// New creates a new Locker.
func New() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

// Lock blocks until key is held by the caller or ctx is done.
func (l *Locker) Lock(ctx context.Context, stateDir, key string) (func(), error) {
	slot := l.slot(key)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, zerr.With(zerr.Wrap(ctx.Err(), domain.ErrLockFailed.Error()), "key", key)
	}

	f, err := l.lockFile(ctx, stateDir, key)
	if err != nil {
		<-slot
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "key", key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = unlockFile(f)
			_ = f.Close()
			<-slot
		})
	}, nil
}

func (l *Locker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

func (l *Locker) lockFile(ctx context.Context, stateDir, key string) (*os.File, error) {
	dir := domain.LockPath(stateDir)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, err
	}

	hash := sha256.Sum256([]byte(key))
	path := filepath.Join(dir, hex.EncodeToString(hash[:8])+".lock")
	//nolint:gosec // Path is constructed from the state directory and a hashed name
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm)
	if err != nil {
		return nil, err
	}

	for {
		ok, err := tryLockFile(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if ok {
			return f, nil
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}
