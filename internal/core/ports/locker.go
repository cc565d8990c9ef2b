package ports

import "context"

// Locker serializes work on the same key across goroutines and processes.
//
//go:generate mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type Locker interface {
	// Lock blocks until key is held or ctx is done. Lock files live below
	// stateDir. The returned function releases the lock.
	Lock(ctx context.Context, stateDir, key string) (unlock func(), err error)
}
