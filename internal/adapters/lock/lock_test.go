package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/adapters/lock"
	"go.trai.ch/tempo/internal/core/domain"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	stateDir := t.TempDir()
	l := lock.New()

	var active, maxActive int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), stateDir, "plant.yaml")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
}

func TestLocker_DistinctKeysDoNotBlock(t *testing.T) {
	stateDir := t.TempDir()
	l := lock.New()

	unlockA, err := l.Lock(context.Background(), stateDir, "a.yaml")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, stateDir, "b.yaml")
	require.NoError(t, err)
	unlockB()
}

func TestLocker_ContextCancelled(t *testing.T) {
	stateDir := t.TempDir()
	l := lock.New()

	unlock, err := l.Lock(context.Background(), stateDir, "plant.yaml")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, stateDir, "plant.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLockFailed.Error())
}

func TestLocker_FileLockAcrossLockers(t *testing.T) {
	stateDir := t.TempDir()
	first, second := lock.New(), lock.New()

	unlock, err := first.Lock(context.Background(), stateDir, "sqlite:plant")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, stateDir, "sqlite:plant")
	require.Error(t, err, "a second locker must wait for the file lock")

	unlock()
	unlock() // idempotent

	unlock2, err := second.Lock(context.Background(), stateDir, "sqlite:plant")
	require.NoError(t, err)
	unlock2()
}
