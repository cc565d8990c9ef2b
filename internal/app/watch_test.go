package app_test

import (
	"context"
	"iter"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/app"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestApp_Watch_RecalculatesOnChange(t *testing.T) {
	f := newFixture(t, "/work")
	f.app.WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var puts atomic.Int32
	f.files.EXPECT().Load(plantRef).Return(settledProject(), nil).Times(2)
	f.fingerprinter.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any()).Return("fp", nil).Times(2)
	f.journal.EXPECT().Get(stateDir, plantRef).Return(nil, nil).Times(2)
	f.journal.EXPECT().Put(stateDir, gomock.Any()).DoAndReturn(func(string, domain.RunRecord) error {
		if puts.Add(1) == 2 {
			cancel()
		}
		return nil
	}).Times(2)

	f.watcher.EXPECT().Start(gomock.Any(), []string{plantRef}).Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		if !yield(ports.WatchEvent{Path: "/work/other.yaml", Operation: ports.OpRemove}) {
			return
		}
		if !yield(ports.WatchEvent{Path: plantRef, Operation: ports.OpWrite}) {
			return
		}
		<-ctx.Done()
	}))
	f.watcher.EXPECT().Stop().Return(nil)

	err := f.app.Watch(ctx, []string{plantRef}, app.RecalcOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), puts.Load())
}

func TestApp_Watch_OnlyDatabaseRefs(t *testing.T) {
	f := newFixture(t, "/work")
	db := &fakeDatabase{
		MockProjectStore:    mocks.NewMockProjectStore(f.ctrl),
		MockProjectImporter: mocks.NewMockProjectImporter(f.ctrl),
	}
	f.app.WithDatabaseOpener(func(string) (app.Database, error) { return db, nil })
	f.logger.EXPECT().Warn(gomock.Any())

	db.MockProjectStore.EXPECT().Load("sqlite:plant").Return(settledProject(), nil)
	f.fingerprinter.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any()).Return("fp", nil)
	f.journal.EXPECT().Get(stateDir, "sqlite:plant").Return(nil, nil)
	f.journal.EXPECT().Put(stateDir, gomock.Any()).Return(nil)

	err := f.app.Watch(context.Background(), []string{"sqlite:plant"}, app.RecalcOptions{})
	require.NoError(t, err)
}

func TestApp_Watch_RecalculationErrorsAreLogged(t *testing.T) {
	f := newFixture(t, "/work")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.files.EXPECT().Load(plantRef).Return(nil, domain.ErrConfigParseFailed)
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrRecalculationFailed)
	})
	f.watcher.EXPECT().Start(gomock.Any(), []string{plantRef}).Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(func(ports.WatchEvent) bool) {
		cancel()
	}))
	f.watcher.EXPECT().Stop().Return(nil)

	require.NoError(t, f.app.Watch(ctx, []string{plantRef}, app.RecalcOptions{}))
}
