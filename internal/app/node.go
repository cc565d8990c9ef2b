package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tempo/internal/adapters/fingerprint" //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/journal"     //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/lock"        //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/settings"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/watcher"     //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/adapters/yamlfile"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/tempo/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the command line needs from the object graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			settings.NodeID,
			yamlfile.NodeID,
			journal.NodeID,
			fingerprint.NodeID,
			lock.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			scheduler.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}
	files, err := graft.Dep[ports.ProjectStore](ctx)
	if err != nil {
		return nil, err
	}
	runJournal, err := graft.Dep[ports.RunJournal](ctx)
	if err != nil {
		return nil, err
	}
	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}
	locker, err := graft.Dep[ports.Locker](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}
	newWatcher, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, files, runJournal, fingerprinter, locker, log, tracer, sched, WatcherFactory(newWatcher)), nil
}
