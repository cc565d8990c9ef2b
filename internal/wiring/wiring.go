// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tempo/internal/adapters/fingerprint"
	_ "go.trai.ch/tempo/internal/adapters/journal"
	_ "go.trai.ch/tempo/internal/adapters/lock"
	_ "go.trai.ch/tempo/internal/adapters/logger"
	_ "go.trai.ch/tempo/internal/adapters/settings"
	_ "go.trai.ch/tempo/internal/adapters/telemetry"
	_ "go.trai.ch/tempo/internal/adapters/watcher"
	_ "go.trai.ch/tempo/internal/adapters/yamlfile"
	// Register app and engine nodes.
	_ "go.trai.ch/tempo/internal/app"
	_ "go.trai.ch/tempo/internal/engine/scheduler"
)
