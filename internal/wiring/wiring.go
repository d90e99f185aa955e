// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/wipt/internal/adapters/cachestore"
	_ "go.trai.ch/wipt/internal/adapters/config"
	_ "go.trai.ch/wipt/internal/adapters/engine"
	_ "go.trai.ch/wipt/internal/adapters/fetch"
	_ "go.trai.ch/wipt/internal/adapters/logger"
	_ "go.trai.ch/wipt/internal/adapters/manifest"
	_ "go.trai.ch/wipt/internal/adapters/shell"
	_ "go.trai.ch/wipt/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/wipt/internal/app"
	_ "go.trai.ch/wipt/internal/engine/resolver"
	_ "go.trai.ch/wipt/internal/engine/updater"
)
