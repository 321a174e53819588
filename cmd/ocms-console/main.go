// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-editor/internal/console"
	"github.com/olegiv/ocms-editor/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Load .env files if present (development)
	_ = godotenv.Load()

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	os.Exit(console.Execute(context.Background(), info, os.Stderr))
}
