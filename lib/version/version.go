// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the
// communicator library.
//
// Build metadata is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/communicator/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// The semantic version itself is a compile-time constant so that
// Numbers can be answered without parsing at every call.
package version

import (
	"fmt"
	"runtime"
)

// Semantic version components. Bump together with Version.
const (
	Major = 0
	Minor = 2
	Patch = 0
)

// Version is the semantic version string.
const Version = "0.2.0"

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Numbers returns the semantic version as three integers.
func Numbers() (major, minor, patch int) {
	return Major, Minor, Patch
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime)
}

// Full returns detailed version information including the Go runtime.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
