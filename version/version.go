// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package version holds the version identifier for stackshard.
package version

import (
	"fmt"
)

// Version is the main version number currently in development.
var Version = "0.1.0"

// Prerelease is a pre-release marker. It is empty for final releases.
var Prerelease = "dev"

// String returns the complete version string.
func String() string {
	if Prerelease != "" {
		return fmt.Sprintf("%s-%s", Version, Prerelease)
	}
	return Version
}
