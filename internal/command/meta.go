// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package command contains the CLI command implementations for stackshard.
package command

import (
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/stackshard/stackshard/internal/diags"
)

// Meta holds the collaborators shared by all commands.
type Meta struct {
	// Ui is where commands print their human-oriented output.
	Ui cli.Ui

	// FS is the filesystem commands read templates from and write
	// artifacts to. Tests substitute an in-memory implementation.
	FS afero.Afero
}

// showDiagnostics prints each diagnostic to the appropriate UI stream.
func (m *Meta) showDiagnostics(diagnostics diags.Diagnostics) {
	for _, diag := range diagnostics {
		desc := diag.Description()
		msg := desc.Summary
		if desc.Detail != "" {
			msg += "\n\n" + desc.Detail
		}
		switch diag.Severity() {
		case diags.Warning:
			m.Ui.Warn("Warning: " + msg)
		default:
			m.Ui.Error("Error: " + msg)
		}
	}
}
