// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strings"

	"github.com/stackshard/stackshard/version"
)

// VersionCommand is a Command implementation that prints the version.
type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: stackshard version

  Displays the version of stackshard.
`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current stackshard version"
}

func (c *VersionCommand) Run(args []string) int {
	c.Ui.Output("stackshard v" + version.String())
	return 0
}
