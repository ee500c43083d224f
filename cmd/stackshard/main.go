// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/stackshard/stackshard/internal/command"
	"github.com/stackshard/stackshard/internal/logging"
	"github.com/stackshard/stackshard/version"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	logging.Init()

	ui := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	}
	meta := command.Meta{
		Ui: ui,
		FS: afero.Afero{Fs: afero.NewOsFs()},
	}

	c := cli.NewCLI("stackshard", version.String())
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"split": func() (cli.Command, error) {
			return &command.SplitCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Meta: meta}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	return exitStatus
}
