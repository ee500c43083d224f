// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package logging routes the stdlib log package through hclog so that the
// rest of the codebase can use log.Printf with a bracketed level prefix,
// e.g. log.Printf("[TRACE] splitter: ..."), and have the level inferred and
// filtered centrally.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// envLog is the environment variable that selects the log level. Logging is
// off entirely when it is unset.
const envLog = "STACKSHARD_LOG"

var logger hclog.Logger

// Init configures the global logger from the environment and redirects the
// stdlib log package into it. It must be called once, early in startup,
// before anything logs.
func Init() {
	logger = newHCLogger("stackshard")

	// Inferring levels from the bracketed prefix keeps call sites on the
	// plain stdlib API.
	log.SetOutput(logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels:              true,
		InferLevelsWithTimestamp: true,
	}))
	log.SetFlags(0)
	log.SetPrefix("")
}

// HCLogger returns the global logger for callers that want structured
// logging rather than the stdlib shim.
func HCLogger() hclog.Logger {
	if logger == nil {
		logger = newHCLogger("stackshard")
	}
	return logger
}

func newHCLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:              name,
		Level:             globalLogLevel(),
		Output:            logOutput(),
		IndependentLevels: true,
	})
}

func logOutput() io.Writer {
	if globalLogLevel() == hclog.Off {
		return io.Discard
	}
	return os.Stderr
}

func globalLogLevel() hclog.Level {
	envLevel := strings.ToUpper(strings.TrimSpace(os.Getenv(envLog)))
	if envLevel == "" {
		return hclog.Off
	}
	return parseLogLevel(envLevel)
}

func parseLogLevel(envLevel string) hclog.Level {
	switch envLevel {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		// An unrecognized value enables everything, which is the friendlier
		// failure mode when someone sets STACKSHARD_LOG=1.
		return hclog.Trace
	}
}
