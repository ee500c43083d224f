// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package diags

// Diagnostic is a single problem or remark produced while splitting a
// template. Unlike diagnostics in systems that process source files, these
// carry no source ranges: the input is an in-memory template, so the most
// specific location we can offer is a logical resource identifier, which
// callers embed in the detail text.
type Diagnostic interface {
	Severity() Severity
	Description() Description
}

type Description struct {
	Summary string
	Detail  string
}

type Severity rune

const (
	Error   Severity = 'E'
	Warning Severity = 'W'
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	default:
		return "???????"
	}
}
