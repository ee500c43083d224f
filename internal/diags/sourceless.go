// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package diags

// Sourceless creates and returns a diagnostic with no source location
// information. This is generally used for operational-type errors that are
// caused by or relate to the environment where the program is running rather
// than to the content being processed.
func Sourceless(severity Severity, summary, detail string) Diagnostic {
	return sourcelessDiagnostic{
		severity: severity,
		summary:  summary,
		detail:   detail,
	}
}

type sourcelessDiagnostic struct {
	severity Severity
	summary  string
	detail   string
}

var _ Diagnostic = sourcelessDiagnostic{}

func (e sourcelessDiagnostic) Severity() Severity {
	return e.severity
}

func (e sourcelessDiagnostic) Description() Description {
	return Description{
		Summary: e.summary,
		Detail:  e.detail,
	}
}
