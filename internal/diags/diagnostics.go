// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package diags

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// Diagnostics is a collection of diagnostics. A nil Diagnostics is a valid,
// empty collection, so callers may declare `var diags Diagnostics` and then
// append to it as needed.
type Diagnostics []Diagnostic

// Append adds zero or more new diagnostics to the receiver and returns the
// combined collection.
//
// Each argument may be a Diagnostic, a Diagnostics, or a plain error. A plain
// error is wrapped as an error-severity diagnostic. Nil arguments are
// ignored. Any other type causes a panic, since that always indicates a bug
// in the caller.
func (d Diagnostics) Append(new ...interface{}) Diagnostics {
	for _, item := range new {
		if item == nil {
			continue
		}

		switch ti := item.(type) {
		case Diagnostic:
			d = append(d, ti)
		case Diagnostics:
			d = append(d, ti...)
		case error:
			var errs *multierror.Error
			if errors.As(ti, &errs) {
				for _, err := range errs.Errors {
					d = append(d, nativeError{err})
				}
				continue
			}
			d = append(d, nativeError{ti})
		default:
			panic(fmt.Errorf("can't construct diagnostic(s) from %T", item))
		}
	}

	return d
}

// HasErrors returns true if any of the diagnostics in the collection have
// error severity.
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity() == Error {
			return true
		}
	}
	return false
}

// Err flattens a diagnostics list into a single Go error, or to nil if the
// diagnostics list does not include any error-level diagnostics.
//
// This can be used to smuggle diagnostics through an API that deals in
// native errors, but callers that can handle diagnostics directly should
// prefer them, since an error discards warnings.
func (d Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	return diagnosticsAsError{d}
}

// ErrWithWarnings is like Err except that it returns a non-nil error also
// when the receiver contains only warnings, so that a caller that must not
// lose warnings can still pass them through an error return.
func (d Diagnostics) ErrWithWarnings() error {
	if len(d) == 0 {
		return nil
	}
	return diagnosticsAsError{d}
}

type diagnosticsAsError struct {
	Diagnostics
}

func (dae diagnosticsAsError) Error() string {
	diags := dae.Diagnostics
	switch {
	case len(diags) == 0:
		// should never happen, since we don't create this wrapper if
		// there are no diagnostics in the list.
		return "no errors"
	case len(diags) == 1:
		desc := diags[0].Description()
		if desc.Detail == "" {
			return desc.Summary
		}
		return fmt.Sprintf("%s: %s", desc.Summary, desc.Detail)
	default:
		ret := "multiple problems:\n"
		for _, diag := range diags {
			desc := diag.Description()
			if desc.Detail == "" {
				ret += fmt.Sprintf("- %s\n", desc.Summary)
			} else {
				ret += fmt.Sprintf("- %s: %s\n", desc.Summary, desc.Detail)
			}
		}
		return ret
	}
}

// nativeError is a Diagnostic implementation that wraps a plain Go error.
type nativeError struct {
	err error
}

var _ Diagnostic = nativeError{}

func (e nativeError) Severity() Severity {
	return Error
}

func (e nativeError) Description() Description {
	return Description{
		Summary: e.err.Error(),
	}
}
