// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package addrs

import (
	"fmt"
)

// Reference is the closed set of intrinsic reference expressions that can
// appear inside a resource's property bag, pointing at another resource in
// the same template.
//
// There are exactly two shapes: Ref, which refers to a resource (or
// parameter) as a whole, and GetAtt, which refers to one named attribute of
// a resource. Rewriting a reference substitutes its target while keeping its
// shape, so code that needs shape fidelity can type-switch over this
// interface rather than inspecting serialized forms.
type Reference interface {
	// Target returns the logical identifier the reference points at.
	Target() string

	// WithTarget returns an equivalent reference pointing at the given
	// identifier instead, preserving the reference's shape.
	WithTarget(target string) Reference

	String() string

	referenceSigil()
}

// Ref refers to a resource or template parameter as a whole. It serializes
// as {"Ref": "Target"}.
type Ref struct {
	LogicalID string
}

var _ Reference = Ref{}

func (r Ref) Target() string {
	return r.LogicalID
}

func (r Ref) WithTarget(target string) Reference {
	return Ref{LogicalID: target}
}

func (r Ref) String() string {
	return fmt.Sprintf("Ref(%s)", r.LogicalID)
}

func (r Ref) referenceSigil() {}

// GetAtt refers to one named attribute of a resource. It serializes as
// {"Fn::GetAtt": ["Target", "Attribute"]}.
type GetAtt struct {
	LogicalID string
	Attribute string
}

var _ Reference = GetAtt{}

func (r GetAtt) Target() string {
	return r.LogicalID
}

func (r GetAtt) WithTarget(target string) Reference {
	return GetAtt{LogicalID: target, Attribute: r.Attribute}
}

func (r GetAtt) String() string {
	return fmt.Sprintf("GetAtt(%s.%s)", r.LogicalID, r.Attribute)
}

func (r GetAtt) referenceSigil() {}
