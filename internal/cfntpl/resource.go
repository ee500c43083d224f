// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"encoding/json"

	"github.com/zclconf/go-cty/cty"
)

// Resource is a single named node in a template's resource graph.
//
// The logical identifier is not stored here; a resource is always addressed
// through the map key in its containing Template, so that moving a resource
// between templates cannot leave a stale identifier behind.
type Resource struct {
	// Type is the resource type tag, e.g. "AWS::Serverless::Function".
	Type string

	// Properties is the arbitrarily nested property bag. It may be
	// cty.NilVal for resources declared without properties.
	Properties cty.Value

	// DependsOn is the explicit ordering list: logical identifiers this
	// resource must be created after, beyond what its references already
	// imply.
	DependsOn []string

	// Description is the optional resource-level description.
	Description string

	// extra holds resource-level sections this package does not model
	// (Metadata, Condition, DeletionPolicy and so on), preserved verbatim
	// across a round trip.
	extra      map[string]json.RawMessage
	extraOrder []string
}

// DeepCopy returns a copy of the receiver that shares no mutable state with
// it. The property bag is shared as-is since cty values are immutable.
func (r *Resource) DeepCopy() *Resource {
	if r == nil {
		return nil
	}
	ret := &Resource{
		Type:        r.Type,
		Properties:  r.Properties,
		Description: r.Description,
	}
	if r.DependsOn != nil {
		ret.DependsOn = make([]string, len(r.DependsOn))
		copy(ret.DependsOn, r.DependsOn)
	}
	if r.extra != nil {
		ret.extra = make(map[string]json.RawMessage, len(r.extra))
		for k, v := range r.extra {
			raw := make(json.RawMessage, len(v))
			copy(raw, v)
			ret.extra[k] = raw
		}
		ret.extraOrder = make([]string, len(r.extraOrder))
		copy(ret.extraOrder, r.extraOrder)
	}
	return ret
}

// Parameter is one entry in a template's Parameters section.
type Parameter struct {
	// Type is the parameter type, e.g. "String".
	Type string

	// Description is the optional human-oriented description.
	Description string

	// Default is the optional default value, preserved verbatim.
	Default json.RawMessage
}

// DeepCopy returns a copy of the receiver that shares no mutable state
// with it.
func (p *Parameter) DeepCopy() *Parameter {
	if p == nil {
		return nil
	}
	ret := &Parameter{
		Type:        p.Type,
		Description: p.Description,
	}
	if p.Default != nil {
		ret.Default = make(json.RawMessage, len(p.Default))
		copy(ret.Default, p.Default)
	}
	return ret
}
