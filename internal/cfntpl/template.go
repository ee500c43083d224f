// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"encoding/json"

	"github.com/davecgh/go-spew/spew"
)

// Template is a declarative resource graph: resources keyed by logical
// identifier, plus a parameters section and an optional description.
//
// Resource and parameter insertion order is tracked explicitly and survives
// a JSON round trip, because "template order" is the tiebreaker for every
// deterministic decision made while splitting: anchor processing order,
// partition membership order, and therefore nested stack numbering.
type Template struct {
	// FormatVersion is the optional AWSTemplateFormatVersion section.
	FormatVersion string

	// Description is the optional top-level description.
	Description string

	resources     map[string]*Resource
	resourceOrder []string

	parameters     map[string]*Parameter
	parameterOrder []string

	// extra holds top-level sections this package does not model (Outputs,
	// Mappings, Conditions and so on), preserved verbatim.
	extra      map[string]json.RawMessage
	extraOrder []string
}

// NewTemplate returns an empty template.
func NewTemplate() *Template {
	return &Template{
		resources:  make(map[string]*Resource),
		parameters: make(map[string]*Parameter),
	}
}

// Resource returns the resource with the given logical identifier, or nil if
// the template has no such resource.
func (t *Template) Resource(logicalID string) *Resource {
	return t.resources[logicalID]
}

// HasResource returns true if the template contains a resource with the
// given logical identifier.
func (t *Template) HasResource(logicalID string) bool {
	_, ok := t.resources[logicalID]
	return ok
}

// AddResource inserts the given resource under the given logical identifier.
// A new identifier is appended to the template order; re-adding an existing
// identifier replaces the resource but keeps its original position.
func (t *Template) AddResource(logicalID string, r *Resource) {
	if _, exists := t.resources[logicalID]; !exists {
		t.resourceOrder = append(t.resourceOrder, logicalID)
	}
	t.resources[logicalID] = r
}

// RemoveResource deletes the resource with the given logical identifier, if
// present, along with its position in the template order.
func (t *Template) RemoveResource(logicalID string) {
	if _, exists := t.resources[logicalID]; !exists {
		return
	}
	delete(t.resources, logicalID)
	for i, id := range t.resourceOrder {
		if id == logicalID {
			t.resourceOrder = append(t.resourceOrder[:i], t.resourceOrder[i+1:]...)
			break
		}
	}
}

// ResourceIDs returns the logical identifiers of all resources in template
// order. The returned slice is a copy that the caller may retain or modify.
func (t *Template) ResourceIDs() []string {
	ret := make([]string, len(t.resourceOrder))
	copy(ret, t.resourceOrder)
	return ret
}

// ResourceCount returns the number of resources in the template.
func (t *Template) ResourceCount() int {
	return len(t.resources)
}

// Parameter returns the parameter with the given name, or nil.
func (t *Template) Parameter(name string) *Parameter {
	return t.parameters[name]
}

// HasParameter returns true if the template declares the given parameter.
func (t *Template) HasParameter(name string) bool {
	_, ok := t.parameters[name]
	return ok
}

// AddParameter declares a parameter under the given name, appending new
// names to the declaration order.
func (t *Template) AddParameter(name string, p *Parameter) {
	if _, exists := t.parameters[name]; !exists {
		t.parameterOrder = append(t.parameterOrder, name)
	}
	t.parameters[name] = p
}

// ParameterNames returns the declared parameter names in declaration order.
func (t *Template) ParameterNames() []string {
	ret := make([]string, len(t.parameterOrder))
	copy(ret, t.parameterOrder)
	return ret
}

// SetExtra records a top-level section this package does not model, keyed by
// its section name, preserving it verbatim for serialization.
func (t *Template) SetExtra(name string, raw json.RawMessage) {
	if t.extra == nil {
		t.extra = make(map[string]json.RawMessage)
	}
	if _, exists := t.extra[name]; !exists {
		t.extraOrder = append(t.extraOrder, name)
	}
	t.extra[name] = raw
}

// DeepCopy returns a copy of the template sharing no mutable state with the
// receiver.
func (t *Template) DeepCopy() *Template {
	ret := NewTemplate()
	ret.FormatVersion = t.FormatVersion
	ret.Description = t.Description
	for _, id := range t.resourceOrder {
		ret.AddResource(id, t.resources[id].DeepCopy())
	}
	for _, name := range t.parameterOrder {
		ret.AddParameter(name, t.parameters[name].DeepCopy())
	}
	for _, name := range t.extraOrder {
		raw := make(json.RawMessage, len(t.extra[name]))
		copy(raw, t.extra[name])
		ret.SetExtra(name, raw)
	}
	return ret
}

// GoString implements fmt.GoStringer for more useful test failure output.
func (t *Template) GoString() string {
	return spew.Sdump(t)
}
