// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"fmt"
	"log"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/stackshard/stackshard/internal/addrs"
	"github.com/stackshard/stackshard/internal/cfntpl"
)

// buildNestedStack extracts one partition into a standalone sub-template and
// builds its parent-side stack resource.
//
// Every reference expression whose target lies outside the partition becomes
// a parameter of the sub-template, named after the target and deduplicated
// by target, and the expression is rewritten in place into a plain reference
// to that parameter. The parent passes the parameter's value using the same
// expression shape the first internal use had, so the referenced value is
// unchanged, merely re-sourced. Explicit ordering entries that cross the
// boundary move onto the parent-side resource's ordering list, which also
// covers every parameter's source, in order of first appearance.
func buildNestedStack(t *cfntpl.Template, p *Partition, cfg *Config) *NestedStack {
	inPartition := make(map[string]bool, len(p.Members))
	for _, id := range p.Members {
		inPartition[id] = true
	}

	sub := cfntpl.NewTemplate()
	sub.Description = fmt.Sprintf("Nested stack %d, split out around %s", p.Sequence, p.AnchorID)

	// Parameter map and parent-side ordering list, both in order of first
	// appearance among the partition's resources.
	paramRefs := make(map[string]addrs.Reference)
	var paramOrder []string
	var dependsOn []string
	dependsOnSet := make(map[string]bool)
	addDependsOn := func(id string) {
		if !dependsOnSet[id] {
			dependsOnSet[id] = true
			dependsOn = append(dependsOn, id)
		}
	}

	for _, id := range p.Members {
		r := t.Resource(id).DeepCopy()

		r.Properties = cfntpl.ReplaceReferences(r.Properties, func(_ cty.Path, ref addrs.Reference) addrs.Reference {
			target := ref.Target()
			if inPartition[target] {
				return nil
			}
			if strings.HasPrefix(target, "AWS::") {
				// Pseudo parameters resolve in any stack's own scope, so
				// they cross the boundary as-is.
				return nil
			}
			if _, exists := paramRefs[target]; !exists {
				paramRefs[target] = ref
				paramOrder = append(paramOrder, target)
			}
			// Only resources can be ordering targets; a reference to a
			// template parameter still becomes a sub-template parameter.
			if t.HasResource(target) {
				addDependsOn(target)
			}
			return addrs.Ref{LogicalID: target}
		})

		if len(r.DependsOn) > 0 {
			kept := r.DependsOn[:0]
			for _, dep := range r.DependsOn {
				if inPartition[dep] {
					kept = append(kept, dep)
					continue
				}
				addDependsOn(dep)
			}
			if len(kept) == 0 {
				kept = nil
			}
			r.DependsOn = kept
		}

		sub.AddResource(id, r)
	}

	for _, target := range paramOrder {
		sub.AddParameter(target, &cfntpl.Parameter{
			Type:        "String",
			Description: fmt.Sprintf("Supplied by the parent stack from %s", target),
		})
	}

	stack := &cfntpl.Resource{
		Type:        cfg.NestedStackType,
		Description: fmt.Sprintf("Nested stack for %s", p.AnchorID),
		Properties:  stackProperties(cfg.RemoteLocation(p.Sequence), paramOrder, paramRefs),
		DependsOn:   dependsOn,
	}

	log.Printf("[TRACE] splitter: nested stack %d carries %d resource(s) and %d parameter(s)", p.Sequence, len(p.Members), len(paramOrder))

	return &NestedStack{
		Sequence:       p.Sequence,
		AnchorID:       p.AnchorID,
		Members:        append([]string(nil), p.Members...),
		SubTemplate:    sub,
		StackLogicalID: cfg.StackLogicalID(p.Sequence),
		StackResource:  stack,
		FileName:       cfg.FileName(p.Sequence),
		RemoteLocation: cfg.RemoteLocation(p.Sequence),
	}
}

// stackProperties assembles the property bag for a parent-side stack
// resource: the remote template location plus the parameter map, each
// parameter's value being the original reference expression now evaluated at
// the parent scope.
func stackProperties(location string, paramOrder []string, paramRefs map[string]addrs.Reference) cty.Value {
	attrs := map[string]cty.Value{
		"TemplateURL": cty.StringVal(location),
	}
	if len(paramOrder) > 0 {
		params := make(map[string]cty.Value, len(paramOrder))
		for _, target := range paramOrder {
			params[target] = cfntpl.ReferenceValue(paramRefs[target])
		}
		attrs["Parameters"] = cty.ObjectVal(params)
	}
	return cty.ObjectVal(attrs)
}
