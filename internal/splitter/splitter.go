// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package splitter implements the stack-splitting pipeline: it partitions a
// template's resource graph around its anchor resources, extracts each
// partition into a standalone sub-template with boundary-crossing references
// converted to parameters, and rewrites the original template so each
// partition is replaced by a single nested stack resource.
package splitter

import (
	"log"

	"github.com/stackshard/stackshard/internal/cfntpl"
	"github.com/stackshard/stackshard/internal/depgraph"
	"github.com/stackshard/stackshard/internal/diags"
)

// Result is what one splitting run produces: the template, updated in place,
// and a descriptor per generated nested stack for the disk-write and upload
// collaborators to consume.
type Result struct {
	// Template is the same object that was passed to Split, now updated.
	// When splitting is disabled or the template has no anchors it is
	// untouched.
	Template *cfntpl.Template

	// NestedStacks holds one descriptor per partition, in partition order.
	// It is nil when no splitting occurred.
	NestedStacks []*NestedStack
}

// Split runs the pipeline against the given template.
//
// The stages run strictly in sequence: dependency graph construction,
// partitioning, reference rewriting, then the root template update. The
// first three are pure; the template is mutated only after every nested
// stack has been fully generated, so on error the input is untouched and no
// partial output is returned.
func Split(t *cfntpl.Template, cfg *Config) (*Result, diags.Diagnostics) {
	var diagnostics diags.Diagnostics

	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		log.Printf("[TRACE] splitter: stack splitting is disabled, leaving template as-is")
		return &Result{Template: t}, nil
	}

	g := depgraph.Build(t)

	partitions := partitionTemplate(t, g, cfg)
	if len(partitions) == 0 {
		log.Printf("[DEBUG] splitter: no anchor resources, nothing to split")
		return &Result{Template: t}, nil
	}

	diagnostics = diagnostics.Append(validatePartitions(t, g, partitions))
	if diagnostics.HasErrors() {
		return nil, diagnostics
	}

	stacks := make([]*NestedStack, 0, len(partitions))
	for _, p := range partitions {
		stacks = append(stacks, buildNestedStack(t, p, cfg))
	}

	diagnostics = diagnostics.Append(updateTemplate(t, stacks))
	if diagnostics.HasErrors() {
		return nil, diagnostics
	}

	return &Result{
		Template:     t,
		NestedStacks: stacks,
	}, diagnostics
}
