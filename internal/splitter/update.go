// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"fmt"
	"log"

	"github.com/stackshard/stackshard/internal/cfntpl"
	"github.com/stackshard/stackshard/internal/diags"
)

// updateTemplate removes every partitioned resource from the root template
// and merges each parent-side stack resource in under its own new logical
// identifier. Root resources untouched by partitioning are left exactly as
// they were.
//
// The resulting resource count is (root resources never partitioned) plus
// (number of partitions).
func updateTemplate(t *cfntpl.Template, stacks []*NestedStack) diags.Diagnostics {
	var diagnostics diags.Diagnostics

	leaving := make(map[string]bool)
	for _, stack := range stacks {
		for _, id := range stack.Members {
			leaving[id] = true
		}
	}

	for _, stack := range stacks {
		if t.HasResource(stack.StackLogicalID) && !leaving[stack.StackLogicalID] {
			diagnostics = diagnostics.Append(diags.Sourceless(
				diags.Error,
				"Nested stack identifier collision",
				fmt.Sprintf("The template already contains a resource named %q, which is reserved for the generated nested stack resources.", stack.StackLogicalID),
			))
		}
	}
	if diagnostics.HasErrors() {
		return diagnostics
	}

	removed := 0
	for _, stack := range stacks {
		for _, id := range stack.Members {
			t.RemoveResource(id)
			removed++
		}
	}
	for _, stack := range stacks {
		t.AddResource(stack.StackLogicalID, stack.StackResource)
	}

	log.Printf("[DEBUG] splitter: replaced %d resource(s) with %d nested stack resource(s)", removed, len(stacks))
	return diagnostics
}
