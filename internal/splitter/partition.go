// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"fmt"
	"log"

	"github.com/stackshard/stackshard/internal/cfntpl"
	"github.com/stackshard/stackshard/internal/depgraph"
	"github.com/stackshard/stackshard/internal/diags"
)

// Partition is one group of resources extracted together into a nested
// stack: the anchor that seeded it plus its private transitive dependencies,
// in template order.
type Partition struct {
	// Sequence is the 1-based number of this partition in anchor
	// processing order.
	Sequence int

	// AnchorID is the logical identifier of the anchor resource.
	AnchorID string

	// Members lists every logical identifier in the partition, anchor
	// included, in template order.
	Members []string
}

// Contains returns true if the given identifier belongs to this partition.
func (p *Partition) Contains(logicalID string) bool {
	for _, id := range p.Members {
		if id == logicalID {
			return true
		}
	}
	return false
}

// partitionTemplate groups the template's resources around its anchor
// resources.
//
// Each anchor claims itself plus every resource in its dependency closure
// whose referencers all lie within the claimed set: a dependency reachable
// from two anchors, or referenced by anything outside the closure, is shared
// and stays at the root. Anchors are never absorbed into another anchor's
// partition. Resources claimed by no anchor stay at the root.
func partitionTemplate(t *cfntpl.Template, g *depgraph.Graph, cfg *Config) []*Partition {
	var anchors []string
	anchorSet := make(map[string]bool)
	for _, id := range t.ResourceIDs() {
		if cfg.isAnchorType(t.Resource(id).Type) {
			anchors = append(anchors, id)
			anchorSet[id] = true
		}
	}
	if len(anchors) == 0 {
		return nil
	}

	// Order of each resource in the template, for sorting members and for
	// keeping "first appearance" stable.
	order := make(map[string]int)
	for i, id := range t.ResourceIDs() {
		order[id] = i
	}

	// Count how many anchor closures reach each resource. A resource
	// reachable from more than one anchor is shared by definition.
	closures := make(map[string]map[string]bool, len(anchors))
	reachCount := make(map[string]int)
	for _, anchor := range anchors {
		closure := map[string]bool{anchor: true}
		for _, id := range g.TransitiveDependencies(anchor) {
			closure[id] = true
		}
		closures[anchor] = closure
		for id := range closure {
			reachCount[id]++
		}
	}

	var ret []*Partition
	claimed := make(map[string]bool)
	for _, anchor := range anchors {
		if claimed[anchor] {
			// Cannot happen while anchors are excluded from other
			// partitions, but the invariant is cheap to keep explicit.
			continue
		}

		members := make(map[string]bool, len(closures[anchor]))
		for id := range closures[anchor] {
			switch {
			case id == anchor:
				members[id] = true
			case !t.HasResource(id):
				// A dangling reference target; not ours to relocate.
			case anchorSet[id]:
				// Another anchor: it seeds its own partition.
			case reachCount[id] > 1:
				// Shared between anchors; stays at the root.
			case claimed[id]:
				// Claimed by an earlier partition.
			default:
				members[id] = true
			}
		}

		// A member is private only if everything referencing it is also a
		// member. Removing a member can orphan members deeper in the
		// closure, so iterate to a fixed point.
		for {
			removed := false
			for id := range members {
				if id == anchor {
					continue
				}
				for _, referencer := range g.Dependents(id) {
					if !members[referencer] {
						delete(members, id)
						removed = true
						break
					}
				}
			}
			if !removed {
				break
			}
		}

		p := &Partition{
			Sequence: len(ret) + 1,
			AnchorID: anchor,
		}
		for _, id := range t.ResourceIDs() {
			if members[id] {
				p.Members = append(p.Members, id)
				claimed[id] = true
			}
		}
		ret = append(ret, p)
		log.Printf("[DEBUG] splitter: partition %d around %q claims %d resource(s)", p.Sequence, anchor, len(p.Members))
	}

	return ret
}

// validatePartitions checks the two invariants that must hold before any
// rewriting happens: partitions are pairwise disjoint, and no resource left
// at the root references into a partition. Either violation means the
// template cannot be split without changing its meaning, so the run aborts.
func validatePartitions(t *cfntpl.Template, g *depgraph.Graph, partitions []*Partition) diags.Diagnostics {
	var diagnostics diags.Diagnostics

	owner := make(map[string]string)
	for _, p := range partitions {
		for _, id := range p.Members {
			if prev, taken := owner[id]; taken {
				diagnostics = diagnostics.Append(diags.Sourceless(
					diags.Error,
					"Overlapping nested stack partitions",
					fmt.Sprintf("Resource %q was claimed by the partitions for both %q and %q. This is a bug in the partitioner.", id, prev, p.AnchorID),
				))
				continue
			}
			owner[id] = p.AnchorID
		}
	}

	for _, id := range t.ResourceIDs() {
		from, fromPartitioned := owner[id]
		for _, dep := range g.Dependencies(id) {
			to, toPartitioned := owner[dep]
			if !toPartitioned {
				// References out of a partition become parameters; that's
				// the normal case the rewriter handles.
				continue
			}
			switch {
			case !fromPartitioned:
				diagnostics = diagnostics.Append(diags.Sourceless(
					diags.Error,
					"Reference into a nested stack",
					fmt.Sprintf("Root resource %q references %q, which was moved into the nested stack for %q. A partitioned resource must only be referenced from inside its own partition.", id, dep, to),
				))
			case from != to:
				// A parameter sourced from another partition would dangle
				// once both partitions leave the root template.
				diagnostics = diagnostics.Append(diags.Sourceless(
					diags.Error,
					"Reference across nested stacks",
					fmt.Sprintf("Resource %q in the nested stack for %q references %q in the nested stack for %q. Resources in different nested stacks cannot reference each other.", id, from, dep, to),
				))
			}
		}
	}

	return diagnostics
}
