// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"

	"github.com/stackshard/stackshard/internal/cfntpl"
	"github.com/stackshard/stackshard/internal/depgraph"
)

func runPartition(t *testing.T, tpl *cfntpl.Template) []*Partition {
	t.Helper()
	return partitionTemplate(tpl, depgraph.Build(tpl), testConfig())
}

func memberSets(partitions []*Partition) map[string][]string {
	ret := make(map[string][]string, len(partitions))
	for _, p := range partitions {
		ret[p.AnchorID] = p.Members
	}
	return ret
}

func TestPartitionPrivateChain(t *testing.T) {
	// Fn → Queue → DLQ, nothing else references the chain, so the whole
	// chain is private to the anchor.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, map[string]cty.Value{
		"Queue": ref("Queue"),
	}))
	tpl.AddResource("Queue", testResource(testPlainType, map[string]cty.Value{
		"DeadLetter": ref("DLQ"),
	}))
	tpl.AddResource("DLQ", testResource(testPlainType, nil))
	tpl.AddResource("Unrelated", testResource(testPlainType, nil))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if diff := cmp.Diff([]string{"Fn", "Queue", "DLQ"}, partitions[0].Members); diff != "" {
		t.Errorf("wrong members\n%s", diff)
	}
}

func TestPartitionSharedDependencyStaysAtRoot(t *testing.T) {
	// Both anchors reach Table; neither may own it.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("FnA", testResource(testAnchorType, map[string]cty.Value{
		"Table": ref("Table"),
		"QueueA": ref("QueueA"),
	}))
	tpl.AddResource("FnB", testResource(testAnchorType, map[string]cty.Value{
		"Table": ref("Table"),
	}))
	tpl.AddResource("Table", testResource(testPlainType, nil))
	tpl.AddResource("QueueA", testResource(testPlainType, nil))

	partitions := runPartition(t, tpl)
	if len(partitions) != 2 {
		t.Fatalf("got %d partitions; want 2", len(partitions))
	}

	sets := memberSets(partitions)
	if diff := cmp.Diff([]string{"FnA", "QueueA"}, sets["FnA"]); diff != "" {
		t.Errorf("wrong FnA members\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FnB"}, sets["FnB"]); diff != "" {
		t.Errorf("wrong FnB members\n%s", diff)
	}
}

func TestPartitionDiamond(t *testing.T) {
	// Fn → Left → Shared and Fn → Right → Shared: Shared is reachable from
	// one anchor through two hops but referenced only from inside the
	// closure, so it is still private.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, map[string]cty.Value{
		"Left":  ref("Left"),
		"Right": ref("Right"),
	}))
	tpl.AddResource("Left", testResource(testPlainType, map[string]cty.Value{
		"Shared": ref("Inner"),
	}))
	tpl.AddResource("Right", testResource(testPlainType, map[string]cty.Value{
		"Shared": ref("Inner"),
	}))
	tpl.AddResource("Inner", testResource(testPlainType, nil))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if diff := cmp.Diff([]string{"Fn", "Left", "Right", "Inner"}, partitions[0].Members); diff != "" {
		t.Errorf("wrong members\n%s", diff)
	}
}

func TestPartitionExternallyReferencedDependencyExcluded(t *testing.T) {
	// Config is a dependency of the anchor, but a root resource also
	// references it, so it is not private and stays at the root.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, map[string]cty.Value{
		"Config": ref("Config"),
	}))
	tpl.AddResource("Config", testResource(testPlainType, nil))
	tpl.AddResource("Auditor", testResource(testPlainType, map[string]cty.Value{
		"Watches": ref("Config"),
	}))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if diff := cmp.Diff([]string{"Fn"}, partitions[0].Members); diff != "" {
		t.Errorf("wrong members\n%s", diff)
	}
}

func TestPartitionExclusionCascades(t *testing.T) {
	// Fn → Mid → Leaf, where Mid is also referenced from the root. Mid is
	// excluded, and Leaf must then be excluded too even though only Mid
	// references it: its sole referencer is no longer a member.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, map[string]cty.Value{
		"Mid": ref("Mid"),
	}))
	tpl.AddResource("Mid", testResource(testPlainType, map[string]cty.Value{
		"Leaf": ref("Leaf"),
	}))
	tpl.AddResource("Leaf", testResource(testPlainType, nil))
	tpl.AddResource("Watcher", testResource(testPlainType, map[string]cty.Value{
		"Target": ref("Mid"),
	}))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if diff := cmp.Diff([]string{"Fn"}, partitions[0].Members); diff != "" {
		t.Errorf("wrong members\n%s", diff)
	}
}

func TestPartitionAnchorNeverAbsorbed(t *testing.T) {
	// FnB is a dependency of FnA, but anchors always seed their own
	// partitions.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("FnA", testResource(testAnchorType, map[string]cty.Value{
		"Peer": ref("FnB"),
	}))
	tpl.AddResource("FnB", testResource(testAnchorType, nil))

	partitions := runPartition(t, tpl)
	if len(partitions) != 2 {
		t.Fatalf("got %d partitions; want 2", len(partitions))
	}
	sets := memberSets(partitions)
	if diff := cmp.Diff([]string{"FnA"}, sets["FnA"]); diff != "" {
		t.Errorf("wrong FnA members\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FnB"}, sets["FnB"]); diff != "" {
		t.Errorf("wrong FnB members\n%s", diff)
	}
}

func TestPartitionUnreferencedResourceNeverPulled(t *testing.T) {
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, nil))
	tpl.AddResource("Orphan", testResource(testPlainType, nil))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if partitions[0].Contains("Orphan") {
		t.Errorf("unreferenced resource was pulled into a partition")
	}
}

func TestPartitionDanglingReferenceIgnored(t *testing.T) {
	// The anchor references an identifier that doesn't exist in the
	// template; the partitioner must not try to claim it.
	tpl := cfntpl.NewTemplate()
	tpl.AddResource("Fn", testResource(testAnchorType, map[string]cty.Value{
		"Ghost": ref("Ghost"),
	}))

	partitions := runPartition(t, tpl)
	if len(partitions) != 1 {
		t.Fatalf("got %d partitions; want 1", len(partitions))
	}
	if diff := cmp.Diff([]string{"Fn"}, partitions[0].Members); diff != "" {
		t.Errorf("wrong members\n%s", diff)
	}
}

func TestPartitionsDisjoint(t *testing.T) {
	tpl := helloGoodbyeTemplate()
	g := depgraph.Build(tpl)
	partitions := partitionTemplate(tpl, g, testConfig())

	seen := make(map[string]string)
	for _, p := range partitions {
		for _, id := range p.Members {
			if prev, dup := seen[id]; dup {
				t.Errorf("resource %q claimed by both %q and %q", id, prev, p.AnchorID)
			}
			seen[id] = p.AnchorID
		}
	}

	if diagnostics := validatePartitions(tpl, g, partitions); diagnostics.HasErrors() {
		t.Errorf("valid partitions failed validation: %s", diagnostics.Err())
	}
}

func TestValidatePartitionsOverlap(t *testing.T) {
	tpl := helloGoodbyeTemplate()
	g := depgraph.Build(tpl)

	// Hand-build an overlap; partitionTemplate never produces one, so the
	// check is exercised directly.
	partitions := []*Partition{
		{Sequence: 1, AnchorID: "HelloFunction", Members: []string{"HelloFunction", "Role"}},
		{Sequence: 2, AnchorID: "GoodbyeFunction", Members: []string{"GoodbyeFunction", "Role"}},
	}

	diagnostics := validatePartitions(tpl, g, partitions)
	if !diagnostics.HasErrors() {
		t.Fatal("expected overlap to be rejected")
	}
}
