// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"github.com/stackshard/stackshard/internal/cfntpl"
)

// NestedStack is the result of processing one partition: the standalone
// sub-template holding the partition's resources, and the parent-side
// placeholder resource that provisions it.
//
// Descriptors exist for the duration of one run. The disk-write collaborator
// consumes SubTemplate under FileName; the uploader consumes RemoteLocation;
// the template updater merges StackResource into the root template under
// StackLogicalID.
type NestedStack struct {
	// Sequence is the 1-based partition number this stack was built from.
	Sequence int

	// AnchorID is the anchor resource the partition was seeded with.
	AnchorID string

	// Members are the logical identifiers relocated into the sub-template,
	// in template order.
	Members []string

	// SubTemplate is the standalone template holding the partition's
	// resources and the parameters declared for its boundary crossings.
	SubTemplate *cfntpl.Template

	// StackLogicalID is the identifier under which StackResource is merged
	// into the root template.
	StackLogicalID string

	// StackResource is the parent-side nested stack resource: parameter
	// map, remote template location, description and ordering list.
	StackResource *cfntpl.Resource

	// FileName is the deterministic artifact name for SubTemplate.
	FileName string

	// RemoteLocation is where the uploaded sub-template will live, with
	// the deployment bucket still a placeholder.
	RemoteLocation string
}
