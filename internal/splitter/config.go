// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"fmt"
)

// Config carries every knob the splitting pipeline reads. It is threaded
// explicitly into Split so that the pipeline is a pure function of
// (template, configuration) with no ambient state.
type Config struct {
	// Enabled gates the whole pipeline. When false, Split returns its
	// input untouched and produces no nested stacks.
	Enabled bool

	// AnchorTypes are the resource type tags that seed partitions:
	// independently deployable compute units. Order is irrelevant; anchor
	// processing order is always template order.
	AnchorTypes []string

	// NestedStackType is the type tag given to the parent-side placeholder
	// resource for each partition.
	NestedStackType string

	// ArtifactDir is the directory component embedded in each nested
	// stack's remote location, matching where the uploader collaborator
	// will place the sub-template.
	ArtifactDir string

	// BucketPlaceholder is the literal token embedded in remote locations
	// where the deployment storage bucket name belongs. The uploader
	// substitutes it once the bucket is known; this core never resolves it.
	BucketPlaceholder string

	// FileNamePrefix is the leading component of each sub-template's file
	// name.
	FileNamePrefix string
}

const (
	// DefaultBucketPlaceholder is substituted by the uploader once the
	// deployment bucket is known.
	DefaultBucketPlaceholder = "%DEPLOYMENT-BUCKET%"

	// DefaultNestedStackType is the platform's nested stack resource type.
	DefaultNestedStackType = "AWS::CloudFormation::Stack"
)

// DefaultConfig returns the configuration used when the caller supplies
// none. Splitting is disabled by default; callers opt in.
func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		AnchorTypes: []string{
			"AWS::Serverless::Function",
			"AWS::Lambda::Function",
		},
		NestedStackType:   DefaultNestedStackType,
		ArtifactDir:       ".stackshard",
		BucketPlaceholder: DefaultBucketPlaceholder,
		FileNamePrefix:    "template",
	}
}

// FileName returns the deterministic artifact file name for the nested
// stack with the given 1-based sequence number.
func (c *Config) FileName(seq int) string {
	return fmt.Sprintf("%s-nested-stack-%d.json", c.FileNamePrefix, seq)
}

// RemoteLocation returns the remote storage location string embedded in the
// parent-side stack resource for the given sequence number. The bucket
// component is a placeholder resolved at upload time.
func (c *Config) RemoteLocation(seq int) string {
	return fmt.Sprintf("https://s3.amazonaws.com/%s/%s/%s", c.BucketPlaceholder, c.ArtifactDir, c.FileName(seq))
}

// StackLogicalID returns the logical identifier under which the parent-side
// stack resource for the given sequence number is merged into the root
// template.
func (c *Config) StackLogicalID(seq int) string {
	return fmt.Sprintf("NestedStack%d", seq)
}

func (c *Config) isAnchorType(typeName string) bool {
	for _, t := range c.AnchorTypes {
		if t == typeName {
			return true
		}
	}
	return false
}
