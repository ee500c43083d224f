// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package cfntpl contains the model types for a CloudFormation-style
// template: an ordered map of resources, each with a type tag, a property
// bag, and an optional explicit ordering list, plus a parameters section.
//
// Property bags are represented as cty values so that the arbitrary nesting
// of a template's JSON or YAML source is preserved exactly, and so that the
// intrinsic reference expressions buried inside them can be located and
// rewritten with a deterministic recursive walk rather than with runtime
// type introspection.
//
// The package deals only in representation. It knows how to find and rewrite
// reference expressions but attaches no meaning to them; the semantics of
// moving resources between templates live in the splitter package.
package cfntpl
