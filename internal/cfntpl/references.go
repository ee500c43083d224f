// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/stackshard/stackshard/internal/addrs"
)

// FoundRef is one reference expression located inside a property bag, along
// with the path at which it was found so that it can be rewritten in place.
type FoundRef struct {
	Path cty.Path
	Ref  addrs.Reference
}

// References walks the given property bag and returns every intrinsic
// reference expression it contains, in walk order.
//
// Walk order is deterministic for a given value: object attributes are
// visited in lexical order and sequence elements in element order, so two
// walks over the same value always yield the same result. Values that merely
// resemble a reference but do not decode as one (for example a "Ref" object
// whose value is not a string) are left alone.
func References(v cty.Value) []FoundRef {
	if v == cty.NilVal {
		return nil
	}
	var ret []FoundRef
	// The walk callback's error result is unused; reference discovery
	// cannot fail.
	_ = cty.Walk(v, func(path cty.Path, v cty.Value) (bool, error) {
		if ref, ok := decodeReference(v); ok {
			ret = append(ret, FoundRef{
				Path: path.Copy(),
				Ref:  ref,
			})
			return false, nil
		}
		return true, nil
	})
	return ret
}

// ReplaceReferences returns a copy of the given property bag in which every
// reference expression has been passed through the given function. Returning
// a nil Reference keeps the original expression; returning a non-nil one
// substitutes it, re-encoded in the returned reference's shape.
func ReplaceReferences(v cty.Value, f func(path cty.Path, ref addrs.Reference) addrs.Reference) cty.Value {
	if v == cty.NilVal {
		return v
	}
	ret, _ := cty.Transform(v, func(path cty.Path, v cty.Value) (cty.Value, error) {
		ref, ok := decodeReference(v)
		if !ok {
			return v, nil
		}
		if newRef := f(path, ref); newRef != nil {
			return ReferenceValue(newRef), nil
		}
		return v, nil
	})
	return ret
}

// ReferenceValue encodes a reference expression back into its intrinsic
// value form: {"Ref": "Target"} for a plain reference, or
// {"Fn::GetAtt": ["Target", "Attribute"]} for an attribute reference.
func ReferenceValue(ref addrs.Reference) cty.Value {
	switch ref := ref.(type) {
	case addrs.Ref:
		return cty.ObjectVal(map[string]cty.Value{
			"Ref": cty.StringVal(ref.LogicalID),
		})
	case addrs.GetAtt:
		return cty.ObjectVal(map[string]cty.Value{
			"Fn::GetAtt": cty.TupleVal([]cty.Value{
				cty.StringVal(ref.LogicalID),
				cty.StringVal(ref.Attribute),
			}),
		})
	default:
		// The Reference interface is closed, so this is unreachable.
		panic("unsupported reference type")
	}
}

// decodeReference recognizes the two intrinsic reference shapes. A reference
// is always a single-attribute object: either {"Ref": <string>} or
// {"Fn::GetAtt": <target and attribute>}, where the Fn::GetAtt argument may
// be a two-element sequence or the legacy dotted-string form.
func decodeReference(v cty.Value) (addrs.Reference, bool) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	ty := v.Type()
	if !ty.IsObjectType() {
		return nil, false
	}
	atys := ty.AttributeTypes()
	if len(atys) != 1 {
		return nil, false
	}

	if _, ok := atys["Ref"]; ok {
		target := v.GetAttr("Ref")
		if target.Type() != cty.String || target.IsNull() {
			return nil, false
		}
		return addrs.Ref{LogicalID: target.AsString()}, true
	}

	if _, ok := atys["Fn::GetAtt"]; ok {
		arg := v.GetAttr("Fn::GetAtt")
		if arg.IsNull() {
			return nil, false
		}
		switch {
		case arg.Type() == cty.String:
			// Legacy form: "Target.Attribute", split on the first dot
			// because attribute names may themselves contain dots.
			target, attr, ok := strings.Cut(arg.AsString(), ".")
			if !ok || target == "" || attr == "" {
				return nil, false
			}
			return addrs.GetAtt{LogicalID: target, Attribute: attr}, true
		case arg.CanIterateElements() && arg.LengthInt() == 2:
			it := arg.ElementIterator()
			var parts []string
			for it.Next() {
				_, ev := it.Element()
				if ev.Type() != cty.String || ev.IsNull() {
					return nil, false
				}
				parts = append(parts, ev.AsString())
			}
			return addrs.GetAtt{LogicalID: parts[0], Attribute: parts[1]}, true
		}
	}

	return nil, false
}
