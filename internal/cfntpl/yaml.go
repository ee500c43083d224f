// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"encoding/json"
	"fmt"
	"sort"

	ctyyaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	yaml "gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML template document.
//
// Values decode through cty, whose objects iterate their attributes in
// lexical order, but template order must be document order: it drives anchor
// processing order and therefore nested stack numbering, and a YAML template
// must split exactly like its JSON equivalent. The source is parsed a second
// time as a yaml.Node tree, which preserves mapping key order, and that
// order is what the decoded values are assembled under.
func ParseYAML(src []byte) (*Template, error) {
	ty, err := ctyyaml.Standard.ImpliedType(src)
	if err != nil {
		return nil, err
	}
	root, err := ctyyaml.Standard.Unmarshal(src, ty)
	if err != nil {
		return nil, err
	}
	if !root.Type().IsObjectType() {
		return nil, fmt.Errorf("template must be a YAML mapping")
	}

	order, err := yamlKeyOrder(src)
	if err != nil {
		return nil, err
	}

	t := NewTemplate()
	for _, name := range order.sections {
		if !root.Type().HasAttribute(name) {
			continue
		}
		v := root.GetAttr(name)
		switch name {
		case "AWSTemplateFormatVersion":
			if v.Type() == cty.String && !v.IsNull() {
				t.FormatVersion = v.AsString()
			}
		case "Description":
			if v.Type() == cty.String && !v.IsNull() {
				t.Description = v.AsString()
			}
		case "Parameters":
			if err := yamlParameters(v, order.parameters, t); err != nil {
				return nil, err
			}
		case "Resources":
			if err := yamlResources(v, order.resources, t); err != nil {
				return nil, err
			}
		default:
			// Unmodeled sections are carried through as JSON, since the
			// templates this package emits are always JSON.
			raw, err := ctyjson.Marshal(v, v.Type())
			if err != nil {
				return nil, fmt.Errorf("invalid %s section: %w", name, err)
			}
			t.SetExtra(name, raw)
		}
	}
	return t, nil
}

// yamlOrder records the document order of the keys that matter for template
// order: the top-level sections and the entries of the Parameters and
// Resources mappings.
type yamlOrder struct {
	sections   []string
	parameters []string
	resources  []string
}

func yamlKeyOrder(src []byte) (yamlOrder, error) {
	var ret yamlOrder
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return ret, err
	}
	if len(doc.Content) == 0 {
		return ret, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		// The cty decode path reports the type error.
		return ret, nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		ret.sections = append(ret.sections, key.Value)
		switch key.Value {
		case "Parameters":
			ret.parameters = yamlMappingKeys(value)
		case "Resources":
			ret.resources = yamlMappingKeys(value)
		}
	}
	return ret, nil
}

func yamlMappingKeys(n *yaml.Node) []string {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var ret []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		ret = append(ret, n.Content[i].Value)
	}
	return ret
}

func yamlParameters(v cty.Value, names []string, t *Template) error {
	if !v.Type().IsObjectType() {
		return fmt.Errorf("Parameters must be a mapping")
	}
	for _, name := range names {
		if !v.Type().HasAttribute(name) {
			continue
		}
		body := v.GetAttr(name)
		if !body.Type().IsObjectType() {
			return fmt.Errorf("parameter %q must be a mapping", name)
		}
		p := &Parameter{}
		if body.Type().HasAttribute("Type") {
			if tv := body.GetAttr("Type"); tv.Type() == cty.String && !tv.IsNull() {
				p.Type = tv.AsString()
			}
		}
		if body.Type().HasAttribute("Description") {
			if dv := body.GetAttr("Description"); dv.Type() == cty.String && !dv.IsNull() {
				p.Description = dv.AsString()
			}
		}
		if body.Type().HasAttribute("Default") {
			dv := body.GetAttr("Default")
			raw, err := ctyjson.Marshal(dv, dv.Type())
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			p.Default = raw
		}
		t.AddParameter(name, p)
	}
	return nil
}

func yamlResources(v cty.Value, logicalIDs []string, t *Template) error {
	if !v.Type().IsObjectType() {
		return fmt.Errorf("Resources must be a mapping")
	}
	for _, logicalID := range logicalIDs {
		if !v.Type().HasAttribute(logicalID) {
			continue
		}
		body := v.GetAttr(logicalID)
		if !body.Type().IsObjectType() {
			return fmt.Errorf("resource %q must be a mapping", logicalID)
		}
		r := &Resource{}
		for _, name := range sortedAttrNames(body) {
			av := body.GetAttr(name)
			switch name {
			case "Type":
				if av.Type() == cty.String && !av.IsNull() {
					r.Type = av.AsString()
				}
			case "Description":
				if av.Type() == cty.String && !av.IsNull() {
					r.Description = av.AsString()
				}
			case "Properties":
				r.Properties = av
			case "DependsOn":
				deps, err := yamlDependsOn(av)
				if err != nil {
					return fmt.Errorf("resource %q: %w", logicalID, err)
				}
				r.DependsOn = deps
			default:
				raw, err := ctyjson.Marshal(av, av.Type())
				if err != nil {
					return fmt.Errorf("resource %q: %w", logicalID, err)
				}
				if r.extra == nil {
					r.extra = make(map[string]json.RawMessage)
				}
				r.extra[name] = raw
				r.extraOrder = append(r.extraOrder, name)
			}
		}
		t.AddResource(logicalID, r)
	}
	return nil
}

func yamlDependsOn(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if v.Type() == cty.String {
		return []string{v.AsString()}, nil
	}
	if v.CanIterateElements() {
		var ret []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if ev.Type() != cty.String || ev.IsNull() {
				return nil, fmt.Errorf("DependsOn must contain only strings")
			}
			ret = append(ret, ev.AsString())
		}
		return ret, nil
	}
	return nil, fmt.Errorf("DependsOn must be a string or a list of strings")
}

func sortedAttrNames(v cty.Value) []string {
	atys := v.Type().AttributeTypes()
	names := make([]string, 0, len(atys))
	for name := range atys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
