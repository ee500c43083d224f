// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ParseJSON decodes a JSON template document.
//
// The standard library's map decoding would lose the order of the Resources
// section, and template order is load-bearing for deterministic splitting,
// so the object keys are read at token level instead.
func ParseJSON(src []byte) (*Template, error) {
	t := NewTemplate()

	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("template must be a JSON object: %w", err)
	}

	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		switch name {
		case "AWSTemplateFormatVersion":
			if err := dec.Decode(&t.FormatVersion); err != nil {
				return nil, fmt.Errorf("invalid AWSTemplateFormatVersion: %w", err)
			}
		case "Description":
			if err := dec.Decode(&t.Description); err != nil {
				return nil, fmt.Errorf("invalid Description: %w", err)
			}
		case "Parameters":
			if err := parseParameters(dec, t); err != nil {
				return nil, err
			}
		case "Resources":
			if err := parseResources(dec, t); err != nil {
				return nil, err
			}
		default:
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("invalid %s section: %w", name, err)
			}
			t.SetExtra(name, raw)
		}
	}

	return t, expectCloseDelim(dec)
}

func parseParameters(dec *json.Decoder, t *Template) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("Parameters must be a JSON object: %w", err)
	}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		var body struct {
			Type        string          `json:"Type"`
			Description string          `json:"Description,omitempty"`
			Default     json.RawMessage `json:"Default,omitempty"`
		}
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("invalid parameter %q: %w", name, err)
		}
		t.AddParameter(name, &Parameter{
			Type:        body.Type,
			Description: body.Description,
			Default:     body.Default,
		})
	}
	return expectCloseDelim(dec)
}

func parseResources(dec *json.Decoder, t *Template) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("Resources must be a JSON object: %w", err)
	}
	for dec.More() {
		logicalID, err := readKey(dec)
		if err != nil {
			return err
		}
		r, err := parseResource(dec)
		if err != nil {
			return fmt.Errorf("invalid resource %q: %w", logicalID, err)
		}
		t.AddResource(logicalID, r)
	}
	return expectCloseDelim(dec)
}

func parseResource(dec *json.Decoder) (*Resource, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	r := &Resource{}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		switch name {
		case "Type":
			if err := dec.Decode(&r.Type); err != nil {
				return nil, fmt.Errorf("invalid Type: %w", err)
			}
		case "Description":
			if err := dec.Decode(&r.Description); err != nil {
				return nil, fmt.Errorf("invalid Description: %w", err)
			}
		case "Properties":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("invalid Properties: %w", err)
			}
			props, err := valueFromJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid Properties: %w", err)
			}
			r.Properties = props
		case "DependsOn":
			// DependsOn is either a single identifier or a list of them.
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("invalid DependsOn: %w", err)
			}
			var single string
			if err := json.Unmarshal(raw, &single); err == nil {
				r.DependsOn = []string{single}
				break
			}
			var many []string
			if err := json.Unmarshal(raw, &many); err != nil {
				return nil, fmt.Errorf("DependsOn must be a string or a list of strings")
			}
			r.DependsOn = many
		default:
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
			if r.extra == nil {
				r.extra = make(map[string]json.RawMessage)
			}
			if _, exists := r.extra[name]; !exists {
				r.extraOrder = append(r.extraOrder, name)
			}
			r.extra[name] = raw
		}
	}
	return r, expectCloseDelim(dec)
}

func valueFromJSON(raw json.RawMessage) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, found %v", tok)
	}
	return s, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, found %v", want, tok)
	}
	return nil
}

func expectCloseDelim(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || (d != '}' && d != ']') {
		return fmt.Errorf("expected closing delimiter, found %v", tok)
	}
	return nil
}

// MarshalJSON implements json.Marshaler, emitting the canonical section
// order followed by any preserved extra sections. Resource and parameter
// order is the template order.
func (t *Template) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeSection := func(name string, value interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(&buf, name); err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	}

	if t.FormatVersion != "" {
		if err := writeSection("AWSTemplateFormatVersion", t.FormatVersion); err != nil {
			return nil, err
		}
	}
	if t.Description != "" {
		if err := writeSection("Description", t.Description); err != nil {
			return nil, err
		}
	}

	if len(t.parameterOrder) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(&buf, "Parameters"); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for i, name := range t.parameterOrder {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, name); err != nil {
				return nil, err
			}
			raw, err := marshalParameter(t.parameters[name])
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
			buf.Write(raw)
		}
		buf.WriteByte('}')
	}

	if !first {
		buf.WriteByte(',')
	}
	first = false
	if err := writeKey(&buf, "Resources"); err != nil {
		return nil, err
	}
	buf.WriteByte('{')
	for i, id := range t.resourceOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, id); err != nil {
			return nil, err
		}
		raw, err := marshalResource(t.resources[id])
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", id, err)
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')

	for _, name := range t.extraOrder {
		buf.WriteByte(',')
		if err := writeKey(&buf, name); err != nil {
			return nil, err
		}
		buf.Write(t.extra[name])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalResource(r *Resource) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeKey(&buf, "Type"); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(r.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(raw)

	if r.Description != "" {
		buf.WriteByte(',')
		if err := writeKey(&buf, "Description"); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(r.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}

	if r.Properties != cty.NilVal {
		buf.WriteByte(',')
		if err := writeKey(&buf, "Properties"); err != nil {
			return nil, err
		}
		raw, err := ctyjson.Marshal(r.Properties, r.Properties.Type())
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}

	if len(r.DependsOn) > 0 {
		buf.WriteByte(',')
		if err := writeKey(&buf, "DependsOn"); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(r.DependsOn)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}

	for _, name := range r.extraOrder {
		buf.WriteByte(',')
		if err := writeKey(&buf, name); err != nil {
			return nil, err
		}
		buf.Write(r.extra[name])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalParameter(p *Parameter) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeKey(&buf, "Type"); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(raw)

	if p.Description != "" {
		buf.WriteByte(',')
		if err := writeKey(&buf, "Description"); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(p.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}

	if p.Default != nil {
		buf.WriteByte(',')
		if err := writeKey(&buf, "Default"); err != nil {
			return nil, err
		}
		buf.Write(p.Default)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, name string) error {
	raw, err := json.Marshal(name)
	if err != nil {
		return err
	}
	buf.Write(raw)
	buf.WriteByte(':')
	return nil
}
