// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

package cfntpl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty-debug/ctydebug"
	"github.com/zclconf/go-cty/cty"

	"github.com/stackshard/stackshard/internal/addrs"
)

func TestReferences(t *testing.T) {
	tests := map[string]struct {
		val  cty.Value
		want []addrs.Reference
	}{
		"nil value": {
			cty.NilVal,
			nil,
		},
		"scalar": {
			cty.StringVal("hello"),
			nil,
		},
		"plain ref": {
			cty.ObjectVal(map[string]cty.Value{
				"Ref": cty.StringVal("Bucket"),
			}),
			[]addrs.Reference{addrs.Ref{LogicalID: "Bucket"}},
		},
		"getatt list form": {
			cty.ObjectVal(map[string]cty.Value{
				"Fn::GetAtt": cty.TupleVal([]cty.Value{
					cty.StringVal("Role"),
					cty.StringVal("Arn"),
				}),
			}),
			[]addrs.Reference{addrs.GetAtt{LogicalID: "Role", Attribute: "Arn"}},
		},
		"getatt dotted form": {
			cty.ObjectVal(map[string]cty.Value{
				"Fn::GetAtt": cty.StringVal("Role.Arn"),
			}),
			[]addrs.Reference{addrs.GetAtt{LogicalID: "Role", Attribute: "Arn"}},
		},
		"getatt dotted form with dotted attribute": {
			cty.ObjectVal(map[string]cty.Value{
				"Fn::GetAtt": cty.StringVal("Nested.Outputs.StreamArn"),
			}),
			[]addrs.Reference{addrs.GetAtt{LogicalID: "Nested", Attribute: "Outputs.StreamArn"}},
		},
		"deeply nested": {
			cty.ObjectVal(map[string]cty.Value{
				"Environment": cty.ObjectVal(map[string]cty.Value{
					"Variables": cty.ObjectVal(map[string]cty.Value{
						"TABLE": cty.ObjectVal(map[string]cty.Value{
							"Ref": cty.StringVal("Table"),
						}),
						"TOPIC_ARN": cty.ObjectVal(map[string]cty.Value{
							"Fn::GetAtt": cty.TupleVal([]cty.Value{
								cty.StringVal("Topic"),
								cty.StringVal("TopicArn"),
							}),
						}),
					}),
				}),
				"Handler": cty.StringVal("index.handler"),
			}),
			[]addrs.Reference{
				addrs.Ref{LogicalID: "Table"},
				addrs.GetAtt{LogicalID: "Topic", Attribute: "TopicArn"},
			},
		},
		"refs inside a sequence": {
			cty.ObjectVal(map[string]cty.Value{
				"Queues": cty.TupleVal([]cty.Value{
					cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("QueueA")}),
					cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("QueueB")}),
				}),
			}),
			[]addrs.Reference{
				addrs.Ref{LogicalID: "QueueA"},
				addrs.Ref{LogicalID: "QueueB"},
			},
		},
		"ref with non-string target is not a reference": {
			cty.ObjectVal(map[string]cty.Value{
				"Ref": cty.NumberIntVal(5),
			}),
			nil,
		},
		"two-attribute object is not a reference": {
			cty.ObjectVal(map[string]cty.Value{
				"Ref":   cty.StringVal("Bucket"),
				"Other": cty.StringVal("x"),
			}),
			nil,
		},
		"getatt with wrong arity is not a reference": {
			cty.ObjectVal(map[string]cty.Value{
				"Fn::GetAtt": cty.TupleVal([]cty.Value{
					cty.StringVal("Role"),
				}),
			}),
			nil,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			found := References(test.val)
			var got []addrs.Reference
			for _, f := range found {
				got = append(got, f.Ref)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("wrong references\n%s", diff)
			}
		})
	}
}

func TestReferencesDeterministic(t *testing.T) {
	val := cty.ObjectVal(map[string]cty.Value{
		"B": cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("Two")}),
		"A": cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("One")}),
		"C": cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("Three")}),
	})

	targets := func(found []FoundRef) []string {
		var ret []string
		for _, f := range found {
			ret = append(ret, f.Ref.Target())
		}
		return ret
	}

	first := targets(References(val))
	for i := 0; i < 10; i++ {
		again := targets(References(val))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("walk order changed between runs\n%s", diff)
		}
	}

	// Object attributes walk in lexical order.
	want := []string{"One", "Two", "Three"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("wrong walk order\n%s", diff)
	}
}

func TestReplaceReferences(t *testing.T) {
	orig := cty.ObjectVal(map[string]cty.Value{
		"Code": cty.ObjectVal(map[string]cty.Value{
			"S3Bucket": cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("Bucket")}),
		}),
		"Role": cty.ObjectVal(map[string]cty.Value{
			"Fn::GetAtt": cty.TupleVal([]cty.Value{
				cty.StringVal("Role"),
				cty.StringVal("Arn"),
			}),
		}),
		"Runtime": cty.StringVal("go1.x"),
	})

	got := ReplaceReferences(orig, func(_ cty.Path, ref addrs.Reference) addrs.Reference {
		if ref.Target() == "Bucket" {
			return addrs.Ref{LogicalID: "BucketParam"}
		}
		return nil
	})

	want := cty.ObjectVal(map[string]cty.Value{
		"Code": cty.ObjectVal(map[string]cty.Value{
			"S3Bucket": cty.ObjectVal(map[string]cty.Value{"Ref": cty.StringVal("BucketParam")}),
		}),
		"Role": cty.ObjectVal(map[string]cty.Value{
			"Fn::GetAtt": cty.TupleVal([]cty.Value{
				cty.StringVal("Role"),
				cty.StringVal("Arn"),
			}),
		}),
		"Runtime": cty.StringVal("go1.x"),
	})
	if diff := cmp.Diff(want, got, ctydebug.CmpOptions); diff != "" {
		t.Errorf("wrong result\n%s", diff)
	}

	// The input value must be untouched; cty values are immutable, so this
	// is mostly a guard against the walk accidentally returning the same
	// object after claiming to rewrite it.
	if len(References(orig)) != 2 {
		t.Errorf("original value was modified")
	}
}

func TestReplaceReferencesShapeChange(t *testing.T) {
	// Rewriting may substitute a reference of a different shape: an
	// attribute reference collapses to a plain reference when it is
	// re-sourced through a parameter.
	orig := cty.ObjectVal(map[string]cty.Value{
		"RoleArn": cty.ObjectVal(map[string]cty.Value{
			"Fn::GetAtt": cty.TupleVal([]cty.Value{
				cty.StringVal("Role"),
				cty.StringVal("Arn"),
			}),
		}),
	})

	got := ReplaceReferences(orig, func(_ cty.Path, ref addrs.Reference) addrs.Reference {
		return addrs.Ref{LogicalID: ref.Target()}
	})

	want := cty.ObjectVal(map[string]cty.Value{
		"RoleArn": cty.ObjectVal(map[string]cty.Value{
			"Ref": cty.StringVal("Role"),
		}),
	})
	if diff := cmp.Diff(want, got, ctydebug.CmpOptions); diff != "" {
		t.Errorf("wrong result\n%s", diff)
	}
}

func TestReferenceValueRoundTrip(t *testing.T) {
	refs := []addrs.Reference{
		addrs.Ref{LogicalID: "Bucket"},
		addrs.GetAtt{LogicalID: "Role", Attribute: "Arn"},
	}
	for _, ref := range refs {
		got := References(ReferenceValue(ref))
		if len(got) != 1 {
			t.Fatalf("%s: found %d references, want 1", ref, len(got))
		}
		if got[0].Ref != ref {
			t.Errorf("round trip changed %s into %s", ref, got[0].Ref)
		}
	}
}
