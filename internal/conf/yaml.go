package conf

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// ParseYAML converts one YAML document into a cty value. The document
// root must be a mapping or a sequence (handler group documents are
// sequences); an empty document yields an empty object. filename is
// used in error messages only.
func ParseYAML(src []byte, filename string) (cty.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", filename, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cty.EmptyObjectVal, nil
	}
	root := doc.Content[0]
	v, err := fromNode(root, filename)
	if err != nil {
		return cty.NilVal, err
	}
	if v.IsNull() {
		return cty.EmptyObjectVal, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsTupleType() {
		return cty.NilVal, fmt.Errorf("%s: document root must be a mapping or a sequence, got %s", filename, v.Type().FriendlyName())
	}
	return v, nil
}

// ParseYAMLValue converts a single YAML value of any shape: scalars,
// flow sequences like [64, 32], or mappings. Used for CLI override
// values.
func ParseYAMLValue(src []byte, context string) (cty.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", context, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return fromNode(doc.Content[0], context)
}

func fromNode(n *yaml.Node, filename string) (cty.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias, filename)

	case yaml.MappingNode:
		attrs := map[string]cty.Value{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return cty.NilVal, fmt.Errorf("%s:%d: mapping key must be a string: %w", filename, keyNode.Line, err)
			}
			if _, dup := attrs[key]; dup {
				return cty.NilVal, fmt.Errorf("%s:%d: duplicate mapping key %q", filename, keyNode.Line, key)
			}
			val, err := fromNode(valNode, filename)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = val
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil

	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, filename)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil

	case yaml.ScalarNode:
		return fromScalar(n, filename)

	default:
		return cty.NilVal, fmt.Errorf("%s:%d: unsupported YAML node kind %d", filename, n.Line, n.Kind)
	}
}

// fromScalar leans on the yaml.v3 resolver so that `3`, `2.5`, `true`,
// `null` and quoted strings all keep their YAML types.
func fromScalar(n *yaml.Node, filename string) (cty.Value, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return cty.NilVal, fmt.Errorf("%s:%d: %w", filename, n.Line, err)
	}
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case time.Time:
		return cty.StringVal(x.Format(time.RFC3339)), nil
	default:
		return cty.NilVal, fmt.Errorf("%s:%d: unsupported scalar type %T", filename, n.Line, v)
	}
}
