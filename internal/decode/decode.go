// Package decode binds nodes of a resolved configuration tree to Go
// structs. Field names come from `conf:"name"` tags, falling back to
// the Go field name; the `,optional` modifier lets a key be absent.
// Fields of type cty.Value receive their node verbatim, which is how
// component factories get the raw config for their own kind-specific
// decoding.
package decode

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var ctyValueType = reflect.TypeOf(cty.Value{})

// Decode populates target, a non-nil pointer to a struct, from an
// object value.
func Decode(val cty.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	elem := ptr.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("decode target must point at a struct, got %T", target)
	}
	if val.IsNull() || !val.Type().IsObjectType() {
		return fmt.Errorf("cannot decode %s into %T", friendlyType(val), target)
	}

	structType := elem.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := elem.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		name := field.Name
		optional := false
		if tag := field.Tag.Get("conf"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, mod := range parts[1:] {
				if mod == "optional" {
					optional = true
				}
			}
		}

		if !val.Type().HasAttribute(name) || val.GetAttr(name).IsNull() {
			if optional {
				continue
			}
			return fmt.Errorf("missing required config key %q", name)
		}

		if err := decodeField(val.GetAttr(name), fieldVal); err != nil {
			return fmt.Errorf("decoding %q: %w", name, err)
		}
	}
	return nil
}

func decodeField(val cty.Value, fieldVal reflect.Value) error {
	ft := fieldVal.Type()
	switch {
	case ft == ctyValueType:
		fieldVal.Set(reflect.ValueOf(val))
		return nil

	case ft.Kind() == reflect.Ptr && ft.Elem().Kind() == reflect.Struct:
		p := reflect.New(ft.Elem())
		if err := Decode(val, p.Interface()); err != nil {
			return err
		}
		fieldVal.Set(p)
		return nil

	case ft.Kind() == reflect.Struct:
		return Decode(val, fieldVal.Addr().Interface())

	case ft.Kind() == reflect.Slice && elementNeedsRecursion(ft.Elem()):
		if val.IsNull() || !val.CanIterateElements() {
			return fmt.Errorf("expected a sequence, got %s", friendlyType(val))
		}
		out := reflect.MakeSlice(ft, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			slot := reflect.New(ft.Elem()).Elem()
			if err := decodeField(ev, slot); err != nil {
				return err
			}
			out = reflect.Append(out, slot)
		}
		fieldVal.Set(out)
		return nil

	default:
		return convertPrimitive(val, fieldVal.Addr().Interface())
	}
}

func elementNeedsRecursion(t reflect.Type) bool {
	if t == ctyValueType {
		return true
	}
	if t.Kind() == reflect.Struct {
		return true
	}
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

// convertPrimitive converts a value to the target's implied cty type
// before handing it to gocty, so YAML's tuple-typed sequences decode
// into list-typed Go slices.
func convertPrimitive(val cty.Value, target any) error {
	impliedType, err := gocty.ImpliedType(reflect.ValueOf(target).Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}
	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", friendlyType(val), impliedType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}

func friendlyType(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
