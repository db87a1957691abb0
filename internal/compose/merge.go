package compose

import (
	"github.com/zclconf/go-cty/cty"
)

// Merge layers overlay on top of base. Mappings merge key-by-key and
// recurse; every other pairing (scalars, sequences, mixed kinds) is
// replaced by the overlay value outright.
func Merge(base, overlay cty.Value) cty.Value {
	if base.IsNull() || overlay.IsNull() {
		return overlay
	}
	if !base.Type().IsObjectType() || !overlay.Type().IsObjectType() {
		return overlay
	}

	attrs := map[string]cty.Value{}
	for name := range base.Type().AttributeTypes() {
		attrs[name] = base.GetAttr(name)
	}
	for name := range overlay.Type().AttributeTypes() {
		ov := overlay.GetAttr(name)
		if bv, ok := attrs[name]; ok {
			attrs[name] = Merge(bv, ov)
		} else {
			attrs[name] = ov
		}
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// nest wraps a composed document under a group key path, so the
// engine/basic.yaml body ends up below the `engine` key.
func nest(v cty.Value, segments []string) cty.Value {
	for i := len(segments) - 1; i >= 0; i-- {
		v = cty.ObjectVal(map[string]cty.Value{segments[i]: v})
	}
	return v
}

// objectWithout copies an object minus one attribute.
func objectWithout(v cty.Value, key string) cty.Value {
	if v.IsNull() || !v.Type().IsObjectType() || !v.Type().HasAttribute(key) {
		return v
	}
	attrs := map[string]cty.Value{}
	for name := range v.Type().AttributeTypes() {
		if name == key {
			continue
		}
		attrs[name] = v.GetAttr(name)
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}
