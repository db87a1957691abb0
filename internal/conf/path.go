package conf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Path addresses a node in a configuration tree as a sequence of
// attribute names, e.g. ["engine", "state", "max_epochs"].
type Path []string

// ParsePath splits a dotted path string into its segments.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty config path")
	}
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("invalid config path %q: empty segment", s)
		}
	}
	return Path(segs), nil
}

// String joins the path back into dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Child returns a new path extended by one segment.
func (p Path) Child(seg string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, seg)
}

// Get walks a value along path. Object segments are attribute names;
// tuple segments are decimal indexes ("handlers.0.kind"). The boolean
// reports whether every segment existed.
func Get(root cty.Value, path Path) (cty.Value, bool) {
	cur := root
	for _, seg := range path {
		switch {
		case cur.IsNull():
			return cty.NilVal, false
		case cur.Type().IsObjectType():
			if !cur.Type().HasAttribute(seg) {
				return cty.NilVal, false
			}
			cur = cur.GetAttr(seg)
		case cur.Type().IsTupleType():
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.LengthInt() {
				return cty.NilVal, false
			}
			cur = cur.Index(cty.NumberIntVal(int64(idx)))
		default:
			return cty.NilVal, false
		}
	}
	return cur, true
}

// Set returns a copy of root with the value at path replaced. Missing
// intermediate nodes are created as objects; tuple segments must index
// an existing element; traversing through a scalar is an error.
func Set(root cty.Value, path Path, val cty.Value) (cty.Value, error) {
	if len(path) == 0 {
		return val, nil
	}

	if !root.IsNull() && root.Type().IsTupleType() {
		idx, err := strconv.Atoi(path[0])
		if err != nil || idx < 0 || idx >= root.LengthInt() {
			return cty.NilVal, fmt.Errorf("no element %q in a %d-element sequence", path[0], root.LengthInt())
		}
		elems := make([]cty.Value, 0, root.LengthInt())
		for it := root.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			elems = append(elems, ev)
		}
		updated, err := Set(elems[idx], path[1:], val)
		if err != nil {
			return cty.NilVal, err
		}
		elems[idx] = updated
		return cty.TupleVal(elems), nil
	}

	attrs := map[string]cty.Value{}
	switch {
	case root.IsNull():
		// Start a fresh object.
	case root.Type().IsObjectType():
		for name := range root.Type().AttributeTypes() {
			attrs[name] = root.GetAttr(name)
		}
	default:
		return cty.NilVal, fmt.Errorf("cannot descend into %s value to set %q", root.Type().FriendlyName(), path.String())
	}

	child, ok := attrs[path[0]]
	if !ok {
		child = cty.NullVal(cty.DynamicPseudoType)
	}
	updated, err := Set(child, path[1:], val)
	if err != nil {
		return cty.NilVal, err
	}
	attrs[path[0]] = updated
	return cty.ObjectVal(attrs), nil
}

// attrNames lists the attribute names of an object value, sorted.
func attrNames(v cty.Value) []string {
	if v.IsNull() || !v.Type().IsObjectType() {
		return nil
	}
	types := v.Type().AttributeTypes()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
