package compose

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// reservedDefaultsKey never appears in a composed tree.
const reservedDefaultsKey = "defaults"

// selfMarker places the document's own body in the defaults order.
const selfMarker = "_self_"

// defaultsEntry is one parsed element of a defaults list. Exactly one
// of self, fragment or group is set.
type defaultsEntry struct {
	self     bool
	fragment string
	group    string
	option   string
}

// parseDefaults validates a document's defaults list. It enforces the
// structural rules: a sequence of strings or single-key mappings, at
// most one _self_, no group named twice.
func parseDefaults(v cty.Value, filename string) ([]defaultsEntry, error) {
	if v.IsNull() || !v.Type().IsTupleType() {
		return nil, fmt.Errorf("%s: defaults must be a sequence", filename)
	}

	var entries []defaultsEntry
	seenGroups := map[string]bool{}
	seenSelf := false

	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		switch {
		case !ev.IsNull() && ev.Type() == cty.String:
			s := ev.AsString()
			if s == selfMarker {
				if seenSelf {
					return nil, fmt.Errorf("%s: defaults may list %s at most once", filename, selfMarker)
				}
				seenSelf = true
				entries = append(entries, defaultsEntry{self: true})
				continue
			}
			entries = append(entries, defaultsEntry{fragment: s})

		case !ev.IsNull() && ev.Type().IsObjectType():
			types := ev.Type().AttributeTypes()
			if len(types) != 1 {
				return nil, fmt.Errorf("%s: defaults entries must have exactly one key, got %d", filename, len(types))
			}
			var group string
			for name := range types {
				group = name
			}
			opt := ev.GetAttr(group)
			if opt.IsNull() || opt.Type() != cty.String {
				return nil, fmt.Errorf("%s: defaults entry for group %q must name an option", filename, group)
			}
			if seenGroups[group] {
				return nil, fmt.Errorf("%s: duplicate defaults entry for group %q", filename, group)
			}
			seenGroups[group] = true
			entries = append(entries, defaultsEntry{group: group, option: opt.AsString()})

		default:
			return nil, fmt.Errorf("%s: defaults entries must be strings or single-key mappings", filename)
		}
	}
	return entries, nil
}
