package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// ErrNotFound marks path lookups that walked off the tree.
var ErrNotFound = errors.New("config path not found")

// Tree is a fully composed, resolved configuration. It is immutable:
// accessors return values and sub-trees, never mutate.
type Tree struct {
	root cty.Value
}

// NewTree wraps a resolved root value. The root must be an object.
func NewTree(root cty.Value) (*Tree, error) {
	if root.IsNull() || !root.Type().IsObjectType() {
		return nil, fmt.Errorf("config root must be a mapping, got %s", friendlyType(root))
	}
	return &Tree{root: root}, nil
}

// Root returns the underlying object value.
func (t *Tree) Root() cty.Value {
	return t.root
}

// At resolves a dotted path like "engine.state.max_epochs". The error
// names the missing segment and the keys that do exist at that level.
func (t *Tree) At(path string) (cty.Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return cty.NilVal, err
	}
	cur := t.root
	for i, seg := range p {
		if cur.IsNull() || !cur.Type().IsObjectType() {
			return cty.NilVal, fmt.Errorf("%w: %q is a %s, not a mapping", ErrNotFound, p[:i].String(), friendlyType(cur))
		}
		if !cur.Type().HasAttribute(seg) {
			return cty.NilVal, fmt.Errorf("%w: no key %q at %s (available: %s)", ErrNotFound, seg, describeLevel(p[:i]), strings.Join(attrNames(cur), ", "))
		}
		cur = cur.GetAttr(seg)
	}
	return cur, nil
}

// Has reports whether a dotted path resolves.
func (t *Tree) Has(path string) bool {
	p, err := ParsePath(path)
	if err != nil {
		return false
	}
	_, ok := Get(t.root, p)
	return ok
}

// Sub returns the subtree rooted at path. The node must be a mapping.
func (t *Tree) Sub(path string) (*Tree, error) {
	v, err := t.At(path)
	if err != nil {
		return nil, err
	}
	if v.IsNull() || !v.Type().IsObjectType() {
		return nil, fmt.Errorf("config path %q is a %s, not a mapping", path, friendlyType(v))
	}
	return &Tree{root: v}, nil
}

// MarshalYAML implements yaml.Marshaler. The yaml.v3 encoder emits
// mapping keys in sorted order, which keeps `gravigo compose` output
// and the persisted config.yaml stable across runs.
func (t *Tree) MarshalYAML() (any, error) {
	return ToNative(t.root), nil
}

// Marshal renders the whole tree as a YAML document.
func (t *Tree) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding config tree: %w", err)
	}
	return out, nil
}

func describeLevel(prefix Path) string {
	if len(prefix) == 0 {
		return "the top level"
	}
	return fmt.Sprintf("%q", prefix.String())
}

func friendlyType(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
