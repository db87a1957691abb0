package compose

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
)

// Override is one parsed command-line override token.
type Override struct {
	// Add marks the +path=value form, which introduces a new field.
	Add bool
	// Key is the text left of the first '='.
	Key string
	// Value is the raw text right of the first '='.
	Value string
}

// parseOverrideToken splits a raw argument like
// "engine.state.max_epochs=20" or "+run.tag=v2".
func parseOverrideToken(tok string) (Override, error) {
	var o Override
	rest := tok
	if strings.HasPrefix(rest, "+") {
		o.Add = true
		rest = rest[1:]
	}
	key, value, found := strings.Cut(rest, "=")
	if !found || key == "" {
		return Override{}, fmt.Errorf("override %q must have the form path=value", tok)
	}
	o.Key = key
	o.Value = value
	return o, nil
}

// isGroupCandidate reports whether an override could select a config
// group: plain assignment whose key has no dots. Slash-keyed overrides
// always target groups; dotless keys are resolved against the defaults
// lists first and fall back to field overrides.
func (o Override) isGroupCandidate() bool {
	if o.Add {
		return false
	}
	return strings.Contains(o.Key, "/") || !strings.Contains(o.Key, ".")
}

// applyFieldOverride rewrites one path in the composed tree. Plain
// assignments require the path to exist; + assignments require it to
// be new.
func applyFieldOverride(root cty.Value, o Override) (cty.Value, error) {
	p, err := conf.ParsePath(o.Key)
	if err != nil {
		return cty.NilVal, fmt.Errorf("override %q: %w", o.Key, err)
	}
	val, err := conf.ParseYAMLValue([]byte(o.Value), fmt.Sprintf("override %q", o.Key))
	if err != nil {
		return cty.NilVal, err
	}

	_, exists := conf.Get(root, p)
	switch {
	case o.Add && exists:
		return cty.NilVal, fmt.Errorf("override path %q already exists, drop the leading +", o.Key)
	case !o.Add && !exists:
		return cty.NilVal, fmt.Errorf("unknown override path %q, prefix with + to add a new field", o.Key)
	}

	out, err := conf.Set(root, p, val)
	if err != nil {
		return cty.NilVal, fmt.Errorf("override %q: %w", o.Key, err)
	}
	return out, nil
}
