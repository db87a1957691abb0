package interp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/graph"
)

// Options tunes resolution. The zero value uses the real process
// environment and the current wall clock.
type Options struct {
	Lookup LookupEnv
	Now    time.Time
}

// template is one string leaf awaiting evaluation.
type template struct {
	path conf.Path
	expr hclsyntax.Expression
}

// Resolve evaluates every templated string leaf in root and returns
// the resolved tree. root itself is never mutated.
func Resolve(root cty.Value, opts Options) (cty.Value, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	ts := opts.Now
	if ts.IsZero() {
		ts = time.Now()
	}

	templates := map[string]*template{}
	if err := collect(root, nil, templates); err != nil {
		return cty.NilVal, err
	}
	if len(templates) == 0 {
		return root, nil
	}

	order, err := evaluationOrder(root, templates)
	if err != nil {
		return cty.NilVal, err
	}

	funcs := functions(lookup, ts)
	cur := root
	for _, key := range order {
		tpl := templates[key]
		ectx := &hcl.EvalContext{
			Variables: topLevelVars(cur),
			Functions: funcs,
		}
		v, diags := tpl.expr.Value(ectx)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("resolving %q: %s", key, diags.Error())
		}
		cur, err = conf.Set(cur, tpl.path, v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("resolving %q: %w", key, err)
		}
	}
	return cur, nil
}

// collect walks the tree and parses every string leaf that contains an
// interpolation or directive sequence.
func collect(v cty.Value, path conf.Path, out map[string]*template) error {
	if v.IsNull() {
		return nil
	}
	switch {
	case v.Type().IsObjectType():
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			if err := collect(ev, path.Child(k.AsString()), out); err != nil {
				return err
			}
		}
	case v.Type().IsTupleType():
		i := 0
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if err := collect(ev, path.Child(strconv.Itoa(i)), out); err != nil {
				return err
			}
			i++
		}
	case v.Type() == cty.String:
		s := v.AsString()
		if !strings.Contains(s, "${") && !strings.Contains(s, "%{") {
			return nil
		}
		expr, diags := hclsyntax.ParseTemplate([]byte(s), path.String(), hcl.InitialPos)
		if diags.HasErrors() {
			return fmt.Errorf("parsing template at %q: %s", path.String(), diags.Error())
		}
		out[path.String()] = &template{path: path, expr: expr}
	}
	return nil
}

// evaluationOrder builds the reference graph between templated leaves
// and returns a dependency-respecting order.
func evaluationOrder(root cty.Value, templates map[string]*template) ([]string, error) {
	g := graph.New()
	for key := range templates {
		g.AddNode(key)
	}
	for key, tpl := range templates {
		for _, trav := range tpl.expr.Variables() {
			refPath, err := traversalPath(trav)
			if err != nil {
				return nil, fmt.Errorf("in template at %q: %w", key, err)
			}
			if _, ok := conf.Get(root, refPath); !ok {
				return nil, fmt.Errorf("template at %q references unknown config path %q", key, refPath.String())
			}
			ref := refPath.String()
			for other := range templates {
				if other != ref && !strings.HasPrefix(other, ref+".") {
					continue
				}
				if other == key {
					return nil, fmt.Errorf("config value %q depends on itself", key)
				}
				if err := g.AddEdge(other, key); err != nil {
					return nil, err
				}
			}
		}
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("interpolation: %w", err)
	}
	return order, nil
}

// traversalPath converts an HCL variable traversal like a.b[0].c into
// a config path.
func traversalPath(trav hcl.Traversal) (conf.Path, error) {
	var p conf.Path
	for _, step := range trav {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			p = append(p, s.Name)
		case hcl.TraverseAttr:
			p = append(p, s.Name)
		case hcl.TraverseIndex:
			switch s.Key.Type() {
			case cty.String:
				p = append(p, s.Key.AsString())
			case cty.Number:
				i, _ := s.Key.AsBigFloat().Int64()
				p = append(p, strconv.FormatInt(i, 10))
			default:
				return nil, fmt.Errorf("unsupported index type %s in reference", s.Key.Type().FriendlyName())
			}
		default:
			return nil, fmt.Errorf("unsupported reference form %T", step)
		}
	}
	return p, nil
}

func topLevelVars(root cty.Value) map[string]cty.Value {
	vars := make(map[string]cty.Value)
	for it := root.ElementIterator(); it.Next(); {
		k, v := it.Element()
		vars[k.AsString()] = v
	}
	return vars
}
