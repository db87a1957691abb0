package compose

import (
	"fmt"
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
	"github.com/gravigo-ml/gravigo/internal/fsutil"
	"github.com/gravigo-ml/gravigo/internal/graph"
)

// DefaultName is the root document composed when no config name is
// given on the command line.
const DefaultName = "experiment"

// Options selects what to compose.
type Options struct {
	// Dir is the configuration directory holding the root document
	// and its config-group subdirectories.
	Dir string
	// Name is the root document name without extension. Empty means
	// DefaultName.
	Name string
	// Overrides are raw command-line override tokens, applied in
	// order.
	Overrides []string
}

// Compose loads and merges a configuration tree. The result still
// carries unresolved ${...} templates; see package interp.
func Compose(opts Options) (cty.Value, error) {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	overrides := make([]Override, 0, len(opts.Overrides))
	for _, tok := range opts.Overrides {
		o, err := parseOverrideToken(tok)
		if err != nil {
			return cty.NilVal, err
		}
		overrides = append(overrides, o)
	}

	l := &loader{
		dir:       opts.Dir,
		selection: map[string]string{},
		used:      map[string]bool{},
		g:         graph.New(),
	}
	for _, o := range overrides {
		if o.isGroupCandidate() {
			l.selection[o.Key] = o.Value
		}
	}

	root, err := l.compose(name)
	if err != nil {
		return cty.NilVal, err
	}

	// Group overrides consumed during composition are done; the rest
	// fall through to field overrides in their original order.
	for _, o := range overrides {
		if o.isGroupCandidate() && l.used[o.Key] {
			continue
		}
		if !o.Add && strings.Contains(o.Key, "/") {
			return cty.NilVal, fmt.Errorf("no defaults entry for config group %q", o.Key)
		}
		root, err = applyFieldOverride(root, o)
		if err != nil {
			return cty.NilVal, err
		}
	}
	return root, nil
}

// loader carries the state of one composition run.
type loader struct {
	dir       string
	selection map[string]string
	used      map[string]bool
	g         *graph.Graph
}

// compose recursively loads one document and merges its defaults.
func (l *loader) compose(ref string) (cty.Value, error) {
	path, err := fsutil.FindConfigFile(l.dir, ref)
	if err != nil {
		return cty.NilVal, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading config %q: %w", ref, err)
	}
	doc, err := conf.ParseYAML(src, path)
	if err != nil {
		return cty.NilVal, err
	}

	// Sequence-rooted documents (handler lists) carry no defaults.
	if !doc.Type().IsObjectType() {
		return doc, nil
	}
	body := objectWithout(doc, reservedDefaultsKey)
	if !doc.Type().HasAttribute(reservedDefaultsKey) {
		return body, nil
	}

	entries, err := parseDefaults(doc.GetAttr(reservedDefaultsKey), path)
	if err != nil {
		return cty.NilVal, err
	}

	result := cty.EmptyObjectVal
	selfSeen := false
	for _, e := range entries {
		switch {
		case e.self:
			selfSeen = true
			result = Merge(result, body)

		case e.fragment != "":
			child, err := l.composeChild(ref, e.fragment)
			if err != nil {
				return cty.NilVal, err
			}
			result = Merge(result, child)

		default:
			option := e.option
			if sel, ok := l.selection[e.group]; ok {
				option = sel
				l.used[e.group] = true
			}
			child, err := l.composeChild(ref, e.group+"/"+option)
			if err != nil {
				return cty.NilVal, err
			}
			result = Merge(result, nest(child, strings.Split(e.group, "/")))
		}
	}
	if !selfSeen {
		result = Merge(result, body)
	}
	return result, nil
}

// composeChild records the parent/child edge so a document composing
// itself, directly or transitively, fails with the cycle chain.
func (l *loader) composeChild(parentRef, childRef string) (cty.Value, error) {
	l.g.AddNode(parentRef)
	l.g.AddNode(childRef)
	if err := l.g.AddEdge(parentRef, childRef); err != nil {
		return cty.NilVal, fmt.Errorf("config %q composes itself", childRef)
	}
	if err := l.g.DetectCycle(); err != nil {
		return cty.NilVal, fmt.Errorf("defaults composition: %w", err)
	}
	return l.compose(childRef)
}
