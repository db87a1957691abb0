// Package compose implements hierarchical configuration composition
// over a directory of YAML documents.
//
// A root document names its building blocks in a reserved `defaults`
// sequence: config-group selections (`- engine: basic` composes
// engine/basic.yaml nested under the `engine` key), bare fragments
// merged at the root, and the `_self_` marker placing the document's
// own body in the merge order. Entries merge in order and later
// entries win key-by-key; mappings merge deep, scalars and sequences
// replace. Composition recurses into composed documents and is kept
// acyclic with internal/graph.
//
// Command-line overrides are applied on top: `group=name` swaps a
// defaults selection, `path.to.field=value` rewrites an existing field
// and `+path.to.field=value` introduces a new one. The composed value
// still contains unresolved ${...} templates; interpolation is a
// separate pass (package interp).
package compose
