// Package interp resolves ${...} template expressions inside a merged
// configuration tree.
//
// String leaves containing an interpolation sequence are parsed with
// hclsyntax.ParseTemplate and evaluated against the tree itself: the
// top-level config keys become HCL variables, so ${run.seed} reads the
// resolved run.seed value with its original type. A template that is
// exactly one ${...} keeps the referenced value's type; templates with
// surrounding text render to strings.
//
// Templates may reference other templated values. Resolution orders
// them topologically on internal/graph; reference cycles and unknown
// paths are reported as errors. The function set available inside
// templates is fixed: env, now, upper and lower.
package interp
