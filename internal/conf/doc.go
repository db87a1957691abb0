// Package conf defines the resolved configuration model.
//
// A composed experiment configuration is held as a single immutable
// [Tree] wrapping a cty object value. The package provides dotted-path
// access into the tree, structural helpers used by the composition
// engine (Get/Set on raw values), conversion from parsed YAML documents
// into cty values, and conversion back to plain Go values for
// re-encoding with gopkg.in/yaml.v3.
//
// The cty value system is the common currency between composition,
// interpolation and decoding: YAML documents become cty objects, merge
// and override surgery happens on cty objects, HCL template evaluation
// produces cty values, and gocty converts the final nodes into typed
// schema structs.
package conf
