// Package graph implements a small string-keyed directed acyclic graph used
// wherever the framework needs dependency ordering: the defaults-list
// composition (a document may not compose itself, directly or transitively)
// and the interpolation resolver (a field reference may not form a cycle).
//
// The graph is write-then-read: callers add nodes and edges, then ask for
// cycle detection or a deterministic topological order. It is not safe for
// concurrent mutation.
package graph
