// Package history tracks metric observations across a run.
//
// A history keeps a bounded window of recent (step, value) entries;
// the scalar variant additionally tracks the best value seen so far
// under a comparator, which is what early stopping and "best model"
// decisions read. Histories never shrink below their window on their
// own and are not safe for concurrent use.
package history
