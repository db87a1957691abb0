// Package buildinfo carries the version identifiers stamped into the
// binary at build time via -ldflags.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("gravigo %s (commit=%s, date=%s)", Version, Commit, Date)
}
