package rsrc

import (
	"context"
	"fmt"
	"runtime"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
)

// Resource is something a runner brings up around a run. Stop is
// called in reverse start order, including after a failed run.
type Resource interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// SysInfo logs host and toolchain details when started.
type SysInfo struct{}

// NewSysInfo creates the system info resource.
func NewSysInfo() *SysInfo { return &SysInfo{} }

func (*SysInfo) Start(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("System info.",
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"cpus", runtime.NumCPU(),
		"go", runtime.Version(),
	)
	return nil
}

func (*SysInfo) Stop(context.Context) error { return nil }

// GoRuntime optionally pins GOMAXPROCS for the run and logs memory
// and scheduler statistics when stopped.
type GoRuntime struct {
	maxProcs int
	previous int
}

// NewGoRuntime creates the Go runtime resource. maxProcs <= 0 leaves
// GOMAXPROCS untouched.
func NewGoRuntime(maxProcs int) *GoRuntime {
	return &GoRuntime{maxProcs: maxProcs}
}

func (r *GoRuntime) Start(ctx context.Context) error {
	if r.maxProcs > 0 {
		r.previous = runtime.GOMAXPROCS(r.maxProcs)
		ctxlog.FromContext(ctx).Info("Pinned GOMAXPROCS.",
			"maxProcs", r.maxProcs, "previous", r.previous)
	}
	return nil
}

func (r *GoRuntime) Stop(ctx context.Context) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	ctxlog.FromContext(ctx).Info("Go runtime stats.",
		"heapAllocBytes", stats.HeapAlloc,
		"totalAllocBytes", stats.TotalAlloc,
		"numGC", stats.NumGC,
		"goroutines", runtime.NumGoroutine(),
	)
	if r.maxProcs > 0 && r.previous > 0 {
		runtime.GOMAXPROCS(r.previous)
		r.previous = 0
	}
	return nil
}

// StartAll starts the resources in order and returns a stop function
// running the started ones in reverse. On a start failure the already
// started resources are stopped before the error is returned.
func StartAll(ctx context.Context, resources []Resource) (func(ctx context.Context), error) {
	started := make([]Resource, 0, len(resources))
	stop := func(ctx context.Context) {
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].Stop(ctx); err != nil {
				ctxlog.FromContext(ctx).Warn("Resource stop failed.", "error", err)
			}
		}
	}
	for i, r := range resources {
		if err := r.Start(ctx); err != nil {
			stop(ctx)
			return nil, fmt.Errorf("starting resource %d: %w", i, err)
		}
		started = append(started, r)
	}
	return stop, nil
}
