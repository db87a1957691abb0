package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Dataset ids the engine asks a source for.
const (
	TrainID = "train"
	EvalID  = "eval"
)

// ErrLoaderNotFound is returned when a source has no loader for the
// requested dataset id.
var ErrLoaderNotFound = errors.New("data: loader not found")

// Source hands out batch loaders by dataset id.
type Source interface {
	Loader(ctx context.Context, id string) (*Loader, error)
}

// LoaderSettings configures the loader a DatasetSource builds for one
// dataset id.
type LoaderSettings struct {
	BatchSize int
	Shuffle   bool
	Seed      int64
}

type sourceEntry struct {
	creator  Creator
	settings LoaderSettings
}

// DatasetSource maps dataset ids to creators and loader settings.
// Creators run lazily on the first Loader call for their id; wrap them
// in a CachingCreator to build each dataset once per run.
type DatasetSource struct {
	entries map[string]sourceEntry
	loaders map[string]*Loader
}

// NewDatasetSource creates an empty source.
func NewDatasetSource() *DatasetSource {
	return &DatasetSource{
		entries: make(map[string]sourceEntry),
		loaders: make(map[string]*Loader),
	}
}

// Add registers a dataset id. Re-adding an id replaces its entry.
func (s *DatasetSource) Add(id string, creator Creator, settings LoaderSettings) {
	if creator == nil {
		panic(fmt.Sprintf("dataset source entry %q requires a creator", id))
	}
	s.entries[id] = sourceEntry{creator: creator, settings: settings}
	delete(s.loaders, id)
}

// IDs returns the registered dataset ids in sorted order.
func (s *DatasetSource) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Loader implements Source. The loader for an id is built on first
// request and reused afterwards, keeping its shuffle stream intact
// across epochs.
func (s *DatasetSource) Loader(ctx context.Context, id string) (*Loader, error) {
	if l, ok := s.loaders[id]; ok {
		return l, nil
	}
	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrLoaderNotFound, id, strings.Join(s.IDs(), ", "))
	}
	dataset, err := entry.creator.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating dataset %q: %w", id, err)
	}
	l, err := NewLoader(dataset, entry.settings.BatchSize, entry.settings.Shuffle, entry.settings.Seed)
	if err != nil {
		return nil, fmt.Errorf("building loader %q: %w", id, err)
	}
	s.loaders[id] = l
	return l, nil
}
