package loader

import "context"

// MemoryLoader serves generator source from an in-memory map, for tests and
// for embedding a fixed bundle of generators in a binary.
type MemoryLoader struct {
	Sources map[string]string
}

// NewMemoryLoader returns a MemoryLoader backed by sources (not copied).
func NewMemoryLoader(sources map[string]string) *MemoryLoader {
	return &MemoryLoader{Sources: sources}
}

func (m *MemoryLoader) Load(_ context.Context, name string) (string, error) {
	src, ok := m.Sources[name]
	if !ok {
		return "", &ErrNotFound{Name: name}
	}
	return src, nil
}
