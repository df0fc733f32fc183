// Package loader supplies generator source text to the evaluator's
// `{import:name}` mechanism. GeneratorLoader is deliberately narrow (one
// method) so callers can back it with a filesystem, an in-memory map, or
// anything else without the evaluator knowing the difference.
package loader

import (
	"context"
	"fmt"
)

// ErrNotFound is returned by a GeneratorLoader when name has no
// corresponding generator.
type ErrNotFound struct{ Name string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("generator %q not found", e.Name) }

// GeneratorLoader resolves an import name to raw perchance source text.
type GeneratorLoader interface {
	Load(ctx context.Context, name string) (string, error)
}
