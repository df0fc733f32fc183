package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FolderLoader resolves `{import:name}` against `<Dir>/<name>.perchance`
// files on disk. It sanity-checks that the file is actually text before
// handing it to the parser, the way a generic asset loader would reject an
// accidentally-imported binary file early with a clear error instead of
// letting the parser choke on garbage bytes.
type FolderLoader struct {
	Dir string
}

// NewFolderLoader returns a FolderLoader rooted at dir.
func NewFolderLoader(dir string) *FolderLoader {
	return &FolderLoader{Dir: dir}
}

func (f *FolderLoader) Load(_ context.Context, name string) (string, error) {
	// Reject path traversal; import names are identifiers, not paths.
	if strings.ContainsAny(name, "/\\") || name == ".." {
		return "", fmt.Errorf("invalid generator name %q", name)
	}
	path := filepath.Join(f.Dir, name+".perchance")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ErrNotFound{Name: name}
		}
		return "", fmt.Errorf("reading generator %q: %w", name, err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "text/") {
		return "", fmt.Errorf("generator %q does not look like text (detected %s)", name, mtype.String())
	}
	return string(data), nil
}
