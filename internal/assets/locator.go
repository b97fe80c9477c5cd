package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Located pairs a request with its resolution on disk. Found is false when
// no file under the search root carries the requested name; such assets are
// reported but never enter the pipeline.
type Located struct {
	Request Request
	// Path is the absolute path of the matched file; empty when not found.
	Path  string
	Found bool
}

// Locator resolves requested filenames against a directory tree. The tree
// is walked once and indexed by lowercased filename, so matching is
// case-insensitive and repeated lookups are cheap.
type Locator struct {
	root  string
	index map[string][]string
}

// NewLocator walks the search root and builds the filename index. The walk
// is read-only; unreadable subtrees fail the construction rather than
// silently shrinking the index.
func NewLocator(root string) (*Locator, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("search root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search root %s is not a directory", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("search root: %w", err)
	}

	index := make(map[string][]string)
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key := strings.ToLower(d.Name())
		index[key] = append(index[key], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}
	// Fix a deterministic winner when one name matches several files.
	for _, paths := range index {
		sort.Strings(paths)
	}
	return &Locator{root: abs, index: index}, nil
}

// Root returns the absolute search root.
func (l *Locator) Root() string {
	return l.root
}

// Locate resolves each request in order. A name matching multiple files
// resolves to the lexicographically smallest path.
func (l *Locator) Locate(requests []Request) []Located {
	located := make([]Located, 0, len(requests))
	for _, req := range requests {
		paths := l.index[strings.ToLower(req.Filename)]
		if len(paths) == 0 {
			located = append(located, Located{Request: req})
			continue
		}
		located = append(located, Located{Request: req, Path: paths[0], Found: true})
	}
	return located
}
