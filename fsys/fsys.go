// Package fsys provides the small read-oriented filesystem abstraction the
// document loader operates on. It is implemented with go-billy so production
// code reads the OS filesystem while tests run against an in-memory one.
package fsys

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS wraps a billy.Filesystem with the read operations the loader needs.
type FS struct {
	fs billy.Filesystem
}

// NewOS returns a filesystem rooted at the given OS directory.
func NewOS(root string) *FS {
	return &FS{fs: osfs.New(root)}
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() *FS {
	return &FS{fs: memfs.New()}
}

// New wraps an existing billy filesystem.
func New(fs billy.Filesystem) *FS {
	return &FS{fs: fs}
}

// ReadFile reads the named file and returns its contents.
func (f *FS) ReadFile(name string) ([]byte, error) {
	data, err := util.ReadFile(f.fs, name)
	if err != nil {
		return nil, fmt.Errorf("fsys: read %q: %w", name, err)
	}
	return data, nil
}

// Stat returns file info for the named path.
func (f *FS) Stat(name string) (os.FileInfo, error) {
	info, err := f.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("fsys: stat %q: %w", name, err)
	}
	return info, nil
}

// Exists reports whether the named path exists.
func (f *FS) Exists(name string) (bool, error) {
	_, err := f.fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("fsys: stat %q: %w", name, err)
	}
}

// IsDir reports whether the named path exists and is a directory. A missing
// path is reported as (false, nil) so callers can distinguish absence from
// shape.
func (f *FS) IsDir(name string) (bool, error) {
	info, err := f.fs.Stat(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fsys: stat %q: %w", name, err)
	}
	return info.IsDir(), nil
}

// WriteFile creates or truncates the named file with the given contents.
// Intended for tests and for the output emission in the command layer.
func (f *FS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(f.fs, name, data, perm); err != nil {
		return fmt.Errorf("fsys: write %q: %w", name, err)
	}
	return nil
}

// MkdirAll creates the named directory and any missing parents.
func (f *FS) MkdirAll(name string, perm os.FileMode) error {
	if err := f.fs.MkdirAll(name, perm); err != nil {
		return fmt.Errorf("fsys: mkdirall %q: %w", name, err)
	}
	return nil
}

// Billy exposes the underlying billy filesystem for collaborators that speak
// billy directly (the in-process git resolver's test fixtures).
func (f *FS) Billy() billy.Filesystem {
	return f.fs
}
