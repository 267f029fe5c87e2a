package filesystems

import (
	"io/fs"
	"iter"
	"time"
)

// FileSystem abstracts the filesystem operations the converter needs, so the
// CLI runs against the local disk and tests run against memory.
type FileSystem interface {
	// ReadFile reads the named file and returns its contents
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns an iterator over directory entries
	ReadDir(name string) iter.Seq2[DirEntry, error]

	// Walk walks the file tree rooted at root, calling fn for each file or directory
	Walk(root string, fn WalkFunc) error

	// Stat returns file info for name; missing files return an error
	// matching fs.ErrNotExist
	Stat(name string) (FileInfo, error)

	// WriteFile writes data to name, creating or truncating it
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Rename moves oldpath to newpath, replacing newpath if it exists
	Rename(oldpath, newpath string) error

	// MkdirAll creates a directory and any missing parents
	MkdirAll(name string, perm fs.FileMode) error

	Join(elem ...string) string
	Base(path string) string
	Dir(path string) string
}

// DirEntry provides information about a directory entry
type DirEntry interface {
	Name() string
	IsDir() bool
	Type() fs.FileMode
	Info() (FileInfo, error)
}

// FileInfo provides information about a file
type FileInfo interface {
	Name() string
	Size() int64
	Mode() fs.FileMode
	ModTime() time.Time
	IsDir() bool
	Sys() interface{}
}

// WalkFunc is the type of function called by Walk
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir is used as a return value from WalkFunc to indicate that
// the directory named in the call is to be skipped
var SkipDir = fs.SkipDir
