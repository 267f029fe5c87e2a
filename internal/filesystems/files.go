package filesystems

import (
	"errors"
	"io/fs"
	"strings"
)

// FindFile looks for a file with the given name (case-insensitive) in dir.
// Returns the path with the on-disk case, or "" when there is none.
func FindFile(filesystem FileSystem, dir, filename string) (string, error) {
	for entry, err := range filesystem.ReadDir(dir) {
		if err != nil {
			return "", err
		}
		if !entry.IsDir() && strings.EqualFold(entry.Name(), filename) {
			return filesystem.Join(dir, entry.Name()), nil
		}
	}

	return "", nil
}

// Exists reports whether name exists. Errors other than not-exist are
// returned.
func Exists(filesystem FileSystem, name string) (bool, error) {
	_, err := filesystem.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
