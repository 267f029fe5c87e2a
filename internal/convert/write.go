package convert

import (
	"fmt"
	"time"

	"github.com/railwayapp/compositor/internal/filesystems"
)

const (
	OutputFilename  = "docker-compose.yml"
	backupTimestamp = "20060102150405"
)

// WriteOptions controls where a result lands. A zero Now uses time.Now.
type WriteOptions struct {
	Dir      string
	NoBackup bool
	Now      func() time.Time
}

type Written struct {
	Path   string
	Backup string
}

// Write stores content as <dir>/docker-compose.yml. An existing file is
// first renamed to docker-compose.yml.<timestamp>.bak unless NoBackup is
// set. Only call it with a successful result.
func Write(filesystem filesystems.FileSystem, content []byte, opts WriteOptions) (*Written, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := filesystem.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	written := &Written{Path: filesystem.Join(dir, OutputFilename)}

	exists, err := filesystems.Exists(filesystem, written.Path)
	if err != nil {
		return nil, err
	}
	if exists && !opts.NoBackup {
		written.Backup = fmt.Sprintf("%s.%s.bak", written.Path, now().Format(backupTimestamp))
		if err := filesystem.Rename(written.Path, written.Backup); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", written.Path, err)
		}
	}

	if err := filesystem.WriteFile(written.Path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", written.Path, err)
	}
	return written, nil
}
