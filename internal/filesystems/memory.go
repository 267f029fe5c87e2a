package filesystems

import (
	"io/fs"
	"iter"
	"path"
	"sort"
	"strings"
	"time"
)

// MemoryFS implements FileSystem in memory. Paths are slash separated and
// cleaned; "." is the root.
type MemoryFS struct {
	files map[string][]byte
	modes map[string]fs.FileMode
	dirs  map[string]bool
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
		modes: make(map[string]fs.FileMode),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a file to the memory filesystem
func (mfs *MemoryFS) AddFile(name string, content []byte) {
	name = path.Clean(name)
	mfs.files[name] = content
	mfs.modes[name] = 0644
	mfs.addParents(name)
}

// AddDir adds a directory to the memory filesystem
func (mfs *MemoryFS) AddDir(name string) {
	name = path.Clean(name)
	mfs.dirs[name] = true
	mfs.addParents(name)
}

func (mfs *MemoryFS) addParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		mfs.dirs[dir] = true
	}
}

func (mfs *MemoryFS) isDir(name string) bool {
	return name == "." || name == "/" || mfs.dirs[name]
}

func (mfs *MemoryFS) ReadFile(name string) ([]byte, error) {
	content, exists := mfs.files[path.Clean(name)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (mfs *MemoryFS) Stat(name string) (FileInfo, error) {
	clean := path.Clean(name)
	if content, ok := mfs.files[clean]; ok {
		return &memoryFileInfo{name: path.Base(clean), size: int64(len(content)), mode: mfs.modes[clean], modTime: time.Now()}, nil
	}
	if mfs.isDir(clean) {
		return &memoryFileInfo{name: path.Base(clean), mode: fs.ModeDir | 0755, modTime: time.Now(), isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (mfs *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	clean := path.Clean(name)
	if mfs.isDir(clean) {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if dir := path.Dir(clean); !mfs.isDir(dir) {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	mfs.files[clean] = append([]byte(nil), data...)
	mfs.modes[clean] = perm
	return nil
}

func (mfs *MemoryFS) Rename(oldpath, newpath string) error {
	oldClean, newClean := path.Clean(oldpath), path.Clean(newpath)
	content, ok := mfs.files[oldClean]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if !mfs.isDir(path.Dir(newClean)) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrNotExist}
	}
	mfs.files[newClean] = content
	mfs.modes[newClean] = mfs.modes[oldClean]
	delete(mfs.files, oldClean)
	delete(mfs.modes, oldClean)
	return nil
}

func (mfs *MemoryFS) MkdirAll(name string, perm fs.FileMode) error {
	clean := path.Clean(name)
	if _, ok := mfs.files[clean]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if clean != "." && clean != "/" {
		mfs.AddDir(clean)
	}
	return nil
}

func (mfs *MemoryFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		dir := path.Clean(name)
		if !mfs.isDir(dir) {
			yield(nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist})
			return
		}

		children := make(map[string]bool)
		collect := func(p string) {
			var rest string
			switch {
			case dir == ".":
				rest = p
			case strings.HasPrefix(p, dir+"/"):
				rest = strings.TrimPrefix(p, dir+"/")
			default:
				return
			}
			if rest != "" && rest != "." {
				children[strings.SplitN(rest, "/", 2)[0]] = true
			}
		}
		for p := range mfs.files {
			collect(p)
		}
		for p := range mfs.dirs {
			collect(p)
		}

		names := make([]string, 0, len(children))
		for child := range children {
			names = append(names, child)
		}
		sort.Strings(names)

		for _, child := range names {
			fullPath := path.Join(dir, child)
			_, isFile := mfs.files[fullPath]
			entry := &memoryDirEntry{name: child, isDir: !isFile, mfs: mfs, fullPath: fullPath}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func (mfs *MemoryFS) Walk(root string, fn WalkFunc) error {
	var walk func(string) error
	walk = func(p string) error {
		info, err := mfs.Stat(p)
		if err != nil {
			return fn(p, nil, err)
		}
		if err := fn(p, info, nil); err != nil {
			if err == SkipDir && info.IsDir() {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		for entry, err := range mfs.ReadDir(p) {
			if err != nil {
				return err
			}
			if err := walk(path.Join(p, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(path.Clean(root))
}

func (mfs *MemoryFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (mfs *MemoryFS) Base(p string) string {
	return path.Base(p)
}

func (mfs *MemoryFS) Dir(p string) string {
	return path.Dir(p)
}

type memoryDirEntry struct {
	name     string
	isDir    bool
	mfs      *MemoryFS
	fullPath string
}

func (e *memoryDirEntry) Name() string {
	return e.name
}

func (e *memoryDirEntry) IsDir() bool {
	return e.isDir
}

func (e *memoryDirEntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e *memoryDirEntry) Info() (FileInfo, error) {
	return e.mfs.Stat(e.fullPath)
}

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *memoryFileInfo) Name() string       { return fi.name }
func (fi *memoryFileInfo) Size() int64        { return fi.size }
func (fi *memoryFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memoryFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memoryFileInfo) IsDir() bool        { return fi.isDir }
func (fi *memoryFileInfo) Sys() interface{}   { return nil }
