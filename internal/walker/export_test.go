package walker

import (
	"io/fs"
	"path"
)

// SetFS replaces the filesystem discovery walks, keyed by the validated root.
func (w *Walker) SetFS(open func(root string) fs.FS) {
	w.openFS = open
}

// UnreadableDirFS wraps an FS and fails ReadDir for one slash-separated
// directory, the way an unreadable or vanished folder does.
type UnreadableDirFS struct {
	fs.FS
	Dir string
}

func (u UnreadableDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if path.Clean(name) == u.Dir {
		return nil, &fs.PathError{Op: "readdirent", Path: name, Err: fs.ErrPermission}
	}
	return fs.ReadDir(u.FS, name)
}
