package conversion

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"ziptowebp/internal/services"
)

// WorkspaceName returns the scratch directory name for a job.
func WorkspaceName(prefix, jobID string) string {
	return prefix + "-" + jobID
}

func createWorkspace(path string) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		return &services.FilesystemError{
			Kind: services.ClassifyOS(err, services.KindOther),
			Op:   "create workspace",
			Path: path,
			Err:  err,
		}
	}
	return nil
}

// removeWorkspace deletes the workspace tree; a workspace that is already gone
// is not an error.
func removeWorkspace(path string) error {
	err := os.RemoveAll(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &services.FilesystemError{
		Kind: services.ClassifyOS(err, services.KindOther),
		Op:   "remove workspace",
		Path: path,
		Err:  err,
	}
}

// findImages returns every regular file under root whose extension is exactly
// ext, in lexical walk order.
func findImages(root, ext string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filepath.Ext(d.Name()) == ext {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, &services.FilesystemError{
			Kind: services.ClassifyOS(err, services.KindOther),
			Op:   "scan workspace",
			Path: root,
			Err:  err,
		}
	}
	return images, nil
}
