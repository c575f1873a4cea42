package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ziptowebp/internal/config"
	"ziptowebp/internal/services"
)

// Result captures the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// errNotDirectory is wrapped when a root path names a regular file.
var errNotDirectory = errors.New("not a directory")

// CheckRoot verifies that root exists, is a directory, and can be traversed
// and written. It returns the absolute, cleaned root path.
func CheckRoot(root string) (string, error) {
	if root == "" {
		return "", &services.PathError{Kind: services.KindNotFound, Path: root, Err: errors.New("root path is empty")}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &services.PathError{Kind: services.KindOther, Path: root, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &services.PathError{Kind: services.ClassifyOS(err, services.KindOther), Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &services.PathError{Kind: services.KindNotFound, Path: abs, Err: errNotDirectory}
	}
	if err := unix.Access(abs, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return "", &services.PathError{Kind: services.KindPermissionDenied, Path: abs, Err: err}
	}
	return abs, nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// RunAll checks the directories the configuration points at. Directories
// that do not exist yet are reported but are created on first use.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}
