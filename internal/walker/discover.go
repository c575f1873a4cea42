package walker

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ziptowebp/internal/config"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/staging"
)

// Discover walks root and returns every regular file whose name ends with the
// archive extension (case-sensitive), sorted lexicographically. Bookkeeping
// folders are pruned. A subdirectory that cannot be read is skipped with a
// warning; only a failure to read root itself is returned.
func Discover(root string, conv config.Conversion, logger *slog.Logger) ([]string, error) {
	return discoverFS(os.DirFS(root), root, conv, logger)
}

func discoverFS(fsys fs.FS, root string, conv config.Conversion, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var archives []string
	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err != nil {
			if rel == "." {
				return err
			}
			logging.WarnWithContext(logger, "directory skipped", "discover_skipped",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check folder permissions"),
				logging.String(logging.FieldImpact, "archives in this folder were not converted"),
			)
			if d == nil || d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rel != "." && isBookkeepingDir(d.Name(), conv) {
				logger.Debug("directory pruned",
					logging.String(logging.FieldEventType, "discover_pruned"),
					logging.String("path", path),
				)
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), conv.ArchiveExt) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(archives)
	return archives, nil
}

func isBookkeepingDir(name string, conv config.Conversion) bool {
	switch {
	case name == conv.OutputDir, name == conv.ProcessedDir:
		return true
	case staging.IsWorkspaceName(name, conv.WorkspacePrefix):
		return true
	default:
		return false
	}
}
