package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"ziptowebp/internal/services"
)

// partialSuffix marks an archive that is still being written.
const partialSuffix = ".partial"

// entryTime is stamped on every written entry so output bytes depend only on
// entry names and contents.
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry pairs a file on disk with its name inside the archive.
type Entry struct {
	Path string
	Name string
}

// Build writes entries, in the given order, to a new stored (uncompressed) zip
// at outputPath. The archive is assembled under a temporary name and renamed
// into place, so a failed build never leaves a partial file at outputPath.
func (c *Codec) Build(ctx context.Context, entries []Entry, outputPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return buildErr(outputPath, err)
	}

	partial := outputPath + partialSuffix
	f, err := os.OpenFile(partial, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return buildErr(outputPath, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(partial)
		}
	}()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addEntry(zw, entry); err != nil {
			return buildErr(outputPath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return buildErr(outputPath, err)
	}
	if err := f.Sync(); err != nil {
		return buildErr(outputPath, err)
	}
	if err := f.Close(); err != nil {
		return buildErr(outputPath, err)
	}
	if err := os.Rename(partial, outputPath); err != nil {
		return buildErr(outputPath, err)
	}
	return nil
}

func addEntry(zw *zip.Writer, entry Entry) error {
	if entry.Name == "" {
		return errors.New("entry name is empty")
	}
	src, err := os.Open(entry.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	header := &zip.FileHeader{
		Name:     filepath.ToSlash(entry.Name),
		Method:   zip.Store,
		Modified: entryTime,
	}
	header.SetMode(0o644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func buildErr(path string, err error) error {
	kind := services.KindWriteFailed
	if errors.Is(err, os.ErrPermission) {
		kind = services.KindPermissionDenied
	}
	return &services.ArchiveError{Kind: kind, Op: "build", Path: path, Err: err}
}
