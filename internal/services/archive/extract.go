package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ziptowebp/internal/services"
)

// Codec extracts and builds zip archives.
type Codec struct{}

// New returns a zip codec.
func New() *Codec {
	return &Codec{}
}

// Extract materializes every entry of archivePath beneath destDir, preserving
// the relative structure. destDir is created when missing.
func (c *Codec) Extract(ctx context.Context, archivePath, destDir string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return extractErr(services.ClassifyOS(err, services.KindOther), archivePath, err)
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return extractErr(classifyRead(err), archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return extractErr(services.ClassifyOS(err, services.KindOther), destDir, err)
	}

	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractEntry(f, destDir); err != nil {
			return extractErr(services.KindOf(err), archivePath, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	rel := filepath.FromSlash(strings.TrimSuffix(f.Name, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return &services.ArchiveError{
			Kind: services.KindCorrupt,
			Op:   "entry",
			Path: f.Name,
			Err:  errors.New("entry escapes destination"),
		}
	}
	target := filepath.Join(destDir, rel)

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return entryErr(services.ClassifyOS(err, services.KindOther), f.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return entryErr(services.ClassifyOS(err, services.KindOther), f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return entryErr(classifyRead(err), f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return entryErr(services.ClassifyOS(err, services.KindOther), f.Name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return entryErr(services.ClassifyOS(err, services.KindOther), f.Name, err)
		}
		return entryErr(classifyRead(err), f.Name, err)
	}
	if err := dst.Close(); err != nil {
		return entryErr(services.ClassifyOS(err, services.KindOther), f.Name, err)
	}
	return nil
}

// classifyRead maps zip decoding failures to Corrupt and everything else
// through the filesystem classifier.
func classifyRead(err error) services.Kind {
	switch {
	case errors.Is(err, zip.ErrFormat),
		errors.Is(err, zip.ErrChecksum),
		errors.Is(err, zip.ErrAlgorithm),
		errors.Is(err, zip.ErrInsecurePath),
		errors.Is(err, io.ErrUnexpectedEOF):
		return services.KindCorrupt
	default:
		return services.ClassifyOS(err, services.KindOther)
	}
}

func extractErr(kind services.Kind, path string, err error) error {
	return &services.ArchiveError{Kind: kind, Op: "extract", Path: path, Err: err}
}

func entryErr(kind services.Kind, name string, err error) error {
	return &services.ArchiveError{Kind: kind, Op: "entry", Path: name, Err: err}
}
