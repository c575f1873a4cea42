package walker

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ziptowebp/internal/config"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/testsupport"
)

func TestDiscoverSortsAndPrunes(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"b/two.zip",
		"a/one.zip",
		"a/nested/three.zip",
		"a/UPPER.ZIP",
		"a/notes.txt",
		"Output/WebP_one.zip",
		"a/Converted_Zip/old.zip",
		"a/temp_conversion-1234/inner.zip",
		"a/temp_conversion/legacy.zip",
	} {
		testsupport.WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), []byte("x"))
	}

	got, err := Discover(root, config.Default().Conversion, logging.NewNop())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "nested", "three.zip"),
		filepath.Join(root, "a", "one.zip"),
		filepath.Join(root, "b", "two.zip"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverDoesNotPruneRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Output")
	testsupport.WriteFile(t, filepath.Join(root, "a.zip"), []byte("x"))

	got, err := Discover(root, config.Default().Conversion, logging.NewNop())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected root archive to be found, got %v", got)
	}
}

func TestDiscoverSkipsUnreadableDirectory(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "book1", "a.zip"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(root, "book2", "b.zip"), []byte("x"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fsys := UnreadableDirFS{FS: os.DirFS(root), Dir: "book1"}

	got, err := discoverFS(fsys, root, config.Default().Conversion, logger)
	if err != nil {
		t.Fatalf("discoverFS: %v", err)
	}
	want := []string{filepath.Join(root, "book2", "b.zip")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("discoverFS = %v, want %v", got, want)
	}
	if !strings.Contains(logs.String(), "directory skipped") || !strings.Contains(logs.String(), "book1") {
		t.Fatalf("expected skip warning naming book1, got:\n%s", logs.String())
	}
}

func TestDiscoverFailsWhenRootUnreadable(t *testing.T) {
	root := t.TempDir()
	fsys := UnreadableDirFS{FS: os.DirFS(root), Dir: "."}

	_, err := discoverFS(fsys, root, config.Default().Conversion, logging.NewNop())
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected permission error for root, got %v", err)
	}
}

func TestDiscoverLogsPrunedDirectories(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "shelf", "Output", "mine.zip"), []byte("x"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	got, err := Discover(root, config.Default().Conversion, logger)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected Output contents to be pruned, got %v", got)
	}
	out := logs.String()
	if !strings.Contains(out, "directory pruned") || !strings.Contains(out, filepath.Join("shelf", "Output")) {
		t.Fatalf("expected prune debug line, got:\n%s", out)
	}
}
