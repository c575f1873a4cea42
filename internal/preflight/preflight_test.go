package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ziptowebp/internal/services"
	"ziptowebp/internal/testsupport"
)

func TestCheckRoot_OK(t *testing.T) {
	dir := t.TempDir()
	abs, err := CheckRoot(dir)
	if err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if abs != filepath.Clean(dir) {
		t.Fatalf("abs = %s, want %s", abs, dir)
	}
}

func TestCheckRoot_RelativePathIsResolved(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "books"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	abs, err := CheckRoot("books")
	if err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if !filepath.IsAbs(abs) || filepath.Base(abs) != "books" {
		t.Fatalf("unexpected root %s", abs)
	}
}

func TestCheckRoot_NotExist(t *testing.T) {
	_, err := CheckRoot(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var pathErr *services.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathError, got %T", err)
	}
}

func TestCheckRoot_Empty(t *testing.T) {
	if _, err := CheckRoot(""); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckRoot_File(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := CheckRoot(f)
	if !errors.Is(err, errNotDirectory) {
		t.Fatalf("expected not-a-directory, got %v", err)
	}
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ReportsStateDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(cfg)
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("unexpected results: %+v", results)
	}
}
