package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"ziptowebp/internal/services"
	"ziptowebp/internal/services/archive"
	"ziptowebp/internal/testsupport"
)

func TestExtractPreservesStructure(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "book.zip")
	testsupport.WriteZip(t, archivePath,
		testsupport.ZipEntry{Name: "cover.jpeg", Data: []byte("cover")},
		testsupport.ZipEntry{Name: "ch1/", Data: nil},
		testsupport.ZipEntry{Name: "ch1/p1.jpeg", Data: []byte("page one")},
		testsupport.ZipEntry{Name: "notes.txt", Data: []byte("notes")},
	)

	dest := filepath.Join(dir, "out")
	if err := archive.New().Extract(context.Background(), archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, want := range map[string]string{
		"cover.jpeg":  "cover",
		"ch1/p1.jpeg": "page one",
		"notes.txt":   "notes",
	} {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestExtractMissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := archive.New().Extract(context.Background(), filepath.Join(dir, "absent.zip"), filepath.Join(dir, "out"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var archiveErr *services.ArchiveError
	if !errors.As(err, &archiveErr) {
		t.Fatalf("expected ArchiveError, got %T", err)
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.zip")
	testsupport.WriteFile(t, archivePath, []byte("this is not a zip file"))

	err := archive.New().Extract(context.Background(), archivePath, filepath.Join(dir, "out"))
	if !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected corrupt, got %v", err)
	}
	if services.KindOf(err) != services.KindCorrupt {
		t.Fatalf("KindOf = %s", services.KindOf(err))
	}
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "nested", "evil.zip")
	testsupport.WriteZip(t, archivePath,
		testsupport.ZipEntry{Name: "../escaped.jpeg", Data: []byte("x")},
	)

	dest := filepath.Join(dir, "nested", "out")
	err := archive.New().Extract(context.Background(), archivePath, dest)
	if !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected corrupt, got %v", err)
	}
	if testsupport.Exists(t, filepath.Join(dir, "nested", "escaped.jpeg")) {
		t.Fatal("entry escaped the destination directory")
	}
}

func TestExtractHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "book.zip")
	testsupport.WriteZip(t, archivePath, testsupport.ZipEntry{Name: "a.jpeg", Data: []byte("a")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := archive.New().Extract(ctx, archivePath, filepath.Join(dir, "out"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildWritesEntriesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "src", "b.webp")
	b := filepath.Join(dir, "src", "a.webp")
	testsupport.WriteFile(t, a, []byte("bbb"))
	testsupport.WriteFile(t, b, []byte("aaa"))

	out := filepath.Join(dir, "Output", "WebP_book.zip")
	entries := []archive.Entry{{Path: a, Name: "b.webp"}, {Path: b, Name: "a.webp"}}
	if err := archive.New().Build(context.Background(), entries, out); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := testsupport.ReadZipNames(t, out); !reflect.DeepEqual(got, []string{"b.webp", "a.webp"}) {
		t.Fatalf("entry order = %v", got)
	}

	reader, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer reader.Close()
	for _, f := range reader.File {
		if f.Method != zip.Store {
			t.Fatalf("%s stored with method %d", f.Name, f.Method)
		}
	}
	if testsupport.Exists(t, out+".partial") {
		t.Fatal("partial file left behind")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "p1.webp")
	testsupport.WriteFile(t, src, []byte("payload"))
	entries := []archive.Entry{{Path: src, Name: "p1.webp"}}

	first := filepath.Join(dir, "one.zip")
	second := filepath.Join(dir, "two.zip")
	codec := archive.New()
	if err := codec.Build(context.Background(), entries, first); err != nil {
		t.Fatalf("Build first: %v", err)
	}
	now := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := codec.Build(context.Background(), entries, second); err != nil {
		t.Fatalf("Build second: %v", err)
	}

	one, _ := os.ReadFile(first)
	two, _ := os.ReadFile(second)
	if !bytes.Equal(one, two) {
		t.Fatal("archives differ for identical inputs")
	}
}

func TestBuildFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "p1.webp")
	testsupport.WriteFile(t, present, []byte("ok"))

	out := filepath.Join(dir, "Output", "WebP_book.zip")
	entries := []archive.Entry{
		{Path: present, Name: "p1.webp"},
		{Path: filepath.Join(dir, "missing.webp"), Name: "missing.webp"},
	}
	err := archive.New().Build(context.Background(), entries, out)
	if !errors.Is(err, services.ErrWriteFailed) {
		t.Fatalf("expected write failed, got %v", err)
	}
	if testsupport.Exists(t, out) {
		t.Fatal("output archive should not exist after failure")
	}
	if testsupport.Exists(t, out+".partial") {
		t.Fatal("partial archive should be removed after failure")
	}
}
