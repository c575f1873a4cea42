package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ziptowebp/internal/config"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/testsupport"
)

func TestIsWorkspaceName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"temp_conversion", true},
		{"temp_conversion-0b6f", true},
		{"temp_conversions", false},
		{"Output", false},
	}
	for _, tc := range cases {
		if got := IsWorkspaceName(tc.name, "temp_conversion"); got != tc.want {
			t.Errorf("IsWorkspaceName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
	if IsWorkspaceName("anything", "") {
		t.Error("empty prefix must not match")
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	conv := config.Default().Conversion
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, conv, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q, got %+v", dir, result)
		}
	}
}

func TestCleanStaleRemovesOldWorkspaces(t *testing.T) {
	root := t.TempDir()
	conv := config.Default().Conversion

	oldDir := filepath.Join(root, "book1", "temp_conversion-old")
	testsupport.WriteFile(t, filepath.Join(oldDir, "001.jpeg"), []byte("x"))
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentDir := filepath.Join(root, "book2", "temp_conversion-new")
	if err := os.MkdirAll(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	unrelated := filepath.Join(root, "book1", "chapter")
	if err := os.MkdirAll(unrelated, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(unrelated, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	result := CleanStale(context.Background(), root, conv, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("removed = %v, want [%s]", result.Removed, oldDir)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old workspace should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent workspace should still exist")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("non-workspace directory should be untouched")
	}
}

func TestListWorkspacesSkipsBookkeepingDirs(t *testing.T) {
	root := t.TempDir()
	conv := config.Default().Conversion

	testsupport.WriteFile(t, filepath.Join(root, "a", "temp_conversion-1", "p.jpeg"), []byte("12345"))
	testsupport.WriteFile(t, filepath.Join(root, "Output", "temp_conversion-2", "p.jpeg"), []byte("x"))

	dirs, err := ListWorkspaces(root, conv)
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "temp_conversion-1" {
		t.Fatalf("unexpected workspaces: %+v", dirs)
	}
	if dirs[0].Size != 5 {
		t.Fatalf("size = %d, want 5", dirs[0].Size)
	}
}
