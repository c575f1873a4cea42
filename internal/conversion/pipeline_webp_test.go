package conversion

import (
	"archive/zip"
	"context"
	"path/filepath"
	"testing"

	xwebp "golang.org/x/image/webp"

	"ziptowebp/internal/config"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/testsupport"
)

func TestRunWithWebPEncoderPreservesDimensions(t *testing.T) {
	root := t.TempDir()
	archivePath := filepath.Join(root, "book1", "a.zip")
	sizes := map[string][2]int{
		"cover.jpeg":   {40, 60},
		"pages/1.jpeg": {33, 17},
		"pages/2.jpeg": {64, 48},
	}
	testsupport.WriteZip(t, archivePath,
		testsupport.ZipEntry{Name: "cover.jpeg", Data: testsupport.JPEG(t, 40, 60, 1)},
		testsupport.ZipEntry{Name: "pages/1.jpeg", Data: testsupport.JPEG(t, 33, 17, 2)},
		testsupport.ZipEntry{Name: "pages/2.jpeg", Data: testsupport.JPEG(t, 64, 48, 3)},
	)

	cfg := testsupport.NewConfig(t, testsupport.WithPlacement(config.PlacementArchiveDir))
	p, err := NewDefault(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	result := p.Run(context.Background(), NewJob(archivePath))
	if !result.Succeeded() {
		t.Fatalf("job failed: %v", result.Err)
	}

	want := map[string][2]int{
		"00001.webp": sizes["cover.jpeg"],
		"1.webp":     sizes["pages/1.jpeg"],
		"2.webp":     sizes["pages/2.jpeg"],
	}
	reader, err := zip.OpenReader(result.Layout.OutputPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != len(want) {
		t.Fatalf("entries = %d, want %d", len(reader.File), len(want))
	}
	for _, f := range reader.File {
		dims, ok := want[f.Name]
		if !ok {
			t.Fatalf("unexpected entry %s", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		cfg, err := xwebp.DecodeConfig(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", f.Name, err)
		}
		if cfg.Width != dims[0] || cfg.Height != dims[1] {
			t.Fatalf("%s is %dx%d, want %dx%d", f.Name, cfg.Width, cfg.Height, dims[0], dims[1])
		}
	}
}
