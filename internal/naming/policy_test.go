package naming

import (
	"errors"
	"testing"
)

func TestNameForDefaults(t *testing.T) {
	p := DefaultPolicy()
	cases := map[string]string{
		"cover.jpeg":         "00001.webp",
		"003.jpeg":           "003.webp",
		"chapter1/004.jpeg":  "004.webp",
		"a/b/c/cover.jpeg":   "00001.webp",
		"cover.png":          "cover.webp",
		"Cover.jpeg":         "Cover.webp",
		"page.final.jpeg":    "page.final.webp",
		".jpeg":              ".jpeg.webp",
		"/abs/path/010.jpeg": "010.webp",
	}
	for input, want := range cases {
		got, err := p.NameFor(input)
		if err != nil {
			t.Fatalf("NameFor(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("NameFor(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNameForIsStable(t *testing.T) {
	p := DefaultPolicy()
	first, err := p.NameFor("dir/017.jpeg")
	if err != nil {
		t.Fatalf("NameFor: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.NameFor("dir/017.jpeg")
		if err != nil || again != first {
			t.Fatalf("NameFor not stable: %q vs %q (%v)", again, first, err)
		}
	}
}

func TestNameForEmpty(t *testing.T) {
	if _, err := DefaultPolicy().NameFor(""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCoverRuleDisabled(t *testing.T) {
	p := DefaultPolicy()
	p.CoverName = ""
	got, err := p.NameFor("cover.jpeg")
	if err != nil {
		t.Fatalf("NameFor: %v", err)
	}
	if got != "cover.webp" {
		t.Fatalf("expected cover rule to be off, got %q", got)
	}
}

func TestOutputArchiveName(t *testing.T) {
	p := DefaultPolicy()
	if got := p.OutputArchiveName("/books/book1/a.zip"); got != "WebP_a.zip" {
		t.Fatalf("unexpected output archive name %q", got)
	}
}

func TestPlanDetectsCollisions(t *testing.T) {
	p := DefaultPolicy()

	planned, err := p.Plan([]string{"cover.jpeg", "001.jpeg", "sub/002.jpeg"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if planned["sub/002.jpeg"] != "002.webp" || planned["cover.jpeg"] != "00001.webp" {
		t.Fatalf("unexpected plan: %v", planned)
	}

	_, err = p.Plan([]string{"a/001.jpeg", "b/001.jpeg"})
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected CollisionError, got %v", err)
	}
	if collision.Output != "001.webp" {
		t.Fatalf("unexpected collision output %q", collision.Output)
	}

	if _, err := p.Plan([]string{"cover.jpeg", "00001.jpeg"}); !errors.As(err, &collision) {
		t.Fatalf("expected cover collision, got %v", err)
	}
}
