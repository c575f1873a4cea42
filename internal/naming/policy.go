package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ziptowebp/internal/config"
)

// ErrEmptyName is returned when NameFor receives a path without a filename.
var ErrEmptyName = errors.New("naming: empty filename")

// Policy holds the naming inputs taken from configuration.
type Policy struct {
	SourceExt       string
	TargetExt       string
	CoverName       string
	CoverOutputStem string
	OutputPrefix    string
}

// NewPolicy builds a Policy from the conversion settings.
func NewPolicy(conv config.Conversion) Policy {
	return Policy{
		SourceExt:       conv.SourceExt,
		TargetExt:       conv.TargetExt,
		CoverName:       conv.CoverName,
		CoverOutputStem: conv.CoverOutputStem,
		OutputPrefix:    conv.OutputPrefix,
	}
}

// DefaultPolicy returns the policy for the repository defaults:
// cover.jpeg becomes 00001.webp, everything else <stem>.webp.
func DefaultPolicy() Policy {
	cfg := config.Default()
	return NewPolicy(cfg.Conversion)
}

// CoverFilename is the exact basename that triggers the cover rule, or "" when
// the rule is disabled.
func (p Policy) CoverFilename() string {
	if p.CoverName == "" {
		return ""
	}
	return p.CoverName + p.SourceExt
}

// NameFor returns the output filename for an extracted image. Any directory
// component of original is discarded.
func (p Policy) NameFor(original string) (string, error) {
	if original == "" {
		return "", ErrEmptyName
	}
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) {
		return "", ErrEmptyName
	}

	if cover := p.CoverFilename(); cover != "" && base == cover {
		return p.CoverOutputStem + p.TargetExt, nil
	}
	return Stem(base) + p.TargetExt, nil
}

// OutputArchiveName returns the filename of the converted archive for the
// source archive at archivePath.
func (p Policy) OutputArchiveName(archivePath string) string {
	return p.OutputPrefix + filepath.Base(archivePath)
}

// Stem strips the final extension from a filename. A name whose only dot is
// the leading one (".jpeg") is kept whole.
func Stem(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if strings.Trim(stem, ".") == "" {
		return name
	}
	return stem
}

// CollisionError reports two images that flatten to the same output name.
type CollisionError struct {
	Output string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("naming: %s and %s both map to %s", e.First, e.Second, e.Output)
}

// Plan maps each image path (relative or absolute) to its output filename and
// fails when two inputs would overwrite each other.
func (p Policy) Plan(images []string) (map[string]string, error) {
	planned := make(map[string]string, len(images))
	owners := make(map[string]string, len(images))
	for _, image := range images {
		name, err := p.NameFor(image)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", image, err)
		}
		if prev, ok := owners[name]; ok {
			return nil, &CollisionError{Output: name, First: prev, Second: image}
		}
		owners[name] = image
		planned[image] = name
	}
	return planned, nil
}
