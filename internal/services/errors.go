package services

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies a failure independently of the component that produced it.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindCorrupt              Kind = "corrupt"
	KindUnsupportedOrCorrupt Kind = "unsupported_or_corrupt"
	KindPermissionDenied     Kind = "permission_denied"
	KindWriteFailed          Kind = "write_failed"
	KindOther                Kind = "other"
)

// Markers matched through errors.Is on any of the typed errors below.
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnsupported = errors.New("unsupported or corrupt")
	ErrPermission  = errors.New("permission denied")
	ErrWriteFailed = errors.New("write failed")
	ErrOther       = errors.New("other failure")
)

// Marker returns the sentinel error for the kind.
func (k Kind) Marker() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindCorrupt:
		return ErrCorrupt
	case KindUnsupportedOrCorrupt:
		return ErrUnsupported
	case KindPermissionDenied:
		return ErrPermission
	case KindWriteFailed:
		return ErrWriteFailed
	default:
		return ErrOther
	}
}

// PathError reports a problem with a user-supplied path, such as a missing root.
type PathError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *PathError) Error() string { return format("path", "", e.Path, e.Kind, e.Err) }

func (e *PathError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

func (e *PathError) ErrorKind() string { return string(e.Kind) }

// ArchiveError reports an archive codec failure (extracting or building).
type ArchiveError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *ArchiveError) Error() string { return format("archive", e.Op, e.Path, e.Kind, e.Err) }

func (e *ArchiveError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

func (e *ArchiveError) ErrorKind() string { return string(e.Kind) }

// ImageError reports an image codec failure for a single image.
type ImageError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *ImageError) Error() string { return format("image", e.Op, e.Path, e.Kind, e.Err) }

func (e *ImageError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

func (e *ImageError) ErrorKind() string { return string(e.Kind) }

// FilesystemError reports a failure while creating, moving, or removing files
// outside the codecs (workspace cleanup, relocation).
type FilesystemError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string { return format("filesystem", e.Op, e.Path, e.Kind, e.Err) }

func (e *FilesystemError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

func (e *FilesystemError) ErrorKind() string { return string(e.Kind) }

// KindOf returns the classification carried by err, or KindOther when none is present.
func KindOf(err error) Kind {
	var classifier interface{ ErrorKind() string }
	if errors.As(err, &classifier) {
		return Kind(classifier.ErrorKind())
	}
	return KindOther
}

// ClassifyOS maps common filesystem errors to a kind, falling back to the
// provided kind for anything else.
func ClassifyOS(err error, fallback Kind) Kind {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return fallback
	}
}

func unwrap(kind Kind, err error) []error {
	if err == nil {
		return []error{kind.Marker()}
	}
	return []error{kind.Marker(), err}
}

func format(component, op, path string, kind Kind, err error) string {
	var b strings.Builder
	b.WriteString(component)
	if op = strings.TrimSpace(op); op != "" {
		b.WriteByte(' ')
		b.WriteString(op)
	}
	if path != "" {
		fmt.Fprintf(&b, " %s", path)
	}
	fmt.Fprintf(&b, ": %s", strings.ReplaceAll(string(kind), "_", " "))
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	return b.String()
}
