package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrTargetExists is returned by MoveFile when dst is already present.
var ErrTargetExists = errors.New("target already exists")

// MoveFile renames src to dst, falling back to a verified copy followed by
// removal of src when the two paths live on different devices. An existing
// dst is never replaced. The returned bool is true when the copy succeeded
// but src could not be removed afterwards.
func MoveFile(src, dst string) (bool, error) {
	if _, err := os.Lstat(dst); err == nil {
		return false, fmt.Errorf("move %s: %w", dst, ErrTargetExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return false, nil
	}

	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, unix.EXDEV) {
		return false, renameErr
	}

	if err := CopyFileVerified(src, dst); err != nil {
		if !errors.Is(err, os.ErrExist) {
			_ = os.Remove(dst)
		}
		return false, err
	}
	if err := os.Remove(src); err != nil {
		return true, nil
	}
	return false, nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
