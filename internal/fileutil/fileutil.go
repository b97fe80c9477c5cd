// Package fileutil provides small filesystem helpers shared by the pipeline
// stages.
package fileutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFile streams src to dst with default permissions (0o644). An existing
// destination is truncated, so re-staging a previously retained asset
// overwrites it in place.
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// FileExistsNonEmpty reports whether path names a regular file with at least
// one byte. The conversion tools signal success partly through their output
// file, so a zero-byte artifact counts as missing.
func FileExistsNonEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, nil
	}
	return info.Size() > 0, nil
}
