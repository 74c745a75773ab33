package tabinspect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// validator handles candidate path checks for Loader
type validator struct {
	fsys fs.FS
}

// newValidator creates a new validator. A nil fsys means the OS filesystem.
func newValidator(fsys fs.FS) *validator {
	return &validator{fsys: fsys}
}

// exists reports whether path names an existing regular file.
// A path that exists but cannot be inspected is reported as an error.
func (v *validator) exists(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}

	info, err := v.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// validateFormat checks that the file extension is supported
func (v *validator) validateFormat(path string) error {
	if !isSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// stat stats path on the configured filesystem
func (v *validator) stat(path string) (fs.FileInfo, error) {
	if v.fsys != nil {
		return fs.Stat(v.fsys, path)
	}
	return os.Stat(path)
}
