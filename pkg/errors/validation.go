package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxPathLength = 500

// ValidateDevicePath checks a media device path such as /dev/media0.
//
// The path must be absolute, live under /dev/, and contain no traversal
// sequences or control characters. Existence is not checked here.
func ValidateDevicePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "device path cannot be empty")
	}
	if err := checkPathChars(path); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/dev/") {
		return New(ErrCodeInvalidPath, "device path must be under /dev/: %q", path)
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "device path cannot contain path traversal sequences (..)")
	}
	return nil
}

// ValidateOutputPath checks a path the CLI is about to write.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if err := checkPathChars(path); err != nil {
		return err
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path is a directory: %q", path)
	}
	return nil
}

func checkPathChars(path string) error {
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
