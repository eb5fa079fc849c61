package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

const maxPathLength = 4096

// sensitivePaths are system locations libmgr never writes to
var sensitivePaths = []string{
	"/etc/", "/bin/", "/sbin/", "/usr/bin/", "/usr/sbin/",
	"/boot/", "/sys/", "/proc/", "/dev/", "/lib/", "/lib64/",
}

// ValidatePath performs checks shared by every path taken from the user
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains null bytes: %q", path)
	}

	if len(path) >= maxPathLength {
		return fmt.Errorf("path too long: %d characters", len(path))
	}

	return nil
}

// ValidateSourcePath validates a Python source file to scan for imports
func ValidateSourcePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	if ext := filepath.Ext(path); ext != ".py" && ext != ".pyw" {
		return fmt.Errorf("not a Python source file: %s", path)
	}

	return nil
}

// ValidateOutputPath validates a file libmgr is about to create or replace
func ValidateOutputPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." || strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("output path must name a file: %s", path)
	}

	abs, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	for _, sensitive := range sensitivePaths {
		if strings.HasPrefix(abs, sensitive) {
			return fmt.Errorf("output path points to sensitive system path: %s", sensitive)
		}
	}

	return nil
}
