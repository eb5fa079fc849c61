package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// EnsureDir ensures a directory exists with the given permissions
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CheckWritable checks that files can be created inside dir
func CheckWritable(fs afero.Fs, dir string) error {
	f, err := afero.TempFile(fs, dir, ".libmgr-write-test-")
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	_ = fs.Remove(name)
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partially written file.
// Missing parent directories are created.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(fs, dir, 0755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
