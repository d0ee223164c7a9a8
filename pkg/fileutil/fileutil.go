// Package fileutil provides utility functions for working with file paths and file operations.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var log = logger.New("fileutil:fileutil")

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsDirEmpty checks if a directory is empty.
func IsDirEmpty(path string) bool {
	files, err := os.ReadDir(path)
	if err != nil {
		return true // Consider it empty if we can't read it
	}
	return len(files) == 0
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	log.Printf("Creating directory: %s", path)
	return os.MkdirAll(path, 0o755)
}

// WriteFileAtomic writes data to path via a temporary sibling file and a
// rename, so a concurrent reader never observes a half-written file.
func WriteFileAtomic(path string, data []byte) error {
	log.Printf("Writing file atomically: path=%s, size=%d bytes", path, len(data))

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	log.Printf("File written: %s", path)
	return nil
}
