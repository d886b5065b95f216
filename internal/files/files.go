// Package files is the filesystem gateway for metis workspaces.
//
// All document I/O goes through this package so that path handling, parent
// directory creation, and content hashing stay in one place. Markdown files
// are the source of truth; the index database is derived from them.
package files

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/randalmurphal/metis/internal/errors"
)

// MarkdownPattern matches every markdown file under a workspace root.
const MarkdownPattern = "**/*.md"

// ReadFile reads a UTF-8 file and returns its content.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.ErrFileNotFound(path)
		}
		return "", errors.ErrIo("read", path, err)
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.ErrIo("create directory for", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.ErrIo("write", path, err)
	}
	return nil
}

// DeleteFile removes a file.
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrFileNotFound(path)
		}
		return errors.ErrIo("delete", path, err)
	}
	return nil
}

// MoveFile renames src to dst, creating dst's parent directories as needed.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.ErrIo("create directory for", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrFileNotFound(src)
		}
		return errors.ErrIo("move", src, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListMarkdown enumerates all markdown files under root, recursively,
// following directory symlinks. Returned paths are relative to root, use
// forward slashes, and are sorted for deterministic processing.
func ListMarkdown(root string) ([]string, error) {
	var found []string
	if err := walkFollowingSymlinks(root, "", &found, make(map[string]bool)); err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// walkFollowingSymlinks walks dir (relative rel under root), appending
// matching markdown paths to found. visited guards against symlink cycles
// by tracking resolved directory paths.
func walkFollowingSymlinks(root, rel string, found *[]string, visited map[string]bool) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ErrFileNotFound(dir)
		}
		return errors.ErrIo("resolve", dir, err)
	}
	if visited[resolved] {
		return nil
	}
	visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.ErrIo("list", dir, err)
	}
	for _, entry := range entries {
		childRel := entry.Name()
		if rel != "" {
			childRel = rel + "/" + entry.Name()
		}
		info := fs.FileInfo(nil)
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				// Dangling symlink; skip it.
				continue
			}
			isDir = info.IsDir()
		}
		if isDir {
			if err := walkFollowingSymlinks(root, childRel, found, visited); err != nil {
				return err
			}
			continue
		}
		if ok, _ := doublestar.Match(MarkdownPattern, childRel); ok {
			*found = append(*found, childRel)
		}
	}
	return nil
}

// HashFile computes the SHA-256 hash of a file's contents.
func HashFile(path string) (string, error) {
	content, err := ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashString(content), nil
}

// HashString computes the SHA-256 hash of a string.
func HashString(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// AtomicWriteFile writes data to a file atomically by first writing to a
// temporary file in the same directory, syncing it, then renaming it to the
// target path. The rename is atomic on the same filesystem, so readers never
// observe a partial write.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.ErrIo("create directory for", path, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.ErrIo("create temp file for", path, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.ErrIo("write temp file for", path, err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.ErrIo("sync temp file for", path, err)
	}

	if err := tmpFile.Close(); err != nil {
		return errors.ErrIo("close temp file for", path, err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return errors.ErrIo("chmod temp file for", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.ErrIo("rename temp file to", path, err)
	}

	success = true
	return nil
}

// AtomicWriteFileString is a convenience wrapper for AtomicWriteFile that
// accepts a string instead of a byte slice.
func AtomicWriteFileString(path string, content string, perm os.FileMode) error {
	return AtomicWriteFile(path, []byte(content), perm)
}
