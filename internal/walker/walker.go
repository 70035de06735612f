// Package walker lists the text files of a local repository checkout.
package walker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize caps the files listed when the config sets no limit.
const DefaultMaxFileSize int64 = 1 << 20

// sniffLen is how much of a file is searched for NUL bytes.
const sniffLen = 512

// FileInfo describes one listed file.
type FileInfo struct {
	Path     string // absolute path on disk
	RelPath  string // slash-separated, relative to the root
	Size     int64
	Language string
}

// WalkerConfig controls Walk.
type WalkerConfig struct {
	RootDir     string
	Include     []string // globs; when set only matching files are listed
	Exclude     []string // globs; matching files are dropped
	MaxFileSize int64    // 0 means DefaultMaxFileSize
}

// Walk lists the text files under config.RootDir in lexical order. It
// skips binary and oversized files, well-known dependency and VCS
// directories, and whatever the root .gitignore names.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	f, err := newFilter(root, config.Include, config.Exclude)
	if err != nil {
		return nil, err
	}
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		// Unreadable entries are left out rather than failing the listing.
		if walkErr != nil || p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if f.skipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !f.keepFile(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize || isBinary(p) {
			return nil
		}
		files = append(files, FileInfo{
			Path:     p,
			RelPath:  rel,
			Size:     info.Size(),
			Language: DetectLanguage(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return files, nil
}

// isBinary reports whether the head of the file holds a NUL byte.
// Unreadable files count as binary.
func isBinary(file string) bool {
	fh, err := os.Open(file)
	if err != nil {
		return true
	}
	defer fh.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(fh, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
