// Package archive validates and extracts uploaded zip archives into an
// isolated per-upload working directory. The raw archive bytes and the
// expanded tree are kept apart: hashes are computed from the raw entry
// bytes, tree walking happens on the expanded copy.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
)

// ErrInvalidArchive is returned when the input is empty or not a valid zip
var ErrInvalidArchive = errors.New("invalid zip archive")

// ErrPathTraversal is returned when an entry would escape the target dir
var ErrPathTraversal = errors.New("archive entry escapes extraction directory")

// Upload is one extracted archive with its working directory. Close removes
// the whole directory; callers must defer it.
type Upload struct {
	ID       string
	Dir      string
	RawPath  string // exact uploaded bytes
	TreePath string // expanded content

	// Timestamps maps posix-relative entry paths to unix UTC seconds
	// taken from the zip entry metadata.
	Timestamps map[string]int64

	reader  *zip.Reader
	data    []byte
	entries map[string]*zip.File
}

// Extract validates an archive byte stream and expands it. The caller owns
// the returned Upload and must Close it.
func Extract(data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidArchive)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if len(reader.File) == 0 {
		return nil, fmt.Errorf("%w: archive has no entries", ErrInvalidArchive)
	}

	id := uuid.NewString()
	dir, err := os.MkdirTemp("", "folioscan-"+id)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	upload := &Upload{
		ID:         id,
		Dir:        dir,
		RawPath:    filepath.Join(dir, "raw", "upload.zip"),
		TreePath:   filepath.Join(dir, "tree"),
		Timestamps: make(map[string]int64),
		reader:     reader,
		data:       data,
		entries:    make(map[string]*zip.File),
	}

	if err := upload.extract(); err != nil {
		upload.Close()
		return nil, err
	}

	slog.Debug("Extracted archive", "upload_id", id, "entries", len(reader.File), "dir", dir)
	return upload, nil
}

func (u *Upload) extract() error {
	if err := os.MkdirAll(filepath.Dir(u.RawPath), 0755); err != nil {
		return fmt.Errorf("failed to create raw directory: %w", err)
	}
	if err := os.WriteFile(u.RawPath, u.data, 0644); err != nil {
		return fmt.Errorf("failed to store raw archive: %w", err)
	}
	if err := os.MkdirAll(u.TreePath, 0755); err != nil {
		return fmt.Errorf("failed to create tree directory: %w", err)
	}

	start := time.Now()
	for _, entry := range u.reader.File {
		rel, err := sanitizeEntryName(entry.Name)
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}

		target := filepath.Join(u.TreePath, filepath.FromSlash(rel))

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", rel, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create parent of %s: %w", rel, err)
		}
		if err := writeEntry(entry, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", rel, err)
		}

		u.Timestamps[rel] = entry.Modified.UTC().Unix()
		u.entries[rel] = entry
	}

	slog.Debug("Expanded archive tree", "entries", len(u.reader.File), "duration", time.Since(start))
	return nil
}

// sanitizeEntryName normalizes a zip entry name to a posix-relative path
// inside the tree, or fails on traversal attempts. Returns "" for entries
// that carry no content path (e.g. bare "/" or ".").
func sanitizeEntryName(name string) (string, error) {
	// Some archivers emit backslash separators
	rel := strings.ReplaceAll(name, `\`, "/")

	if path.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}

	rel = path.Clean(rel)
	if rel == "." || rel == "" {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}

	return rel, nil
}

func writeEntry(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// ReadEntry returns the raw archive bytes for a posix-relative path. Files
// are hashed from these bytes rather than the extracted copy, so the hash
// matches the upload exactly. Returns os.ErrNotExist for unknown paths.
func (u *Upload) ReadEntry(rel string) ([]byte, error) {
	entry, ok := u.entries[rel]
	if !ok {
		return nil, os.ErrNotExist
	}
	src, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// Close removes the upload working directory. Safe to call more than once.
func (u *Upload) Close() error {
	if u.Dir == "" {
		return nil
	}
	err := os.RemoveAll(u.Dir)
	u.Dir = ""
	return err
}
