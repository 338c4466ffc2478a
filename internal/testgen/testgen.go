// Package testgen writes comic archives, EPUBs and library trees for scanner
// tests.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// EPUBOptions configures the generated EPUB file.
type EPUBOptions struct {
	Title       string
	Authors     []string
	Description string
	Publisher   string
	Language    string
	Date        string

	// Series is written as an EPUB3 belongs-to-collection entry.
	Series      string
	SeriesIndex string
	// CalibreSeries is written as calibre:series meta entries.
	CalibreSeries      string
	CalibreSeriesIndex string

	// CoverStyle selects how the cover is declared: "meta" (default),
	// "properties" or "id". Empty HasCover means no cover at all.
	HasCover   bool
	CoverStyle string
	// OPFDir is the directory of the package document inside the archive.
	// Defaults to "OEBPS".
	OPFDir string
}

// CBZOptions configures the generated comic archive.
type CBZOptions struct {
	// PageNames overrides the generated "%03d.<ext>" entry names.
	PageNames   []string
	PageCount   int    // defaults to 3
	ImageFormat string // "png", "jpeg" or "gif"; defaults to "png"
	Width       int    // defaults to 100
	Height      int    // defaults to 150
	// Extra entries written verbatim, e.g. broken images or ComicInfo.xml.
	Extra map[string][]byte
}

// CreateSubDir creates a subdirectory within the given parent directory.
// Returns the full path to the created subdirectory.
func CreateSubDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create subdirectory %s: %v", dir, err)
	}
	return dir
}

// WriteFile creates a file with the given content in the specified directory.
// Returns the full path to the created file.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// Touch moves the modification time of path forward so a scan sees it as
// changed.
func Touch(t *testing.T, path string, offset time.Duration) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	mtime := info.ModTime().Add(offset)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to touch %s: %v", path, err)
	}
}

// Move renames a file, creating the destination directory if needed.
func Move(t *testing.T, from, to string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", to, err)
	}
	if err := os.Rename(from, to); err != nil {
		t.Fatalf("failed to move %s to %s: %v", from, to, err)
	}
}

// Remove deletes a file or directory tree.
func Remove(t *testing.T, path string) {
	t.Helper()
	if err := os.RemoveAll(path); err != nil {
		t.Fatalf("failed to remove %s: %v", path, err)
	}
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
