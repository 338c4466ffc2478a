package testgen

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// GenerateCBZ writes a comic archive with real page images to dir/filename
// and returns its path. Missing parent directories are created.
func GenerateCBZ(t *testing.T, dir, filename string, opts CBZOptions) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for CBZ: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create CBZ file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	format := opts.ImageFormat
	if format == "" {
		format = "png"
	}
	ext := format
	if format == "jpeg" {
		ext = "jpg"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 150
	}

	names := opts.PageNames
	if names == nil {
		count := opts.PageCount
		if count <= 0 {
			count = 3
		}
		for i := 0; i < count; i++ {
			names = append(names, fmt.Sprintf("%03d.%s", i+1, ext))
		}
	}

	for _, name := range names {
		if err := writeZipFile(zw, name, GenerateImage(t, format, width, height)); err != nil {
			t.Fatalf("failed to write page %s: %v", name, err)
		}
	}

	extras := make([]string, 0, len(opts.Extra))
	for name := range opts.Extra {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		if err := writeZipFile(zw, name, opts.Extra[name]); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close CBZ: %v", err)
	}

	return path
}
