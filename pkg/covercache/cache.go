package covercache

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/models"
)

// maxImageSize is the maximum size for a single page image (100 MB).
// This prevents decompression bombs from consuming excessive memory.
const maxImageSize = 100 * 1024 * 1024

// Cache manages artifacts derived from a content row and stored on disk
// under its id: the resized cover and extracted comic pages.
type Cache struct {
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) coverPath(contentID string) string {
	return filepath.Join(c.dir, "covers", contentID+".jpg")
}

func (c *Cache) pageDir(contentID string) string {
	return filepath.Join(c.dir, "pages", contentID)
}

// Invalidate removes everything cached for the content. Missing artifacts are
// not an error.
func (c *Cache) Invalidate(contentID string) error {
	if contentID == "" {
		return nil
	}
	if err := os.Remove(c.coverPath(contentID)); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	if err := os.RemoveAll(c.pageDir(contentID)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Page returns the path to an extracted comic page, pulling it out of the
// archive the first time it's requested. pageNum is 0-indexed and follows the
// page list stored on the content.
func (c *Cache) Page(content *models.Content, pageNum int) (cachedPath string, mimeType string, err error) {
	if content.FileURI == nil || content.Meta == nil || content.Meta.Comic == nil {
		return "", "", errors.Errorf("content %s has no pages", content.ID)
	}
	pages := content.Meta.Comic.Pages
	if pageNum < 0 || pageNum >= len(pages) {
		return "", "", errors.Errorf("page %d out of range (0-%d)", pageNum, len(pages)-1)
	}
	page := pages[pageNum]

	ext := strings.ToLower(path.Ext(page.Name))
	cachedPath = filepath.Join(c.pageDir(content.ID), fmt.Sprintf("page_%d%s", pageNum, ext))
	if _, err := os.Stat(cachedPath); err == nil {
		return cachedPath, pageMimeType(page, cachedPath), nil
	}

	if err := c.extractPage(*content.FileURI, page.Name, cachedPath); err != nil {
		return "", "", err
	}
	return cachedPath, pageMimeType(page, cachedPath), nil
}

func (c *Cache) extractPage(archivePath, name, cachedPath string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer zr.Close()

	var target *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			target = f
			break
		}
	}
	if target == nil {
		return errors.Errorf("page %s not found in %s", name, archivePath)
	}

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0755); err != nil {
		return errors.WithStack(err)
	}

	r, err := target.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	// Write to a temp file first so a concurrent reader never sees a partial page.
	tmp, err := os.CreateTemp(filepath.Dir(cachedPath), ".page-*")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = io.Copy(tmp, io.LimitReader(r, maxImageSize))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return errors.WithStack(err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		os.Remove(tmp.Name())
		return errors.WithStack(err)
	}
	return nil
}

func pageMimeType(page models.ComicPage, cachedPath string) string {
	if page.MimeType != "" {
		return page.MimeType
	}
	mt, err := mimetype.DetectFile(cachedPath)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
