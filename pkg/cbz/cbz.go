package cbz

import (
	"archive/zip"
	"image"
	_ "image/gif"  // register decoder for DecodeConfig
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"path"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/sortname"
	_ "golang.org/x/image/webp" // register decoder for DecodeConfig
)

// ImageExtensions are the archive entries that count as pages.
var ImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// IsImage reports whether an archive entry name looks like a page image.
func IsImage(name string) bool {
	_, ok := ImageExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// ListPages opens the archive at p and returns its pages in natural order
// with their pixel dimensions. Entries whose dimensions can't be read are
// left out. An unreadable archive is an error; an archive without usable
// pages returns an empty slice.
func ListPages(p string) ([]models.ComicPage, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer zr.Close()

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !IsImage(f.Name) {
			continue
		}
		files = append(files, f)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return sortname.NaturalLess(files[i].Name, files[j].Name)
	})

	pages := make([]models.ComicPage, 0, len(files))
	for _, f := range files {
		page, err := probePage(f)
		if err != nil {
			continue
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func probePage(f *zip.File) (models.ComicPage, error) {
	r, err := f.Open()
	if err != nil {
		return models.ComicPage{}, errors.WithStack(err)
	}
	cfg, _, err := image.DecodeConfig(r)
	r.Close()
	if err != nil {
		return models.ComicPage{}, errors.WithStack(err)
	}

	page := models.ComicPage{
		Name:   f.Name,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	// The header is enough for sniffing, so a second short read is cheap.
	r, err = f.Open()
	if err == nil {
		if mt, err := mimetype.DetectReader(r); err == nil {
			page.MimeType = mt.String()
		}
		r.Close()
	}

	return page, nil
}
