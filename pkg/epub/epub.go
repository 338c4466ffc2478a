package epub

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const containerPath = "META-INF/container.xml"

// Metadata is everything the catalog reads out of an EPUB. Fields that the
// book doesn't declare are left empty.
type Metadata struct {
	Title           string
	Authors         []string
	Series          string
	SeriesIndex     *float64
	CoverPath       string
	Description     string
	Publisher       string
	Language        string
	PublicationDate string
}

type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// Parse opens the EPUB at p and reads its package document.
func Parse(p string) (*Metadata, error) {
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !isZip(mt) {
		return nil, errors.Errorf("not an epub container: %s", mt.String())
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath := ""
	if f, ok := files[containerPath]; ok {
		opfPath, err = rootfilePath(f)
		if err != nil {
			return nil, err
		}
	}
	if _, ok := files[opfPath]; !ok {
		opfPath = ""
		for _, f := range zr.File {
			if strings.EqualFold(path.Ext(f.Name), ".opf") {
				opfPath = f.Name
				break
			}
		}
	}
	if opfPath == "" {
		return nil, errors.New("no opf file found")
	}

	r, err := files[opfPath].Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	md, err := ParseOPF(opfPath, r)
	if err != nil {
		return nil, err
	}
	if md.CoverPath != "" {
		if _, ok := files[md.CoverPath]; !ok {
			md.CoverPath = ""
		}
	}
	return md, nil
}

func rootfilePath(f *zip.File) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WithStack(err)
	}
	c := &container{}
	if err := xml.Unmarshal(b, c); err != nil {
		return "", errors.WithStack(err)
	}
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", nil
}

func isZip(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

// Reader reads embedded metadata on a best-effort basis: parse failures are
// logged and produce empty Metadata instead of an error.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (*Reader) ReadMetadata(ctx context.Context, p string) *Metadata {
	md, err := Parse(p)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to read epub metadata", logger.Data{"path": p, "error": err.Error()})
		return &Metadata{}
	}
	return md
}
