package testgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"testing"
)

// GenerateEPUB writes an EPUB with the metadata in opts to dir/filename and
// returns its path. Missing parent directories are created.
func GenerateEPUB(t *testing.T, dir, filename string, opts EPUBOptions) string {
	t.Helper()

	p := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("failed to create directory for EPUB: %v", err)
	}

	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create EPUB file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	// mimetype must be first and stored
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to create mimetype entry: %v", err)
	}
	if _, err := w.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("failed to write mimetype: %v", err)
	}

	opfDir := opts.OPFDir
	if opfDir == "" {
		opfDir = "OEBPS"
	}
	opfPath := path.Join(opfDir, "content.opf")

	containerXML := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="%s" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`, opfPath)
	if err := writeZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		t.Fatalf("failed to write container.xml: %v", err)
	}

	if opts.HasCover {
		if err := writeZipFile(zw, path.Join(opfDir, "images/cover.png"), GenerateImage(t, "png", 60, 90)); err != nil {
			t.Fatalf("failed to write cover image: %v", err)
		}
	}

	if err := writeZipFile(zw, opfPath, []byte(generateOPF(opts))); err != nil {
		t.Fatalf("failed to write content.opf: %v", err)
	}

	chapter := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title></head>
<body><h1>Chapter 1</h1><p>This is a test chapter.</p></body>
</html>`
	if err := writeZipFile(zw, path.Join(opfDir, "chapter1.xhtml"), []byte(chapter)); err != nil {
		t.Fatalf("failed to write chapter1.xhtml: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close EPUB: %v", err)
	}

	return p
}

func generateOPF(opts EPUBOptions) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package version="3.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
`)

	if opts.Title != "" {
		fmt.Fprintf(&buf, "    <dc:title id=\"title\">%s</dc:title>\n", escapeXML(opts.Title))
	}
	for i, author := range opts.Authors {
		fmt.Fprintf(&buf, "    <dc:creator id=\"creator%d\" opf:role=\"aut\">%s</dc:creator>\n", i, escapeXML(author))
	}
	if opts.Description != "" {
		fmt.Fprintf(&buf, "    <dc:description>%s</dc:description>\n", escapeXML(opts.Description))
	}
	if opts.Publisher != "" {
		fmt.Fprintf(&buf, "    <dc:publisher>%s</dc:publisher>\n", escapeXML(opts.Publisher))
	}
	if opts.Language != "" {
		fmt.Fprintf(&buf, "    <dc:language>%s</dc:language>\n", escapeXML(opts.Language))
	}
	if opts.Date != "" {
		fmt.Fprintf(&buf, "    <dc:date>%s</dc:date>\n", escapeXML(opts.Date))
	}
	buf.WriteString("    <dc:identifier id=\"bookid\">urn:uuid:test-book-id</dc:identifier>\n")

	// calibre entries come first so readers must still prefer the EPUB3 ones
	if opts.CalibreSeries != "" {
		fmt.Fprintf(&buf, "    <meta name=\"calibre:series\" content=\"%s\"/>\n", escapeXML(opts.CalibreSeries))
		if opts.CalibreSeriesIndex != "" {
			fmt.Fprintf(&buf, "    <meta name=\"calibre:series_index\" content=\"%s\"/>\n", escapeXML(opts.CalibreSeriesIndex))
		}
	}
	if opts.Series != "" {
		fmt.Fprintf(&buf, "    <meta property=\"belongs-to-collection\" id=\"series\">%s</meta>\n", escapeXML(opts.Series))
		buf.WriteString("    <meta refines=\"#series\" property=\"collection-type\">series</meta>\n")
		if opts.SeriesIndex != "" {
			fmt.Fprintf(&buf, "    <meta refines=\"#series\" property=\"group-position\">%s</meta>\n", escapeXML(opts.SeriesIndex))
		}
	}

	coverStyle := opts.CoverStyle
	if coverStyle == "" {
		coverStyle = "meta"
	}
	if opts.HasCover && coverStyle == "meta" {
		buf.WriteString("    <meta name=\"cover\" content=\"img-front\"/>\n")
	}

	buf.WriteString("  </metadata>\n  <manifest>\n")
	buf.WriteString("    <item id=\"chapter1\" href=\"chapter1.xhtml\" media-type=\"application/xhtml+xml\"/>\n")
	if opts.HasCover {
		switch coverStyle {
		case "properties":
			buf.WriteString("    <item id=\"img-front\" href=\"images/cover.png\" media-type=\"image/png\" properties=\"cover-image\"/>\n")
		case "id":
			buf.WriteString("    <item id=\"my-cover\" href=\"images/cover.png\" media-type=\"image/png\"/>\n")
		default:
			buf.WriteString("    <item id=\"img-front\" href=\"images/cover.png\" media-type=\"image/png\"/>\n")
		}
	}
	buf.WriteString("  </manifest>\n  <spine>\n    <itemref idref=\"chapter1\"/>\n  </spine>\n</package>")

	return buf.String()
}
