package epub

import (
	"encoding/xml"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Package struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
			Role string `xml:"role,attr"`
		} `xml:"creator"`
		Description string `xml:"description"`
		Publisher   string `xml:"publisher"`
		Date        string `xml:"date"`
		Language    string `xml:"language"`
		Meta        []struct {
			Text     string `xml:",chardata"`
			ID       string `xml:"id,attr"`
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Item []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

type collection struct {
	name     string
	position string
	kind     string
}

// ParseOPF reads a package document. filename is the OPF's path inside the
// archive; manifest hrefs are resolved against its directory.
func ParseOPF(filename string, r io.Reader) (*Metadata, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &Package{}
	if err := xml.Unmarshal(b, pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	basePath := path.Dir(filename)

	// refines targets ("#id") -> property -> value
	metaProperties := map[string]map[string]string{}
	metaContent := map[string]string{}
	var collections []*collection
	collectionsByID := map[string]*collection{}
	for _, m := range pkg.Metadata.Meta {
		switch {
		case m.Refines != "":
			key := strings.TrimPrefix(m.Refines, "#")
			if _, ok := metaProperties[key]; !ok {
				metaProperties[key] = map[string]string{}
			}
			metaProperties[key][m.Property] = strings.TrimSpace(m.Text)
		case m.Property == "belongs-to-collection":
			c := &collection{name: strings.TrimSpace(m.Text)}
			collections = append(collections, c)
			if m.ID != "" {
				collectionsByID[m.ID] = c
			}
		case m.Name != "":
			metaContent[m.Name] = strings.TrimSpace(m.Content)
		}
	}
	for id, c := range collectionsByID {
		c.position = metaProperties[id]["group-position"]
		c.kind = metaProperties[id]["collection-type"]
	}

	md := &Metadata{
		Description:     strings.TrimSpace(pkg.Metadata.Description),
		Publisher:       strings.TrimSpace(pkg.Metadata.Publisher),
		Language:        strings.TrimSpace(pkg.Metadata.Language),
		PublicationDate: strings.TrimSpace(pkg.Metadata.Date),
	}

	if len(pkg.Metadata.Title) == 1 {
		md.Title = strings.TrimSpace(pkg.Metadata.Title[0].Text)
	} else if len(pkg.Metadata.Title) > 1 {
		md.Title = strings.TrimSpace(pkg.Metadata.Title[0].Text)
		for _, t := range pkg.Metadata.Title {
			if t.ID != "" && metaProperties[t.ID]["title-type"] == "main" {
				md.Title = strings.TrimSpace(t.Text)
				break
			}
		}
	}

	for _, creator := range pkg.Metadata.Creator {
		role := creator.Role
		if role == "" && creator.ID != "" {
			role = metaProperties[creator.ID]["role"]
		}
		name := strings.TrimSpace(creator.Text)
		if name == "" {
			continue
		}
		if role == "" || role == "aut" {
			md.Authors = append(md.Authors, name)
		}
	}

	// EPUB3 collections win over the calibre convention.
	for _, c := range collections {
		if c.name == "" || (c.kind != "" && c.kind != "series") {
			continue
		}
		md.Series = c.name
		md.SeriesIndex = parseIndex(c.position)
		break
	}
	if md.Series == "" && metaContent["calibre:series"] != "" {
		md.Series = metaContent["calibre:series"]
		md.SeriesIndex = parseIndex(metaContent["calibre:series_index"])
	}

	md.CoverPath = coverPath(pkg, metaContent["cover"], basePath)

	return md, nil
}

func coverPath(pkg *Package, coverID, basePath string) string {
	resolve := func(href string) string {
		if basePath == "." || basePath == "" {
			return path.Clean(href)
		}
		return path.Join(basePath, href)
	}

	if coverID != "" {
		for _, item := range pkg.Manifest.Item {
			if item.ID == coverID {
				return resolve(item.Href)
			}
		}
	}
	for _, item := range pkg.Manifest.Item {
		for _, p := range strings.Fields(item.Properties) {
			if p == "cover-image" {
				return resolve(item.Href)
			}
		}
	}
	for _, item := range pkg.Manifest.Item {
		if strings.Contains(strings.ToLower(item.ID), "cover") && strings.HasPrefix(item.MediaType, "image/") {
			return resolve(item.Href)
		}
	}
	return ""
}

func parseIndex(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
