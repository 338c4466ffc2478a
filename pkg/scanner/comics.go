package scanner

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/cbz"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/sortname"
)

var (
	comicExtensions = map[string]struct{}{".cbz": {}, ".zip": {}}
	// SeriesCoverNames are looked up, in order, in a series folder.
	SeriesCoverNames = []string{"cover.jpg", "cover.jpeg", "cover.png"}

	volumeRE   = regexp.MustCompile(`(?i)(?:#|(?:v|vo|vol|volu|volum|volume)\.?)\s*(\d+(?:\.\d+)?)`)
	chapterRE  = regexp.MustCompile(`(?i)(?:c|ch|cha|chap|chapt|chapte|chapter)\.?\s*(\d+(?:\.\d+)?)`)
	numberRE   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	yearRE     = regexp.MustCompile(`\((\d+)\)`)
	trailingRE = regexp.MustCompile(`\s*[\[\(][^\[\]\(\)]*[\]\)]\s*$`)
)

// ComicScanner handles libraries laid out as one folder per series holding
// one archive per volume or chapter:
//
//	Library Root
//	├── Series Name (2020)
//	│   ├── Series Name #01.cbz
//	│   └── Series Name #02.cbz
//	└── Series Name 2
//	    ├── Series Name 2 v01 ch01.cbz
//	    └── Series Name 2 v01 ch02.cbz
type ComicScanner struct{}

func NewComicScanner() *ComicScanner {
	return &ComicScanner{}
}

func (*ComicScanner) CheckFileEligible(file LibraryFile) bool {
	_, ok := comicExtensions[strings.ToLower(path.Ext(file.URI))]
	return ok
}

func (*ComicScanner) ScanFile(ctx context.Context, sc *ScanContext, file LibraryFile, existing *models.Content) (*models.Content, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": file.URI})

	folder := path.Dir(file.URI)
	name, year := ParseSeriesName(path.Base(folder))
	seriesPart := SeriesURIPart(name, year)

	canonical, ok := sc.CanonicalFolders(seriesIdentity)[seriesPart]
	if !ok {
		canonical = folder
	}
	series, err := sc.FindOrCreateGroup(ctx, GroupSpec{
		Type:      models.ContentTypeComicSeries,
		URIPart:   seriesPart,
		URI:       "comic/" + seriesPart,
		Title:     name,
		SortTitle: sortname.ForTitle(name),
		FileURI:   &canonical,
	})
	if errors.Is(err, ErrIdentityTaken) {
		log.Warn("series identity is taken, skipping file", logger.Data{"series": seriesPart})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(path.Base(file.URI), path.Ext(file.URI))
	issue := ParseIssueNumber(stem)
	uriPart := issue.URIPart()

	content := sc.ResolveLeaf(ctx, existing, LeafKey{ParentID: series.ID, URIPart: uriPart}, file)
	if content == nil {
		return nil, nil
	}

	title := issue.Title()
	if title == "" {
		title = stem
	}

	seriesID := series.ID
	content.Type = models.ContentTypeComic
	content.ParentID = &seriesID
	content.URIPart = uriPart
	content.URI = series.URI + "/" + uriPart
	content.Title = title
	content.SortTitle = title
	content.Valid = true
	content.OrderParts = issue.OrderParts()

	scanComicBody(ctx, content, file.URI)

	return content, nil
}

// scanComicBody fills in the page list and cover. Unreadable archives and
// archives without pages are kept but flagged invalid.
func scanComicBody(ctx context.Context, content *models.Content, uri string) {
	pages, err := cbz.ListPages(filepath.FromSlash(uri))
	if err != nil || len(pages) == 0 {
		data := logger.Data{"path": uri}
		if err != nil {
			data["error"] = err.Error()
		}
		logger.FromContext(ctx).Warn("comic has no readable pages", data)
		content.Valid = false
		content.CoverURI = nil
		content.Meta = &models.ContentMeta{Comic: &models.ComicMeta{Pages: []models.ComicPage{}}}
		return
	}

	cover := uri + "/" + pages[0].Name
	content.CoverURI = &cover
	content.Meta = &models.ContentMeta{Comic: &models.ComicMeta{Pages: pages}}
}

// ScanSeries uses a cover image sitting in the series folder, falling back to
// the first child's cover.
func (*ComicScanner) ScanSeries(_ context.Context, _ *ScanContext, group *models.Content, children []*models.Content) error {
	group.CoverURI = nil
	group.FileMtime = nil

	if group.FileURI != nil {
		for _, name := range SeriesCoverNames {
			p := path.Join(*group.FileURI, name)
			info, err := os.Stat(filepath.FromSlash(p))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			mtime := normalizeTime(info.ModTime())
			group.CoverURI = &p
			group.FileMtime = &mtime
			return nil
		}
	}

	if len(children) > 0 {
		group.CoverURI = children[0].CoverURI
		group.FileMtime = children[0].FileMtime
	}
	return nil
}

func seriesIdentity(folder string) string {
	name, year := ParseSeriesName(path.Base(folder))
	return SeriesURIPart(name, year)
}

// SeriesURIPart is "{name}_{year}", or just the name without a year.
func SeriesURIPart(name string, year *int) string {
	if year == nil {
		return name
	}
	return name + "_" + strconv.Itoa(*year)
}

// ParseSeriesName splits a series folder name into the name without its
// trailing tags and the year found in parentheses, if any.
//
//	"My Series (2020) (something else)" -> "My Series", 2020
//	"My Series [tag 1] [tag 2]" -> "My Series", nil
func ParseSeriesName(name string) (string, *int) {
	return CleanSeriesName(name), ParseSeriesYear(name)
}

// ParseSeriesYear returns the last parenthesized number between 1000 and 9999.
func ParseSeriesYear(name string) *int {
	matches := yearRE.FindAllStringSubmatch(name, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		year, err := strconv.Atoi(matches[i][1])
		if err != nil {
			continue
		}
		if year >= 1000 && year <= 9999 {
			return &year
		}
	}
	return nil
}

// CleanSeriesName strips trailing [...] and (...) groups until none are left.
func CleanSeriesName(name string) string {
	for {
		cleaned := trailingRE.ReplaceAllString(name, "")
		if cleaned == name {
			break
		}
		name = cleaned
	}
	return strings.TrimSpace(name)
}

// IssueNumber is the volume and chapter parsed from a comic file name.
type IssueNumber struct {
	Volume  *float64
	Chapter *float64
}

// ParseIssueNumber reads the volume (#01, v01, vol.1, ...) and the chapter
// (c01, ch.01, chapter 1, ...) from a file name stem. When neither is present
// the longest number in the name is taken as the chapter.
func ParseIssueNumber(stem string) IssueNumber {
	issue := IssueNumber{
		Volume:  ParseVolumeNumber(stem),
		Chapter: ParseChapterNumber(stem),
	}
	if issue.Volume == nil && issue.Chapter == nil {
		issue.Chapter = ParseFallbackChapterNumber(stem)
	}
	return issue
}

func ParseVolumeNumber(name string) *float64 {
	return firstNumber(volumeRE, name)
}

func ParseChapterNumber(name string) *float64 {
	return firstNumber(chapterRE, name)
}

func firstNumber(re *regexp.Regexp, name string) *float64 {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseFallbackChapterNumber returns the number with the most digits in the
// name once trailing tags are stripped. The first one wins a tie.
func ParseFallbackChapterNumber(name string) *float64 {
	best := ""
	bestDigits := 0
	for _, m := range numberRE.FindAllString(CleanSeriesName(name), -1) {
		digits := len(strings.ReplaceAll(m, ".", ""))
		if digits > bestDigits {
			best = m
			bestDigits = digits
		}
	}
	if best == "" {
		return nil
	}
	v, err := strconv.ParseFloat(best, 64)
	if err != nil {
		return nil
	}
	return &v
}

// FormatNumber prints a volume or chapter without a trailing ".0".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (n IssueNumber) URIPart() string {
	return "v" + FormatNumber(orZero(n.Volume)) + "_ch" + FormatNumber(orZero(n.Chapter))
}

// Title is "Vol. X", "Ch. Y" or both, and empty when nothing was parsed.
func (n IssueNumber) Title() string {
	parts := []string{}
	if n.Volume != nil {
		parts = append(parts, "Vol. "+FormatNumber(*n.Volume))
	}
	if n.Chapter != nil {
		parts = append(parts, "Ch. "+FormatNumber(*n.Chapter))
	}
	return strings.Join(parts, " ")
}

func (n IssueNumber) OrderParts() models.OrderParts {
	return models.OrderParts{orZero(n.Volume), orZero(n.Chapter)}
}
