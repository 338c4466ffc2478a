package scanner

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/htmlutil"
	"github.com/voltisapp/voltis/pkg/models"
	"github.com/voltisapp/voltis/pkg/sortname"
)

// BookScanner groups EPUBs by the series declared in their metadata. Books
// without a series have no parent.
type BookScanner struct {
	metadata MetadataReader
}

func NewBookScanner(metadata MetadataReader) *BookScanner {
	return &BookScanner{metadata: metadata}
}

func (*BookScanner) CheckFileEligible(file LibraryFile) bool {
	return strings.EqualFold(path.Ext(file.URI), ".epub")
}

func (s *BookScanner) ScanFile(ctx context.Context, sc *ScanContext, file LibraryFile, existing *models.Content) (*models.Content, error) {
	md := s.metadata.ReadMetadata(ctx, filepath.FromSlash(file.URI))
	stem := strings.TrimSuffix(path.Base(file.URI), path.Ext(file.URI))

	var series *models.Content
	key := LeafKey{URIPart: stem}
	if md.Series != "" {
		var err error
		series, err = sc.FindOrCreateGroup(ctx, GroupSpec{
			Type:      models.ContentTypeBookSeries,
			URIPart:   md.Series,
			URI:       "book/" + md.Series,
			Title:     md.Series,
			SortTitle: sortname.ForTitle(md.Series),
		})
		if errors.Is(err, ErrIdentityTaken) {
			logger.FromContext(ctx).Warn("series identity is taken, skipping file", logger.Data{"path": file.URI, "series": md.Series})
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		key.ParentID = series.ID
	}

	content := sc.ResolveLeaf(ctx, existing, key, file)
	if content == nil {
		return nil, nil
	}

	title := md.Title
	if title == "" {
		title = stem
	}

	content.Type = models.ContentTypeBook
	content.URIPart = stem
	content.Title = title
	content.SortTitle = sortname.ForTitle(title)
	content.Valid = true
	if series != nil {
		seriesID := series.ID
		content.ParentID = &seriesID
		content.URI = series.URI + "/" + stem
	} else {
		content.ParentID = nil
		content.URI = "book/" + stem
	}

	index := 0.0
	if md.SeriesIndex != nil {
		index = *md.SeriesIndex
	}
	content.OrderParts = models.OrderParts{index}

	content.CoverURI = nil
	if md.CoverPath != "" {
		cover := file.URI + "/" + md.CoverPath
		content.CoverURI = &cover
	}

	content.Meta = &models.ContentMeta{Book: &models.BookMeta{
		Authors:         md.Authors,
		Description:     htmlutil.StripTags(md.Description),
		Publisher:       md.Publisher,
		Language:        md.Language,
		PublicationDate: md.PublicationDate,
		SeriesIndex:     md.SeriesIndex,
	}}

	return content, nil
}

// ScanSeries takes the cover of the first book in the series.
func (*BookScanner) ScanSeries(_ context.Context, _ *ScanContext, group *models.Content, children []*models.Content) error {
	group.CoverURI = nil
	group.FileMtime = nil
	if len(children) > 0 {
		group.CoverURI = children[0].CoverURI
		group.FileMtime = children[0].FileMtime
	}
	return nil
}
