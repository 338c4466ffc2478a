package scanner

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/models"
)

// CompareOrderParts compares two rank vectors position by position. A
// missing position ranks below any value, so [1] sorts before [1, 0].
func CompareOrderParts(a, b models.OrderParts) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		x, y := math.Inf(-1), math.Inf(-1)
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// SortSiblings sorts rows by order parts. Ties fall back to uri_part and
// then id so the result never depends on input order.
func SortSiblings(rows []*models.Content) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := CompareOrderParts(rows[i].OrderParts, rows[j].OrderParts); c != 0 {
			return c < 0
		}
		if rows[i].URIPart != rows[j].URIPart {
			return rows[i].URIPart < rows[j].URIPart
		}
		return rows[i].ID < rows[j].ID
	})
}

// AssignOrder sorts rows and numbers them from 0. It returns the rows whose
// order changed.
func AssignOrder(rows []*models.Content) []*models.Content {
	SortSiblings(rows)
	changed := []*models.Content{}
	for i, row := range rows {
		if row.Order != i {
			row.Order = i
			changed = append(changed, row)
		}
	}
	return changed
}

// reorderChildren recomputes the order of a parent's children and returns
// them sorted. With skipRemovals, rows that are about to be deleted are left
// out so the survivors stay contiguous.
func (e *Engine) reorderChildren(ctx context.Context, sc *ScanContext, parentID string, skipRemovals bool) ([]*models.Content, error) {
	children, err := e.contentService.ListContents(ctx, contents.ListContentsOptions{
		LibraryID: &sc.Library.ID,
		ParentID:  &parentID,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	surviving := make([]*models.Content, 0, len(children))
	for _, child := range children {
		if skipRemovals && sc.isPendingRemoval(child.ID) {
			continue
		}
		surviving = append(surviving, child)
	}

	changed := AssignOrder(surviving)
	if err := e.contentService.UpdateContentOrders(ctx, changed); err != nil {
		return nil, errors.WithStack(err)
	}
	return surviving, nil
}
