package contents

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/models"
)

type RetrieveContentOptions struct {
	ID        *string
	LibraryID *int
	// ParentID and Root are mutually exclusive. Root matches rows without a
	// parent.
	ParentID *string
	Root     bool
	URIPart  *string
	Types    []string
}

type ListContentsOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int
	ParentID  *string
	Root      bool
	Types     []string
	Valid     *bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveContent(ctx context.Context, opts RetrieveContentOptions) (*models.Content, error) {
	content := &models.Content{}

	q := svc.db.
		NewSelect().
		Model(content)

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.LibraryID != nil {
		q = q.Where("c.library_id = ?", *opts.LibraryID)
	}
	if opts.ParentID != nil {
		q = q.Where("c.parent_id = ?", *opts.ParentID)
	} else if opts.Root {
		q = q.Where("c.parent_id IS NULL")
	}
	if opts.URIPart != nil {
		q = q.Where("c.uri_part = ?", *opts.URIPart)
	}
	if len(opts.Types) > 0 {
		q = q.Where("c.type IN (?)", bun.In(opts.Types))
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Content")
		}
		return nil, errors.WithStack(err)
	}

	return content, nil
}

func (svc *Service) ListContents(ctx context.Context, opts ListContentsOptions) ([]*models.Content, error) {
	c, _, err := svc.listContentsWithTotal(ctx, opts)
	return c, errors.WithStack(err)
}

func (svc *Service) ListContentsWithTotal(ctx context.Context, opts ListContentsOptions) ([]*models.Content, int, error) {
	opts.includeTotal = true
	return svc.listContentsWithTotal(ctx, opts)
}

func (svc *Service) listContentsWithTotal(ctx context.Context, opts ListContentsOptions) ([]*models.Content, int, error) {
	contents := []*models.Content{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&contents).
		Order("c.order_index ASC", "c.sort_title ASC", "c.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.LibraryID != nil {
		q = q.Where("c.library_id = ?", *opts.LibraryID)
	}
	if opts.ParentID != nil {
		q = q.Where("c.parent_id = ?", *opts.ParentID)
	} else if opts.Root {
		q = q.Where("c.parent_id IS NULL")
	}
	if len(opts.Types) > 0 {
		q = q.Where("c.type IN (?)", bun.In(opts.Types))
	}
	if opts.Valid != nil {
		q = q.Where("c.valid = ?", *opts.Valid)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return contents, total, nil
}

// UpsertContent inserts the row if its id is unknown. Otherwise only the
// columns that differ from the stored row are written. It reports whether
// anything was written; an unchanged row keeps its updated_at.
func (svc *Service) UpsertContent(ctx context.Context, content *models.Content) (bool, error) {
	if content.ID == "" {
		return false, errors.New("content id is required")
	}

	changed := false
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := &models.Content{}
		err := tx.
			NewSelect().
			Model(existing).
			Where("c.id = ?", content.ID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now()
			if content.CreatedAt.IsZero() {
				content.CreatedAt = now
			}
			content.UpdatedAt = content.CreatedAt
			_, err := tx.
				NewInsert().
				Model(content).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			changed = true
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}

		content.CreatedAt = existing.CreatedAt
		columns := content.ChangedColumns(existing)
		if len(columns) == 0 {
			content.UpdatedAt = existing.UpdatedAt
			return nil
		}

		content.UpdatedAt = time.Now()
		_, err = tx.
			NewUpdate().
			Model(content).
			Column(append(columns, "updated_at")...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, errors.WithStack(err)
	}

	return changed, nil
}

// UpdateContentOrders persists the order column of the given rows in a single
// statement. The rows must already exist.
func (svc *Service) UpdateContentOrders(ctx context.Context, contents []*models.Content) error {
	if len(contents) == 0 {
		return nil
	}

	now := time.Now()
	for _, content := range contents {
		content.UpdatedAt = now
	}

	_, err := svc.db.
		NewInsert().
		Model(&contents).
		On("CONFLICT (id) DO UPDATE").
		Set("order_index = EXCLUDED.order_index").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) DeleteContents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := svc.db.
		NewDelete().
		Model((*models.Content)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteEmptyGroups removes every grouping row of the library that no longer
// has a child and returns the ids it removed.
func (svc *Service) DeleteEmptyGroups(ctx context.Context, libraryID int) ([]string, error) {
	ids := []string{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.
			NewSelect().
			Model((*models.Content)(nil)).
			Column("c.id").
			Where("c.library_id = ?", libraryID).
			Where("c.type IN (?)", bun.In(models.GroupContentTypes)).
			Where("NOT EXISTS (SELECT 1 FROM contents AS child WHERE child.parent_id = c.id)").
			Scan(ctx, &ids)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(ids) == 0 {
			return nil
		}

		_, err = tx.
			NewDelete().
			Model((*models.Content)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ids, nil
}
