package libraries

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/voltisapp/voltis/pkg/errcodes"
	"github.com/voltisapp/voltis/pkg/models"
)

type RetrieveLibraryOptions struct {
	ID *int
}

type ListLibrariesOptions struct {
	Limit  *int
	Offset *int
	IDs    []int
	Type   *string

	includeTotal bool
}

type UpdateLibraryOptions struct {
	Columns       []string
	UpdateSources bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLibrary(ctx context.Context, library *models.Library) error {
	now := time.Now()
	if library.CreatedAt.IsZero() {
		library.CreatedAt = now
	}
	library.UpdatedAt = library.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(library).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return insertSources(ctx, tx, library, library.CreatedAt)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveLibrary(ctx context.Context, opts RetrieveLibraryOptions) (*models.Library, error) {
	library := &models.Library{}

	q := svc.db.
		NewSelect().
		Model(library).
		Relation("Sources", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ls.path ASC")
		})

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Library")
		}
		return nil, errors.WithStack(err)
	}

	return library, nil
}

func (svc *Service) ListLibraries(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, error) {
	l, _, err := svc.listLibrariesWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	opts.includeTotal = true
	return svc.listLibrariesWithTotal(ctx, opts)
}

func (svc *Service) listLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	libraries := []*models.Library{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&libraries).
		Relation("Sources", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ls.path ASC")
		}).
		Order("l.name ASC", "l.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if len(opts.IDs) > 0 {
		q = q.Where("l.id IN (?)", bun.In(opts.IDs))
	}
	if opts.Type != nil {
		q = q.Where("l.type = ?", *opts.Type)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return libraries, total, nil
}

func (svc *Service) UpdateLibrary(ctx context.Context, library *models.Library, opts UpdateLibraryOptions) error {
	if len(opts.Columns) == 0 && !opts.UpdateSources {
		return nil
	}

	now := time.Now()
	library.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(library).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Library")
		}

		if !opts.UpdateSources {
			return nil
		}

		_, err = tx.
			NewDelete().
			Model((*models.LibrarySource)(nil)).
			Where("library_id = ?", library.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return insertSources(ctx, tx, library, now)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// MarkLibraryScanned stamps the time of the last completed scan.
func (svc *Service) MarkLibraryScanned(ctx context.Context, library *models.Library, at time.Time) error {
	library.ScannedAt = &at
	library.UpdatedAt = at
	_, err := svc.db.
		NewUpdate().
		Model(library).
		Column("scanned_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func insertSources(ctx context.Context, tx bun.Tx, library *models.Library, now time.Time) error {
	if len(library.Sources) == 0 {
		return nil
	}
	for _, source := range library.Sources {
		source.LibraryID = library.ID
		source.Path = filepath.Clean(source.Path)
		source.CreatedAt = now
		source.UpdatedAt = now
	}
	_, err := tx.
		NewInsert().
		Model(&library.Sources).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}
