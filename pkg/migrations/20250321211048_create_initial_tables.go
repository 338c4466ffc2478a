package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('comics', 'books')),
				scanned_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE library_sources (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) ON DELETE CASCADE NOT NULL,
				path TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_library_sources_library_id_path ON library_sources (library_id, path)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE contents (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) ON DELETE CASCADE NOT NULL,
				parent_id TEXT REFERENCES contents (id),
				uri_part TEXT NOT NULL,
				uri TEXT NOT NULL,
				title TEXT NOT NULL,
				sort_title TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('comic', 'comic_series', 'book', 'book_series')),
				valid BOOLEAN NOT NULL DEFAULT TRUE,
				file_uri TEXT,
				file_mtime TIMESTAMPTZ,
				file_size INTEGER,
				cover_uri TEXT,
				order_index INTEGER NOT NULL DEFAULT 0,
				order_parts TEXT NOT NULL DEFAULT '[]',
				meta TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Siblings are identified by uri_part. Root rows have no parent, and
		// NULLs never collide in a plain unique index.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_contents_library_id_parent_id_uri_part ON contents (library_id, COALESCE(parent_id, ''), uri_part)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_contents_parent_id ON contents (parent_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_contents_library_id_type ON contents (library_id, type)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_contents_file_uri ON contents (file_uri)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS contents")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS library_sources")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS libraries")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
