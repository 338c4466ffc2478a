// Package migrations holds the schema of the catalog database. Every file
// registers one migration with Migrations from its init function.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func newMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration. The returned group has a zero ID when nothing ran.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := newMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !group.IsZero() {
		logger.FromContext(ctx).Info("applied migrations", logger.Data{"group": group.String()})
	}
	return group, nil
}

// Rollback reverts the last applied migration group.
func Rollback(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	group, err := newMigrator(db).Rollback(ctx)
	return group, errors.WithStack(err)
}

// Status lists every known migration along with whether it was applied.
func Status(ctx context.Context, db *bun.DB) (migrate.MigrationSlice, error) {
	ms, err := newMigrator(db).MigrationsWithStatus(ctx)
	return ms, errors.WithStack(err)
}

// Create writes an empty Go migration named after the given words.
func Create(ctx context.Context, db *bun.DB, name string) (*migrate.MigrationFile, error) {
	mf, err := newMigrator(db).CreateGoMigration(ctx, name, migrate.WithGoTemplate(template))
	return mf, errors.WithStack(err)
}

const template = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
