package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/database"
	"github.com/voltisapp/voltis/pkg/migrations"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:  "voltis-migrations",
		Usage: "manage the catalog database schema",
		Before: func(c *cli.Context) error {
			c.Context = log.WithContext(c.Context)
			return nil
		},
		Commands: commands(db),
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func commands(db *bun.DB) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "apply every pending migration",
			Action: func(c *cli.Context) error {
				group, err := migrations.BringUpToDate(c.Context, db)
				if err != nil {
					return err
				}
				if group.IsZero() {
					fmt.Println("Schema is up to date")
					return nil
				}
				fmt.Printf("Migrated to %s\n", group)
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "revert the last migration group",
			Action: func(c *cli.Context) error {
				group, err := migrations.Rollback(c.Context, db)
				if err != nil {
					return err
				}
				if group.IsZero() {
					fmt.Println("Nothing to roll back")
					return nil
				}
				fmt.Printf("Rolled back %s\n", group)
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "list applied and pending migrations",
			Action: func(c *cli.Context) error {
				ms, err := migrations.Status(c.Context, db)
				if err != nil {
					return err
				}
				for _, m := range ms {
					state := "pending"
					if m.IsApplied() {
						state = fmt.Sprintf("applied (group %d)", m.GroupID)
					}
					fmt.Printf("%s\t%s\n", m.Name, state)
				}
				return nil
			},
		},
		{
			Name:      "create",
			Usage:     "write an empty Go migration",
			ArgsUsage: "<name words...>",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("a migration name is required")
				}
				mf, err := migrations.Create(c.Context, db, strings.Join(c.Args().Slice(), "_"))
				if err != nil {
					return err
				}
				fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
				return nil
			},
		},
	}
}
