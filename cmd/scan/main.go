package main

import (
	"fmt"
	"os"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/covercache"
	"github.com/voltisapp/voltis/pkg/database"
	"github.com/voltisapp/voltis/pkg/epub"
	"github.com/voltisapp/voltis/pkg/libraries"
	"github.com/voltisapp/voltis/pkg/migrations"
	"github.com/voltisapp/voltis/pkg/scanner"
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
		Name:  "scan",
		Usage: "synchronize libraries with their source folders",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{Name: "library", Aliases: []string{"l"}, Usage: "id of a library to scan; repeat for several, omit for all"},
			&cli.BoolFlag{Name: "dry-run", Usage: "only report what would change"},
			&cli.BoolFlag{Name: "force", Usage: "rescan files even if they look unchanged"},
			&cli.StringSliceFlag{Name: "path", Usage: "only scan files under this path prefix; repeat for several"},
			&cli.BoolFlag{Name: "json", Usage: "print the summaries as JSON"},
		},
		Action: func(c *cli.Context) error {
			ctx := log.WithContext(c.Context)

			if _, err := migrations.BringUpToDate(ctx, db); err != nil {
				return err
			}

			libs, err := libraries.NewService(db).ListLibraries(ctx, libraries.ListLibrariesOptions{IDs: c.IntSlice("library")})
			if err != nil {
				return err
			}
			if len(libs) == 0 {
				return cli.Exit("no libraries to scan", 1)
			}

			engine := scanner.NewEngine(db, cfg, covercache.New(cfg.CacheDir), epub.NewReader())
			opts := scanner.ScanOptions{
				DryRun:      c.Bool("dry-run"),
				Force:       c.Bool("force"),
				FilterPaths: c.StringSlice("path"),
			}

			failed := 0
			for _, library := range libs {
				result, err := engine.Scan(ctx, library, opts)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: scan failed: %v\n", library.Name, err)
					failed++
					continue
				}
				if err := printSummary(library.Name, result.Summary(), c.Bool("json")); err != nil {
					return err
				}
			}

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d libraries failed to scan", failed, len(libs)), 1)
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func printSummary(name string, summary *scanner.Summary, asJSON bool) error {
	if asJSON {
		b, err := json.Marshal(map[string]interface{}{"library": name, "summary": summary})
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Printf("%s\n", name)
	for _, category := range []struct {
		label   string
		summary scanner.CategorySummary
	}{
		{"added", summary.Added},
		{"updated", summary.Updated},
		{"removed", summary.Removed},
		{"unchanged", summary.Unchanged},
	} {
		fmt.Printf("  %-9s %d\n", category.label, category.summary.Count)
		if category.label == "unchanged" {
			continue
		}
		for _, uri := range category.summary.Samples {
			fmt.Printf("    %s\n", uri)
		}
		if more := category.summary.Count - len(category.summary.Samples); more > 0 {
			fmt.Printf("    ... and %d more\n", more)
		}
	}
	return nil
}
