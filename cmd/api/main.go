package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/voltisapp/voltis/pkg/config"
	"github.com/voltisapp/voltis/pkg/covercache"
	"github.com/voltisapp/voltis/pkg/database"
	"github.com/voltisapp/voltis/pkg/epub"
	"github.com/voltisapp/voltis/pkg/migrations"
	"github.com/voltisapp/voltis/pkg/scanner"
	"github.com/voltisapp/voltis/pkg/server"
	"github.com/voltisapp/voltis/pkg/version"
	"github.com/voltisapp/voltis/pkg/worker"
)

func main() {
	log := logger.New()
	ctx := log.WithContext(context.Background())

	log.Info("starting voltis", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := initCacheDir(cfg.CacheDir); err != nil {
		log.Err(err).Fatal("cache directory error")
	}
	log.Info("cache directory initialized", logger.Data{"path": cfg.CacheDir})

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		log.Err(err).Fatal("migrations error")
	}

	// The HTTP handlers and the worker share one engine so a library is never
	// scanned twice at once by this process.
	cache := covercache.New(cfg.CacheDir)
	engine := scanner.NewEngine(db, cfg, cache, epub.NewReader())

	wrkr := worker.New(cfg, db, engine)

	srv, err := server.New(cfg, db, engine, cache)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		log.Info("server started", logger.Data{"addr": srv.Addr})
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started", logger.Data{"scan_interval_minutes": cfg.ScanIntervalMinutes})

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// initCacheDir creates the cache directories and verifies write permissions.
func initCacheDir(dir string) error {
	subdirs := []string{
		filepath.Join(dir, "covers"),
		filepath.Join(dir, "pages"),
	}

	for _, subdir := range subdirs {
		if err := os.MkdirAll(subdir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create cache directory: %s", subdir)
		}
	}

	// Verify write permissions by creating and removing a temp file
	testFile := filepath.Join(dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return errors.Wrapf(err, "cache directory is not writable: %s", dir)
	}
	f.Close()

	if err := os.Remove(testFile); err != nil {
		return errors.Wrapf(err, "failed to clean up write test file: %s", testFile)
	}

	return nil
}
