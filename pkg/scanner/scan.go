package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/metrics"
	"github.com/voltisapp/voltis/pkg/models"
	"golang.org/x/sync/errgroup"
)

type scanTask struct {
	file     LibraryFile
	existing *models.Content
	updated  bool
}

// Scan synchronizes the library's catalog with its sources. Only one scan may
// run per library at a time; scans of different libraries are independent.
//
// Each file is committed on its own, so a failed run leaves the files it
// already committed in place and the next run picks up the rest. The first
// failure cancels the files still in flight, which are not committed either.
// Series of committed files are still re-ordered and refreshed, but nothing is
// deleted and scanned_at is left alone.
func (e *Engine) Scan(ctx context.Context, library *models.Library, opts ScanOptions) (*ScanResult, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"library_id": library.ID, "library_type": library.Type})
	ctx = log.WithContext(ctx)

	if _, busy := e.running.LoadOrStore(library.ID, struct{}{}); busy {
		return nil, ErrScanRunning
	}
	defer e.running.Delete(library.ID)

	start := time.Now()
	metrics.ScansInFlight.Inc()
	defer metrics.ScansInFlight.Dec()

	result, err := e.scan(ctx, library, opts)

	status := metrics.ScanStatusSuccess
	switch {
	case err != nil:
		status = metrics.ScanStatusError
	case opts.DryRun:
		status = metrics.ScanStatusDryRun
	}
	metrics.ScanRunsTotal.WithLabelValues(library.Type, status).Inc()
	metrics.ScanDuration.WithLabelValues(library.Type).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Err(err).Error("scan failed")
		return nil, err
	}

	if !opts.DryRun {
		for category, n := range map[string]int{
			"added":     len(result.Added),
			"updated":   len(result.Updated),
			"removed":   len(result.Removed),
			"unchanged": len(result.Unchanged),
		} {
			metrics.ScanFilesTotal.WithLabelValues(library.Type, category).Add(float64(n))
		}
	}

	log.Info("finished scan", logger.Data{
		"dry_run":   opts.DryRun,
		"added":     len(result.Added),
		"updated":   len(result.Updated),
		"removed":   len(result.Removed),
		"unchanged": len(result.Unchanged),
		"duration":  time.Since(start).String(),
	})
	return result, nil
}

func (e *Engine) scan(ctx context.Context, library *models.Library, opts ScanOptions) (*ScanResult, error) {
	log := logger.FromContext(ctx)

	plugin, err := e.PluginFor(library)
	if err != nil {
		return nil, err
	}

	// Step 1: both inventories, then the diff.
	var inventory []LibraryFile
	var catalog *CatalogInventory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = e.SourceInventory(gctx, library, plugin)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = e.LoadCatalog(gctx, library)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	diff := ComputeDiff(inventory, catalog.Leaves, DiffOptions{Force: opts.Force, FilterPaths: opts.FilterPaths})
	log.Info("computed scan diff", logger.Data{
		"on_disk":   len(inventory),
		"added":     len(diff.Added),
		"updated":   len(diff.Updated),
		"removed":   len(diff.Removed),
		"unchanged": len(diff.Unchanged),
	})

	if opts.DryRun {
		return resultFromDiff(diff), nil
	}

	sc := newScanContext(library, e.contentService, inventory, catalog, diff.Removed)

	// Step 2: scan and commit every new or changed file.
	tasks := make([]scanTask, 0, len(diff.Added)+len(diff.Updated))
	for _, f := range diff.Added {
		tasks = append(tasks, scanTask{file: f})
	}
	for _, entry := range diff.Updated {
		tasks = append(tasks, scanTask{file: entry.File, existing: entry.Content, updated: true})
	}
	sort.Slice(tasks, func(i, j int) bool {
		return claimOrderLess(tasks[i].file.URI, tasks[j].file.URI)
	})
	order := make([]string, 0, len(tasks))
	for _, task := range tasks {
		order = append(order, task.file.URI)
	}
	sc.sequence(order)

	var mu sync.Mutex
	committed := map[string]bool{}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.fileConcurrency)
	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer sc.settle(task.file.URI)
			ok, err := e.scanFile(gctx, sc, plugin, task)
			if err != nil {
				return errors.Wrapf(err, "failed to scan %s", task.file.URI)
			}
			if ok {
				mu.Lock()
				committed[task.file.URI] = true
				mu.Unlock()
			}
			return nil
		})
	}
	scanErr := g.Wait()

	// Step 3: parents of removed rows need their order closed up as well.
	if scanErr == nil {
		for _, entry := range sc.pendingRemovals() {
			sc.touch(entry.Content.ParentID)
		}
	}
	parents := sc.touchedParents()

	// Step 4: re-order the children of every touched parent.
	childrenByParent := make(map[string][]*models.Content, len(parents))
	for _, parentID := range parents {
		children, err := e.reorderChildren(ctx, sc, parentID, scanErr == nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reorder children")
		}
		childrenByParent[parentID] = children
	}

	// Step 5: let the plugin refresh series-level state.
	if err := e.scanSeries(ctx, sc, plugin, parents, childrenByParent); err != nil {
		return nil, err
	}

	if scanErr != nil {
		return nil, scanErr
	}

	// Step 6: delete rows whose files are gone and nobody reclaimed.
	removed := sc.pendingRemovals()
	ids := make([]string, 0, len(removed))
	for _, entry := range removed {
		ids = append(ids, entry.Content.ID)
	}
	if err := e.contentService.DeleteContents(ctx, ids); err != nil {
		return nil, errors.Wrap(err, "failed to delete removed contents")
	}
	for _, id := range ids {
		e.invalidateCache(ctx, id)
	}

	// Step 7: drop groups left without children.
	emptyGroups, err := e.contentService.DeleteEmptyGroups(ctx, library.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete empty groups")
	}
	if len(emptyGroups) > 0 {
		log.Info("deleted empty groups", logger.Data{"count": len(emptyGroups)})
	}
	for _, id := range emptyGroups {
		e.invalidateCache(ctx, id)
	}

	// Step 8
	if err := e.libraryService.MarkLibraryScanned(ctx, library, time.Now()); err != nil {
		return nil, errors.WithStack(err)
	}

	result := &ScanResult{
		Added:     []LibraryFile{},
		Updated:   []LibraryFile{},
		Removed:   make([]RemovedFile, 0, len(removed)),
		Unchanged: entryFiles(diff.Unchanged),
	}
	for _, f := range diff.Added {
		if committed[f.URI] {
			result.Added = append(result.Added, f)
		}
	}
	for _, entry := range diff.Updated {
		if committed[entry.File.URI] {
			result.Updated = append(result.Updated, entry.File)
		}
	}
	for _, entry := range removed {
		result.Removed = append(result.Removed, RemovedFile{File: entry.File, Content: entry.Content})
	}
	return result, nil
}

// scanFile runs the plugin for one file and commits the row it returns. It
// reports whether a row was committed.
func (e *Engine) scanFile(ctx context.Context, sc *ScanContext, plugin Plugin, task scanTask) (bool, error) {
	var oldParentID *string
	if task.existing != nil && task.existing.ParentID != nil {
		id := *task.existing.ParentID
		oldParentID = &id
	}

	content, err := plugin.ScanFile(ctx, sc, task.file, task.existing)
	if err != nil {
		return false, err
	}
	if content == nil {
		return false, nil
	}

	uri := task.file.URI
	mtime := task.file.ModTime
	size := task.file.Size
	content.LibraryID = sc.Library.ID
	content.FileURI = &uri
	content.FileMtime = &mtime
	content.FileSize = &size

	if _, err := e.contentService.UpsertContent(ctx, content); err != nil {
		return false, errors.WithStack(err)
	}

	sc.touch(content.ParentID)
	sc.touch(oldParentID)
	return true, nil
}

func (e *Engine) scanSeries(ctx context.Context, sc *ScanContext, plugin Plugin, parents []string, childrenByParent map[string][]*models.Content) error {
	seriesScanner, ok := plugin.(SeriesScanner)
	if !ok {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fileConcurrency)
	for _, parentID := range parents {
		children := childrenByParent[parentID]
		if len(children) == 0 {
			continue
		}
		g.Go(func() error {
			group, err := e.contentService.RetrieveContent(gctx, contents.RetrieveContentOptions{ID: &parentID})
			if err != nil {
				return errors.Wrapf(err, "failed to load group %s", parentID)
			}
			if err := seriesScanner.ScanSeries(gctx, sc, group, children); err != nil {
				return errors.Wrapf(err, "failed to scan group %s", parentID)
			}
			if _, err := e.contentService.UpsertContent(gctx, group); err != nil {
				return errors.Wrapf(err, "failed to save group %s", parentID)
			}
			return nil
		})
	}
	return errors.WithStack(g.Wait())
}

func (e *Engine) invalidateCache(ctx context.Context, contentID string) {
	if e.covers == nil {
		return
	}
	if err := e.covers.Invalidate(contentID); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate cached artifacts", logger.Data{"content_id": contentID, "error": err.Error()})
	}
}

func resultFromDiff(diff *Diff) *ScanResult {
	result := &ScanResult{
		Added:     diff.Added,
		Updated:   entryFiles(diff.Updated),
		Removed:   make([]RemovedFile, 0, len(diff.Removed)),
		Unchanged: entryFiles(diff.Unchanged),
	}
	for _, entry := range diff.Removed {
		result.Removed = append(result.Removed, RemovedFile{File: entry.File, Content: entry.Content})
	}
	return result
}
