package scanner

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/voltisapp/voltis/pkg/contents"
	"github.com/voltisapp/voltis/pkg/models"
)

// ErrIdentityTaken is returned by FindOrCreateGroup when another row already
// holds the group's identity.
var ErrIdentityTaken = errors.New("content identity is already taken")

// LeafKey is the identity of a row among its siblings. An empty ParentID
// means the row has no parent.
type LeafKey struct {
	ParentID string
	URIPart  string
}

func keyOf(c *models.Content) LeafKey {
	key := LeafKey{URIPart: c.URIPart}
	if c.ParentID != nil {
		key.ParentID = *c.ParentID
	}
	return key
}

type groupKey struct {
	typ     string
	uriPart string
}

// GroupSpec describes the grouping row a plugin wants a leaf attached to.
type GroupSpec struct {
	Type      string
	URIPart   string
	URI       string
	Title     string
	SortTitle string
	// FileURI is the folder the group is bound to, if any.
	FileURI *string
}

// ScanContext is the mutable state of a single scan run. It is shared by
// every per-file task of the run and must not outlive it.
type ScanContext struct {
	Library *models.Library

	contentService *contents.Service

	inventory    []LibraryFile
	inventorySet map[string]struct{}

	canonicalOnce sync.Once
	canonical     map[string]string

	mu            sync.Mutex
	groups        map[groupKey]*models.Content
	resolved      map[groupKey]bool
	removals      map[string]CatalogEntry
	removalsByKey map[LeafKey]string
	// claims maps every identity in use during the run to whoever holds it:
	// a file URI for leaves or a "group:" marker for grouping rows.
	claims  map[LeafKey]string
	touched map[string]struct{}

	// turns gives each sequenced file its place in line for claiming a leaf
	// identity. A file waits in ResolveLeaf until every earlier file has
	// claimed or settled.
	turns   map[string]int
	settled []bool
	next    int
	turn    *sync.Cond
}

func newScanContext(library *models.Library, contentService *contents.Service, inventory []LibraryFile, catalog *CatalogInventory, removed []CatalogEntry) *ScanContext {
	sc := &ScanContext{
		Library:        library,
		contentService: contentService,
		inventory:      inventory,
		inventorySet:   make(map[string]struct{}, len(inventory)),
		groups:         map[groupKey]*models.Content{},
		resolved:       map[groupKey]bool{},
		removals:       map[string]CatalogEntry{},
		removalsByKey:  map[LeafKey]string{},
		claims:         map[LeafKey]string{},
		touched:        map[string]struct{}{},
		turns:          map[string]int{},
	}
	sc.turn = sync.NewCond(&sc.mu)
	for _, f := range inventory {
		sc.inventorySet[f.URI] = struct{}{}
	}
	for _, entry := range removed {
		sc.removals[entry.Content.ID] = entry
		sc.removalsByKey[keyOf(entry.Content)] = entry.Content.ID
	}
	for _, entry := range catalog.Leaves {
		if _, ok := sc.removals[entry.Content.ID]; ok {
			continue
		}
		sc.claims[keyOf(entry.Content)] = entry.File.URI
	}
	for _, g := range catalog.Groups {
		key := groupKey{g.Type, g.URIPart}
		sc.groups[key] = g
		sc.claims[keyOf(g)] = groupClaim(key)
	}
	return sc
}

// sequence fixes the order in which files claim leaf identities. When two
// files of the run want the same identity the earlier one keeps it whatever
// order their tasks run in. Files must be sorted with claimOrderLess.
func (sc *ScanContext) sequence(uris []string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.turns = make(map[string]int, len(uris))
	for i, uri := range uris {
		sc.turns[uri] = i
	}
	sc.settled = make([]bool, len(uris))
	sc.next = 0
}

// settle gives up the file's turn. It is safe to call more than once.
func (sc *ScanContext) settle(uri string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.settleLocked(uri)
}

func (sc *ScanContext) settleLocked(uri string) {
	i, ok := sc.turns[uri]
	if !ok || sc.settled[i] {
		return
	}
	sc.settled[i] = true
	for sc.next < len(sc.settled) && sc.settled[sc.next] {
		sc.next++
	}
	sc.turn.Broadcast()
}

func (sc *ScanContext) waitTurnLocked(uri string) {
	i, ok := sc.turns[uri]
	if !ok {
		return
	}
	for sc.next < i {
		sc.turn.Wait()
	}
}

// claimOrderLess orders files by folder, then by name. The first file of a
// folder always comes before any file of a folder sorting after it, so
// duplicates resolve toward the canonical folder.
func claimOrderLess(a, b string) bool {
	da, db := path.Dir(a), path.Dir(b)
	if da != db {
		return da < db
	}
	return path.Base(a) < path.Base(b)
}

func groupClaim(key groupKey) string {
	return "group:" + key.typ
}

func (sc *ScanContext) InInventory(uri string) bool {
	_, ok := sc.inventorySet[uri]
	return ok
}

// HasFilesUnder reports whether any inventoried file lives below folder.
func (sc *ScanContext) HasFilesUnder(folder string) bool {
	prefix := strings.TrimSuffix(folder, "/") + "/"
	i := sort.Search(len(sc.inventory), func(i int) bool {
		return sc.inventory[i].URI >= prefix
	})
	return i < len(sc.inventory) && strings.HasPrefix(sc.inventory[i].URI, prefix)
}

// CanonicalFolders maps each identity produced by identify to the
// lexicographically smallest inventoried folder carrying it. It is computed
// once per run.
func (sc *ScanContext) CanonicalFolders(identify func(folder string) string) map[string]string {
	sc.canonicalOnce.Do(func() {
		sc.canonical = map[string]string{}
		seen := map[string]struct{}{}
		for _, f := range sc.inventory {
			folder := path.Dir(f.URI)
			if _, ok := seen[folder]; ok {
				continue
			}
			seen[folder] = struct{}{}
			id := identify(folder)
			if current, ok := sc.canonical[id]; !ok || folder < current {
				sc.canonical[id] = folder
			}
		}
	})
	return sc.canonical
}

// FindOrCreateGroup returns the root grouping row for spec, creating and
// committing it if needed. The first call of the run for an existing group
// refreshes its title, and rebinds it to spec.FileURI when no inventoried
// file remains under its previous folder.
func (sc *ScanContext) FindOrCreateGroup(ctx context.Context, spec GroupSpec) (*models.Content, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	key := groupKey{spec.Type, spec.URIPart}
	rootKey := LeafKey{URIPart: spec.URIPart}
	group := sc.groups[key]

	if group != nil && sc.resolved[key] {
		return group, nil
	}

	log := logger.FromContext(ctx).Data(logger.Data{"uri_part": spec.URIPart, "type": spec.Type})

	if group == nil {
		if holder, ok := sc.claims[rootKey]; ok {
			log.Warn("group identity is held by another row", logger.Data{"holder": holder})
			return nil, errors.WithStack(ErrIdentityTaken)
		}
		if _, ok := sc.removalsByKey[rootKey]; ok {
			log.Warn("group identity is held by a row pending removal")
			return nil, errors.WithStack(ErrIdentityTaken)
		}

		group = &models.Content{
			ID:         uuid.NewString(),
			LibraryID:  sc.Library.ID,
			URIPart:    spec.URIPart,
			URI:        spec.URI,
			Title:      spec.Title,
			SortTitle:  spec.SortTitle,
			Type:       spec.Type,
			Valid:      true,
			FileURI:    spec.FileURI,
			OrderParts: models.OrderParts{},
		}
		if _, err := sc.contentService.UpsertContent(ctx, group); err != nil {
			return nil, errors.WithStack(err)
		}
		log.Info("created group", logger.Data{"content_id": group.ID})
	} else {
		updated := *group
		updated.URI = spec.URI
		updated.Title = spec.Title
		updated.SortTitle = spec.SortTitle
		if spec.FileURI != nil && !equalFolder(group.FileURI, *spec.FileURI) {
			if group.FileURI == nil || !sc.HasFilesUnder(*group.FileURI) {
				log.Info("moving group to new folder", logger.Data{"content_id": group.ID, "to": *spec.FileURI})
				updated.FileURI = spec.FileURI
			}
		}
		if len(updated.ChangedColumns(group)) > 0 {
			if _, err := sc.contentService.UpsertContent(ctx, &updated); err != nil {
				return nil, errors.WithStack(err)
			}
		}
		group = &updated
	}

	sc.groups[key] = group
	sc.resolved[key] = true
	sc.claims[rootKey] = groupClaim(key)
	return group, nil
}

func equalFolder(current *string, folder string) bool {
	return current != nil && *current == folder
}

// ResolveLeaf returns the row a file should be written to for the identity
// key: the file's existing row, a row reclaimed from a removed file with the
// same key, or a fresh row. A nil row means another file already holds the
// key and this one must be skipped. Sequenced files resolve in their
// sequence order.
func (sc *ScanContext) ResolveLeaf(ctx context.Context, existing *models.Content, key LeafKey, file LibraryFile) *models.Content {
	log := logger.FromContext(ctx).Data(logger.Data{"path": file.URI, "uri_part": key.URIPart, "parent_id": key.ParentID})

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.waitTurnLocked(file.URI)
	defer sc.settleLocked(file.URI)

	if holder, ok := sc.claims[key]; ok && holder != file.URI {
		log.Warn("duplicate content identity, skipping file", logger.Data{"conflicts_with": holder})
		return nil
	}

	if existing != nil {
		if old := keyOf(existing); old != key {
			if id, ok := sc.removalsByKey[key]; ok {
				log.Warn("content identity is held by a row pending removal, skipping file", logger.Data{"content_id": id})
				return nil
			}
			if sc.claims[old] == file.URI {
				delete(sc.claims, old)
			}
		}
		sc.claims[key] = file.URI
		return existing
	}

	if id, ok := sc.removalsByKey[key]; ok {
		entry := sc.removals[id]
		if sc.InInventory(entry.File.URI) {
			log.Warn("reusable content is still on disk, skipping file", logger.Data{"content_id": id, "existing_path": entry.File.URI})
			return nil
		}
		delete(sc.removals, id)
		delete(sc.removalsByKey, key)
		sc.claims[key] = file.URI
		log.Info("reusing content of moved file", logger.Data{"content_id": id, "old_path": entry.File.URI})
		return entry.Content
	}

	sc.claims[key] = file.URI
	return &models.Content{
		ID:        uuid.NewString(),
		LibraryID: sc.Library.ID,
	}
}

func (sc *ScanContext) touch(parentID *string) {
	if parentID == nil {
		return
	}
	sc.mu.Lock()
	sc.touched[*parentID] = struct{}{}
	sc.mu.Unlock()
}

func (sc *ScanContext) touchedParents() []string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	ids := make([]string, 0, len(sc.touched))
	for id := range sc.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// pendingRemovals returns the removed rows that no file reclaimed, sorted by
// URI.
func (sc *ScanContext) pendingRemovals() []CatalogEntry {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	entries := make([]CatalogEntry, 0, len(sc.removals))
	for _, entry := range sc.removals {
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries
}

func (sc *ScanContext) isPendingRemoval(id string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_, ok := sc.removals[id]
	return ok
}
