package scanner

import (
	"sort"
	"strings"
)

type DiffOptions struct {
	// Force reports unchanged files as updated so their rows are rebuilt.
	Force       bool
	FilterPaths []string
}

// Diff partitions files by comparing the disk against the catalog. Updated
// and Unchanged entries carry the on-disk file and the stored row; Removed
// entries carry the stored file and row.
type Diff struct {
	Added     []LibraryFile
	Updated   []CatalogEntry
	Unchanged []CatalogEntry
	Removed   []CatalogEntry
}

func matchesFilter(uri string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, prefix := range filters {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}

// ComputeDiff keys both sides by URI. Every partition is sorted by URI.
func ComputeDiff(onDisk []LibraryFile, catalog []CatalogEntry, opts DiffOptions) *Diff {
	diskByURI := make(map[string]LibraryFile, len(onDisk))
	for _, f := range onDisk {
		diskByURI[f.URI] = f
	}
	catalogByURI := make(map[string]CatalogEntry, len(catalog))
	for _, entry := range catalog {
		catalogByURI[entry.File.URI] = entry
	}

	diff := &Diff{
		Added:     []LibraryFile{},
		Updated:   []CatalogEntry{},
		Unchanged: []CatalogEntry{},
		Removed:   []CatalogEntry{},
	}

	for _, f := range onDisk {
		if !matchesFilter(f.URI, opts.FilterPaths) {
			continue
		}
		stored, ok := catalogByURI[f.URI]
		switch {
		case !ok:
			diff.Added = append(diff.Added, f)
		case opts.Force || f.HasChanged(stored.File):
			diff.Updated = append(diff.Updated, CatalogEntry{File: f, Content: stored.Content})
		default:
			diff.Unchanged = append(diff.Unchanged, CatalogEntry{File: f, Content: stored.Content})
		}
	}

	for _, entry := range catalog {
		if !matchesFilter(entry.File.URI, opts.FilterPaths) {
			continue
		}
		if _, ok := diskByURI[entry.File.URI]; !ok {
			diff.Removed = append(diff.Removed, entry)
		}
	}

	sortFiles(diff.Added)
	sortEntries(diff.Updated)
	sortEntries(diff.Unchanged)
	sortEntries(diff.Removed)

	return diff
}

func sortFiles(files []LibraryFile) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].URI < files[j].URI
	})
}

func sortEntries(entries []CatalogEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].File.URI < entries[j].File.URI
	})
}

func entryFiles(entries []CatalogEntry) []LibraryFile {
	files := make([]LibraryFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.File)
	}
	return files
}
