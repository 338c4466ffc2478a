// Package filesystem lets a client pick source folders for a library.
package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

type BrowseOptions struct {
	Path       string
	ShowHidden bool
	Limit      int
	Offset     int
	Search     string
	// Eligible reports whether a library would scan the file at path. When
	// set, other files are left out of the listing.
	Eligible func(path string) bool
}

// Browse lists a directory with folders first. Symlinks in the path are
// resolved so the returned paths can be used as library sources as is.
func (s *Service) Browse(opts BrowseOptions) (*BrowseResponse, error) {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		realPath = absPath
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrInvalid
	}

	dirEntries, err := os.ReadDir(realPath)
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	eligibleFiles := 0
	search := strings.ToLower(opts.Search)
	for _, de := range dirEntries {
		name := de.Name()
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		entryPath := filepath.Join(realPath, name)
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			if target, err := os.Stat(entryPath); err == nil {
				isDir = target.IsDir()
			}
		}
		if !isDir && opts.Eligible != nil {
			if !opts.Eligible(entryPath) {
				continue
			}
			eligibleFiles++
		}

		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}

		entries = append(entries, Entry{
			Name:  name,
			Path:  entryPath,
			IsDir: isDir,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	total := len(entries)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < total {
		end = start + opts.Limit
	}

	parentPath := ""
	if realPath != "/" {
		parentPath = filepath.Dir(realPath)
	}

	return &BrowseResponse{
		CurrentPath:   realPath,
		ParentPath:    parentPath,
		Entries:       entries[start:end],
		Total:         total,
		HasMore:       end < total,
		EligibleFiles: eligibleFiles,
	}, nil
}
