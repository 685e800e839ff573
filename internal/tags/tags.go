// Package tags resolves the remote tag hierarchy to slash delimited paths.
package tags

import (
	"errors"
	"sort"
	"strings"

	"github.com/noterelay/noterelay/internal/blinko"
)

var (
	// ErrCycleDetected is returned when a parent walk does not reach a root
	// within the index size. The remote parent graph is expected to be
	// acyclic, but the resolver must not rely on that.
	ErrCycleDetected = errors.New("cycle detected in tag hierarchy")
)

type entry struct {
	name     string
	parentID int
}

// Index maps tag ids to their name and parent.
type Index map[int]entry

// BuildIndex builds an Index from a flat tag list.
func BuildIndex(list []blinko.Tag) Index {
	idx := make(Index, len(list))
	for _, tag := range list {
		idx[tag.ID] = entry{name: tag.Name, parentID: tag.ParentID}
	}

	return idx
}

// ResolvePath walks the parent chain of tagID and renders it as
// "#root/child/...". Absent ids resolve to "". The walk is bounded by the
// index size, exceeding the bound fails with ErrCycleDetected.
func (idx Index) ResolvePath(tagID int) (string, error) {
	e, ok := idx[tagID]
	if !ok {
		return "", nil
	}

	parts := []string{e.name}

	for steps := 0; e.parentID != 0; steps++ {
		if steps >= len(idx) {
			return "", ErrCycleDetected
		}

		parent, ok := idx[e.parentID]
		if !ok {
			break
		}

		parts = append(parts, parent.name)
		e = parent
	}

	// reverse, the walk collected child first
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return "#" + strings.Join(parts, "/"), nil
}

// ResolveAllPaths resolves every tag to its path, skipping tags whose
// resolution fails, and returns the deduplicated sorted result.
func ResolveAllPaths(list []blinko.Tag) []string {
	idx := BuildIndex(list)
	seen := make(map[string]struct{}, len(list))

	for _, tag := range list {
		path, err := idx.ResolvePath(tag.ID)
		if err != nil || path == "" {
			continue
		}

		seen[path] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}
