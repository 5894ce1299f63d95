package watch

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/calvin/pkg/assets"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
)

// Entry is what the cache remembers about one source file.
type Entry struct {
	Digest string
	Asset  assets.Asset
}

// Cache maps source paths (slash, relative to the source dir) to their
// last parsed asset. It is not safe for concurrent use; only the loop
// goroutine touches it.
type Cache struct {
	fs      types.FS
	dir     string
	entries map[string]Entry
	logger  zerolog.Logger
}

// Change summarizes one Apply call.
type Change struct {
	Parsed  []string
	Removed []string
	// Unchanged paths were read but their digest had not moved.
	Unchanged []string
	// Failed maps paths that could not be parsed to the error. The previous
	// asset, if any, stays in the cache.
	Failed map[string]error
}

// Dirty reports whether the asset set changed.
func (c Change) Dirty() bool {
	return len(c.Parsed) > 0 || len(c.Removed) > 0
}

// Err returns the failure of the first failed path, in path order.
func (c Change) Err() error {
	if len(c.Failed) == 0 {
		return nil
	}
	paths := make([]string, 0, len(c.Failed))
	for p := range c.Failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return c.Failed[paths[0]]
}

// NewCache creates an empty cache over dir.
func NewCache(fsys types.FS, dir string) *Cache {
	return &Cache{
		fs:      fsys,
		dir:     dir,
		entries: make(map[string]Entry),
		logger:  logging.GetLogger("watch.cache"),
	}
}

// Prime loads every asset below the source directory.
func (c *Cache) Prime() error {
	paths, err := assets.List(c.fs, c.dir)
	if err != nil {
		return err
	}
	entries := make(map[string]Entry, len(paths))
	for _, rel := range paths {
		a, err := assets.LoadOne(c.fs, c.dir, rel)
		if err != nil {
			return err
		}
		entries[rel] = Entry{Digest: a.Digest, Asset: a}
	}
	c.entries = entries
	return nil
}

// Apply refreshes the given relative paths. A directory path refreshes
// everything known below it and picks up anything new inside it.
func (c *Cache) Apply(paths []string) Change {
	ch := Change{Failed: map[string]error{}}

	for _, rel := range c.expand(paths) {
		data, err := c.fs.ReadFile(filepath.Join(c.dir, filepath.FromSlash(rel)))
		if err != nil {
			if _, known := c.entries[rel]; known && os.IsNotExist(err) {
				delete(c.entries, rel)
				ch.Removed = append(ch.Removed, rel)
			} else if !os.IsNotExist(err) {
				ch.Failed[rel] = err
			}
			continue
		}

		digest := hashutil.Digest(data)
		if prev, ok := c.entries[rel]; ok && prev.Digest == digest {
			ch.Unchanged = append(ch.Unchanged, rel)
			continue
		}

		a, err := assets.Parse(rel, data)
		if err != nil {
			ch.Failed[rel] = err
			c.logger.Warn().Err(err).Str("path", rel).Msg("keeping previous version of unparsable asset")
			continue
		}
		c.entries[rel] = Entry{Digest: digest, Asset: a}
		ch.Parsed = append(ch.Parsed, rel)
	}
	return ch
}

// expand turns event paths into the asset paths to recheck, sorted and
// without duplicates.
func (c *Cache) expand(paths []string) []string {
	set := map[string]struct{}{}
	for _, p := range paths {
		rel := path.Clean(p)
		if assets.IsAssetPath(rel) {
			set[rel] = struct{}{}
		}
		prefix := rel + "/"
		if rel == "." {
			prefix = ""
		}
		for known := range c.entries {
			if strings.HasPrefix(known, prefix) {
				set[known] = struct{}{}
			}
		}
		sub := filepath.Join(c.dir, filepath.FromSlash(rel))
		if info, err := c.fs.Stat(sub); err == nil && info.IsDir() {
			found, err := assets.List(c.fs, sub)
			if err != nil {
				continue
			}
			for _, f := range found {
				set[path.Join(rel, f)] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Assets returns the cached assets ordered by source path.
func (c *Cache) Assets() []assets.Asset {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]assets.Asset, len(keys))
	for i, k := range keys {
		out[i] = c.entries[k].Asset
	}
	return out
}

// Get returns the entry for a relative source path.
func (c *Cache) Get(rel string) (Entry, bool) {
	e, ok := c.entries[path.Clean(rel)]
	return e, ok
}

// Len is the number of cached assets.
func (c *Cache) Len() int {
	return len(c.entries)
}
