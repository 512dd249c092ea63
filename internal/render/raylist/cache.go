package raylist

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
)

// Stats counts how Cache requests were served.
type Stats struct {
	Hits   int
	Loads  int
	Builds int
	Misses int // corrupt or mismatched files
}

// Cache memoizes ray lists in memory and on disk. One lock covers the whole
// lookup, load, build and persist sequence, so each key is computed at
// most once per process.
type Cache struct {
	dir      string
	compress bool
	logger   *log.Logger

	mu    sync.Mutex
	lists map[Key]*RayList
	stats Stats
}

// NewCache returns a cache persisting under dir. An empty dir keeps lists
// in memory only. A nil logger discards messages.
func NewCache(dir string, compress bool, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cache{dir: dir, compress: compress, logger: logger, lists: map[Key]*RayList{}}
}

// Path is where k is stored on disk.
func (c *Cache) Path(k Key) string {
	name := k.FileName()
	if c.compress {
		name += ZstdExt
	}
	return filepath.Join(c.dir, name)
}

func (c *Cache) Get(k Key) (*RayList, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.lists[k]; ok {
		c.stats.Hits++
		return r, nil
	}

	if c.dir != "" {
		path := c.Path(k)
		r, err := ReadFile(path)
		switch {
		case err == nil && r.Key == k:
			c.stats.Loads++
			c.lists[k] = r
			return r, nil
		case err == nil:
			c.stats.Misses++
			c.logger.Printf("raylist cache: %s holds %s, rebuilding", path, r.Key)
		case errors.Is(err, fs.ErrNotExist):
		default:
			c.stats.Misses++
			c.logger.Printf("raylist cache: %s unreadable, rebuilding: %v", path, err)
		}
	}

	r, err := Build(k)
	if err != nil {
		return nil, err
	}
	c.stats.Builds++
	if c.dir != "" {
		if err := WriteFile(c.Path(k), r); err != nil {
			c.logger.Printf("raylist cache: persist %s: %v", k, err)
		}
	}
	c.lists[k] = r
	return r, nil
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
