package xmcdcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"cdmeta/internal/cddb"
	"cdmeta/internal/disc/discid"
	"cdmeta/internal/logging"
)

const lockName = ".lock"

// ErrNotCached is returned by Remove for an id with no record.
var ErrNotCached = errors.New("disc id not in cache")

// Entry describes one cached record.
type Entry struct {
	DiscID  discid.ID `json:"disc_id"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Cache is a directory of xmcd records keyed by disc id.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// NewCache returns a cache rooted at dir. An empty dir yields a cache where
// every lookup misses and every write is a no-op. The directory is created
// on first Store.
func NewCache(dir string, logger *slog.Logger) *Cache {
	return &Cache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "xmcdcache"),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Path returns the file a record for id is stored in.
func (c *Cache) Path(id discid.ID) string {
	if c == nil || c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, id.String())
}

// Lookup returns the cached record for id. A missing file, an empty file or
// a file that cannot be read in full is a miss.
func (c *Cache) Lookup(id discid.ID) (cddb.Record, bool) {
	path := c.Path(id)
	if path == "" {
		return cddb.Record{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("cache entry unreadable", logging.String("path", path), logging.Error(err))
		}
		return cddb.Record{}, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return cddb.Record{}, false
	}
	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		c.logger.Debug("cache entry short read",
			logging.String(logging.FieldDiscID, id.String()),
			logging.Int64("size", info.Size()),
			logging.Error(err))
		return cddb.Record{}, false
	}
	return cddb.Record{DiscID: id, Data: data}, true
}

// Store writes rec under id, replacing any existing file atomically.
func (c *Cache) Store(id discid.ID, rec cddb.Record) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if rec.Len() == 0 {
		return errors.New("refusing to cache empty record")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	unlock, err := c.lock()
	if err != nil {
		return err
	}
	defer unlock()

	path := c.Path(id)
	tmp, err := os.CreateTemp(c.dir, "."+id.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(rec.Data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	c.logger.Debug("cached xmcd record",
		logging.String(logging.FieldDiscID, id.String()),
		logging.Int("bytes", rec.Len()),
		logging.String("category", rec.Category))
	return nil
}

// Remove deletes the record for id.
func (c *Cache) Remove(id discid.ID) error {
	if c == nil || c.dir == "" {
		return nil
	}
	unlock, err := c.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(c.Path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", id, ErrNotCached)
		}
		return fmt.Errorf("remove cache entry: %w", err)
	}
	c.logger.Debug("removed cache entry", logging.String(logging.FieldDiscID, id.String()))
	return nil
}

// List returns every cached record, newest first. Files whose names are not
// disc ids are ignored.
func (c *Cache) List() ([]Entry, error) {
	if c == nil || c.dir == "" {
		return nil, nil
	}
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		id, ok := entryID(de.Name())
		if !ok || !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			DiscID:  id,
			Path:    filepath.Join(c.dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].DiscID < entries[j].DiscID
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Clear removes every cached record and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	entries, err := c.List()
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	unlock, err := c.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	removed := 0
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.DiscID, err)
		}
		removed++
	}
	c.logger.Debug("cleared cache", logging.Int("removed", removed))
	return removed, nil
}

func (c *Cache) lock() (func(), error) {
	fl := flock.New(filepath.Join(c.dir, lockName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock cache directory: %w", err)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			c.logger.Debug("cache unlock failed", logging.Error(err))
		}
	}, nil
}

// entryID accepts only canonical names: eight lowercase hex digits.
func entryID(name string) (discid.ID, bool) {
	if len(name) != 8 {
		return 0, false
	}
	id, err := discid.Parse(name)
	if err != nil || id.String() != name {
		return 0, false
	}
	return id, true
}
