package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const diskCacheExt = ".zst"

// DiskStats reports disk cache counters.
type DiskStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Capacity  int64
}

// DiskCache is a persistent, zstd-compressed byte cache. Entries live in
// one file per key named by the key's SHA-256; file modification times
// drive least-recently-used eviction, so the cache survives restarts
// without an index.
type DiskCache struct {
	dir      string
	capacity int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats DiskStats
}

// NewDiskCache opens (creating if needed) a cache rooted at dir holding at
// most capacity compressed bytes. level is a zstd level (1 to 22).
func NewDiskCache(dir string, capacity int64, level int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: create cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("fetch: create zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		encoder:  enc,
		decoder:  dec,
	}

	dc.stats.Capacity = capacity
	dc.stats.Size, _ = dc.usage()

	return dc, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string { return dc.dir }

// Get returns the decompressed value for key.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := dc.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		dc.stats.Misses++
		return nil, false
	}

	value, err := dc.decoder.DecodeAll(data, nil)
	if err != nil {
		// Corrupt entry.
		os.Remove(path)
		dc.stats.Size -= int64(len(data))
		dc.stats.Misses++

		return nil, false
	}

	now := time.Now()
	_ = os.Chtimes(path, now, now)
	dc.stats.Hits++

	return value, true
}

// Put compresses value and stores it under key, evicting the least recently
// used entries when the budget would be exceeded.
func (dc *DiskCache) Put(key string, value []byte) error {
	compressed := dc.encoder.EncodeAll(value, nil)
	size := int64(len(compressed))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if size > dc.capacity {
		return fmt.Errorf("fetch: %d compressed bytes exceed disk cache capacity", size)
	}

	path := dc.path(key)
	if info, err := os.Stat(path); err == nil && os.Remove(path) == nil {
		dc.stats.Size -= info.Size()
	}

	if err := dc.evictFor(size); err != nil {
		return err
	}

	if err := writeFileAtomic(path, compressed); err != nil {
		return fmt.Errorf("fetch: write cache file: %w", err)
	}

	dc.stats.Size += size

	return nil
}

// Stat reports the compressed size of key's entry.
func (dc *DiskCache) Stat(key string) (int64, bool) {
	info, err := os.Stat(dc.path(key))
	if err != nil {
		return 0, false
	}

	return info.Size(), true
}

// Delete removes key's entry.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := dc.path(key)
	if info, err := os.Stat(path); err == nil {
		if os.Remove(path) == nil {
			dc.stats.Size -= info.Size()
		}
	}
}

// Clear removes every entry.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entries, err := dc.entries()
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range entries {
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	dc.stats.Size, _ = dc.usage()

	return errors.Join(errs...)
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() DiskStats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	return dc.stats
}

// Close releases the compression workers.
func (dc *DiskCache) Close() error {
	dc.encoder.Close()
	dc.decoder.Close()

	return nil
}

func (dc *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dc.dir, hex.EncodeToString(sum[:])+diskCacheExt)
}

type diskEntry struct {
	path    string
	size    int64
	modTime time.Time
}

func (dc *DiskCache) entries() ([]diskEntry, error) {
	dirEntries, err := os.ReadDir(dc.dir)
	if err != nil {
		return nil, fmt.Errorf("fetch: list cache directory: %w", err)
	}

	out := make([]diskEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), diskCacheExt) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}

		out = append(out, diskEntry{
			path:    filepath.Join(dc.dir, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	return out, nil
}

func (dc *DiskCache) usage() (int64, error) {
	entries, err := dc.entries()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.size
	}

	return total, nil
}

// must be called with dc.mu held
func (dc *DiskCache) evictFor(incoming int64) error {
	if dc.stats.Size+incoming <= dc.capacity {
		return nil
	}

	entries, err := dc.entries()
	if err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })

	var total int64
	for _, e := range entries {
		total += e.size
	}

	for _, e := range entries {
		if total+incoming <= dc.capacity {
			break
		}

		if os.Remove(e.path) == nil {
			total -= e.size
			dc.stats.Evictions++
		}
	}

	dc.stats.Size = total

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
