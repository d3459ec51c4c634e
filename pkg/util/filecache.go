// FileCache serves content-file bytes to the class extractors through
// memory-mapped regions.
//
// Files are mapped read-only on first access and stay mapped until they are
// evicted (LRU, bounded by MaxFiles), invalidated (watch mode reports a
// change), or the cache is closed. When mmap fails the file is read into
// memory instead and served the same way.
//
// Mapped bytes must not outlive an unmap, so access goes through View, which
// holds a read lock for the duration of the callback.
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrFileTooLarge is returned for files above FileCacheConfig.MaxFileBytes.
var ErrFileTooLarge = errors.New("file exceeds cache size limit")

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles bounds the number of mapped files. The least recently used
	// file is unmapped when the bound is reached. Default: 4096.
	MaxFiles int

	// MaxFileBytes rejects larger files; content files above it are almost
	// always build output. 0 disables the check. Default: 8 MiB.
	MaxFileBytes int64

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns the limits used by the CLI.
func DefaultFileCacheConfig() FileCacheConfig {
	return FileCacheConfig{
		MaxFiles:     4096,
		MaxFileBytes: 8 << 20,
	}
}

// MappedFile is one cached file.
type MappedFile struct {
	Path     string
	Data     mmap.MMap // nil for empty files; heap bytes when mmap failed
	File     *os.File  // nil for heap-backed entries
	Size     int64
	ModTime  time.Time
	MappedAt time.Time
	mapped   bool
}

func (mf *MappedFile) release() error {
	var errs []error
	if mf.mapped && mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.File != nil {
		if err := mf.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	mf.Data, mf.File, mf.mapped = nil, nil, false
	return errors.Join(errs...)
}

// FileCacheStats reports cache activity.
type FileCacheStats struct {
	FilesCached  int   `json:"files_cached"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Evictions    int64 `json:"evictions"`
	MmapFailures int64 `json:"mmap_failures"`
}

// FileCache is safe for concurrent use.
type FileCache struct {
	config FileCacheConfig
	logger *slog.Logger

	mu      sync.RWMutex
	files   *lru.Cache[string, *MappedFile]
	closing bool

	hits         atomic.Int64
	misses       atomic.Int64
	evictions    atomic.Int64
	mmapFailures atomic.Int64
}

// NewFileCache creates a cache. Zero config fields take defaults.
func NewFileCache(config FileCacheConfig) *FileCache {
	def := DefaultFileCacheConfig()
	if config.MaxFiles <= 0 {
		config.MaxFiles = def.MaxFiles
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	fc := &FileCache{config: config, logger: config.Logger}
	files, err := lru.NewWithEvict(config.MaxFiles, func(path string, mf *MappedFile) {
		if !fc.closing {
			fc.evictions.Add(1)
		}
		if err := mf.release(); err != nil {
			fc.logger.Warn("Failed to release cached file", "path", path, "error", err)
		}
	})
	if err != nil {
		// Only returned for a non-positive size, which is excluded above.
		panic(fmt.Sprintf("failed to create file cache: %v", err))
	}
	fc.files = files
	return fc
}

// View calls fn with the file's bytes. The slice is only valid during fn.
func (fc *FileCache) View(path string, fn func(data []byte) error) error {
	fc.mu.RLock()
	if mf, ok := fc.files.Get(path); ok {
		defer fc.mu.RUnlock()
		fc.hits.Add(1)
		return fn(mf.Data)
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	mf, ok := fc.files.Get(path)
	if ok {
		fc.hits.Add(1)
	} else {
		fc.misses.Add(1)
		var err error
		mf, err = fc.load(path)
		if err != nil {
			fc.mu.Unlock()
			return err
		}
		fc.files.Add(path, mf)
	}
	// Downgrade: readers may proceed while fn runs, writers wait.
	fc.mu.Unlock()
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if cur, ok := fc.files.Peek(path); ok {
		mf = cur
	} else {
		// Evicted or invalidated between the two locks.
		return fc.viewUncached(path, fn)
	}
	return fn(mf.Data)
}

// ReadString returns a copy of the file contents.
func (fc *FileCache) ReadString(path string) (string, error) {
	var out string
	err := fc.View(path, func(data []byte) error {
		out = string(data)
		return nil
	})
	return out, err
}

func (fc *FileCache) viewUncached(path string, fn func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	return fn(data)
}

// load opens and maps a file. Must be called with mu held for writing.
func (fc *FileCache) load(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if fc.config.MaxFileBytes > 0 && stat.Size() > fc.config.MaxFileBytes {
		file.Close()
		return nil, fmt.Errorf("%q (%d bytes): %w", path, stat.Size(), ErrFileTooLarge)
	}

	mf := &MappedFile{Path: path, Size: stat.Size(), ModTime: stat.ModTime(), MappedAt: time.Now()}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.mmapFailures.Add(1)
		fc.logger.Warn("mmap failed, using fallback", "file", path, "size", stat.Size(), "error", err)
		file.Close()

		buf, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w", path, err, readErr)
		}
		mf.Data = mmap.MMap(buf)
		return mf, nil
	}

	mf.Data = data
	mf.File = file
	mf.mapped = true
	return mf, nil
}

// Invalidate drops path from the cache so the next View remaps it.
func (fc *FileCache) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.files.Remove(path)
}

// Size returns the number of cached files.
func (fc *FileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.files.Len()
}

// Stats returns a snapshot of cache counters.
func (fc *FileCache) Stats() FileCacheStats {
	return FileCacheStats{
		FilesCached:  fc.Size(),
		Hits:         fc.hits.Load(),
		Misses:       fc.misses.Load(),
		Evictions:    fc.evictions.Load(),
		MmapFailures: fc.mmapFailures.Load(),
	}
}

// Close unmaps every file.
func (fc *FileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for _, path := range fc.files.Keys() {
		mf, ok := fc.files.Peek(path)
		if !ok {
			continue
		}
		if err := mf.release(); err != nil {
			fc.logger.Warn("Failed to release cached file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	// Released entries are no-ops for the eviction callback.
	fc.closing = true
	fc.files.Purge()
	fc.closing = false

	fc.logger.Debug("FileCache closed", "hits", fc.hits.Load(), "misses", fc.misses.Load(),
		"evictions", fc.evictions.Load(), "mmap_failures", fc.mmapFailures.Load())
	return errors.Join(errs...)
}
