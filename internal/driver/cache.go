package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ash/internal/bytecode"
	"ash/internal/project"
	"ash/internal/version"
)

// cacheSchemaVersion is bumped whenever cachePayload changes shape.
const cacheSchemaVersion uint16 = 1

// CacheKey identifies a compiled chunk: the source digest combined with
// the toolchain version.
type CacheKey = project.Digest

// KeyFor returns the cache key of src under the running toolchain.
func KeyFor(src []byte) CacheKey {
	return project.Combine(project.Sum(src), project.Sum([]byte(version.Key())))
}

// ChunkCache stores compiled chunks on disk. It is safe for concurrent use.
type ChunkCache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema    uint16 `msgpack:"schema"`
	Toolchain string `msgpack:"toolchain"`
	Chunk     []byte `msgpack:"chunk"`
}

// OpenChunkCache opens the cache under $XDG_CACHE_HOME/app, falling back
// to ~/.cache/app.
func OpenChunkCache(app string) (*ChunkCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewChunkCache(filepath.Join(base, app))
}

// NewChunkCache opens a cache rooted at dir, creating it if needed.
func NewChunkCache(dir string) (*ChunkCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &ChunkCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ChunkCache) Dir() string { return c.dir }

func (c *ChunkCache) pathFor(key CacheKey) string {
	return filepath.Join(c.dir, "chunks", key.String()+".mp")
}

// Put writes chunk under key. The entry appears atomically.
func (c *ChunkCache) Put(key CacheKey, chunk *bytecode.Chunk) error {
	if c == nil {
		return nil
	}
	data, err := bytecode.Marshal(chunk, bytecode.FormatMsgpack)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(f.Name())
		}
	}()

	err = msgpack.NewEncoder(f).Encode(&cachePayload{
		Schema:    cacheSchemaVersion,
		Toolchain: version.Key(),
		Chunk:     data,
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads the chunk stored under key. Entries written by another schema
// or toolchain are misses.
func (c *ChunkCache) Get(key CacheKey) (*bytecode.Chunk, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if payload.Schema != cacheSchemaVersion || payload.Toolchain != version.Key() {
		return nil, false, nil
	}
	chunk, _, err := bytecode.Unmarshal(payload.Chunk)
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return chunk, true, nil
}

// DropAll removes every entry.
func (c *ChunkCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
