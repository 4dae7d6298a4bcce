package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/clausula/internal/model"
)

// keyPrefix versions the cache layout; bump it when the Extraction shape changes
const keyPrefix = "clausula:v1:"

// Cache stores serialized extractions by content key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a document's extension and bytes. Two
// uploads with the same content and format share a key whatever their name.
func Key(filename string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(filepath.Ext(filename))))
	h.Write([]byte{0})
	h.Write(data)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg: memory in front of disk, or a
// no-op cache when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error { return nil }
func (Nop) Clear() error { return nil }
