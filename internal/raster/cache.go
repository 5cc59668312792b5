package raster

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// SurfaceCache keeps parsed surfaces in memory with LRU eviction.
//
// Memory estimation is approximate: 8 bytes per cell plus a fixed overhead.
//
// Example:
//
//	cache := raster.NewSurfaceCache(256 * 1024 * 1024)
//	surface, err := cache.Get("NIDEM.asc", func() (*raster.Surface, error) {
//	    return raster.LoadASCIIGrid("NIDEM.asc")
//	})
type SurfaceCache struct {
	maxMemory  int64 // Maximum memory in bytes, 0 for unlimited
	usedMemory int64
	surfaces   map[string]*cacheEntry
	lru        *list.List // Most recent at front
	mu         sync.Mutex
}

type cacheEntry struct {
	key          string
	surface      *Surface
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewSurfaceCache creates a cache with the given memory limit in bytes.
func NewSurfaceCache(maxMemoryBytes int64) *SurfaceCache {
	return &SurfaceCache{
		maxMemory: maxMemoryBytes,
		surfaces:  make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the cached surface for key or loads it with loader on a miss.
//
// A surface too large for the cache is returned uncached.
func (c *SurfaceCache) Get(key string, loader func() (*Surface, error)) (*Surface, error) {
	c.mu.Lock()
	if entry, ok := c.surfaces[key]; ok {
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()
		return entry.surface, nil
	}
	c.mu.Unlock()

	surface, err := loader()
	if err != nil {
		return nil, err
	}

	_ = c.Add(key, surface)
	return surface, nil
}

// Add inserts a surface, evicting least-recently-used entries to make room.
func (c *SurfaceCache) Add(key string, surface *Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.surfaces[key]; ok {
		c.usedMemory -= entry.memorySize
		entry.surface = surface
		entry.memorySize = estimateSurfaceMemory(surface)
		c.usedMemory += entry.memorySize
		entry.lastAccessed = time.Now()
		c.lru.MoveToFront(entry.element)
		return nil
	}

	memSize := estimateSurfaceMemory(surface)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("surface too large for cache (%d bytes > %d bytes max)", memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		key:          key,
		surface:      surface,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.surfaces[key] = entry
	c.usedMemory += memSize
	return nil
}

// evictLRU removes the least recently used surface.
// Must be called with c.mu locked.
func (c *SurfaceCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.surfaces, entry.key)
	c.usedMemory -= entry.memorySize
}

// Remove drops a surface from the cache.
func (c *SurfaceCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.surfaces[key]; ok {
		c.lru.Remove(entry.element)
		delete(c.surfaces, key)
		c.usedMemory -= entry.memorySize
	}
}

// Stats returns cache statistics.
func (c *SurfaceCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	totalAccess := 0
	for _, entry := range c.surfaces {
		totalAccess += entry.accessCount
	}
	return CacheStats{
		SurfaceCount: len(c.surfaces),
		UsedMemory:   c.usedMemory,
		MaxMemory:    c.maxMemory,
		TotalAccess:  totalAccess,
	}
}

// CacheStats holds cache metrics.
type CacheStats struct {
	SurfaceCount int
	UsedMemory   int64
	MaxMemory    int64
	TotalAccess  int
}

func estimateSurfaceMemory(s *Surface) int64 {
	if s == nil {
		return 0
	}
	return 256 + int64(len(s.values))*8
}
