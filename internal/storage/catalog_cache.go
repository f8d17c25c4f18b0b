// catalog_cache.go - In-memory TTL cache over the medicine catalog

package storage

import (
	"context"
	"log"
	"sync"
	"time"
)

const catalogCacheTTL = 5 * time.Minute

var (
	catalogCache    []CatalogEntry
	catalogLoadedAt time.Time
	catalogMu       sync.RWMutex
)

// GetCatalog returns the fallback catalog: Mongo-backed when configured and
// reachable, the static seed otherwise. The Mongo copy is cached for the
// TTL so a catalog refresh never sits on the request path more than once
// per window.
func GetCatalog() []CatalogEntry {
	catalogMu.RLock()
	if catalogCache != nil && time.Since(catalogLoadedAt) < catalogCacheTTL {
		entries := catalogCache
		catalogMu.RUnlock()
		return entries
	}
	catalogMu.RUnlock()

	catalogMu.Lock()
	defer catalogMu.Unlock()

	// Double-check after acquiring the write lock
	if catalogCache != nil && time.Since(catalogLoadedAt) < catalogCacheTTL {
		return catalogCache
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := LoadCatalogEntries(ctx)
	if err != nil || len(entries) == 0 {
		if mongoClient != nil && err != nil {
			log.Printf("Catalog load from Mongo failed, using static seed: %v", err)
		}
		entries = catalogSeed
	}

	catalogCache = entries
	catalogLoadedAt = time.Now()
	return catalogCache
}

// InvalidateCatalogCache forces the next GetCatalog to reload
func InvalidateCatalogCache() {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalogCache = nil
}
