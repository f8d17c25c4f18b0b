// local.go - Local fallback catalog adapter

package sources

import (
	"context"
	"strings"

	"github.com/snapmed/medicine_id_gemini/internal/storage"
)

const localCatalogID = "local_catalog"

// LocalCatalogAdapter matches terms against an in-memory medicine catalog.
// It is the last line of defense when every networked adapter fails or times
// out, so it carries the lowest reliability weight.
type LocalCatalogAdapter struct {
	// entries overrides the shared catalog when set (tests, embedding)
	entries []storage.CatalogEntry
}

// NewLocalCatalogAdapter builds an adapter over an explicit entry set.
// Pass nil to serve the shared catalog (Mongo-backed or static seed).
func NewLocalCatalogAdapter(entries []storage.CatalogEntry) *LocalCatalogAdapter {
	return &LocalCatalogAdapter{entries: entries}
}

func (a *LocalCatalogAdapter) ID() string           { return localCatalogID }
func (a *LocalCatalogAdapter) Reliability() float64 { return 0.50 }

// LocalCatalogPayload carries the matched catalog entries
type LocalCatalogPayload struct {
	Matches []storage.CatalogEntry `json:"matches"`
}

// Query performs a case-insensitive substring match on brand, generic and
// active-ingredient names. Purely in-memory: it can never fail.
func (a *LocalCatalogAdapter) Query(ctx context.Context, term string) *SourceResult {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return notFound(localCatalogID, a.Reliability(), term)
	}

	entries := a.entries
	if entries == nil {
		entries = storage.GetCatalog()
	}

	var matches []storage.CatalogEntry
	for _, e := range entries {
		if matchesEntry(e, needle) {
			matches = append(matches, e)
		}
	}

	if len(matches) == 0 {
		return notFound(localCatalogID, a.Reliability(), term)
	}
	return found(localCatalogID, a.Reliability(), term, &LocalCatalogPayload{Matches: matches})
}

func matchesEntry(e storage.CatalogEntry, needle string) bool {
	if strings.Contains(strings.ToLower(e.BrandName), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.GenericName), needle) {
		return true
	}
	for _, ing := range e.ActiveIngredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}
