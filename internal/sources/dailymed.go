// dailymed.go - Official label repository adapter (placeholder)

package sources

import "context"

const dailyMedID = "dailymed"

// DailyMedAdapter stands in for the authoritative prescribing-label
// repository. DailyMed exposes no free-text drug-name query API suitable for
// this pipeline, so the adapter always reports NotFound - but it stays wired
// into the phase plan and the reliability/merge model so a backed
// implementation is a drop-in replacement.
type DailyMedAdapter struct{}

func (a *DailyMedAdapter) ID() string           { return dailyMedID }
func (a *DailyMedAdapter) Reliability() float64 { return 0.85 }

// Query always reports NotFound until a backing API exists
func (a *DailyMedAdapter) Query(ctx context.Context, term string) *SourceResult {
	return notFound(dailyMedID, a.Reliability(), term)
}
