// engine_test.go - Aggregation engine tests with fake adapters

package aggregator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapmed/medicine_id_gemini/internal/common"
	"github.com/snapmed/medicine_id_gemini/internal/search"
	"github.com/snapmed/medicine_id_gemini/internal/sources"
	"github.com/snapmed/medicine_id_gemini/internal/storage"
)

// fakeAdapter records every queried term and answers from a scripted function
type fakeAdapter struct {
	id      string
	weight  float64
	respond func(term string) *sources.SourceResult

	mu    sync.Mutex
	calls []string
}

func (f *fakeAdapter) ID() string           { return f.id }
func (f *fakeAdapter) Reliability() float64 { return f.weight }

func (f *fakeAdapter) Query(ctx context.Context, term string) *sources.SourceResult {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	f.mu.Unlock()
	return f.respond(term)
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func notFoundAdapter(id string, weight float64) *fakeAdapter {
	return &fakeAdapter{
		id:     id,
		weight: weight,
		respond: func(term string) *sources.SourceResult {
			return &sources.SourceResult{
				SourceID: id, ReliabilityWeight: weight,
				Status: sources.StatusNotFound, Term: term, FetchedAt: time.Now(),
			}
		},
	}
}

func foundAdapter(id string, weight float64, payload interface{}) *fakeAdapter {
	return &fakeAdapter{
		id:     id,
		weight: weight,
		respond: func(term string) *sources.SourceResult {
			return &sources.SourceResult{
				SourceID: id, ReliabilityWeight: weight,
				Status: sources.StatusFound, Term: term, FetchedAt: time.Now(),
				Payload: payload,
			}
		},
	}
}

func errorAdapter(id string, weight float64) *fakeAdapter {
	return &fakeAdapter{
		id:     id,
		weight: weight,
		respond: func(term string) *sources.SourceResult {
			return &sources.SourceResult{
				SourceID: id, ReliabilityWeight: weight,
				Status: sources.StatusError, Term: term, FetchedAt: time.Now(),
				ErrMessage: "connection refused",
			}
		},
	}
}

type adapterSet struct {
	regulatory, nomenclature, labelRepo, adverse, structured, local *fakeAdapter
}

func newEngine(set adapterSet) *Engine {
	return New(set.regulatory, set.nomenclature, set.labelRepo, set.adverse, set.structured, set.local, time.Second)
}

func allNotFound() adapterSet {
	return adapterSet{
		regulatory:   notFoundAdapter("drugsfda", 0.95),
		nomenclature: notFoundAdapter("rxnorm", 0.90),
		labelRepo:    notFoundAdapter("dailymed", 0.85),
		adverse:      notFoundAdapter("faers", 0.80),
		structured:   notFoundAdapter("openfda_label", 0.85),
		local:        notFoundAdapter("local_catalog", 0.50),
	}
}

func mkTerms(values ...string) []search.SearchTerm {
	var terms []search.SearchTerm
	for i, v := range values {
		terms = append(terms, search.SearchTerm{Value: v, Source: search.SourceFreeText, Priority: i})
	}
	return terms
}

func testCtx() *common.RequestContext {
	return common.NewRequestContext("comprehensive")
}

func TestRunCompletesWhenEverySourceFails(t *testing.T) {
	set := allNotFound()
	set.regulatory = errorAdapter("drugsfda", 0.95)
	engine := newEngine(set)

	collected := engine.Run(context.Background(), mkTerms("advil", "ibuprofen"), testCtx())

	require.NotNil(t, collected)
	assert.Empty(t, collected.Ledger)
	assert.Empty(t, collected.Found())
	assert.Zero(t, collected.Agreement)
	assert.NotEmpty(t, collected.Results, "failed attempts are still recorded")
}

func TestPrimaryShortCircuitOnlyAffectsRegulatory(t *testing.T) {
	set := allNotFound()
	set.regulatory = foundAdapter("drugsfda", 0.95, &sources.DrugsFDAPayload{BrandNames: []string{"ADVIL"}})
	engine := newEngine(set)

	terms := mkTerms("advil", "ibuprofen", "haleon", "oral", "tablet")
	engine.Run(context.Background(), terms, testCtx())

	// Regulatory matched on the first term, so it is queried exactly once.
	assert.Equal(t, 1, set.regulatory.callCount())

	// Nomenclature and local catalog still run for every primary term.
	assert.Equal(t, 5, set.nomenclature.callCount())
	assert.Equal(t, 5, set.local.callCount())
}

func TestLabelRepositoryStopsAtFirstFound(t *testing.T) {
	set := allNotFound()
	found := false
	set.labelRepo = &fakeAdapter{
		id: "dailymed", weight: 0.85,
		respond: func(term string) *sources.SourceResult {
			if term == "ibuprofen" {
				found = true
				return &sources.SourceResult{
					SourceID: "dailymed", ReliabilityWeight: 0.85,
					Status: sources.StatusFound, Term: term, FetchedAt: time.Now(),
					Payload: &sources.LabelPayload{},
				}
			}
			return &sources.SourceResult{
				SourceID: "dailymed", ReliabilityWeight: 0.85,
				Status: sources.StatusNotFound, Term: term, FetchedAt: time.Now(),
			}
		},
	}
	engine := newEngine(set)

	engine.Run(context.Background(), mkTerms("advil", "ibuprofen", "haleon"), testCtx())

	assert.True(t, found)
	assert.Equal(t, 2, set.labelRepo.callCount(), "stops after the second term matched")
}

func TestSafetyPhaseQueriesBothAdaptersEveryTerm(t *testing.T) {
	set := allNotFound()
	set.adverse = foundAdapter("faers", 0.80, &sources.FAERSPayload{
		Reactions: []sources.ReactionCount{{Reaction: "NAUSEA", Reports: 1200}},
	})
	engine := newEngine(set)

	engine.Run(context.Background(), mkTerms("advil", "ibuprofen", "haleon", "extra", "more"), testCtx())

	// Secondary phases cap at 3 terms; no short-circuit in the safety phase.
	assert.Equal(t, 3, set.adverse.callCount())
	assert.Equal(t, 3, set.structured.callCount())
}

func TestLedgerListsEachContributingSourceOnce(t *testing.T) {
	set := allNotFound()
	set.regulatory = foundAdapter("drugsfda", 0.95, &sources.DrugsFDAPayload{BrandNames: []string{"ADVIL"}})
	set.nomenclature = foundAdapter("rxnorm", 0.90, &sources.RxNormPayload{RxCUI: "5640", Name: "ibuprofen", TTY: "IN"})
	engine := newEngine(set)

	collected := engine.Run(context.Background(), mkTerms("advil", "ibuprofen"), testCtx())

	// rxnorm matched both terms but appears once
	assert.Equal(t, []string{"drugsfda", "rxnorm"}, collected.Ledger)
}

func TestCrossReferenceAgreement(t *testing.T) {
	set := allNotFound()
	set.regulatory = foundAdapter("drugsfda", 0.95, &sources.DrugsFDAPayload{
		GenericNames: []string{"IBUPROFEN"},
	})
	set.nomenclature = foundAdapter("rxnorm", 0.90, &sources.RxNormPayload{
		RxCUI: "5640", Name: "Ibuprofen", TTY: "IN",
	})
	engine := newEngine(set)

	collected := engine.Run(context.Background(), mkTerms("ibuprofen"), testCtx())

	// Agreement is case-insensitive across independently reporting sources
	assert.Equal(t, 2, collected.Agreement)
	assert.Empty(t, collected.Mismatches)
}

func TestCrossReferenceRecordsMismatch(t *testing.T) {
	set := allNotFound()
	set.regulatory = foundAdapter("drugsfda", 0.95, &sources.DrugsFDAPayload{
		BrandNames: []string{"ADVIL"},
	})
	set.local = foundAdapter("local_catalog", 0.50, &sources.LocalCatalogPayload{
		Matches: []storage.CatalogEntry{{BrandName: "Motrin", GenericName: "Ibuprofen"}},
	})
	engine := newEngine(set)

	collected := engine.Run(context.Background(), mkTerms("advil"), testCtx())

	require.NotEmpty(t, collected.Mismatches)
	mismatch := collected.Mismatches[0]
	assert.Equal(t, "brandName", mismatch.Field)
	assert.ElementsMatch(t, []string{"drugsfda", "local_catalog"}, mismatch.Sources)
	assert.Equal(t, 1, collected.Agreement, "no name is shared by more than one source")
}

func TestRunIsDeterministicForIdenticalResponses(t *testing.T) {
	build := func() *Engine {
		set := allNotFound()
		set.regulatory = foundAdapter("drugsfda", 0.95, &sources.DrugsFDAPayload{BrandNames: []string{"ADVIL"}})
		set.nomenclature = foundAdapter("rxnorm", 0.90, &sources.RxNormPayload{RxCUI: "5640"})
		return newEngine(set)
	}

	terms := mkTerms("advil", "ibuprofen")

	first := build().Run(context.Background(), terms, testCtx())
	second := build().Run(context.Background(), terms, testCtx())

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].SourceID, second.Results[i].SourceID)
		assert.Equal(t, first.Results[i].Status, second.Results[i].Status)
		assert.Equal(t, first.Results[i].Term, second.Results[i].Term)
	}
	assert.Equal(t, first.Ledger, second.Ledger)
	assert.Equal(t, first.Agreement, second.Agreement)
}
