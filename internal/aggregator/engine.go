// engine.go - Phased aggregation of external drug-data sources

package aggregator

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snapmed/medicine_id_gemini/configs"
	"github.com/snapmed/medicine_id_gemini/internal/common"
	"github.com/snapmed/medicine_id_gemini/internal/search"
	"github.com/snapmed/medicine_id_gemini/internal/sources"
)

// Engine runs the source adapters across the synthesized terms in defined
// phases. It is constructed with explicit adapter instances so every adapter
// can be replaced by a test double.
type Engine struct {
	RegulatoryFilings sources.Adapter
	Nomenclature      sources.Adapter
	LabelRepository   sources.Adapter
	AdverseEvents     sources.Adapter
	StructuredLabel   sources.Adapter
	LocalCatalog      sources.Adapter

	// SourceTimeout bounds every individual adapter call. A timed-out call
	// is treated identically to a provider error.
	SourceTimeout time.Duration
}

// New creates an aggregation engine over an explicit adapter set
func New(regulatory, nomenclature, labelRepo, adverse, structured, local sources.Adapter, sourceTimeout time.Duration) *Engine {
	if sourceTimeout <= 0 {
		sourceTimeout = 12 * time.Second
	}
	return &Engine{
		RegulatoryFilings: regulatory,
		Nomenclature:      nomenclature,
		LabelRepository:   labelRepo,
		AdverseEvents:     adverse,
		StructuredLabel:   structured,
		LocalCatalog:      local,
		SourceTimeout:     sourceTimeout,
	}
}

// NewDefault wires the production adapter set from configuration. One HTTP
// client is shared across adapters; per-call deadlines come from the engine,
// not the client.
func NewDefault() *Engine {
	client := &http.Client{}
	return New(
		&sources.DrugsFDAAdapter{Client: client},
		&sources.RxNormAdapter{Client: client},
		&sources.DailyMedAdapter{},
		&sources.FAERSAdapter{Client: client},
		&sources.LabelAdapter{Client: client},
		sources.NewLocalCatalogAdapter(nil),
		time.Duration(configs.SOURCE_TIMEOUT_SECONDS)*time.Second,
	)
}

// FieldMismatch records a cross-reference disagreement between sources.
// Recorded, never blocking: compilation proceeds regardless.
type FieldMismatch struct {
	Field   string   `json:"field"`
	Values  []string `json:"values"`
	Sources []string `json:"sources"`
}

// Collected is everything one engine run produced
type Collected struct {
	// Results holds every adapter response in deterministic phase order,
	// including NotFound and Error entries, for diagnostics.
	Results []*sources.SourceResult

	// Ledger lists adapters that contributed at least one Found result,
	// in first-contribution order. Feeds the data-quality scorer.
	Ledger []string

	// Mismatches and Agreement come from the cross-reference phase.
	// Agreement is the largest number of independent sources that agree on
	// one overlapping name field.
	Mismatches []FieldMismatch
	Agreement  int
}

// Found returns only the successful results, in collection order
func (c *Collected) Found() []*sources.SourceResult {
	var out []*sources.SourceResult
	for _, r := range c.Results {
		if r.Status == sources.StatusFound {
			out = append(out, r)
		}
	}
	return out
}

// FirstFound returns the first Found result from the given adapter, or nil
func (c *Collected) FirstFound(sourceID string) *sources.SourceResult {
	for _, r := range c.Results {
		if r.SourceID == sourceID && r.Status == sources.StatusFound {
			return r
		}
	}
	return nil
}

// Run executes phases P1-P7. It never fails: any adapter may return
// NotFound or Error and the run still completes. With zero Found results the
// compiled profile will consist solely of vision-sourced data.
func (e *Engine) Run(ctx context.Context, terms []search.SearchTerm, reqCtx *common.RequestContext) *Collected {
	collected := &Collected{}

	e.runPrimaryIdentification(ctx, search.Primary(terms), collected, reqCtx)
	e.runLabelRepository(ctx, search.Secondary(terms), collected, reqCtx)
	// P3 (pharmacology), P5 (regulatory/manufacturing) and P6
	// (pricing/alternatives) derive from P1 results during compilation;
	// no new network calls happen here.
	e.runSafety(ctx, search.Secondary(terms), collected, reqCtx)
	e.crossReference(collected, reqCtx)

	reqCtx.LogInfo("Aggregation complete: %d results, %d contributing sources", len(collected.Results), len(collected.Ledger))
	return collected
}

// runPrimaryIdentification is phase P1. The Regulatory-Filings sub-search
// short-circuits on its first Found - purely a latency optimization - while
// Nomenclature and the Local catalog run for every term because they
// contribute complementary fields.
func (e *Engine) runPrimaryIdentification(ctx context.Context, terms []search.SearchTerm, collected *Collected, reqCtx *common.RequestContext) {
	reqCtx.StartSubStep("phase1_primary_identification")

	regulatoryFound := false
	for _, term := range terms {
		adapters := []sources.Adapter{}
		if !regulatoryFound {
			adapters = append(adapters, e.RegulatoryFilings)
		}
		adapters = append(adapters, e.Nomenclature, e.LocalCatalog)

		results := e.queryConcurrent(ctx, adapters, term.Value)
		e.collect(collected, results, reqCtx)

		for _, r := range results {
			if r.SourceID == e.RegulatoryFilings.ID() && r.Status == sources.StatusFound {
				regulatoryFound = true
			}
		}
	}

	reqCtx.EndSubStep("")
}

// runLabelRepository is phase P2: top secondary terms against the official
// label repository, stopping at the first Found.
func (e *Engine) runLabelRepository(ctx context.Context, terms []search.SearchTerm, collected *Collected, reqCtx *common.RequestContext) {
	reqCtx.StartSubStep("phase2_prescribing_info")

	for _, term := range terms {
		result := e.queryOne(ctx, e.LabelRepository, term.Value)
		e.collect(collected, []*sources.SourceResult{result}, reqCtx)
		if result.Status == sources.StatusFound {
			break
		}
	}

	reqCtx.EndSubStep("")
}

// runSafety is phase P4: adverse events and structured label data for every
// secondary term. No short-circuit - the two adapters contribute independent
// field sets.
func (e *Engine) runSafety(ctx context.Context, terms []search.SearchTerm, collected *Collected, reqCtx *common.RequestContext) {
	reqCtx.StartSubStep("phase4_safety")

	for _, term := range terms {
		results := e.queryConcurrent(ctx, []sources.Adapter{e.AdverseEvents, e.StructuredLabel}, term.Value)
		e.collect(collected, results, reqCtx)
	}

	reqCtx.EndSubStep("")
}

// crossReference is phase P7: compares name fields that multiple sources
// reported independently. Mismatches are recorded, never fatal.
func (e *Engine) crossReference(collected *Collected, reqCtx *common.RequestContext) {
	reqCtx.StartSubStep("phase7_cross_reference")

	brandAgreement := agreementByName(collected, brandNamesOf)
	genericAgreement := agreementByName(collected, genericNamesOf)

	collected.Agreement = brandAgreement.maxAgreement
	if genericAgreement.maxAgreement > collected.Agreement {
		collected.Agreement = genericAgreement.maxAgreement
	}

	collected.Mismatches = append(collected.Mismatches, brandAgreement.mismatches("brandName")...)
	collected.Mismatches = append(collected.Mismatches, genericAgreement.mismatches("genericName")...)

	if len(collected.Mismatches) > 0 {
		reqCtx.LogWarning("Cross-reference found %d field mismatches across sources", len(collected.Mismatches))
	}

	reqCtx.EndSubStep("")
}

// queryConcurrent fans one term out to several adapters in parallel, each
// under its own timeout. Results keep the adapter order so repeated runs
// with identical responses collect identically.
func (e *Engine) queryConcurrent(ctx context.Context, adapters []sources.Adapter, term string) []*sources.SourceResult {
	results := make([]*sources.SourceResult, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		g.Go(func() error {
			results[i] = e.queryOne(gctx, adapter, term)
			return nil
		})
	}
	// Goroutines never return errors; adapter failures are folded into
	// the per-result status.
	_ = g.Wait()

	return results
}

// queryOne runs a single adapter call under the per-call timeout
func (e *Engine) queryOne(ctx context.Context, adapter sources.Adapter, term string) *sources.SourceResult {
	callCtx, cancel := context.WithTimeout(ctx, e.SourceTimeout)
	defer cancel()
	return adapter.Query(callCtx, term)
}

// collect appends results and maintains the contribution ledger
func (e *Engine) collect(collected *Collected, results []*sources.SourceResult, reqCtx *common.RequestContext) {
	for _, r := range results {
		if r == nil {
			continue
		}
		collected.Results = append(collected.Results, r)

		switch r.Status {
		case sources.StatusFound:
			if !containsString(collected.Ledger, r.SourceID) {
				collected.Ledger = append(collected.Ledger, r.SourceID)
			}
		case sources.StatusError:
			reqCtx.LogWarning("Source %s failed for term %q: %s", r.SourceID, r.Term, r.ErrMessage)
		}
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
