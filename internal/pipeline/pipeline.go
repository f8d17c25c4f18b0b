// pipeline.go - Identification pipeline facade over vision, aggregation and scoring

package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/snapmed/medicine_id_gemini/internal/aggregator"
	"github.com/snapmed/medicine_id_gemini/internal/ai"
	"github.com/snapmed/medicine_id_gemini/internal/common"
	"github.com/snapmed/medicine_id_gemini/internal/profile"
	"github.com/snapmed/medicine_id_gemini/internal/quality"
	"github.com/snapmed/medicine_id_gemini/internal/search"
	"github.com/snapmed/medicine_id_gemini/internal/sources"
)

// Disclaimer is attached verbatim to every response, success or failure
const Disclaimer = "This information is provided for identification assistance only and is not a substitute for professional medical advice, diagnosis, or treatment. Always consult a pharmacist or physician before taking any medication."

// Service runs the identification pipeline. It never returns an error past
// its boundary: every failure degrades to a low-confidence response that
// still carries the full envelope.
type Service struct {
	Vision ai.VisionProvider
	Engine *aggregator.Engine
}

func NewService(vision ai.VisionProvider, engine *aggregator.Engine) *Service {
	return &Service{Vision: vision, Engine: engine}
}

// Response is the envelope returned for both modes
type Response struct {
	Analysis     *ai.VisionAnalysisResult `json:"analysis"`
	MedicineInfo *MedicineInfo            `json:"medicineInfo,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
	Disclaimer   string                   `json:"disclaimer"`
	Summary      map[string]interface{}   `json:"summary,omitempty"`
}

// MedicineInfo wraps the aggregated data for one medicine
type MedicineInfo struct {
	BasicInfo         BasicInfo                             `json:"basicInfo"`
	ComprehensiveInfo *profile.ComprehensiveMedicineProfile `json:"comprehensiveInfo,omitempty"`
	DataSources       []DataSourceReport                    `json:"dataSources,omitempty"`
	Sources           []string                              `json:"sources"`
	Mismatches        []aggregator.FieldMismatch            `json:"mismatches,omitempty"`
	DataQuality       *quality.DataQualityMetrics           `json:"dataQuality,omitempty"`
	LastUpdated       time.Time                             `json:"lastUpdated"`
}

// BasicInfo is the at-a-glance identification summary
type BasicInfo struct {
	Name               string `json:"name"`
	BrandName          string `json:"brandName"`
	GenericName        string `json:"genericName"`
	MedicineType       string `json:"medicineType"`
	Confidence         int    `json:"confidence"`
	Identified         bool   `json:"identified"`
	VerificationNeeded bool   `json:"verificationNeeded"`
}

// DataSourceReport summarizes one adapter's behavior during the run
type DataSourceReport struct {
	SourceID    string  `json:"sourceId"`
	Reliability float64 `json:"reliability"`
	Attempts    int     `json:"attempts"`
	Found       int     `json:"found"`
	Errors      int     `json:"errors"`
}

// IdentifyQuick runs the fast vision-only pass so the user can confirm a
// name before the expensive aggregation. No external sources are queried.
func (s *Service) IdentifyQuick(ctx context.Context, images []ai.ImageInput) *Response {
	reqCtx := common.NewRequestContext("quick")

	reqCtx.StartStep("quick_vision_analysis")
	analysis, tokens, err := s.Vision.AnalyzeQuick(ctx, images, reqCtx)
	if err != nil {
		analysis = ai.FallbackResult(err.Error())
	}
	reqCtx.EndStep("success", tokens, nil)

	resp := &Response{
		Analysis: analysis,
		MedicineInfo: &MedicineInfo{
			BasicInfo:   basicInfoFrom(analysis, nil),
			Sources:     []string{},
			LastUpdated: time.Now().UTC(),
		},
		Timestamp:  time.Now().UTC(),
		Disclaimer: Disclaimer,
		Summary:    reqCtx.GetSummary(),
	}
	return resp
}

// IdentifyComprehensive runs the full pipeline: comprehensive vision
// analysis anchored on the user-verified name, term synthesis, source
// aggregation, profile compilation and quality scoring.
func (s *Service) IdentifyComprehensive(ctx context.Context, images []ai.ImageInput, verifiedName string) *Response {
	reqCtx := common.NewRequestContext("comprehensive")

	reqCtx.StartStep("full_vision_analysis")
	analysis, tokens, err := s.Vision.AnalyzeComprehensive(ctx, images, verifiedName, reqCtx)
	if err != nil {
		analysis = ai.FallbackResult(err.Error())
	}
	reqCtx.EndStep("success", tokens, nil)

	reqCtx.StartStep("synthesize_search_terms")
	terms := withVerifiedName(search.Synthesize(analysis), verifiedName)
	reqCtx.EndStep("success", nil, nil)
	reqCtx.LogInfo("Synthesized %d search terms", len(terms))

	reqCtx.StartStep("aggregate_sources")
	collected := s.Engine.Run(ctx, terms, reqCtx)
	reqCtx.EndStep("success", nil, nil)

	reqCtx.StartStep("compile_profile")
	compiled := profile.Compile(analysis, collected)
	reqCtx.EndStep("success", nil, nil)

	reqCtx.StartStep("score_data_quality")
	metrics := quality.Score(compiled, collected.Ledger, collected.Agreement)
	reqCtx.EndStep("success", nil, nil)

	resp := &Response{
		Analysis: analysis,
		MedicineInfo: &MedicineInfo{
			BasicInfo:         basicInfoFrom(analysis, compiled),
			ComprehensiveInfo: compiled,
			DataSources:       sourceReports(collected),
			Sources:           ledgerOrEmpty(collected.Ledger),
			Mismatches:        collected.Mismatches,
			DataQuality:       &metrics,
			LastUpdated:       time.Now().UTC(),
		},
		Timestamp:  time.Now().UTC(),
		Disclaimer: Disclaimer,
		Summary:    reqCtx.GetSummary(),
	}
	return resp
}

// withVerifiedName guarantees the user-verified name leads the term list.
// The vision result usually contains it already; when vision fell back to
// the low-confidence shape this is the only usable term.
func withVerifiedName(terms []search.SearchTerm, verifiedName string) []search.SearchTerm {
	if verifiedName == "" {
		return terms
	}
	for _, t := range terms {
		if strings.EqualFold(t.Value, verifiedName) {
			return terms
		}
	}
	lead := search.SearchTerm{Value: verifiedName, Source: search.SourceBrandName, Priority: 0}
	return append([]search.SearchTerm{lead}, terms...)
}

// basicInfoFrom prefers the compiled profile's primaries (which encode
// source priority) and falls back to the raw vision fields in quick mode.
func basicInfoFrom(analysis *ai.VisionAnalysisResult, compiled *profile.ComprehensiveMedicineProfile) BasicInfo {
	info := BasicInfo{
		MedicineType:       analysis.MedicineType,
		Confidence:         analysis.Confidence,
		Identified:         analysis.Identified,
		VerificationNeeded: analysis.VerificationNeeded,
	}

	if compiled != nil {
		if compiled.Identification.PrimaryBrandName != nil {
			info.BrandName = *compiled.Identification.PrimaryBrandName
		}
		if compiled.Identification.PrimaryGenericName != nil {
			info.GenericName = *compiled.Identification.PrimaryGenericName
		}
		if compiled.Identification.MedicineType != "" {
			info.MedicineType = compiled.Identification.MedicineType
		}
	} else if analysis.Identified {
		info.BrandName = analysis.CandidateNames.Brand
		info.GenericName = analysis.CandidateNames.Generic
	}

	switch {
	case info.BrandName != "":
		info.Name = info.BrandName
	case info.GenericName != "":
		info.Name = info.GenericName
	case analysis.Identified:
		info.Name = analysis.CandidateNames.Primary
	}
	return info
}

func sourceReports(collected *aggregator.Collected) []DataSourceReport {
	index := map[string]int{}
	var reports []DataSourceReport

	for _, r := range collected.Results {
		i, ok := index[r.SourceID]
		if !ok {
			i = len(reports)
			index[r.SourceID] = i
			reports = append(reports, DataSourceReport{
				SourceID:    r.SourceID,
				Reliability: r.ReliabilityWeight,
			})
		}
		reports[i].Attempts++
		switch r.Status {
		case sources.StatusFound:
			reports[i].Found++
		case sources.StatusError:
			reports[i].Errors++
		}
	}
	return reports
}

func ledgerOrEmpty(ledger []string) []string {
	if ledger == nil {
		return []string{}
	}
	return ledger
}
