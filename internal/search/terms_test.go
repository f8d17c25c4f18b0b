// terms_test.go - Tests for search term synthesis

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapmed/medicine_id_gemini/internal/ai"
)

func visionResult() *ai.VisionAnalysisResult {
	return &ai.VisionAnalysisResult{
		Identified: true,
		Confidence: 8,
		CandidateNames: ai.CandidateNames{
			Brand:   "Advil",
			Generic: "Ibuprofen",
			Primary: "Advil",
		},
		ActiveIngredients: []string{"ibuprofen 200 mg"},
		ExtractedText: ai.ExtractedText{
			AllText:   "Advil Ibuprofen Tablets 200 mg Pain Reliever",
			DrugNames: []string{"Advil", "ibuprofen"},
			Codes:     []string{"0573-0164-40"},
		},
		ManufacturingInfo: ai.ManufacturingInfo{
			Manufacturer: "Haleon",
		},
	}
}

func values(terms []SearchTerm) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Value)
	}
	return out
}

func TestSynthesizePriorityOrder(t *testing.T) {
	terms := Synthesize(visionResult())
	require.NotEmpty(t, terms)

	assert.Equal(t, "Advil", terms[0].Value)
	assert.Equal(t, SourceBrandName, terms[0].Source)
	assert.Equal(t, "Ibuprofen", terms[1].Value)
	assert.Equal(t, SourceGenericName, terms[1].Source)

	for i := 1; i < len(terms); i++ {
		assert.LessOrEqual(t, terms[i-1].Priority, terms[i].Priority, "terms must be priority-ordered")
	}
}

func TestSynthesizeDeduplicatesCaseInsensitively(t *testing.T) {
	terms := Synthesize(visionResult())

	// "ibuprofen" appears as generic name, active ingredient, extracted drug
	// name and free text; only the first casing survives.
	count := 0
	for _, v := range values(terms) {
		if v == "Ibuprofen" || v == "ibuprofen" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, values(terms), "Ibuprofen")
	assert.NotContains(t, values(terms), "ibuprofen")
}

func TestSynthesizeStripsDosageSuffix(t *testing.T) {
	terms := Synthesize(visionResult())
	vals := values(terms)

	assert.NotContains(t, vals, "ibuprofen 200 mg")
	// the stripped strength resurfaces in a compound term
	assert.Contains(t, vals, "Advil 200 mg")
}

func TestSynthesizeCompoundTerms(t *testing.T) {
	terms := Synthesize(visionResult())
	vals := values(terms)

	assert.Contains(t, vals, "Advil Haleon")
}

func TestSynthesizeFiltersFreeText(t *testing.T) {
	result := &ai.VisionAnalysisResult{
		Identified: true,
		ExtractedText: ai.ExtractedText{
			AllText: "Take 2 Tablets daily with water Naproxen",
		},
	}
	terms := Synthesize(result)
	vals := values(terms)

	assert.Contains(t, vals, "Naproxen")
	assert.NotContains(t, vals, "Tablets", "stopword must be filtered")
	assert.NotContains(t, vals, "with", "stopword must be filtered")
	assert.NotContains(t, vals, "2", "non-alphabetic token must be filtered")
}

func TestSynthesizePrimaryFallbackName(t *testing.T) {
	result := &ai.VisionAnalysisResult{
		Identified:     true,
		CandidateNames: ai.CandidateNames{Primary: "Tylenol PM"},
	}
	terms := Synthesize(result)
	require.NotEmpty(t, terms)
	assert.Equal(t, "Tylenol PM", terms[0].Value)
}

func TestSynthesizeEmptyResult(t *testing.T) {
	terms := Synthesize(&ai.VisionAnalysisResult{})
	assert.Empty(t, terms)
}

func TestPrimaryAndSecondaryCaps(t *testing.T) {
	var terms []SearchTerm
	for _, v := range []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"} {
		terms = append(terms, SearchTerm{Value: v, Source: SourceFreeText, Priority: 6})
	}

	assert.Len(t, Primary(terms), 5)
	assert.Len(t, Secondary(terms), 3)

	short := terms[:2]
	assert.Len(t, Primary(short), 2)
	assert.Len(t, Secondary(short), 2)
}
