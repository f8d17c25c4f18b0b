// parse_test.go - Tests for JSON extraction and repair of model output

package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "pure object",
			input: `{"identified": true}`,
			want:  `{"identified": true}`,
		},
		{
			name:  "prose around the object",
			input: "Here is the analysis:\n{\"identified\": false}\nLet me know if you need more.",
			want:  `{"identified": false}`,
		},
		{
			name:  "markdown fenced",
			input: "```json\n{\"confidence\": 7}\n```",
			want:  `{"confidence": 7}`,
		},
		{
			name:  "nested objects",
			input: `{"a": {"b": {"c": 1}}} trailing`,
			want:  `{"a": {"b": {"c": 1}}}`,
		},
		{
			name:  "braces inside string values",
			input: `{"reasoning": "shape is {round}"}`,
			want:  `{"reasoning": "shape is {round}"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"allText": "says \"Advil\" on the box"}`,
			want:  `{"allText": "says \"Advil\" on the box"}`,
		},
		{
			name:    "no object at all",
			input:   "I could not identify the medicine.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"identified": true`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixJSONEscaping(t *testing.T) {
	raw := "{\"reasoning\": \"line one\nline two\"}"
	fixed := fixJSONEscaping(raw)
	assert.Equal(t, `{"reasoning": "line one\nline two"}`, fixed)

	raw = "{\"allText\": \"tab\there\"}"
	assert.Equal(t, `{"allText": "tab\there"}`, fixJSONEscaping(raw))
}

func TestParseAnalysisText(t *testing.T) {
	text := `{
		"identified": true,
		"confidence": 8,
		"medicineType": "tablet",
		"candidateNames": {"brand": "Advil", "generic": "Ibuprofen", "primary": "Advil"},
		"activeIngredients": ["ibuprofen 200 mg"],
		"extractedText": {"allText": "Advil Ibuprofen Tablets 200 mg", "drugNames": ["Advil"]},
		"safetyInfo": "May cause stomach upset",
		"reasoning": "Brand name clearly printed on blister pack",
		"verificationNeeded": false
	}`

	result, err := ParseAnalysisText(text)
	require.NoError(t, err)

	assert.True(t, result.Identified)
	assert.Equal(t, 8, result.Confidence)
	assert.Equal(t, "Advil", result.CandidateNames.Brand)
	assert.Equal(t, "Ibuprofen", result.CandidateNames.Generic)
	assert.Equal(t, []string{"ibuprofen 200 mg"}, result.ActiveIngredients)

	// normalize allocates the slices JSON left out
	assert.NotNil(t, result.ExtractedText.Warnings)
	assert.NotNil(t, result.ExtractedText.Directions)
	assert.NotNil(t, result.ExtractedText.Codes)
}

func TestParseAnalysisTextClampsConfidence(t *testing.T) {
	result, err := ParseAnalysisText(`{"identified": true, "confidence": 99}`)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Confidence)

	result, err = ParseAnalysisText(`{"identified": false, "confidence": -3}`)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Confidence)
}

func TestParseAnalysisTextInconsistenciesForceVerification(t *testing.T) {
	text := `{
		"identified": true,
		"confidence": 7,
		"verificationNeeded": false,
		"imageInconsistencies": ["lot number differs between image 1 and image 2"]
	}`

	result, err := ParseAnalysisText(text)
	require.NoError(t, err)
	assert.True(t, result.VerificationNeeded)
	assert.Len(t, result.ImageInconsistencies, 1)
}

func TestParseAnalysisTextMalformed(t *testing.T) {
	_, err := ParseAnalysisText("the model refused to answer")
	assert.Error(t, err)

	_, err = ParseAnalysisText(`{"identified": }`)
	assert.Error(t, err)
}

func TestFallbackResult(t *testing.T) {
	result := FallbackResult("the AI model call failed")

	assert.False(t, result.Identified)
	assert.Equal(t, 1, result.Confidence)
	assert.True(t, result.VerificationNeeded)
	assert.Equal(t, "unknown", result.MedicineType)
	assert.True(t, strings.Contains(result.Reasoning, "the AI model call failed"))
	assert.NotNil(t, result.ActiveIngredients)
	assert.NotNil(t, result.ExtractedText.DrugNames)
}

func TestFallbackResultEmptyReason(t *testing.T) {
	result := FallbackResult("")
	assert.False(t, result.Identified)
	assert.NotEmpty(t, result.Reasoning)
}
