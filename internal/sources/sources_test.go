// sources_test.go - Adapter tests against stubbed providers

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapmed/medicine_id_gemini/internal/storage"
)

func TestDrugsFDAFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "search=")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [{
				"application_number": "NDA018989",
				"sponsor_name": "HALEON",
				"openfda": {
					"brand_name": ["ADVIL"],
					"generic_name": ["IBUPROFEN"],
					"substance_name": ["IBUPROFEN"],
					"manufacturer_name": ["Haleon US Holdings LLC"],
					"route": ["ORAL"]
				},
				"products": [{
					"brand_name": "ADVIL",
					"dosage_form": "TABLET",
					"route": "ORAL",
					"marketing_status": "Over-the-counter",
					"active_ingredients": [{"name": "IBUPROFEN", "strength": "200MG"}]
				}]
			}]
		}`))
	}))
	defer server.Close()

	old := drugsFDABase
	drugsFDABase = server.URL
	defer func() { drugsFDABase = old }()

	adapter := &DrugsFDAAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "advil")

	require.Equal(t, StatusFound, result.Status)
	assert.Equal(t, "drugsfda", result.SourceID)
	assert.InDelta(t, 0.95, result.ReliabilityWeight, 0.001)

	payload, ok := result.Payload.(*DrugsFDAPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"ADVIL"}, payload.BrandNames)
	assert.Equal(t, []string{"IBUPROFEN"}, payload.GenericNames)
	assert.Equal(t, []string{"NDA018989"}, payload.ApplicationNumbers)
	assert.Equal(t, []string{"IBUPROFEN 200MG"}, payload.Strengths)
	assert.Equal(t, []string{"TABLET"}, payload.DosageForms)
}

func TestDrugsFDANoMatchIs404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": "NOT_FOUND", "message": "No matches found!"}}`))
	}))
	defer server.Close()

	old := drugsFDABase
	drugsFDABase = server.URL
	defer func() { drugsFDABase = old }()

	adapter := &DrugsFDAAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "nonexistium")

	assert.Equal(t, StatusNotFound, result.Status)
	assert.Empty(t, result.ErrMessage)
}

func TestDrugsFDAServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	old := drugsFDABase
	drugsFDABase = server.URL
	defer func() { drugsFDABase = old }()

	adapter := &DrugsFDAAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "advil")

	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.ErrMessage)
}

func TestRxNormFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxcui.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ibuprofen", r.URL.Query().Get("name"))
		w.Write([]byte(`{"idGroup": {"rxnormId": ["5640"]}}`))
	})
	mux.HandleFunc("/rxcui/5640/properties.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {"rxcui": "5640", "name": "ibuprofen", "synonym": "", "tty": "IN"}}`))
	})
	mux.HandleFunc("/rxcui/5640/related.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"relatedGroup": {"conceptGroup": [
			{"tty": "BN", "conceptProperties": [{"rxcui": "153010", "name": "Advil", "tty": "BN"}]},
			{"tty": "SCD", "conceptProperties": [{"rxcui": "310965", "name": "ibuprofen 200 MG Oral Tablet", "tty": "SCD"}]}
		]}}`))
	})
	mux.HandleFunc("/rxcui/5640/ndcs.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ndcGroup": {"ndcList": {"ndc": ["00573016440"]}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	old := rxNormBase
	rxNormBase = server.URL
	defer func() { rxNormBase = old }()

	adapter := &RxNormAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "ibuprofen")

	require.Equal(t, StatusFound, result.Status)
	payload, ok := result.Payload.(*RxNormPayload)
	require.True(t, ok)
	assert.Equal(t, "5640", payload.RxCUI)
	assert.Equal(t, "ibuprofen", payload.Name)
	assert.Equal(t, "IN", payload.TTY)
	require.Len(t, payload.RelatedConcepts, 2)
	assert.Equal(t, "Advil", payload.RelatedConcepts[0].Name)
	assert.Equal(t, []string{"00573016440"}, payload.NDCs)
}

func TestRxNormUnresolvedTerm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxcui.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup": {}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	old := rxNormBase
	rxNormBase = server.URL
	defer func() { rxNormBase = old }()

	adapter := &RxNormAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "gibberish")

	assert.Equal(t, StatusNotFound, result.Status)
}

func TestRxNormToleratesSubFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rxcui.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup": {"rxnormId": ["5640"]}}`))
	})
	// properties/related/ndcs all 500
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	old := rxNormBase
	rxNormBase = server.URL
	defer func() { rxNormBase = old }()

	adapter := &RxNormAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "ibuprofen")

	require.Equal(t, StatusFound, result.Status)
	payload := result.Payload.(*RxNormPayload)
	assert.Equal(t, "5640", payload.RxCUI)
	assert.Empty(t, payload.Name)
}

func TestFAERSFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "patient.reaction.reactionmeddrapt.exact", r.URL.Query().Get("count"))
		w.Write([]byte(`{"results": [
			{"term": "NAUSEA", "count": 4521},
			{"term": "DIZZINESS", "count": 830},
			{"term": "RASH", "count": 42}
		]}`))
	}))
	defer server.Close()

	old := faersBase
	faersBase = server.URL
	defer func() { faersBase = old }()

	adapter := &FAERSAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "ibuprofen")

	require.Equal(t, StatusFound, result.Status)
	payload := result.Payload.(*FAERSPayload)
	require.Len(t, payload.Reactions, 3)
	assert.Equal(t, ReactionCount{Reaction: "NAUSEA", Reports: 4521}, payload.Reactions[0])
}

func TestFAERSEmptyIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	old := faersBase
	faersBase = server.URL
	defer func() { faersBase = old }()

	adapter := &FAERSAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "nonexistium")
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestLabelFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{
			"indications_and_usage": ["temporarily relieves minor aches and pains"],
			"warnings": ["Stomach bleeding warning"],
			"dosage_and_administration": ["take 1 tablet every 4 to 6 hours"],
			"openfda": {
				"brand_name": ["ADVIL"],
				"generic_name": ["IBUPROFEN"],
				"manufacturer_name": ["Haleon"]
			}
		}]}`))
	}))
	defer server.Close()

	old := labelBase
	labelBase = server.URL
	defer func() { labelBase = old }()

	adapter := &LabelAdapter{Client: server.Client()}
	result := adapter.Query(context.Background(), "advil")

	require.Equal(t, StatusFound, result.Status)
	payload := result.Payload.(*LabelPayload)
	assert.Equal(t, []string{"temporarily relieves minor aches and pains"}, payload.Indications)
	assert.Equal(t, []string{"Stomach bleeding warning"}, payload.Warnings)
	assert.Equal(t, []string{"ADVIL"}, payload.BrandNames)
}

func TestDailyMedAlwaysNotFound(t *testing.T) {
	adapter := &DailyMedAdapter{}
	result := adapter.Query(context.Background(), "advil")

	assert.Equal(t, StatusNotFound, result.Status)
	assert.Equal(t, "dailymed", result.SourceID)
	assert.InDelta(t, 0.85, result.ReliabilityWeight, 0.001)
}

func TestLocalCatalogMatch(t *testing.T) {
	entries := []storage.CatalogEntry{
		{BrandName: "Advil", GenericName: "Ibuprofen", ActiveIngredients: []string{"ibuprofen"}},
		{BrandName: "Tylenol", GenericName: "Acetaminophen", ActiveIngredients: []string{"acetaminophen"}},
	}
	adapter := NewLocalCatalogAdapter(entries)

	result := adapter.Query(context.Background(), "ibuprofen")
	require.Equal(t, StatusFound, result.Status)
	payload := result.Payload.(*LocalCatalogPayload)
	require.Len(t, payload.Matches, 1)
	assert.Equal(t, "Advil", payload.Matches[0].BrandName)

	// case-insensitive substring on brand name
	result = adapter.Query(context.Background(), "TYLE")
	require.Equal(t, StatusFound, result.Status)

	result = adapter.Query(context.Background(), "nonexistium")
	assert.Equal(t, StatusNotFound, result.Status)

	result = adapter.Query(context.Background(), "   ")
	assert.Equal(t, StatusNotFound, result.Status)
}
