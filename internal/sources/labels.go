// labels.go - Structured label data adapter (openFDA drug labels)

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// labelBase is the openFDA structured product label endpoint. Var so tests
// can substitute an httptest server.
var labelBase = "https://api.fda.gov/drug/label.json"

const labelID = "openfda_label"

// LabelAdapter fetches machine-readable label sections (indications,
// contraindications, warnings, interactions) keyed by brand/generic name.
type LabelAdapter struct {
	Client *http.Client
}

func (a *LabelAdapter) ID() string           { return labelID }
func (a *LabelAdapter) Reliability() float64 { return 0.85 }

// LabelPayload carries the structured label sections. Section texts stay as
// ordered lists so nothing any label said gets collapsed away.
type LabelPayload struct {
	Indications       []string `json:"indications"`
	Contraindications []string `json:"contraindications"`
	Warnings          []string `json:"warnings"`
	Interactions      []string `json:"interactions"`
	Dosage            []string `json:"dosage"`
	AdverseReactions  []string `json:"adverseReactions"`
	BrandNames        []string `json:"brandNames"`
	GenericNames      []string `json:"genericNames"`
	Manufacturers     []string `json:"manufacturers"`
}

type labelResponse struct {
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Results []struct {
		IndicationsAndUsage     []string `json:"indications_and_usage"`
		Contraindications       []string `json:"contraindications"`
		Warnings                []string `json:"warnings"`
		DrugInteractions        []string `json:"drug_interactions"`
		DosageAndAdministration []string `json:"dosage_and_administration"`
		AdverseReactions        []string `json:"adverse_reactions"`
		OpenFDA                 struct {
			BrandName        []string `json:"brand_name"`
			GenericName      []string `json:"generic_name"`
			ManufacturerName []string `json:"manufacturer_name"`
		} `json:"openfda"`
	} `json:"results"`
}

// Query fetches the best-matching structured label for the term
func (a *LabelAdapter) Query(ctx context.Context, term string) *SourceResult {
	search := fmt.Sprintf(`openfda.brand_name:%[1]q openfda.generic_name:%[1]q`, term)
	params := url.Values{
		"search": {search},
		"limit":  {"1"},
	}
	reqURL := labelBase + "?" + params.Encode()

	var body labelResponse
	status, err := getJSON(ctx, a.Client, reqURL, &body)
	if err != nil {
		return errResult(labelID, a.Reliability(), term, err)
	}
	if status == http.StatusNotFound || body.Error != nil || len(body.Results) == 0 {
		return notFound(labelID, a.Reliability(), term)
	}

	r := body.Results[0]
	payload := &LabelPayload{
		Indications:       r.IndicationsAndUsage,
		Contraindications: r.Contraindications,
		Warnings:          r.Warnings,
		Interactions:      r.DrugInteractions,
		Dosage:            r.DosageAndAdministration,
		AdverseReactions:  r.AdverseReactions,
		BrandNames:        r.OpenFDA.BrandName,
		GenericNames:      r.OpenFDA.GenericName,
		Manufacturers:     r.OpenFDA.ManufacturerName,
	}

	return found(labelID, a.Reliability(), term, payload)
}
