// drugsfda.go - Drugs@FDA adapter (national drug-approval filings)

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// drugsFDABase is the openFDA Drugs@FDA endpoint. Declared as a var so tests
// can substitute an httptest server.
var drugsFDABase = "https://api.fda.gov/drug/drugsfda.json"

const drugsFDAID = "drugsfda"

// DrugsFDAAdapter queries approval filings by brand, generic or substance
// name. Highest reliability weight in the merge model: these are regulatory
// filings, not crowd data.
type DrugsFDAAdapter struct {
	Client *http.Client
}

func (a *DrugsFDAAdapter) ID() string           { return drugsFDAID }
func (a *DrugsFDAAdapter) Reliability() float64 { return 0.95 }

// DrugsFDAPayload is the flattened filing data carried into profile merging
type DrugsFDAPayload struct {
	ApplicationNumbers []string `json:"applicationNumbers"`
	SponsorNames       []string `json:"sponsorNames"`
	BrandNames         []string `json:"brandNames"`
	GenericNames       []string `json:"genericNames"`
	SubstanceNames     []string `json:"substanceNames"`
	ManufacturerNames  []string `json:"manufacturerNames"`
	Routes             []string `json:"routes"`
	DosageForms        []string `json:"dosageForms"`
	Strengths          []string `json:"strengths"`
	MarketingStatuses  []string `json:"marketingStatuses"`
}

type drugsFDAResponse struct {
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Results []struct {
		ApplicationNumber string `json:"application_number"`
		SponsorName       string `json:"sponsor_name"`
		OpenFDA           struct {
			BrandName        []string `json:"brand_name"`
			GenericName      []string `json:"generic_name"`
			SubstanceName    []string `json:"substance_name"`
			ManufacturerName []string `json:"manufacturer_name"`
			Route            []string `json:"route"`
		} `json:"openfda"`
		Products []struct {
			BrandName         string `json:"brand_name"`
			DosageForm        string `json:"dosage_form"`
			Route             string `json:"route"`
			MarketingStatus   string `json:"marketing_status"`
			ActiveIngredients []struct {
				Name     string `json:"name"`
				Strength string `json:"strength"`
			} `json:"active_ingredients"`
		} `json:"products"`
	} `json:"results"`
}

// Query looks the term up against the filings index
func (a *DrugsFDAAdapter) Query(ctx context.Context, term string) *SourceResult {
	search := fmt.Sprintf(`openfda.brand_name:%[1]q openfda.generic_name:%[1]q openfda.substance_name:%[1]q`, term)
	params := url.Values{
		"search": {search},
		"limit":  {"3"},
	}
	reqURL := drugsFDABase + "?" + params.Encode()

	var body drugsFDAResponse
	status, err := getJSON(ctx, a.Client, reqURL, &body)
	if err != nil {
		return errResult(drugsFDAID, a.Reliability(), term, err)
	}
	// openFDA signals "no match" as HTTP 404 with an error envelope
	if status == http.StatusNotFound || body.Error != nil || len(body.Results) == 0 {
		return notFound(drugsFDAID, a.Reliability(), term)
	}

	payload := &DrugsFDAPayload{}
	for _, r := range body.Results {
		appendUnique(&payload.ApplicationNumbers, r.ApplicationNumber)
		appendUnique(&payload.SponsorNames, r.SponsorName)
		appendUniqueAll(&payload.BrandNames, r.OpenFDA.BrandName)
		appendUniqueAll(&payload.GenericNames, r.OpenFDA.GenericName)
		appendUniqueAll(&payload.SubstanceNames, r.OpenFDA.SubstanceName)
		appendUniqueAll(&payload.ManufacturerNames, r.OpenFDA.ManufacturerName)
		appendUniqueAll(&payload.Routes, r.OpenFDA.Route)
		for _, p := range r.Products {
			appendUnique(&payload.BrandNames, p.BrandName)
			appendUnique(&payload.DosageForms, p.DosageForm)
			appendUnique(&payload.Routes, p.Route)
			appendUnique(&payload.MarketingStatuses, p.MarketingStatus)
			for _, ing := range p.ActiveIngredients {
				appendUnique(&payload.SubstanceNames, ing.Name)
				if ing.Strength != "" {
					appendUnique(&payload.Strengths, ing.Name+" "+ing.Strength)
				}
			}
		}
	}

	return found(drugsFDAID, a.Reliability(), term, payload)
}

// appendUnique adds v to the slice unless empty or already present
func appendUnique(dst *[]string, v string) {
	if v == "" {
		return
	}
	for _, existing := range *dst {
		if existing == v {
			return
		}
	}
	*dst = append(*dst, v)
}

func appendUniqueAll(dst *[]string, vals []string) {
	for _, v := range vals {
		appendUnique(dst, v)
	}
}
