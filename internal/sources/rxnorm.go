// rxnorm.go - RxNorm adapter (standardized drug nomenclature)

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// rxNormBase is the RxNav REST root. Var so tests can substitute an
// httptest server.
var rxNormBase = "https://rxnav.nlm.nih.gov/REST"

const rxNormID = "rxnorm"

// RxNormAdapter resolves a term to a standardized concept id (RxCUI), then
// fetches its properties, related concepts and product identifiers. Related
// concepts feed the alternatives sub-record later.
type RxNormAdapter struct {
	Client *http.Client
}

func (a *RxNormAdapter) ID() string           { return rxNormID }
func (a *RxNormAdapter) Reliability() float64 { return 0.90 }

// RelatedConcept is one concept tied to the resolved RxCUI
type RelatedConcept struct {
	RxCUI string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"` // term type: BN brand, IN ingredient, SCD clinical drug
}

// RxNormPayload carries the resolved nomenclature data
type RxNormPayload struct {
	RxCUI           string           `json:"rxcui"`
	Name            string           `json:"name"`
	Synonym         string           `json:"synonym"`
	TTY             string           `json:"tty"`
	RelatedConcepts []RelatedConcept `json:"relatedConcepts"`
	NDCs            []string         `json:"ndcs"`
}

type rxcuiResponse struct {
	IDGroup struct {
		RxNormID []string `json:"rxnormId"`
	} `json:"idGroup"`
}

type rxPropertiesResponse struct {
	Properties struct {
		RxCUI   string `json:"rxcui"`
		Name    string `json:"name"`
		Synonym string `json:"synonym"`
		TTY     string `json:"tty"`
	} `json:"properties"`
}

type rxRelatedResponse struct {
	RelatedGroup struct {
		ConceptGroup []struct {
			TTY               string `json:"tty"`
			ConceptProperties []struct {
				RxCUI string `json:"rxcui"`
				Name  string `json:"name"`
				TTY   string `json:"tty"`
			} `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"relatedGroup"`
}

type rxNDCResponse struct {
	NDCGroup struct {
		NDCList struct {
			NDC []string `json:"ndc"`
		} `json:"ndcList"`
	} `json:"ndcGroup"`
}

// Query resolves the term and assembles the concept payload. Sub-fetch
// failures after a successful resolve are tolerated: a concept with missing
// related data still contributes its name fields.
func (a *RxNormAdapter) Query(ctx context.Context, term string) *SourceResult {
	resolveURL := fmt.Sprintf("%s/rxcui.json?%s", rxNormBase,
		url.Values{"name": {term}, "search": {"2"}}.Encode())

	var resolved rxcuiResponse
	status, err := getJSON(ctx, a.Client, resolveURL, &resolved)
	if err != nil {
		return errResult(rxNormID, a.Reliability(), term, err)
	}
	if status == http.StatusNotFound || len(resolved.IDGroup.RxNormID) == 0 {
		return notFound(rxNormID, a.Reliability(), term)
	}

	rxcui := resolved.IDGroup.RxNormID[0]
	payload := &RxNormPayload{RxCUI: rxcui}

	var props rxPropertiesResponse
	if _, err := getJSON(ctx, a.Client, fmt.Sprintf("%s/rxcui/%s/properties.json", rxNormBase, rxcui), &props); err == nil {
		payload.Name = props.Properties.Name
		payload.Synonym = props.Properties.Synonym
		payload.TTY = props.Properties.TTY
	}

	var related rxRelatedResponse
	relatedURL := fmt.Sprintf("%s/rxcui/%s/related.json?%s", rxNormBase, rxcui,
		url.Values{"tty": {"BN IN SCD"}}.Encode())
	if _, err := getJSON(ctx, a.Client, relatedURL, &related); err == nil {
		for _, group := range related.RelatedGroup.ConceptGroup {
			for _, c := range group.ConceptProperties {
				payload.RelatedConcepts = append(payload.RelatedConcepts, RelatedConcept{
					RxCUI: c.RxCUI,
					Name:  c.Name,
					TTY:   c.TTY,
				})
			}
		}
	}

	var ndcs rxNDCResponse
	if _, err := getJSON(ctx, a.Client, fmt.Sprintf("%s/rxcui/%s/ndcs.json", rxNormBase, rxcui), &ndcs); err == nil {
		payload.NDCs = ndcs.NDCGroup.NDCList.NDC
	}

	return found(rxNormID, a.Reliability(), term, payload)
}
