// faers.go - Adverse-event aggregator adapter (openFDA FAERS)

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// faersBase is the openFDA adverse-event endpoint. Var so tests can
// substitute an httptest server.
var faersBase = "https://api.fda.gov/drug/event.json"

const faersID = "faers"

// FAERSAdapter returns a term-frequency table of reported reactions for a
// medicine name. Report counts are later bucketed into common/serious/rare
// by the profile compiler.
type FAERSAdapter struct {
	Client *http.Client
}

func (a *FAERSAdapter) ID() string           { return faersID }
func (a *FAERSAdapter) Reliability() float64 { return 0.80 }

// ReactionCount is one reaction with its report count
type ReactionCount struct {
	Reaction string `json:"reaction"`
	Reports  int    `json:"reports"`
}

// FAERSPayload carries the reaction frequency table
type FAERSPayload struct {
	Reactions []ReactionCount `json:"reactions"`
}

type faersResponse struct {
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Results []struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	} `json:"results"`
}

// Query counts reported reactions associated with the term
func (a *FAERSAdapter) Query(ctx context.Context, term string) *SourceResult {
	params := url.Values{
		"search": {fmt.Sprintf("patient.drug.medicinalproduct:%q", term)},
		"count":  {"patient.reaction.reactionmeddrapt.exact"},
		"limit":  {"30"},
	}
	reqURL := faersBase + "?" + params.Encode()

	var body faersResponse
	status, err := getJSON(ctx, a.Client, reqURL, &body)
	if err != nil {
		return errResult(faersID, a.Reliability(), term, err)
	}
	if status == http.StatusNotFound || body.Error != nil || len(body.Results) == 0 {
		return notFound(faersID, a.Reliability(), term)
	}

	payload := &FAERSPayload{}
	for _, r := range body.Results {
		if r.Term == "" {
			continue
		}
		payload.Reactions = append(payload.Reactions, ReactionCount{
			Reaction: r.Term,
			Reports:  r.Count,
		})
	}
	if len(payload.Reactions) == 0 {
		return notFound(faersID, a.Reliability(), term)
	}

	return found(faersID, a.Reliability(), term, payload)
}
