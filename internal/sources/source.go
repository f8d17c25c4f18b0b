// source.go - Uniform adapter interface over the external drug-data providers

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Status is the outcome class of one adapter query
type Status string

const (
	// StatusFound means the provider returned usable data for the term
	StatusFound Status = "found"
	// StatusNotFound means the provider had no match. Expected and
	// non-exceptional; a 404-equivalent maps here, never to error.
	StatusNotFound Status = "not_found"
	// StatusError means the provider was unreachable or misbehaved
	StatusError Status = "error"
)

// SourceResult is one adapter's raw response for one term. Owned by the
// aggregation engine for the lifetime of a single pipeline run, never
// persisted.
type SourceResult struct {
	SourceID          string      `json:"sourceId"`
	ReliabilityWeight float64     `json:"reliabilityWeight"`
	Status            Status      `json:"status"`
	Term              string      `json:"term"`
	FetchedAt         time.Time   `json:"fetchedAt"`
	Payload           interface{} `json:"payload,omitempty"` // provider-specific shape
	ErrMessage        string      `json:"error,omitempty"`
}

// Adapter wraps one external data provider behind a uniform query
// capability. Query never returns a Go error: provider failures are folded
// into a StatusError result so no source failure can propagate to the
// pipeline caller.
type Adapter interface {
	ID() string
	Reliability() float64
	Query(ctx context.Context, term string) *SourceResult
}

// found/notFound/errResult build uniformly-shaped results per adapter

func found(id string, weight float64, term string, payload interface{}) *SourceResult {
	return &SourceResult{
		SourceID:          id,
		ReliabilityWeight: weight,
		Status:            StatusFound,
		Term:              term,
		FetchedAt:         time.Now(),
		Payload:           payload,
	}
}

func notFound(id string, weight float64, term string) *SourceResult {
	return &SourceResult{
		SourceID:          id,
		ReliabilityWeight: weight,
		Status:            StatusNotFound,
		Term:              term,
		FetchedAt:         time.Now(),
	}
}

func errResult(id string, weight float64, term string, err error) *SourceResult {
	return &SourceResult{
		SourceID:          id,
		ReliabilityWeight: weight,
		Status:            StatusError,
		Term:              term,
		FetchedAt:         time.Now(),
		ErrMessage:        err.Error(),
	}
}

// getJSON performs a GET and decodes the JSON body into v. Returns the HTTP
// status code so callers can map 404 to NotFound.
func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) (int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing response: %w", err)
	}
	return resp.StatusCode, nil
}
