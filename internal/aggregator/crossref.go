// crossref.go - Name agreement analysis across source payloads

package aggregator

import (
	"sort"
	"strings"

	"github.com/snapmed/medicine_id_gemini/internal/sources"
)

// nameAgreement holds, per reporting source, the set of names it claimed for
// one field. Comparison is case-insensitive; the first-seen casing is kept
// for mismatch reports.
type nameAgreement struct {
	bySource map[string]map[string]bool // sourceID -> lowercased names
	display  map[string]string          // lowercased name -> original casing

	maxAgreement int
}

// agreementByName builds the per-source name sets for one field and computes
// the largest count of sources that agree on a single name.
func agreementByName(collected *Collected, extract func(*sources.SourceResult) []string) *nameAgreement {
	agg := &nameAgreement{
		bySource: map[string]map[string]bool{},
		display:  map[string]string{},
	}

	for _, r := range collected.Found() {
		names := extract(r)
		if len(names) == 0 {
			continue
		}
		set := agg.bySource[r.SourceID]
		if set == nil {
			set = map[string]bool{}
			agg.bySource[r.SourceID] = set
		}
		for _, name := range names {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			set[key] = true
			if _, ok := agg.display[key]; !ok {
				agg.display[key] = trimmed
			}
		}
	}

	counts := map[string]int{}
	for _, set := range agg.bySource {
		for key := range set {
			counts[key]++
			if counts[key] > agg.maxAgreement {
				agg.maxAgreement = counts[key]
			}
		}
	}

	return agg
}

// mismatches reports source pairs whose name sets for the field share
// nothing at all. Overlapping sets are agreement even when the extras
// differ, so only fully disjoint pairs count.
func (agg *nameAgreement) mismatches(field string) []FieldMismatch {
	ids := make([]string, 0, len(agg.bySource))
	for id := range agg.bySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []FieldMismatch
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := agg.bySource[ids[i]], agg.bySource[ids[j]]
			if overlaps(a, b) {
				continue
			}
			out = append(out, FieldMismatch{
				Field:   field,
				Values:  []string{agg.firstDisplay(a), agg.firstDisplay(b)},
				Sources: []string{ids[i], ids[j]},
			})
		}
	}
	return out
}

func (agg *nameAgreement) firstDisplay(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return agg.display[keys[0]]
}

func overlaps(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// brandNamesOf pulls the brand names a payload asserted, by payload type
func brandNamesOf(r *sources.SourceResult) []string {
	switch p := r.Payload.(type) {
	case *sources.DrugsFDAPayload:
		return p.BrandNames
	case *sources.RxNormPayload:
		var names []string
		if p.TTY == "BN" && p.Name != "" {
			names = append(names, p.Name)
		}
		for _, c := range p.RelatedConcepts {
			if c.TTY == "BN" {
				names = append(names, c.Name)
			}
		}
		return names
	case *sources.LabelPayload:
		return p.BrandNames
	case *sources.LocalCatalogPayload:
		var names []string
		for _, m := range p.Matches {
			names = append(names, m.BrandName)
		}
		return names
	}
	return nil
}

// genericNamesOf pulls the generic/substance names a payload asserted
func genericNamesOf(r *sources.SourceResult) []string {
	switch p := r.Payload.(type) {
	case *sources.DrugsFDAPayload:
		names := append([]string{}, p.GenericNames...)
		return append(names, p.SubstanceNames...)
	case *sources.RxNormPayload:
		var names []string
		if p.TTY == "IN" && p.Name != "" {
			names = append(names, p.Name)
		}
		for _, c := range p.RelatedConcepts {
			if c.TTY == "IN" {
				names = append(names, c.Name)
			}
		}
		return names
	case *sources.LabelPayload:
		return p.GenericNames
	case *sources.LocalCatalogPayload:
		var names []string
		for _, m := range p.Matches {
			names = append(names, m.GenericName)
		}
		return names
	}
	return nil
}
