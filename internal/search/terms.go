// terms.go - Deriving prioritized search terms from a vision analysis result

package search

import (
	"regexp"
	"strings"

	"github.com/snapmed/medicine_id_gemini/configs"
	"github.com/snapmed/medicine_id_gemini/internal/ai"
)

// TermSource records which field of the vision result a term came from
type TermSource string

const (
	SourceBrandName        TermSource = "brand_name"
	SourceGenericName      TermSource = "generic_name"
	SourceActiveIngredient TermSource = "active_ingredient"
	SourceCode             TermSource = "code"
	SourceDrugNameText     TermSource = "extracted_drug_name"
	SourceCompound         TermSource = "compound"
	SourceFreeText         TermSource = "free_text"
)

// SearchTerm is one deduplicated query string with provenance and rank
type SearchTerm struct {
	Value    string     `json:"value"`
	Source   TermSource `json:"source"`
	Priority int        `json:"priority"` // lower is queried first
}

// dosageSuffixRe strips trailing strength markers so "ibuprofen 200 mg"
// queries as "ibuprofen". The stripped suffix is kept as the strength for
// compound terms.
var dosageSuffixRe = regexp.MustCompile(`(?i)\s*\d+(?:\.\d+)?\s*(mg|mcg|g|ml|%)\s*$`)

var alphaTokenRe = regexp.MustCompile(`^[A-Za-z]+$`)

// stopwords are packaging/dosing terms that never identify a medicine
var stopwords = map[string]bool{
	"tablet": true, "tablets": true, "capsule": true, "capsules": true,
	"caplet": true, "caplets": true, "pill": true, "pills": true,
	"daily": true, "twice": true, "take": true, "taken": true, "oral": true,
	"dose": true, "dosage": true, "doses": true, "adult": true, "adults": true,
	"children": true, "coated": true, "film": true, "extended": true,
	"release": true, "relief": true, "strength": true, "maximum": true,
	"use": true, "uses": true, "only": true, "store": true, "keep": true,
	"warning": true, "warnings": true, "directions": true, "hours": true,
	"with": true, "water": true, "food": true, "contains": true, "each": true,
	"active": true, "ingredient": true, "ingredients": true, "the": true,
	"and": true, "not": true, "for": true, "reach": true, "out": true,
}

// Synthesize derives the deduplicated, priority-ordered term list from a
// vision result. Duplicates are collapsed case-insensitively, keeping the
// first casing seen so display names survive.
func Synthesize(result *ai.VisionAnalysisResult) []SearchTerm {
	var terms []SearchTerm
	seen := map[string]bool{}

	add := func(value string, source TermSource, priority int) {
		value = strings.TrimSpace(value)
		if len(value) < 2 {
			return
		}
		key := strings.ToLower(value)
		if seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, SearchTerm{Value: value, Source: source, Priority: priority})
	}

	brand := strings.TrimSpace(result.CandidateNames.Brand)
	generic := strings.TrimSpace(result.CandidateNames.Generic)

	add(brand, SourceBrandName, 0)
	add(generic, SourceGenericName, 1)
	if brand == "" && generic == "" {
		add(result.CandidateNames.Primary, SourceBrandName, 0)
	}

	// Active ingredients with the dosage suffix stripped. The stripped
	// strengths feed the compound terms below.
	var strengths []string
	for _, ing := range result.ActiveIngredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		if m := dosageSuffixRe.FindString(ing); m != "" {
			strengths = append(strengths, strings.TrimSpace(m))
		}
		add(dosageSuffixRe.ReplaceAllString(ing, ""), SourceActiveIngredient, 2)
	}

	if result.ManufacturingInfo.NDC != "" {
		add(result.ManufacturingInfo.NDC, SourceCode, 3)
	}
	for _, code := range result.ExtractedText.Codes {
		add(code, SourceCode, 3)
	}

	for _, name := range result.ExtractedText.DrugNames {
		add(dosageSuffixRe.ReplaceAllString(name, ""), SourceDrugNameText, 4)
	}

	// Compound terms improve precision against sources that index on
	// combined fields (name+manufacturer, name+strength).
	primaryName := brand
	if primaryName == "" {
		primaryName = generic
	}
	if primaryName != "" {
		if mfr := strings.TrimSpace(result.ManufacturingInfo.Manufacturer); mfr != "" {
			add(primaryName+" "+mfr, SourceCompound, 5)
		}
		for _, s := range strengths {
			add(primaryName+" "+s, SourceCompound, 5)
		}
	}

	// Filtered free text, last resort
	for _, token := range strings.Fields(result.ExtractedText.AllText) {
		token = strings.Trim(token, ".,;:()[]\"'")
		if len(token) < 3 || len(token) > 50 {
			continue
		}
		if !alphaTokenRe.MatchString(token) {
			continue
		}
		if stopwords[strings.ToLower(token)] {
			continue
		}
		add(token, SourceFreeText, 6)
	}

	sortByPriority(terms)
	return terms
}

// sortByPriority keeps the stable within-priority order from Synthesize
func sortByPriority(terms []SearchTerm) {
	// insertion sort: term lists are tiny and stability matters
	for i := 1; i < len(terms); i++ {
		for j := i; j > 0 && terms[j-1].Priority > terms[j].Priority; j-- {
			terms[j-1], terms[j] = terms[j], terms[j-1]
		}
	}
}

// Primary returns the terms used in the primary identification phase
func Primary(terms []SearchTerm) []SearchTerm {
	return capTerms(terms, configs.PRIMARY_TERM_LIMIT, 5)
}

// Secondary returns the terms used in the later phases
func Secondary(terms []SearchTerm) []SearchTerm {
	return capTerms(terms, configs.SECONDARY_TERM_LIMIT, 3)
}

func capTerms(terms []SearchTerm, limit, fallback int) []SearchTerm {
	if limit <= 0 {
		limit = fallback
	}
	if len(terms) <= limit {
		return terms
	}
	return terms[:limit]
}
