// compiler.go - Merging vision output and source payloads into one profile

package profile

import (
	"sort"
	"strings"

	"github.com/snapmed/medicine_id_gemini/configs"
	"github.com/snapmed/medicine_id_gemini/internal/aggregator"
	"github.com/snapmed/medicine_id_gemini/internal/ai"
	"github.com/snapmed/medicine_id_gemini/internal/sources"
)

// Compile merges the vision result and every Found source payload into the
// canonical profile. Merge rules:
//   - name/ingredient fields union into sets; the primary scalar is the first
//     non-empty value in source-priority order (vision, regulatory filings,
//     nomenclature, then the rest)
//   - free-text fields append as ordered lists, never joined into one string
//   - adverse reactions bucket by report count
//
// Vision name fields participate only when the analyzer actually identified
// the medicine; a fallback result contributes no names.
func Compile(vision *ai.VisionAnalysisResult, collected *aggregator.Collected) *ComprehensiveMedicineProfile {
	p := newProfile()

	drugsFDA := payloadsOfDrugsFDA(collected)
	rxNorm := payloadsOfRxNorm(collected)
	labels := payloadsOfLabel(collected)
	faers := payloadsOfFAERS(collected)
	catalog := payloadsOfCatalog(collected)

	compileIdentification(p, vision, drugsFDA, rxNorm, labels, catalog)
	compilePrescribing(p, labels)
	compilePharmacology(p, drugsFDA, rxNorm)
	compileSafety(p, vision, labels, faers, catalog)
	compileManufacturing(p, vision, drugsFDA, rxNorm, labels, catalog)
	compileRegulatory(p, drugsFDA)
	compileClinical(p, vision, catalog)
	compileAlternatives(p, rxNorm, catalog)

	return p
}

func compileIdentification(p *ComprehensiveMedicineProfile, vision *ai.VisionAnalysisResult,
	drugsFDA []*sources.DrugsFDAPayload, rxNorm []*sources.RxNormPayload,
	labels []*sources.LabelPayload, catalog []*sources.LocalCatalogPayload) {

	id := &p.Identification

	if vision.Identified {
		id.BrandNames.Add(vision.CandidateNames.Brand)
		id.GenericNames.Add(vision.CandidateNames.Generic)
		id.ActiveIngredients.Add(vision.ActiveIngredients...)
	}
	for _, d := range drugsFDA {
		id.BrandNames.Add(d.BrandNames...)
		id.GenericNames.Add(d.GenericNames...)
		id.ActiveIngredients.Add(d.SubstanceNames...)
	}
	for _, r := range rxNorm {
		if r.TTY == "BN" {
			id.BrandNames.Add(r.Name)
		}
		if r.TTY == "IN" {
			id.GenericNames.Add(r.Name)
		}
		for _, c := range r.RelatedConcepts {
			switch c.TTY {
			case "BN":
				id.BrandNames.Add(c.Name)
			case "IN":
				id.GenericNames.Add(c.Name)
			}
		}
		if id.RxCUI == "" {
			id.RxCUI = r.RxCUI
		}
	}
	for _, l := range labels {
		id.BrandNames.Add(l.BrandNames...)
		id.GenericNames.Add(l.GenericNames...)
	}
	for _, c := range catalog {
		for _, m := range c.Matches {
			id.BrandNames.Add(m.BrandName)
			id.GenericNames.Add(m.GenericName)
			id.ActiveIngredients.Add(m.ActiveIngredients...)
		}
	}

	// Primary scalars follow set insertion order, which already encodes the
	// source priority above. nil when no source named anything.
	id.PrimaryBrandName = firstOrNil(id.BrandNames)
	id.PrimaryGenericName = firstOrNil(id.GenericNames)

	if vision.MedicineType != "" && vision.MedicineType != "unknown" {
		id.MedicineType = vision.MedicineType
	} else {
		for _, c := range catalog {
			for _, m := range c.Matches {
				if m.MedicineType != "" {
					id.MedicineType = m.MedicineType
					break
				}
			}
			if id.MedicineType != "" {
				break
			}
		}
	}

	id.Shape = vision.PhysicalCharacteristics.Shape
	id.Color = vision.PhysicalCharacteristics.Color
	id.Markings = vision.PhysicalCharacteristics.Markings
}

func compilePrescribing(p *ComprehensiveMedicineProfile, labels []*sources.LabelPayload) {
	for _, l := range labels {
		appendTexts(&p.PrescribingInfo.Indications, l.Indications)
		appendTexts(&p.PrescribingInfo.Dosage, l.Dosage)
		appendTexts(&p.PrescribingInfo.Contraindications, l.Contraindications)
		appendTexts(&p.PrescribingInfo.Interactions, l.Interactions)
	}
}

func compilePharmacology(p *ComprehensiveMedicineProfile, drugsFDA []*sources.DrugsFDAPayload, rxNorm []*sources.RxNormPayload) {
	for _, d := range drugsFDA {
		p.Pharmacology.Routes.Add(d.Routes...)
		p.Pharmacology.DosageForms.Add(d.DosageForms...)
		p.Pharmacology.Strengths.Add(d.Strengths...)
	}
	for _, r := range rxNorm {
		if p.Pharmacology.StandardName == "" {
			p.Pharmacology.StandardName = r.Name
			p.Pharmacology.ConceptType = r.TTY
		}
	}
}

func compileSafety(p *ComprehensiveMedicineProfile, vision *ai.VisionAnalysisResult,
	labels []*sources.LabelPayload, faers []*sources.FAERSPayload, catalog []*sources.LocalCatalogPayload) {

	appendTexts(&p.SafetyProfile.Warnings, vision.ExtractedText.Warnings)
	for _, l := range labels {
		appendTexts(&p.SafetyProfile.Warnings, l.Warnings)
		appendTexts(&p.SafetyProfile.Warnings, l.AdverseReactions)
	}
	for _, c := range catalog {
		for _, m := range c.Matches {
			appendTexts(&p.SafetyProfile.Warnings, m.Warnings)
		}
	}

	if vision.SafetyInfo != "" {
		appendTexts(&p.SafetyProfile.SafetyNotes, []string{vision.SafetyInfo})
	}

	p.SafetyProfile.AdverseReactions = bucketReactions(faers)
}

// bucketReactions dedups reactions across terms (keeping the larger count)
// and splits them by the configured report-count thresholds. Report-count
// heuristic only.
func bucketReactions(faers []*sources.FAERSPayload) AdverseReactions {
	commonAt := configs.ADVERSE_COMMON_THRESHOLD
	if commonAt <= 0 {
		commonAt = 1000
	}
	seriousAt := configs.ADVERSE_SERIOUS_THRESHOLD
	if seriousAt <= 0 {
		seriousAt = 100
	}

	merged := map[string]int{}
	var order []string
	for _, f := range faers {
		for _, r := range f.Reactions {
			key := strings.ToLower(r.Reaction)
			if existing, ok := merged[key]; !ok {
				merged[key] = r.Reports
				order = append(order, r.Reaction)
			} else if r.Reports > existing {
				merged[key] = r.Reports
			}
		}
	}

	out := AdverseReactions{
		Common:  []ReactionReport{},
		Serious: []ReactionReport{},
		Rare:    []ReactionReport{},
	}
	for _, reaction := range order {
		reports := merged[strings.ToLower(reaction)]
		entry := ReactionReport{Reaction: reaction, Reports: reports}
		switch {
		case reports > commonAt:
			out.Common = append(out.Common, entry)
		case reports > seriousAt:
			out.Serious = append(out.Serious, entry)
		default:
			out.Rare = append(out.Rare, entry)
		}
	}

	sortByReports(out.Common)
	sortByReports(out.Serious)
	sortByReports(out.Rare)
	return out
}

func sortByReports(reports []ReactionReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Reports > reports[j].Reports
	})
}

func compileManufacturing(p *ComprehensiveMedicineProfile, vision *ai.VisionAnalysisResult,
	drugsFDA []*sources.DrugsFDAPayload, rxNorm []*sources.RxNormPayload,
	labels []*sources.LabelPayload, catalog []*sources.LocalCatalogPayload) {

	m := &p.ManufacturingInfo

	m.Manufacturers.Add(vision.ManufacturingInfo.Manufacturer)
	for _, d := range drugsFDA {
		m.Manufacturers.Add(d.ManufacturerNames...)
		m.Sponsors.Add(d.SponsorNames...)
	}
	for _, l := range labels {
		m.Manufacturers.Add(l.Manufacturers...)
	}
	for _, c := range catalog {
		for _, entry := range c.Matches {
			m.Manufacturers.Add(entry.Manufacturer)
		}
	}

	if vision.ManufacturingInfo.LotNumber != "" {
		m.LotNumber = strPtr(vision.ManufacturingInfo.LotNumber)
	}
	if vision.ManufacturingInfo.ExpirationDate != "" {
		m.ExpirationDate = strPtr(vision.ManufacturingInfo.ExpirationDate)
	}

	m.NDCs.Add(vision.ManufacturingInfo.NDC)
	for _, r := range rxNorm {
		m.NDCs.Add(r.NDCs...)
	}
}

func compileRegulatory(p *ComprehensiveMedicineProfile, drugsFDA []*sources.DrugsFDAPayload) {
	for _, d := range drugsFDA {
		p.RegulatoryInfo.ApplicationNumbers.Add(d.ApplicationNumbers...)
		p.RegulatoryInfo.MarketingStatuses.Add(d.MarketingStatuses...)
	}
}

func compileClinical(p *ComprehensiveMedicineProfile, vision *ai.VisionAnalysisResult, catalog []*sources.LocalCatalogPayload) {
	for _, c := range catalog {
		for _, m := range c.Matches {
			appendTexts(&p.ClinicalInfo.CommonUses, m.CommonUses)
		}
	}
	appendTexts(&p.ClinicalInfo.Directions, vision.ExtractedText.Directions)
}

func compileAlternatives(p *ComprehensiveMedicineProfile, rxNorm []*sources.RxNormPayload, catalog []*sources.LocalCatalogPayload) {
	alt := &p.Alternatives
	primaryBrand := ""
	if p.Identification.PrimaryBrandName != nil {
		primaryBrand = strings.ToLower(*p.Identification.PrimaryBrandName)
	}

	for _, r := range rxNorm {
		for _, c := range r.RelatedConcepts {
			switch c.TTY {
			case "BN":
				if strings.ToLower(c.Name) != primaryBrand {
					alt.BrandAlternatives.Add(c.Name)
				}
			case "IN":
				alt.GenericAlternatives.Add(c.Name)
			case "SCD":
				alt.RelatedFormulations.Add(c.Name)
			}
		}
	}

	// Catalog entries sharing a generic name are brand-level alternatives
	for _, c := range catalog {
		for _, m := range c.Matches {
			if strings.ToLower(m.BrandName) != primaryBrand {
				alt.BrandAlternatives.Add(m.BrandName)
			}
		}
	}
}

// payload extraction preserves collection order, which encodes phase order

func payloadsOfDrugsFDA(collected *aggregator.Collected) []*sources.DrugsFDAPayload {
	var out []*sources.DrugsFDAPayload
	for _, r := range collected.Found() {
		if p, ok := r.Payload.(*sources.DrugsFDAPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

func payloadsOfRxNorm(collected *aggregator.Collected) []*sources.RxNormPayload {
	var out []*sources.RxNormPayload
	for _, r := range collected.Found() {
		if p, ok := r.Payload.(*sources.RxNormPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

func payloadsOfLabel(collected *aggregator.Collected) []*sources.LabelPayload {
	var out []*sources.LabelPayload
	for _, r := range collected.Found() {
		if p, ok := r.Payload.(*sources.LabelPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

func payloadsOfFAERS(collected *aggregator.Collected) []*sources.FAERSPayload {
	var out []*sources.FAERSPayload
	for _, r := range collected.Found() {
		if p, ok := r.Payload.(*sources.FAERSPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

func payloadsOfCatalog(collected *aggregator.Collected) []*sources.LocalCatalogPayload {
	var out []*sources.LocalCatalogPayload
	for _, r := range collected.Found() {
		if p, ok := r.Payload.(*sources.LocalCatalogPayload); ok {
			out = append(out, p)
		}
	}
	return out
}

// appendTexts appends each non-empty trimmed text not already present,
// keeping order. Identical passages from repeated queries collapse; distinct
// passages never merge.
func appendTexts(dst *[]string, texts []string) {
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		duplicate := false
		for _, existing := range *dst {
			if existing == t {
				duplicate = true
				break
			}
		}
		if !duplicate {
			*dst = append(*dst, t)
		}
	}
}

func firstOrNil(set StringSet) *string {
	if len(set) == 0 {
		return nil
	}
	return strPtr(set[0])
}

func strPtr(s string) *string { return &s }
