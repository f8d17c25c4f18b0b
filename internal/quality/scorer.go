// scorer.go - Data quality metrics for a compiled medicine profile

package quality

import (
	"time"

	"github.com/snapmed/medicine_id_gemini/configs"
	"github.com/snapmed/medicine_id_gemini/internal/profile"
)

// DataQualityMetrics quantifies how much of the profile got filled and how
// well-corroborated it is. Accuracy is a relative confidence proxy derived
// from source count and agreement, not a validated accuracy figure.
type DataQualityMetrics struct {
	Completeness            int       `json:"completeness"` // 0-100
	Accuracy                int       `json:"accuracy"`     // 0-100
	Freshness               time.Time `json:"freshness"`
	CrossReferencedSources  int       `json:"crossReferencedSources"`
	DataPoints              int       `json:"dataPoints"`
	TotalPossibleDataPoints int       `json:"totalPossibleDataPoints"`
	Level                   string    `json:"level"` // high, medium, low
}

// leafPredicate reports whether one leaf field of the profile holds data.
// The inventory is fixed so completeness is comparable across runs.
type leafPredicate func(*profile.ComprehensiveMedicineProfile) bool

var leafInventory = []leafPredicate{
	// identification
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.PrimaryBrandName != nil },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.PrimaryGenericName != nil },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Identification.BrandNames) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Identification.GenericNames) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Identification.ActiveIngredients) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.MedicineType != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.RxCUI != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.Shape != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.Color != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Identification.Markings != "" },

	// prescribing
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.PrescribingInfo.Indications) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.PrescribingInfo.Dosage) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.PrescribingInfo.Contraindications) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.PrescribingInfo.Interactions) > 0 },

	// pharmacology
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Pharmacology.StandardName != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.Pharmacology.ConceptType != "" },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Pharmacology.Routes) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Pharmacology.DosageForms) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Pharmacology.Strengths) > 0 },

	// safety
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.SafetyProfile.Warnings) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.SafetyProfile.AdverseReactions.Common) > 0
	},
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.SafetyProfile.AdverseReactions.Serious) > 0
	},
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.SafetyProfile.AdverseReactions.Rare) > 0
	},
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.SafetyProfile.SafetyNotes) > 0 },

	// manufacturing
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.ManufacturingInfo.Manufacturers) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.ManufacturingInfo.Sponsors) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.ManufacturingInfo.LotNumber != nil },
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.ManufacturingInfo.ExpirationDate != nil },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.ManufacturingInfo.NDCs) > 0 },

	// regulatory
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.RegulatoryInfo.ApplicationNumbers) > 0
	},
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.RegulatoryInfo.MarketingStatuses) > 0
	},

	// clinical
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.ClinicalInfo.CommonUses) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.ClinicalInfo.Directions) > 0 },

	// pricing
	func(p *profile.ComprehensiveMedicineProfile) bool { return p.PricingInfo.EstimatedCostRange != nil },

	// alternatives
	func(p *profile.ComprehensiveMedicineProfile) bool { return len(p.Alternatives.BrandAlternatives) > 0 },
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.Alternatives.GenericAlternatives) > 0
	},
	func(p *profile.ComprehensiveMedicineProfile) bool {
		return len(p.Alternatives.RelatedFormulations) > 0
	},
}

// Score computes the quality metrics from the compiled profile, the
// contribution ledger and the cross-reference agreement count.
func Score(p *profile.ComprehensiveMedicineProfile, ledger []string, agreement int) DataQualityMetrics {
	dataPoints := 0
	for _, present := range leafInventory {
		if present(p) {
			dataPoints++
		}
	}

	total := len(leafInventory)
	completeness := dataPoints * 100 / total
	if completeness > 100 {
		completeness = 100
	}

	accuracy := accuracyEstimate(len(ledger), agreement)

	m := DataQualityMetrics{
		Completeness:            completeness,
		Accuracy:                accuracy,
		Freshness:               time.Now().UTC(),
		CrossReferencedSources:  len(ledger),
		DataPoints:              dataPoints,
		TotalPossibleDataPoints: total,
	}
	m.Level = levelOf(m.Completeness, m.Accuracy)
	return m
}

// accuracyEstimate starts at the baseline and adds bonuses for source
// breadth and for independent sources agreeing on a name field.
func accuracyEstimate(sourceCount, agreement int) int {
	baseline := configs.ACCURACY_BASELINE
	if baseline <= 0 {
		baseline = 85
	}
	bonusThree := configs.ACCURACY_BONUS_THREE_SOURCE
	if bonusThree <= 0 {
		bonusThree = 10
	}
	bonusFive := configs.ACCURACY_BONUS_FIVE_SOURCE
	if bonusFive <= 0 {
		bonusFive = 5
	}
	bonusAgreement := configs.ACCURACY_BONUS_AGREEMENT
	if bonusAgreement <= 0 {
		bonusAgreement = 10
	}

	accuracy := baseline
	if sourceCount >= 3 {
		accuracy += bonusThree
	}
	if sourceCount >= 5 {
		accuracy += bonusFive
	}
	if agreement >= 2 {
		accuracy += bonusAgreement
	}
	if accuracy > 100 {
		accuracy = 100
	}
	return accuracy
}

// levelOf maps the two scores onto the coarse consumer-facing level
func levelOf(completeness, accuracy int) string {
	combined := (completeness + accuracy) / 2
	switch {
	case combined >= 80:
		return "high"
	case combined >= 50:
		return "medium"
	default:
		return "low"
	}
}
