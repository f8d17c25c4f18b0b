// types.go - Canonical medicine profile and its sub-records

package profile

// StringSet is an ordered, case-sensitively deduplicated string collection.
// Sets absorb the same value contributed by multiple sources; insertion order
// is preserved so higher-priority sources list their values first.
type StringSet []string

// Add appends each non-empty value not already present
func (s *StringSet) Add(values ...string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if s.Contains(v) {
			continue
		}
		*s = append(*s, v)
	}
}

func (s StringSet) Contains(v string) bool {
	for _, existing := range s {
		if existing == v {
			return true
		}
	}
	return false
}

// Identification names the medicine. The primary scalars are pointers:
// nil means no source could supply a value, and nil is never conflated with
// an empty string.
type Identification struct {
	PrimaryBrandName   *string   `json:"primaryBrandName"`
	PrimaryGenericName *string   `json:"primaryGenericName"`
	BrandNames         StringSet `json:"brandNames"`
	GenericNames       StringSet `json:"genericNames"`
	ActiveIngredients  StringSet `json:"activeIngredients"`
	MedicineType       string    `json:"medicineType"`
	RxCUI              string    `json:"rxcui"`
	Shape              string    `json:"shape"`
	Color              string    `json:"color"`
	Markings           string    `json:"markings"`
}

// PrescribingInfo carries label-derived usage text. Free-text fields stay as
// ordered lists so nothing any source said gets collapsed away.
type PrescribingInfo struct {
	Indications       []string `json:"indications"`
	Dosage            []string `json:"dosage"`
	Contraindications []string `json:"contraindications"`
	Interactions      []string `json:"interactions"`
}

// Pharmacology describes the formulation and standardized concept data
type Pharmacology struct {
	StandardName string    `json:"standardName"`
	ConceptType  string    `json:"conceptType"` // nomenclature term type (BN, IN, SCD...)
	Routes       StringSet `json:"routes"`
	DosageForms  StringSet `json:"dosageForms"`
	Strengths    StringSet `json:"strengths"`
}

// ReactionReport is one adverse reaction with its report count
type ReactionReport struct {
	Reaction string `json:"reaction"`
	Reports  int    `json:"reports"`
}

// AdverseReactions buckets reports by frequency. The bucketing is a
// report-count heuristic, not a clinical severity classification.
type AdverseReactions struct {
	Common  []ReactionReport `json:"common"`
	Serious []ReactionReport `json:"serious"`
	Rare    []ReactionReport `json:"rare"`
}

// SafetyProfile aggregates warnings and reported adverse reactions
type SafetyProfile struct {
	Warnings         []string         `json:"warnings"`
	AdverseReactions AdverseReactions `json:"adverseReactions"`
	SafetyNotes      []string         `json:"safetyNotes"`
}

// ManufacturingRecord covers who makes the product and its identifiers
type ManufacturingRecord struct {
	Manufacturers  StringSet `json:"manufacturers"`
	Sponsors       StringSet `json:"sponsors"`
	LotNumber      *string   `json:"lotNumber"`
	ExpirationDate *string   `json:"expirationDate"`
	NDCs           StringSet `json:"ndcs"`
}

// RegulatoryInfo covers approval filings
type RegulatoryInfo struct {
	ApplicationNumbers StringSet `json:"applicationNumbers"`
	MarketingStatuses  StringSet `json:"marketingStatuses"`
}

// ClinicalInfo covers everyday-use guidance
type ClinicalInfo struct {
	CommonUses []string `json:"commonUses"`
	Directions []string `json:"directions"`
}

// PricingInfo is carried for envelope stability. None of the configured
// sources publish pricing, so the scalar stays nil with an explanatory note.
type PricingInfo struct {
	EstimatedCostRange *string `json:"estimatedCostRange"`
	Notes              string  `json:"notes"`
}

// Alternatives lists related medicines derived from nomenclature concepts
// and the local catalog.
type Alternatives struct {
	BrandAlternatives   StringSet `json:"brandAlternatives"`
	GenericAlternatives StringSet `json:"genericAlternatives"`
	RelatedFormulations StringSet `json:"relatedFormulations"`
}

// ComprehensiveMedicineProfile is the canonical merged output of one
// pipeline run. Sub-records are value types: never null in the serialized
// form, empty-but-typed when no source contributed. Immutable after Compile
// returns it.
type ComprehensiveMedicineProfile struct {
	Identification    Identification      `json:"identification"`
	PrescribingInfo   PrescribingInfo     `json:"prescribingInfo"`
	Pharmacology      Pharmacology        `json:"pharmacology"`
	SafetyProfile     SafetyProfile       `json:"safetyProfile"`
	ManufacturingInfo ManufacturingRecord `json:"manufacturingInfo"`
	RegulatoryInfo    RegulatoryInfo      `json:"regulatoryInfo"`
	ClinicalInfo      ClinicalInfo        `json:"clinicalInfo"`
	PricingInfo       PricingInfo         `json:"pricingInfo"`
	Alternatives      Alternatives        `json:"alternatives"`
}

// newProfile builds the empty-but-typed shape: every set and list is
// allocated so the JSON form shows [] rather than null.
func newProfile() *ComprehensiveMedicineProfile {
	return &ComprehensiveMedicineProfile{
		Identification: Identification{
			BrandNames:        StringSet{},
			GenericNames:      StringSet{},
			ActiveIngredients: StringSet{},
		},
		PrescribingInfo: PrescribingInfo{
			Indications:       []string{},
			Dosage:            []string{},
			Contraindications: []string{},
			Interactions:      []string{},
		},
		Pharmacology: Pharmacology{
			Routes:      StringSet{},
			DosageForms: StringSet{},
			Strengths:   StringSet{},
		},
		SafetyProfile: SafetyProfile{
			Warnings: []string{},
			AdverseReactions: AdverseReactions{
				Common:  []ReactionReport{},
				Serious: []ReactionReport{},
				Rare:    []ReactionReport{},
			},
			SafetyNotes: []string{},
		},
		ManufacturingInfo: ManufacturingRecord{
			Manufacturers: StringSet{},
			Sponsors:      StringSet{},
			NDCs:          StringSet{},
		},
		RegulatoryInfo: RegulatoryInfo{
			ApplicationNumbers: StringSet{},
			MarketingStatuses:  StringSet{},
		},
		ClinicalInfo: ClinicalInfo{
			CommonUses: []string{},
			Directions: []string{},
		},
		PricingInfo: PricingInfo{
			Notes: "Pricing is not aggregated from the configured sources; consult a pharmacy for current cost.",
		},
		Alternatives: Alternatives{
			BrandAlternatives:   StringSet{},
			GenericAlternatives: StringSet{},
			RelatedFormulations: StringSet{},
		},
	}
}
