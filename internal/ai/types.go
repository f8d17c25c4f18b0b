// types.go - Structured result types produced by the vision analyzer

package ai

// CandidateNames holds the possible names the model read off the medicine.
// Primary is the model's best single answer; Brand/Generic are kept separate
// because downstream sources index on them differently.
type CandidateNames struct {
	Brand   string `json:"brand"`
	Generic string `json:"generic"`
	Primary string `json:"primary"`
}

// PhysicalCharacteristics describes the visible traits of the medicine
type PhysicalCharacteristics struct {
	Shape     string `json:"shape"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Markings  string `json:"markings"` // imprint codes, scoring lines
	Packaging string `json:"packaging"`
}

// ExtractedText holds the raw text the model read from the images
type ExtractedText struct {
	AllText    string   `json:"allText"`
	DrugNames  []string `json:"drugNames"`
	Warnings   []string `json:"warnings"`
	Directions []string `json:"directions"`
	Codes      []string `json:"codes"` // NDC, lot codes, barcode digits
}

// ManufacturingInfo holds production details visible on the packaging
type ManufacturingInfo struct {
	Manufacturer   string `json:"manufacturer"`
	LotNumber      string `json:"lotNumber"`
	ExpirationDate string `json:"expirationDate"`
	NDC            string `json:"ndc"`
}

// VisionAnalysisResult is the analyzer's output for one image-set submission.
// It is immutable once returned; every downstream stage can assume a valid
// (if low-confidence) instance because the analyzer never errors past its
// boundary.
type VisionAnalysisResult struct {
	Identified              bool                    `json:"identified"`
	Confidence              int                     `json:"confidence"` // ordinal 1-10, clamped
	MedicineType            string                  `json:"medicineType"`
	CandidateNames          CandidateNames          `json:"candidateNames"`
	ActiveIngredients       []string                `json:"activeIngredients"`
	PhysicalCharacteristics PhysicalCharacteristics `json:"physicalCharacteristics"`
	ExtractedText           ExtractedText           `json:"extractedText"`
	ManufacturingInfo       ManufacturingInfo       `json:"manufacturingInfo"`
	SafetyInfo              string                  `json:"safetyInfo"`
	Reasoning               string                  `json:"reasoning"`
	VerificationNeeded      bool                    `json:"verificationNeeded"`

	// ImageInconsistencies is populated in multi-image quick mode when the
	// model cross-references images and finds conflicting details (e.g. two
	// different lot numbers).
	ImageInconsistencies []string `json:"imageInconsistencies,omitempty"`

	Metadata AIMetadata `json:"metadata"`
}

// AIMetadata contains information about the AI processing
type AIMetadata struct {
	ModelName        string `json:"model_name"`
	PromptTokens     int32  `json:"prompt_tokens"`
	CandidatesTokens int32  `json:"candidates_tokens"`
	TotalTokens      int32  `json:"total_tokens"`
}

// clampConfidence forces the model-supplied ordinal onto the 1-10 scale.
// No recalibration, just bounds.
func clampConfidence(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// FallbackResult builds the well-formed low-confidence result substituted
// whenever the model call or JSON parsing fails. All text fields explain the
// failure so the caller sees why verification is needed.
func FallbackResult(reason string) *VisionAnalysisResult {
	if reason == "" {
		reason = "analysis failed for an unknown reason"
	}
	msg := "Automatic identification was not possible: " + reason

	return &VisionAnalysisResult{
		Identified:         false,
		Confidence:         1,
		MedicineType:       "unknown",
		ActiveIngredients:  []string{},
		ExtractedText:      ExtractedText{AllText: msg, DrugNames: []string{}, Warnings: []string{}, Directions: []string{}, Codes: []string{}},
		SafetyInfo:         "Do not take unidentified medication. Consult a pharmacist.",
		Reasoning:          msg,
		VerificationNeeded: true,
	}
}

// normalize repairs a parsed result so downstream code never branches on
// missing fields: nil slices become empty, confidence is clamped.
func (r *VisionAnalysisResult) normalize() {
	r.Confidence = clampConfidence(r.Confidence)
	if r.ActiveIngredients == nil {
		r.ActiveIngredients = []string{}
	}
	if r.ExtractedText.DrugNames == nil {
		r.ExtractedText.DrugNames = []string{}
	}
	if r.ExtractedText.Warnings == nil {
		r.ExtractedText.Warnings = []string{}
	}
	if r.ExtractedText.Directions == nil {
		r.ExtractedText.Directions = []string{}
	}
	if r.ExtractedText.Codes == nil {
		r.ExtractedText.Codes = []string{}
	}
	if len(r.ImageInconsistencies) > 0 {
		r.VerificationNeeded = true
	}
}
