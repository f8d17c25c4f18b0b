// prompts.go - Prompt construction for quick and comprehensive analysis

package ai

import (
	"fmt"
	"strings"
)

// jsonShapeInstructions is shared across modes so every response parses into
// the same VisionAnalysisResult shape.
const jsonShapeInstructions = `Respond with ONE JSON object and nothing else, using exactly this shape:
{
  "identified": true or false,
  "confidence": 1-10 (integer, 10 = certain),
  "medicineType": "tablet" | "capsule" | "liquid" | "cream" | "injection" | "inhaler" | "other" | "unknown",
  "candidateNames": {"brand": "", "generic": "", "primary": ""},
  "activeIngredients": ["ingredient with strength if visible"],
  "physicalCharacteristics": {"shape": "", "color": "", "size": "", "markings": "", "packaging": ""},
  "extractedText": {"allText": "", "drugNames": [], "warnings": [], "directions": [], "codes": []},
  "manufacturingInfo": {"manufacturer": "", "lotNumber": "", "expirationDate": "", "ndc": ""},
  "safetyInfo": "",
  "reasoning": "",
  "verificationNeeded": true or false,
  "imageInconsistencies": []
}
Use empty strings and empty arrays for anything not visible. Never invent values.`

// GetQuickPrompt builds the prompt for quick (name-only) identification.
// Optimized for low latency: the user confirms or corrects the name before
// the expensive comprehensive pass runs.
func GetQuickPrompt(imageCount int) string {
	var b strings.Builder

	b.WriteString("You are a pharmacist assistant identifying a medicine from a photograph.\n")
	if imageCount > 1 {
		fmt.Fprintf(&b, "You are given %d photographs of what should be the SAME medicine.\n", imageCount)
	}

	b.WriteString(`
TASK (quick identification):
1. Identify the most likely medicine NAME (brand and/or generic).
2. Give a coarse physical description (shape, color, markings, packaging).
3. Do NOT attempt full label extraction - keep reasoning short.
`)

	if imageCount > 1 {
		b.WriteString(`
CROSS-REFERENCE the images:
- In "reasoning", state which image contributed which detail.
- If the images CONFLICT (different names, different lot numbers, different
  imprints), list each conflict as one entry in "imageInconsistencies" and
  set "verificationNeeded" to true. Never silently pick one image.
`)
	}

	b.WriteString(`
If you cannot identify the medicine, set "identified" to false, "confidence"
to a low value, and explain what is visible in "reasoning".

`)
	b.WriteString(jsonShapeInstructions)
	return b.String()
}

// GetComprehensivePrompt builds the prompt for full structured extraction,
// anchored on the name the user already confirmed.
func GetComprehensivePrompt(verifiedName string, imageCount int) string {
	var b strings.Builder

	b.WriteString("You are a pharmacist assistant extracting structured data from medicine photographs.\n")
	fmt.Fprintf(&b, "The user has CONFIRMED this medicine is: %q. Anchor your extraction on that name.\n", verifiedName)
	if imageCount > 1 {
		fmt.Fprintf(&b, "You are given %d photographs of this medicine (different angles or package sides).\n", imageCount)
	}

	b.WriteString(`
TASK (comprehensive extraction):
1. Read ALL visible text: active ingredients with strengths, warnings,
   directions, NDC codes, lot number, expiration date, manufacturer.
2. Describe the physical characteristics precisely, including imprint codes.
3. Put every drug name you can read into "extractedText.drugNames" and every
   identifying code into "extractedText.codes".
4. Summarize visible safety text in "safetyInfo".
5. If anything on the packaging contradicts the confirmed name, say so in
   "reasoning" and set "verificationNeeded" to true.

`)
	b.WriteString(jsonShapeInstructions)
	return b.String()
}
