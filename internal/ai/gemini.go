// gemini.go - Gemini-backed vision provider

package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/snapmed/medicine_id_gemini/internal/common"
	"github.com/snapmed/medicine_id_gemini/internal/ratelimit"
)

// GeminiProvider implements VisionProvider on top of the Gemini API
type GeminiProvider struct {
	apiKey     string
	quickModel string
	fullModel  string
}

// NewGeminiProvider creates a Gemini vision provider
func NewGeminiProvider(apiKey, quickModel, fullModel string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:     apiKey,
		quickModel: quickModel,
		fullModel:  fullModel,
	}
}

// ProviderName returns the provider identifier
func (p *GeminiProvider) ProviderName() string { return "gemini" }

// AnalyzeQuick performs name-only identification over one or more images
func (p *GeminiProvider) AnalyzeQuick(ctx context.Context, images []ImageInput, reqCtx *common.RequestContext) (*VisionAnalysisResult, *common.TokenUsage, error) {
	if len(images) == 0 {
		return nil, nil, fmt.Errorf("no images provided")
	}
	prompt := GetQuickPrompt(len(images))
	return p.analyze(ctx, p.quickModel, prompt, images, reqCtx)
}

// AnalyzeComprehensive performs the full structured extraction
func (p *GeminiProvider) AnalyzeComprehensive(ctx context.Context, images []ImageInput, verifiedName string, reqCtx *common.RequestContext) (*VisionAnalysisResult, *common.TokenUsage, error) {
	if len(images) == 0 {
		return nil, nil, fmt.Errorf("no images provided")
	}
	if verifiedName == "" {
		return nil, nil, fmt.Errorf("comprehensive analysis requires a verified medicine name")
	}
	prompt := GetComprehensivePrompt(verifiedName, len(images))
	return p.analyze(ctx, p.fullModel, prompt, images, reqCtx)
}

// analyze runs one generate call and converts every failure mode into a
// well-formed fallback result. The only error paths left are the caller
// mistakes handled above.
func (p *GeminiProvider) analyze(ctx context.Context, modelName, prompt string, images []ImageInput, reqCtx *common.RequestContext) (*VisionAnalysisResult, *common.TokenUsage, error) {
	reqCtx.StartSubStep("init_gemini_client")
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		reqCtx.LogError("Failed to create Gemini client: %v", err)
		return FallbackResult("the AI service could not be reached"), nil, nil
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.GenerationConfig.MaxOutputTokens = ptr(int32(8192))
	model.ResponseMIMEType = "application/json"
	reqCtx.EndSubStep("")

	// Build parts: prompt first, then every image blob in submission order
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	reqCtx.StartSubStep("call_gemini_api")
	resp, err := callGeminiWithRetry(ctx, model, parts, reqCtx, DefaultRetryConfig)
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		reqCtx.LogError("Gemini call failed: %v", err)
		return FallbackResult("the AI model call failed"), nil, nil
	}
	reqCtx.EndSubStep("")

	reqCtx.StartSubStep("parse_json_response")
	text := responseText(resp)
	if text == "" {
		reqCtx.EndSubStep("❌ EMPTY")
		reqCtx.LogWarning("Gemini returned no text parts (FinishReason on empty candidates)")
		return FallbackResult("the AI model returned an empty response"), tokenUsage(resp), nil
	}

	result, parseErr := ParseAnalysisText(text)
	if parseErr != nil {
		reqCtx.EndSubStep("❌ JSON PARSE FAILED")
		preview := text
		if len(preview) > 300 {
			preview = preview[:300] + "... (truncated)"
		}
		reqCtx.LogWarning("Failed to parse analysis JSON: %v. Preview: %s", parseErr, preview)
		return FallbackResult("the AI response could not be parsed"), tokenUsage(resp), nil
	}
	reqCtx.EndSubStep("")

	result.Metadata = AIMetadata{ModelName: modelName}
	usage := tokenUsage(resp)
	if resp.UsageMetadata != nil {
		result.Metadata.PromptTokens = resp.UsageMetadata.PromptTokenCount
		result.Metadata.CandidatesTokens = resp.UsageMetadata.CandidatesTokenCount
		result.Metadata.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		reqCtx.LogWarning("Response was truncated (FinishReason: MAX_TOKENS); flagging for verification")
		result.VerificationNeeded = true
	}

	return result, usage, nil
}

// responseText extracts the first text part from a Gemini response
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text)
		}
	}
	return ""
}

// tokenUsage converts Gemini usage metadata to our cost-carrying struct
func tokenUsage(resp *genai.GenerateContentResponse) *common.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	usage := common.CalculateTokenCost(
		int(resp.UsageMetadata.PromptTokenCount),
		int(resp.UsageMetadata.CandidatesTokenCount),
	)
	return &usage
}

// ptr is a helper function to get a pointer to an int32 value
func ptr(i int32) *int32 {
	return &i
}

// waitForRateLimit is split out so the retry loop applies it before every
// attempt, not just the first.
func waitForRateLimit() {
	ratelimit.WaitForRateLimit()
}
