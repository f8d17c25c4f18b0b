// interface.go - Vision provider interface for supporting multiple AI providers

package ai

import (
	"context"

	"github.com/snapmed/medicine_id_gemini/internal/common"
)

// ImageInput is one prepared image blob ready for the vision model
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// VisionProvider defines the interface every vision backend must implement.
// Implementations must honor the analyzer failure policy: on model or parse
// failure they return a well-formed low-confidence result (FallbackResult),
// not an error. The error return is reserved for caller mistakes such as an
// empty image set.
type VisionProvider interface {
	// AnalyzeQuick asks only for a name and coarse physical description so
	// the user can confirm before the expensive pass. With multiple images
	// the provider also asks the model to cross-reference them.
	AnalyzeQuick(ctx context.Context, images []ImageInput, reqCtx *common.RequestContext) (*VisionAnalysisResult, *common.TokenUsage, error)

	// AnalyzeComprehensive performs the full structured extraction anchored
	// on the user-verified medicine name.
	AnalyzeComprehensive(ctx context.Context, images []ImageInput, verifiedName string, reqCtx *common.RequestContext) (*VisionAnalysisResult, *common.TokenUsage, error)

	// ProviderName returns the name of the provider (e.g., "gemini")
	ProviderName() string
}
