// gemini_retry.go - Retry logic and error categorization for Gemini calls

package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/snapmed/medicine_id_gemini/internal/common"
)

// RetryConfig defines retry behavior for Gemini API calls
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for retry behavior
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// AIError represents a categorized Gemini API error
type AIError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Retryable     bool
}

func (e *AIError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

// categorizeAIError analyzes an error and determines the retry strategy
func categorizeAIError(err error) *AIError {
	if err == nil {
		return nil
	}

	aiErr := &AIError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
		Retryable:     false,
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		aiErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			aiErr.Category = "bad_request"
			aiErr.Message = "Invalid request format or parameters"
		case 401:
			aiErr.Category = "unauthorized"
			aiErr.Message = "Invalid API key or authentication failed"
		case 403:
			aiErr.Category = "forbidden"
			aiErr.Message = "API key lacks required permissions"
		case 404:
			aiErr.Category = "not_found"
			aiErr.Message = "Model not found or invalid endpoint"
		case 413:
			aiErr.Category = "payload_too_large"
			aiErr.Message = "Request size exceeds limit (reduce image size)"
		case 429:
			aiErr.Category = "rate_limit"
			aiErr.Message = "Rate limit exceeded - too many requests"
			aiErr.Retryable = true
		case 500, 502, 503, 504:
			aiErr.Category = "server_error"
			aiErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)
			aiErr.Retryable = true
		default:
			aiErr.Category = "unknown_api_error"
			aiErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			aiErr.Retryable = apiErr.Code >= 500
		}

		return aiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		aiErr.Category = "timeout"
		aiErr.Message = "Request timeout - processing took too long"
		aiErr.Retryable = true
		return aiErr
	}

	if errors.Is(err, context.Canceled) {
		aiErr.Category = "canceled"
		aiErr.Message = "Request was canceled"
		return aiErr
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "quota"):
		aiErr.Category = "quota_exceeded"
		aiErr.Message = "API quota exceeded - daily or monthly limit reached"
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		aiErr.Category = "timeout"
		aiErr.Message = "Request timeout"
		aiErr.Retryable = true
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network"):
		aiErr.Category = "network_error"
		aiErr.Message = "Network connection error"
		aiErr.Retryable = true
	}

	return aiErr
}

// callGeminiWithRetry executes a Gemini API call with retry logic
func callGeminiWithRetry(
	ctx context.Context,
	model *genai.GenerativeModel,
	parts []genai.Part,
	reqCtx *common.RequestContext,
	config RetryConfig,
) (*genai.GenerateContentResponse, error) {

	var lastErr *AIError

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if attempt > 1 {
			reqCtx.LogInfo("Retry attempt %d/%d", attempt, config.MaxAttempts)
		}

		// Rate limit before EVERY attempt, retries included
		waitForRateLimit()

		resp, err := model.GenerateContent(ctx, parts...)
		if err == nil {
			if attempt > 1 {
				reqCtx.LogInfo("✅ Retry succeeded on attempt %d", attempt)
			}
			return resp, nil
		}

		lastErr = categorizeAIError(err)
		reqCtx.LogError("API call failed (attempt %d/%d): %s", attempt, config.MaxAttempts, lastErr.Error())

		if !lastErr.Retryable {
			return nil, lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		delay := calculateBackoff(attempt, config)
		if lastErr.Category == "rate_limit" {
			delay *= 2
			reqCtx.LogWarning("Rate limit hit, waiting %v before retry", delay)
		} else {
			reqCtx.LogInfo("Waiting %v before retry", delay)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context canceled during retry wait: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("gemini API call failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// calculateBackoff computes exponential backoff delay
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
