package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"cherrypick/internal/logging"
	"cherrypick/internal/types"
)

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// DefaultGeminiConfig returns the operational defaults for classification.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		Temperature:     0,
		MaxOutputTokens: 1024,
		Timeout:         8 * time.Second,
	}
}

// GeminiClient implements LLMClient against the Gemini REST API. One call
// is one upstream attempt; a small circuit breaker keeps a flapping
// upstream from stalling every preview for its full timeout.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client

	mu          sync.Mutex
	lastRequest time.Time

	// Circuit breaker state
	failures  int
	openUntil time.Time
}

const (
	breakerThreshold = 3
	breakerCooldown  = 30 * time.Second
	minRequestGap    = 100 * time.Millisecond
)

// NewGeminiClient creates a client with custom config.
func NewGeminiClient(config GeminiConfig) *GeminiClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	maxTokens := config.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         baseURL,
		model:           model,
		temperature:     config.Temperature,
		maxOutputTokens: maxTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Wire types for the generateContent endpoint.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateJSON sends the prompt with responseMimeType application/json and
// returns the raw completion. Exactly one upstream attempt is made.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, types.ModelInfo, error) {
	info := types.ModelInfo{Name: c.model, Temperature: c.temperature}

	if c.apiKey == "" {
		return "", info, fmt.Errorf("%w: API key not configured", ErrLLMUnavailable)
	}

	// Circuit breaker: fail fast while the upstream is known-bad
	c.mu.Lock()
	if time.Now().Before(c.openUntil) {
		remaining := time.Until(c.openUntil).Round(time.Second)
		c.mu.Unlock()
		return "", info, fmt.Errorf("%w: circuit open for %s", ErrLLMUnavailable, remaining)
	}
	// Rate limiting
	elapsed := time.Since(c.lastRequest)
	if elapsed < minRequestGap {
		time.Sleep(minRequestGap - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	// Auto-apply timeout if the context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.PerceptionDebug("[Gemini] GenerateJSON: model=%s prompt_len=%d", c.model, len(prompt))

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      c.temperature,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", info, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", info, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		logging.PerceptionError("[Gemini] GenerateJSON: transport error after %v: %v", time.Since(startTime), err)
		return "", info, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return "", info, fmt.Errorf("%w: read response: %v", ErrLLMUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.recordFailure()
		return "", info, fmt.Errorf("%w: status %d", ErrLLMUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// 4xx other than 429 is a request problem, not upstream health
		return "", info, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", info, fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		c.recordFailure()
		return "", info, fmt.Errorf("%w: API error: %s", ErrLLMUnavailable, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		c.recordFailure()
		return "", info, ErrEmptyCompletion
	}

	var result strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	response := strings.TrimSpace(result.String())
	if response == "" {
		c.recordFailure()
		return "", info, ErrEmptyCompletion
	}

	c.recordSuccess()
	logging.Perception("[Gemini] GenerateJSON: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, info, nil
}

func (c *GeminiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= breakerThreshold {
		c.openUntil = time.Now().Add(breakerCooldown)
		c.failures = 0
		logging.PerceptionWarn("[Gemini] circuit opened for %s", breakerCooldown)
	}
}

func (c *GeminiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.openUntil = time.Time{}
}
