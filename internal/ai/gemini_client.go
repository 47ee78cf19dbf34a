package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// GeminiClient generates content through the Google Gen AI SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient builds a Gemini API client. baseURL overrides the
// endpoint and is only set in tests.
func NewGeminiClient(ctx context.Context, apiKey string, httpTimeout time.Duration, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is missing")
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: httpTimeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Generate maps chat messages onto a single GenerateContent call. System
// messages become the system instruction.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	var system, user []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
		} else {
			user = append(user, m.Content)
		}
	}
	if len(user) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	gcfg := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		gcfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == JSONObject.Type {
		gcfg.ResponseMIMEType = "application/json"
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		gcfg.Temperature = &t
	}
	if req.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(strings.Join(user, "\n\n")), gcfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyGenAIError(err)
	}
	out := &GenerateResponse{
		Choices:   []Choice{{Message: Message{Role: "assistant", Content: resp.Text()}}},
		RequestID: "gemini_" + uuid.NewString(),
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// classifyGenAIError maps SDK API errors onto the package's typed errors.
func classifyGenAIError(err error) error {
	var gerr genai.APIError
	if !errors.As(err, &gerr) {
		var perr *genai.APIError
		if !errors.As(err, &perr) || perr == nil {
			return &UnreachableError{Host: "generativelanguage.googleapis.com", Err: err}
		}
		gerr = *perr
	}
	apiErr := &APIError{StatusCode: gerr.Code, Code: gerr.Status, Message: gerr.Message}
	switch {
	case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case gerr.Status == "RESOURCE_EXHAUSTED" && containsFold(gerr.Message, "quota"):
		return &QuotaExceededError{APIError: apiErr}
	case gerr.Code == http.StatusTooManyRequests:
		return &RateLimitError{APIError: apiErr}
	case gerr.Code == http.StatusNotFound:
		return &ModelNotFoundError{APIError: apiErr}
	case gerr.Code == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case gerr.Code >= 500:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}
